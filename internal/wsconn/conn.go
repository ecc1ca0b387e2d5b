// Package wsconn wraps a hijacked HTTP connection as a WebSocket byte
// stream, following the gobwas/ws pattern of exposing plain Read/Write
// over binary frames rather than a message-oriented API.
package wsconn

import (
	"io"
	"net"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Ready-state constants mirrored from the browser WebSocket API; only
// OPEN and CLOSING matter for the safe-close check.
const (
	StateOpen    int32 = 1
	StateClosing int32 = 2
	StateClosed  int32 = 3
)

// Conn presents a server-side WebSocket as a net.Conn of binary frames.
// Read returns any leftover early-data bytes first, then unwraps frames
// one at a time via wsutil.Reader the same way the frame length can
// exceed any sane read buffer.
type Conn struct {
	net.Conn

	r *wsutil.Reader

	earlyData             []byte
	remainLenForLastFrame int64

	readyState atomic.Int32
}

// New wraps underlay, which must already have completed the WebSocket
// handshake, as a frame-oriented net.Conn. earlyData, if non-empty, is
// returned by the first Read call(s) before any frame is consumed.
func New(underlay net.Conn, earlyData []byte) *Conn {
	c := &Conn{
		Conn:      underlay,
		r:         wsutil.NewServerSideReader(underlay),
		earlyData: earlyData,
	}
	c.r.OnIntermediate = wsutil.ControlFrameHandler(underlay, ws.StateServerSide)
	c.readyState.Store(StateOpen)
	return c
}

func (c *Conn) Read(p []byte) (int, error) {
	if len(c.earlyData) > 0 {
		n := copy(p, c.earlyData)
		c.earlyData = c.earlyData[n:]
		return n, nil
	}

	if c.remainLenForLastFrame > 0 {
		n, e := c.r.Read(p)
		if e != nil && e != io.EOF {
			return n, e
		}
		c.remainLenForLastFrame -= int64(n)
		return n, nil
	}

	h, e := c.r.NextFrame()
	if e != nil {
		return 0, e
	}
	if h.OpCode.IsControl() {
		if h.OpCode == ws.OpClose {
			c.readyState.Store(StateClosing)
			return 0, io.EOF
		}
		return c.Read(p)
	}
	if h.OpCode != ws.OpBinary && h.OpCode != ws.OpContinuation {
		return 0, ErrUnexpectedOpCode
	}

	c.remainLenForLastFrame = h.Length

	n, e := c.r.Read(p)
	c.remainLenForLastFrame -= int64(n)
	if e != nil && e != io.EOF {
		return n, e
	}
	return n, nil
}

// Write sends p as a single binary frame.
func (c *Conn) Write(p []byte) (int, error) {
	if err := wsutil.WriteServerBinary(c.Conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadyState reports the current WebSocket state (OPEN/CLOSING/CLOSED).
func (c *Conn) ReadyState() int32 { return c.readyState.Load() }

// SafeClose closes the underlying connection at most once and is a
// no-op if the state is already CLOSED. It is idempotent by design so
// that both bridge directions may call it on fatal error without
// coordination.
func (c *Conn) SafeClose() error {
	prev := c.readyState.Swap(StateClosed)
	if prev == StateClosed {
		return nil
	}
	return c.Conn.Close()
}

// Close implements net.Conn by delegating to SafeClose.
func (c *Conn) Close() error { return c.SafeClose() }
