// Package tunnel implements the per-connection state machine that
// drives one WebSocket<->remote session from its first chunk through
// close.
package tunnel

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/e1732a364fed/tunnelgw/internal/header"
	"github.com/e1732a364fed/tunnelgw/internal/sniff"
	"github.com/e1732a364fed/tunnelgw/internal/stats"
	"github.com/e1732a364fed/tunnelgw/internal/wsconn"
)

// Config carries the runtime settings a Controller needs; it is a
// narrow view of config.GatewayConfig kept dependency-free of the
// config package's TOML concerns.
type Config struct {
	DNSServerAddr       string
	DialTimeout         time.Duration
	UpstreamDialTimeout time.Duration
}

// Controller runs one tunnel's AwaitFirst -> Routed|DNS -> Closed
// lifecycle.
type Controller struct {
	ws     *wsconn.Conn
	hint   UpstreamHint
	cfg    Config
	log    *zap.Logger
	phase  Phase
	dialer func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// New builds a Controller for one accepted WebSocket connection. hint
// is the UpstreamHint parsed from the request path.
func New(ws *wsconn.Conn, hint UpstreamHint, cfg Config, log *zap.Logger) *Controller {
	return &Controller{
		ws:     ws,
		hint:   hint,
		cfg:    cfg,
		log:    log.With(zap.String("tunnel_id", uuid.NewString())),
		phase:  PhaseAwaitFirst,
		dialer: net.DialTimeout,
	}
}

// Run reads the first chunk from the WebSocket, routes the tunnel, and
// blocks until it closes. It always leaves both sockets closed exactly
// once before returning.
func (c *Controller) Run() error {
	defer c.ws.SafeClose()

	stats.TunnelOpened()
	defer stats.TunnelClosed()

	first := make([]byte, 64*1024)
	n, err := c.ws.Read(first)
	if err != nil {
		c.phase = PhaseClosed
		return err
	}
	first = first[:n]

	proto := sniff.Protocol(first)
	parsed, err := header.Decode(proto, first)
	if err != nil {
		c.phase = PhaseClosed
		if ce := c.log.Check(zap.WarnLevel, "header decode failed"); ce != nil {
			ce.Write(zap.String("protocol", proto.String()), zap.Error(err))
		}
		return err
	}

	if ce := c.log.Check(zap.InfoLevel, "tunnel routed"); ce != nil {
		ce.Write(
			zap.String("protocol", parsed.Protocol.String()),
			zap.String("addr", parsed.Addr.HostPort(false)),
			zap.Bool("is_udp", parsed.IsUDP),
		)
	}

	if parsed.IsUDP {
		c.phase = PhaseDNS
		return c.runDNS(parsed)
	}

	c.phase = PhaseRouted
	return c.runTCP(parsed)
}

func (c *Controller) runDNS(parsed *header.Parsed) error {
	conn, err := DialDNS(c.cfg.DNSServerAddr, c.cfg.DialTimeout)
	if err != nil {
		c.phase = PhaseClosed
		return err
	}
	defer conn.Close()

	LogDNSQuery(c.log, parsed.Residual)
	if err := WriteDNSQuery(conn, parsed.Residual); err != nil {
		c.phase = PhaseClosed
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := BridgeDNSReplies(c.ws, conn, parsed.ResponsePrelude)
		// Wake the client->resolver pump's pending Read once the resolver
		// has nothing left to say, the same way serveTCP unblocks its
		// client->remote pump; the DNS path has no retry to preserve the
		// websocket for, so this deadline is never reset.
		c.ws.SetReadDeadline(time.Now())
		return err
	})
	g.Go(func() error {
		return c.pumpClientToDNS(conn)
	})

	err = g.Wait()
	c.phase = PhaseClosed
	return err
}

// pumpClientToDNS forwards every subsequent client chunk to the DNS
// resolver connection, unmerged, one write per chunk, per §4.7.
func (c *Controller) pumpClientToDNS(conn net.Conn) error {
	buf := make([]byte, 64*1024)
	for {
		n, err := c.ws.Read(buf)
		if n > 0 {
			LogDNSQuery(c.log, buf[:n])
			if werr := WriteDNSQuery(conn, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			conn.Close()
			return nil
		}
	}
}

func (c *Controller) runTCP(parsed *header.Parsed) error {
	retry := NewRetryPolicy(c.hint)

	dialAddr := net.JoinHostPort(parsed.Addr.Text(false), strconv.Itoa(parsed.Addr.Port))
	remote, err := c.dialer("tcp", dialAddr, c.cfg.DialTimeout)
	if err != nil {
		c.phase = PhaseClosed
		return err
	}

	if err := c.serveTCP(remote, parsed); err != nil {
		remote.Close()

		if !errors.Is(err, errRemoteEmpty) {
			c.phase = PhaseClosed
			return err
		}

		hint, ok := retry.Take()
		if !ok {
			c.phase = PhaseClosed
			return err
		}

		host := hint.ResolveHost(parsed.Addr.Text(false))
		port := hint.ResolvePort(parsed.Addr.Port)
		retryAddr := net.JoinHostPort(host, strconv.Itoa(port))

		if ce := c.log.Check(zap.InfoLevel, "retrying via upstream hint"); ce != nil {
			ce.Write(zap.String("addr", retryAddr))
		}

		remote2, derr := c.dialer("tcp", retryAddr, c.cfg.UpstreamDialTimeout)
		if derr != nil {
			c.phase = PhaseClosed
			return derr
		}
		err = c.serveTCP(remote2, parsed)
		remote2.Close()
		c.phase = PhaseClosed
		return err
	}

	remote.Close()
	c.phase = PhaseClosed
	return nil
}

// serveTCP writes the residual bytes, then runs both bridge directions
// concurrently until either side closes or errors. It returns
// errRemoteEmpty only when the remote closed cleanly without ever
// sending a byte, so the caller can decide to retry; a remote read
// error is returned as-is and is not retry-eligible.
func (c *Controller) serveTCP(remote net.Conn, parsed *header.Parsed) error {
	if len(parsed.Residual) > 0 {
		if _, err := remote.Write(parsed.Residual); err != nil {
			return err
		}
		stats.AddUp(int64(len(parsed.Residual)))
	}

	var g errgroup.Group
	var sawBytes bool

	g.Go(func() error {
		var err error
		sawBytes, err = BridgeRemoteToWS(c.ws, remote, parsed.ResponsePrelude)
		// Wake the client->remote pump's pending Read once remote has
		// nothing left to say; the retry decision below still needs the
		// websocket itself open, so this stops the pump without closing it.
		c.ws.SetReadDeadline(time.Now())
		return err
	})
	g.Go(func() error {
		err := pumpClientToRemote(c.ws, remote)
		remote.Close()
		return err
	})

	err := g.Wait()
	c.ws.SetReadDeadline(time.Time{})
	// Only a clean remote EOF with zero bytes ever read is retry-eligible;
	// sawBytes can also be false because the bridge aborted on
	// ErrWebSocketClosed (the client's socket, not the remote, went away),
	// which must propagate as-is rather than spend the one-shot retry.
	if !sawBytes && err == nil {
		return errRemoteEmpty
	}
	return err
}

var errRemoteEmpty = errors.New("tunnel: remote closed with zero bytes")

// pumpClientToRemote returns nil on any read/write termination; the
// caller is solely responsible for closing remote afterward.
func pumpClientToRemote(ws *wsconn.Conn, remote net.Conn) error {
	buf := make([]byte, 64*1024)
	for {
		n, err := ws.Read(buf)
		if n > 0 {
			if _, werr := remote.Write(buf[:n]); werr != nil {
				return nil
			}
			stats.AddUp(int64(n))
		}
		if err != nil {
			return nil
		}
	}
}
