package tunnel

import (
	"errors"
	"io"

	"github.com/e1732a364fed/tunnelgw/internal/bufpool"
	"github.com/e1732a364fed/tunnelgw/internal/stats"
	"github.com/e1732a364fed/tunnelgw/internal/wsconn"
)

var ErrWebSocketClosed = errors.New("tunnel: websocket not open")

// BridgeRemoteToWS relays remote->client bytes onto ws, injecting
// prelude as the prefix of the first outbound frame only. It reports
// whether any byte was ever read from remote, which the controller uses
// to decide whether the one-shot retry fires.
func BridgeRemoteToWS(ws *wsconn.Conn, remote io.Reader, prelude []byte) (sawBytes bool, err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)

	first := true

	for {
		if ws.ReadyState() != wsconn.StateOpen {
			return sawBytes, ErrWebSocketClosed
		}

		n, rerr := remote.Read(buf)
		if n > 0 {
			sawBytes = true
			chunk := buf[:n]

			if first && len(prelude) > 0 {
				out := make([]byte, 0, len(prelude)+n)
				out = append(out, prelude...)
				out = append(out, chunk...)
				if _, werr := ws.Write(out); werr != nil {
					return sawBytes, werr
				}
			} else {
				if _, werr := ws.Write(chunk); werr != nil {
					return sawBytes, werr
				}
			}
			first = false
			stats.AddDown(int64(n))
		}

		if rerr != nil {
			if rerr == io.EOF {
				return sawBytes, nil
			}
			return sawBytes, rerr
		}
	}
}
