package wsconn

import (
	"errors"
	"net/http"

	"github.com/gobwas/ws"

	"github.com/e1732a364fed/tunnelgw/internal/earlydata"
)

var ErrUnexpectedOpCode = errors.New("wsconn: frame opcode is neither binary nor continuation")

// Upgrade performs the WebSocket handshake for an inbound HTTP request
// already matched to the gateway's path, using gobwas/ws's net/http
// integration (which hijacks the connection itself, unlike the raw
// ws.Upgrader the teacher's TCP-listener transport uses in
// advLayer/ws/server.go). Early data is extracted from the
// Sec-WebSocket-Protocol header the same way: gobwas hands each
// negotiated protocol token to Protocol, which here treats the whole
// token as base64url early-data rather than a real subprotocol name.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, []byte, error) {
	var early []byte
	var earlyErr error

	upgrader := ws.HTTPUpgrader{
		Protocol: func(proto string) bool {
			decoded, err := earlydata.Decode(proto)
			if err != nil {
				earlyErr = err
				return false
			}
			early = decoded
			return true
		},
	}

	conn, _, _, err := upgrader.Upgrade(r, w)
	if err != nil {
		return nil, nil, err
	}
	if earlyErr != nil {
		conn.Close()
		return nil, nil, earlyErr
	}

	return New(conn, early), early, nil
}
