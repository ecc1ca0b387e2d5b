package tunnel

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/e1732a364fed/tunnelgw/internal/stats"
	"github.com/e1732a364fed/tunnelgw/internal/wsconn"
)

// DialDNS opens a TCP connection to the configured recursive resolver.
// Only reachable once a tunnel has been classified isUDP && port == 53.
func DialDNS(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}

// WriteDNSQuery forwards chunk to the resolver connection verbatim.
// Chunks are never concatenated: each one the client sends while in the
// DNS phase is written as its own TCP write.
func WriteDNSQuery(conn net.Conn, chunk []byte) error {
	_, err := conn.Write(chunk)
	if err != nil {
		return err
	}
	stats.AddUp(int64(len(chunk)))
	return nil
}

// LogDNSQuery unpacks the DNS-over-TCP-framed chunk (2-byte length
// prefix then message) purely for logging; it never alters what
// WriteDNSQuery forwards. Failure to unpack is not an error worth
// surfacing to the tunnel, only worth a debug line.
func LogDNSQuery(log *zap.Logger, chunk []byte) {
	ce := log.Check(zap.DebugLevel, "dns query")
	if ce == nil {
		return
	}
	if len(chunk) < 2 {
		return
	}
	msgLen := binary.BigEndian.Uint16(chunk[:2])
	if int(msgLen) > len(chunk)-2 {
		return
	}
	msg := new(dns.Msg)
	if err := msg.Unpack(chunk[2 : 2+int(msgLen)]); err != nil {
		return
	}
	if len(msg.Question) == 0 {
		return
	}
	ce.Write(zap.String("qname", msg.Question[0].Name))
}

// BridgeDNSReplies streams resolver replies back to ws, injecting
// prelude as the prefix of the first reply frame. Shadowsocks-over-DNS
// carries no prelude (nil), but VLESS-over-DNS still owes the client its
// version-ack pair here same as the TCP path.
func BridgeDNSReplies(ws *wsconn.Conn, resolver net.Conn, prelude []byte) (bool, error) {
	return BridgeRemoteToWS(ws, resolver, prelude)
}
