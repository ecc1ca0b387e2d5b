package header

import (
	"encoding/binary"
	"errors"
	"net"

	"github.com/e1732a364fed/tunnelgw/internal/netaddr"
)

const (
	ssAtypIPv4   = 0x01
	ssAtypDomain = 0x03
	ssAtypIPv6   = 0x04
)

// ErrTruncated means the frame ended before a required field could be
// read. It is not part of the spec's error taxonomy (which enumerates
// semantic decode failures) but is the only sane response to a frame
// that is simply too short for the atyp it declares.
var ErrTruncated = errors.New("header: frame truncated")

// DecodeShadowsocks decodes a Shadowsocks address header: atyp(1) |
// addr(var) | port(2, BE) | residual. There is no explicit command
// byte in Shadowsocks; UDP is inferred from port == 53.
func DecodeShadowsocks(buf []byte) (*Parsed, error) {
	if len(buf) < 1 {
		return nil, ErrTruncated
	}

	atyp := buf[0]
	rest := buf[1:]

	var addr netaddr.Addr

	switch atyp {
	case ssAtypIPv4:
		if len(rest) < net.IPv4len {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindIPv4
		addr.IP = net.IP(rest[:net.IPv4len])
		rest = rest[net.IPv4len:]

	case ssAtypDomain:
		if len(rest) < 1 {
			return nil, ErrTruncated
		}
		n := int(rest[0])
		rest = rest[1:]
		if len(rest) < n {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindDomain
		addr.Name = string(rest[:n])
		rest = rest[n:]

	case ssAtypIPv6:
		if len(rest) < net.IPv6len {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindIPv6
		addr.IP = net.IP(rest[:net.IPv6len])
		rest = rest[net.IPv6len:]

	default:
		return nil, &InvalidAddressType{Atyp: atyp}
	}

	if addr.Text(false) == "" {
		return nil, ErrEmptyAddress
	}

	if len(rest) < 2 {
		return nil, ErrTruncated
	}
	port := int(binary.BigEndian.Uint16(rest[:2]))
	addr.Port = port
	residual := rest[2:]

	return &Parsed{
		Protocol: ProtocolShadowsocks,
		Addr:     addr,
		IsUDP:    port == 53,
		Residual: residual,
	}, nil
}
