package header

import (
	"encoding/binary"
	"net"

	"github.com/e1732a364fed/tunnelgw/internal/netaddr"
)

const (
	trojanPreambleLen = 58 // 56-byte password hash + CRLF, already checked by the sniffer

	trojanCmdTCP = 0x01
	trojanCmdUDP = 0x03

	trojanAtypIPv4   = 0x01
	trojanAtypDomain = 0x03
	trojanAtypIPv6   = 0x04
)

// DecodeTrojan decodes a Trojan frame. The first 56 bytes are an opaque
// password hash and bytes 56-58 are the CRLF the sniffer already
// validated; this decoder starts at offset 58 with:
// cmd(1) | atyp(1) | addr(var) | port(2, BE) | CRLF(2) | residual.
func DecodeTrojan(buf []byte) (*Parsed, error) {
	if len(buf) < trojanPreambleLen {
		return nil, ErrTrojanTooShort
	}
	rest := buf[trojanPreambleLen:]

	if len(rest) < 6 {
		return nil, ErrTrojanTooShort
	}

	cmd := rest[0]
	rest = rest[1:]

	var isUDP bool
	switch cmd {
	case trojanCmdTCP:
	case trojanCmdUDP:
		isUDP = true
	default:
		return nil, &UnsupportedCommand{Cmd: cmd}
	}

	atyp := rest[0]
	rest = rest[1:]

	var addr netaddr.Addr

	switch atyp {
	case trojanAtypIPv4:
		if len(rest) < net.IPv4len {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindIPv4
		addr.IP = net.IP(rest[:net.IPv4len])
		rest = rest[net.IPv4len:]

	case trojanAtypDomain:
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

	case trojanAtypIPv6:
		if len(rest) < net.IPv6len {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindIPv6
		addr.IP = net.IP(rest[:net.IPv6len])
		rest = rest[net.IPv6len:]

	default:
		return nil, &InvalidAddressType{Atyp: atyp}
	}

	if addr.Text(true) == "" {
		return nil, ErrEmptyAddress
	}

	if len(rest) < 2+2 {
		return nil, ErrTrojanTooShort
	}
	port := int(binary.BigEndian.Uint16(rest[:2]))
	addr.Port = port
	rest = rest[2:]

	// rest[0:2] is the terminating CRLF; skip it unconditionally per the
	// wire format rather than re-validating bytes the sniffer implies.
	residual := rest[2:]

	return &Parsed{
		Protocol: ProtocolTrojan,
		Addr:     addr,
		IsUDP:    isUDP,
		Residual: residual,
	}, nil
}
