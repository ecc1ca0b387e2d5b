package header

import (
	"encoding/binary"
	"net"

	"github.com/e1732a364fed/tunnelgw/internal/netaddr"
)

const (
	vlessCmdTCP = 0x01
	vlessCmdUDP = 0x02

	vlessAtypIPv4   = 0x01
	vlessAtypDomain = 0x02
	vlessAtypIPv6   = 0x03
)

// DecodeVLESS decodes: version(1) | uuid(16) | optLen(1) | opts(optLen)
// | cmd(1) | port(2, BE) | atyp(1) | addr(var) | residual.
func DecodeVLESS(buf []byte) (*Parsed, error) {
	if len(buf) < 1+16+1 {
		return nil, ErrTruncated
	}

	version := buf[0]
	rest := buf[1+16:]

	optLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < optLen {
		return nil, ErrTruncated
	}
	rest = rest[optLen:]

	if len(rest) < 1 {
		return nil, ErrTruncated
	}
	cmd := rest[0]
	rest = rest[1:]

	var isUDP bool
	switch cmd {
	case vlessCmdTCP:
	case vlessCmdUDP:
		isUDP = true
	default:
		return nil, &UnsupportedCommand{Cmd: cmd}
	}

	if len(rest) < 2 {
		return nil, ErrTruncated
	}
	port := int(binary.BigEndian.Uint16(rest[:2]))
	rest = rest[2:]

	if len(rest) < 1 {
		return nil, ErrTruncated
	}
	atyp := rest[0]
	rest = rest[1:]

	var addr netaddr.Addr

	switch atyp {
	case vlessAtypIPv4:
		if len(rest) < net.IPv4len {
			return nil, ErrTruncated
		}
		addr.Kind = netaddr.KindIPv4
		addr.IP = net.IP(rest[:net.IPv4len])
		rest = rest[net.IPv4len:]

	case vlessAtypDomain:
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

	case vlessAtypIPv6:
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

	addr.Port = port

	return &Parsed{
		Protocol:        ProtocolVLESS,
		Addr:            addr,
		IsUDP:           isUDP,
		Residual:        rest,
		ResponsePrelude: []byte{version, 0x00},
	}, nil
}
