// Package header decodes the first payload frame of a tunnel into a
// routing decision: which protocol, which remote address, and the
// residual bytes the remote must see first.
package header

import (
	"errors"
	"fmt"

	"github.com/e1732a364fed/tunnelgw/internal/netaddr"
)

// Protocol tags which of the three tunneling protocols produced a
// ParsedHeader.
type Protocol int

const (
	ProtocolTrojan Protocol = iota
	ProtocolVLESS
	ProtocolShadowsocks
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTrojan:
		return "trojan"
	case ProtocolVLESS:
		return "vless"
	case ProtocolShadowsocks:
		return "shadowsocks"
	default:
		return "unknown"
	}
}

// Sentinel error kinds the three decoders raise. The typed errors below
// carry the offending value in their message and Unwrap to these
// sentinels, so they stay distinguishable with errors.Is.
var (
	ErrUnknownProtocol    = errors.New("header: unknown protocol")
	ErrInvalidAddressType = errors.New("header: invalid address type")
	ErrEmptyAddress       = errors.New("header: empty address")
	ErrUnsupportedCommand = errors.New("header: unsupported command")
	ErrTrojanTooShort     = errors.New("header: trojan buffer too short")
	ErrUDPNotAllowed      = errors.New("header: udp only allowed on port 53")
)

// InvalidAddressType reports the offending atyp byte.
type InvalidAddressType struct{ Atyp byte }

func (e *InvalidAddressType) Error() string {
	return fmt.Sprintf("header: invalid address type 0x%02x", e.Atyp)
}
func (e *InvalidAddressType) Unwrap() error { return ErrInvalidAddressType }

// UnsupportedCommand reports the offending cmd byte.
type UnsupportedCommand struct{ Cmd byte }

func (e *UnsupportedCommand) Error() string {
	return fmt.Sprintf("header: unsupported command 0x%02x", e.Cmd)
}
func (e *UnsupportedCommand) Unwrap() error { return ErrUnsupportedCommand }

// UDPNotAllowed reports the offending port.
type UDPNotAllowed struct{ Port int }

func (e *UDPNotAllowed) Error() string {
	return fmt.Sprintf("header: udp not allowed on port %d", e.Port)
}
func (e *UDPNotAllowed) Unwrap() error { return ErrUDPNotAllowed }

// Parsed is the routing decision produced by decoding a tunnel's first
// chunk. It is a success-only value: decoders return (nil, error)
// instead of setting an "ok" flag alongside zero-valued fields.
type Parsed struct {
	Protocol Protocol
	Addr     netaddr.Addr
	IsUDP    bool

	// Residual is the slice of the first frame after the header. It
	// may be empty but never overlaps the header bytes.
	Residual []byte

	// ResponsePrelude is present only for VLESS: two bytes sent as a
	// prefix to the first remote->client frame.
	ResponsePrelude []byte
}

// BracketIPv6 reports whether this protocol renders IPv6 addresses with
// surrounding brackets (VLESS and Trojan do; Shadowsocks does not).
func (p Protocol) BracketIPv6() bool {
	return p == ProtocolVLESS || p == ProtocolTrojan
}

// Decode runs the decoder for protocol against buf and enforces the
// shared UDP restriction: the only UDP destination this gateway forwards
// is port 53 (DNS-over-TCP-to-the-remote is out of scope here, this
// gateway only ever dials TCP or DNS on 53).
func Decode(protocol Protocol, buf []byte) (*Parsed, error) {
	var (
		parsed *Parsed
		err    error
	)

	switch protocol {
	case ProtocolTrojan:
		parsed, err = DecodeTrojan(buf)
	case ProtocolVLESS:
		parsed, err = DecodeVLESS(buf)
	case ProtocolShadowsocks:
		parsed, err = DecodeShadowsocks(buf)
	default:
		return nil, ErrUnknownProtocol
	}
	if err != nil {
		return nil, err
	}

	if parsed.IsUDP && parsed.Addr.Port != 53 {
		return nil, &UDPNotAllowed{Port: parsed.Addr.Port}
	}

	return parsed, nil
}
