// Package sniff classifies the first payload frame of a tunnel as
// Trojan, VLESS, or Shadowsocks without consuming any bytes.
package sniff

import (
	"github.com/google/uuid"

	"github.com/e1732a364fed/tunnelgw/internal/header"
)

// Protocol runs the Trojan and VLESS fixed-shape tests against buf in
// order and returns the protocol whose marker matched. Shadowsocks has no magic
// bytes of its own and is the catch-all once Trojan and VLESS are ruled
// out, so this never fails to classify a non-empty frame.
func Protocol(buf []byte) header.Protocol {
	if looksLikeTrojan(buf) {
		return header.ProtocolTrojan
	}
	if looksLikeVLESS(buf) {
		return header.ProtocolVLESS
	}
	return header.ProtocolShadowsocks
}

// looksLikeTrojan checks for the CRLF that terminates the 56-byte
// password hash, followed by a plausible cmd/atyp pair.
func looksLikeTrojan(buf []byte) bool {
	if len(buf) < 62 {
		return false
	}
	if buf[56] != 0x0D || buf[57] != 0x0A {
		return false
	}
	switch buf[58] {
	case 0x01, 0x03, 0x7F:
	default:
		return false
	}
	switch buf[59] {
	case 0x01, 0x03, 0x04:
	default:
		return false
	}
	return true
}

// looksLikeVLESS checks whether bytes 1..17 have the shape of a UUIDv4:
// a syntactically valid UUID with version nibble 4 and the RFC 4122
// variant bits set. VLESS carries the UUID as raw bytes, which are
// loaded directly into a uuid.UUID and checked there; no dashed string
// is built.
func looksLikeVLESS(buf []byte) bool {
	if len(buf) < 17 {
		return false
	}
	id, err := uuid.FromBytes(buf[1:17])
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}
