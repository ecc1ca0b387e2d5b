// Package earlydata decodes the 0-RTT payload the client attaches to the
// WebSocket handshake via the Sec-WebSocket-Protocol header, following
// the xray/v2ray convention of stuffing base64 into that field since the
// WebSocket standard has no 0-RTT mechanism of its own.
package earlydata

import "encoding/base64"

// MaxLenBase64 bounds the header value gobwas/ws hands to the upgrader's
// Protocol callback; anything larger is rejected before it is even decoded.
const MaxLenBase64 = 2732

// Decode turns the raw Sec-WebSocket-Protocol header value into the
// early-data bytes it encodes. An absent header (empty value) yields an
// empty, non-nil result with no error; a header present but not valid
// base64 is an error.
func Decode(headerValue string) ([]byte, error) {
	if headerValue == "" {
		return []byte{}, nil
	}
	if len(headerValue) > MaxLenBase64 {
		return nil, ErrTooLong
	}
	return base64.RawURLEncoding.DecodeString(headerValue)
}

var ErrTooLong = errTooLong{}

type errTooLong struct{}

func (errTooLong) Error() string { return "earlydata: header value exceeds max length" }
