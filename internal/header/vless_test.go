package header

import (
	"errors"
	"testing"
)

func buildVLESSDomain(t *testing.T, domain string, port uint16, cmd byte) []byte {
	t.Helper()
	buf := []byte{0x00}                 // version
	buf = append(buf, make([]byte, 16)...) // uuid
	buf = append(buf, 0x00)             // optLen
	buf = append(buf, cmd)
	buf = append(buf, byte(port>>8), byte(port))
	buf = append(buf, 0x02, byte(len(domain)))
	buf = append(buf, domain...)
	return buf
}

func TestDecodeVLESSDomainTCP(t *testing.T) {
	buf := buildVLESSDomain(t, "foo", 443, vlessCmdTCP)
	buf = append(buf, "PAY"...)

	p, err := DecodeVLESS(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Addr.Text(true) != "foo" {
		t.Fatalf("addr = %q, want foo", p.Addr.Text(true))
	}
	if p.Addr.Port != 443 {
		t.Fatalf("port = %d, want 443", p.Addr.Port)
	}
	if string(p.Residual) != "PAY" {
		t.Fatalf("residual = %q, want PAY", p.Residual)
	}
	if len(p.ResponsePrelude) != 2 || p.ResponsePrelude[1] != 0x00 {
		t.Fatalf("responsePrelude = %v, want {version, 0}", p.ResponsePrelude)
	}
}

func TestDecodeVLESSUnsupportedCmd(t *testing.T) {
	buf := buildVLESSDomain(t, "foo", 443, 0x05)
	_, err := DecodeVLESS(buf)
	var uc *UnsupportedCommand
	if !errors.As(err, &uc) || uc.Cmd != 0x05 {
		t.Fatalf("expected UnsupportedCommand(5), got %v", err)
	}
}

func TestDecodeVLESSIPv6Zero(t *testing.T) {
	buf := []byte{0x00}
	buf = append(buf, make([]byte, 16)...)
	buf = append(buf, 0x00, vlessCmdTCP, 0x01, 0xBB, vlessAtypIPv6)
	buf = append(buf, make([]byte, 16)...)

	p, err := DecodeVLESS(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Addr.Text(true) != "[0:0:0:0:0:0:0:0]" {
		t.Fatalf("addr = %q, want [0:0:0:0:0:0:0:0]", p.Addr.Text(true))
	}
}
