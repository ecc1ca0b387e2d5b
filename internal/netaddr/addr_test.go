package netaddr

import (
	"net"
	"testing"
)

func TestTextIPv4(t *testing.T) {
	a := Addr{Kind: KindIPv4, IP: net.ParseIP("10.0.0.1").To4()}
	if a.Text(false) != "10.0.0.1" {
		t.Fatalf("got %q", a.Text(false))
	}
}

func TestTextIPv6ZeroNoBrackets(t *testing.T) {
	a := Addr{Kind: KindIPv6, IP: make(net.IP, 16)}
	if got := a.Text(false); got != "0:0:0:0:0:0:0:0" {
		t.Fatalf("got %q, want 0:0:0:0:0:0:0:0", got)
	}
}

func TestTextIPv6ZeroBracketed(t *testing.T) {
	a := Addr{Kind: KindIPv6, IP: make(net.IP, 16)}
	if got := a.Text(true); got != "[0:0:0:0:0:0:0:0]" {
		t.Fatalf("got %q, want [0:0:0:0:0:0:0:0]", got)
	}
}

func TestTextDomain(t *testing.T) {
	a := Addr{Kind: KindDomain, Name: "example.org"}
	if a.Text(true) != "example.org" {
		t.Fatalf("got %q", a.Text(true))
	}
}

func TestHostPort(t *testing.T) {
	a := Addr{Kind: KindDomain, Name: "example.org", Port: 443}
	if got := a.HostPort(false); got != "example.org:443" {
		t.Fatalf("got %q", got)
	}
}
