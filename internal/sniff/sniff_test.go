package sniff

import (
	"testing"

	guuid "github.com/google/uuid"

	"github.com/e1732a364fed/tunnelgw/internal/header"
)

func TestProtocolTrojan(t *testing.T) {
	buf := make([]byte, 62)
	buf[56], buf[57] = 0x0D, 0x0A
	buf[58] = 0x01
	buf[59] = 0x01
	if got := Protocol(buf); got != header.ProtocolTrojan {
		t.Fatalf("got %v, want trojan", got)
	}
}

func TestProtocolVLESS(t *testing.T) {
	buf := make([]byte, 20)
	id, err := guuid.NewRandom() // v4
	if err != nil {
		t.Fatal(err)
	}
	idBytes, _ := id.MarshalBinary()
	copy(buf[1:17], idBytes)
	if got := Protocol(buf); got != header.ProtocolVLESS {
		t.Fatalf("got %v, want vless", got)
	}
}

func TestProtocolShadowsocksFallback(t *testing.T) {
	buf := []byte{0x01, 1, 2, 3, 4, 0, 80}
	if got := Protocol(buf); got != header.ProtocolShadowsocks {
		t.Fatalf("got %v, want shadowsocks", got)
	}
}

func TestProtocolTrojanRequiresFullMarker(t *testing.T) {
	buf := make([]byte, 62)
	buf[56], buf[57] = 0x0D, 0x0A
	buf[58] = 0x02 // not in {0x01,0x03,0x7F}
	buf[59] = 0x01
	if got := Protocol(buf); got == header.ProtocolTrojan {
		t.Fatal("should not classify as trojan with invalid cmd marker byte")
	}
}
