package tunnel

import (
	"bytes"
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"

	"github.com/e1732a364fed/tunnelgw/internal/wsconn"
)

// TestBridgeDNSRepliesCarriesPrelude verifies that BridgeDNSReplies
// forwards a non-nil prelude, the way runDNS must for VLESS-over-DNS to
// carry its mandatory version-ack pair (spec.md §4.5).
func TestBridgeDNSRepliesCarriesPrelude(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	ws := wsconn.New(server, nil)

	resolver, resolverWrite := net.Pipe()
	defer resolver.Close()

	prelude := []byte{0x00, 0x00}

	done := make(chan struct{})
	go func() {
		BridgeDNSReplies(ws, resolver, prelude)
		close(done)
	}()

	answer := []byte{0x01, 0x02, 0x03}
	if _, err := resolverWrite.Write(answer); err != nil {
		t.Fatalf("write to resolver pipe: %v", err)
	}
	resolverWrite.Close()

	got, err := wsutil.ReadServerBinary(client)
	if err != nil {
		t.Fatalf("read server frame: %v", err)
	}

	want := append(append([]byte{}, prelude...), answer...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}

	<-done
}
