package earlydata

import (
	"encoding/base64"
	"testing"
)

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello early data")
	encoded := base64.RawURLEncoding.EncodeToString(payload)

	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode("not-valid-base64!!!"); err == nil {
		t.Fatal("expected error for malformed base64")
	}
}

func TestDecodeTooLong(t *testing.T) {
	long := make([]byte, MaxLenBase64+1)
	for i := range long {
		long[i] = 'A'
	}
	if _, err := Decode(string(long)); err != ErrTooLong {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}
