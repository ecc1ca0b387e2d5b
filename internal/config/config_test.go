package config

import (
	"os"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddr == "" || cfg.PathPrefix == "" {
		t.Fatal("defaults should be non-empty")
	}
	if cfg.DNSServerTCPAddr() != "8.8.8.8:53" {
		t.Fatalf("got %q", cfg.DNSServerTCPAddr())
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DialTimeoutDuration().Seconds() != 5 {
		t.Fatalf("got %v", cfg.DialTimeoutDuration())
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("DNS_SERVER_ADDRESS", "1.1.1.1")
	os.Setenv("DNS_SERVER_PORT", "5353")
	defer os.Unsetenv("DNS_SERVER_ADDRESS")
	defer os.Unsetenv("DNS_SERVER_PORT")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DNSServerTCPAddr() != "1.1.1.1:5353" {
		t.Fatalf("got %q", cfg.DNSServerTCPAddr())
	}
}
