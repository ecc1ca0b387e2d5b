// Package config loads the gateway's process configuration.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// GatewayConfig is the TOML-backed configuration for the gateway process.
type GatewayConfig struct {
	ListenAddr string `toml:"listen"`
	PathPrefix string `toml:"path_prefix"`

	DNSServerAddress string `toml:"dns_server_address"`
	DNSServerPort    int    `toml:"dns_server_port"`

	DialTimeout         duration `toml:"dial_timeout"`
	UpstreamDialTimeout duration `toml:"upstream_dial_timeout"`
}

// duration lets the TOML file spell timeouts as "5s" instead of nanoseconds.
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *GatewayConfig {
	return &GatewayConfig{
		ListenAddr:          ":8080",
		PathPrefix:          "/Free-VPN-Geo-Project/",
		DNSServerAddress:    "8.8.8.8",
		DNSServerPort:       53,
		DialTimeout:         duration{5 * time.Second},
		UpstreamDialTimeout: duration{5 * time.Second},
	}
}

// Load reads a TOML config file and layers environment-variable
// overrides for DNS_SERVER_ADDRESS/DNS_SERVER_PORT on top, per the
// gateway's documented external interface. path == "" returns defaults.
func Load(path string) (*GatewayConfig, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *GatewayConfig) {
	if v := os.Getenv("DNS_SERVER_ADDRESS"); v != "" {
		cfg.DNSServerAddress = v
	}
	if v := os.Getenv("DNS_SERVER_PORT"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.DNSServerPort = d
		}
	}
}

func (c *GatewayConfig) DNSServerTCPAddr() string {
	return c.DNSServerAddress + ":" + strconv.Itoa(c.DNSServerPort)
}

func (c *GatewayConfig) DialTimeoutDuration() time.Duration         { return c.DialTimeout.Duration }
func (c *GatewayConfig) UpstreamDialTimeoutDuration() time.Duration { return c.UpstreamDialTimeout.Duration }
