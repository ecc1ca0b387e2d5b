// Package gateway wires the HTTP listener, path matching, and
// WebSocket upgrade into the tunnel package's per-connection state
// machine.
package gateway

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/e1732a364fed/tunnelgw/internal/config"
	"github.com/e1732a364fed/tunnelgw/internal/tunnel"
	"github.com/e1732a364fed/tunnelgw/internal/wsconn"
)

// Server is the gateway's HTTP entrypoint. It owns its own net/http
// Server rather than assuming a hosting runtime terminates TLS in
// front of it.
type Server struct {
	cfg *config.GatewayConfig
	log *zap.Logger

	pathPattern *regexp.Regexp
	httpServer  *http.Server
}

// New builds a Server bound to cfg.ListenAddr, matching requests whose
// path is cfg.PathPrefix followed by a UpstreamHint-shaped suffix.
func New(cfg *config.GatewayConfig, log *zap.Logger) *Server {
	prefix := strings.TrimSuffix(cfg.PathPrefix, "/")
	pattern := tunnel.NewPathPattern(prefix)

	s := &Server{
		cfg:         cfg,
		log:         log,
		pathPattern: pattern,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: http.HandlerFunc(s.handle),
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown is called or a
// fatal listener error occurs.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops accepting new connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	m := s.pathPattern.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	hint := tunnel.ParseUpstreamHint(m[1])

	wsc, _, err := wsconn.Upgrade(w, r)
	if err != nil {
		if ce := s.log.Check(zap.WarnLevel, "websocket upgrade failed"); ce != nil {
			ce.Write(zap.Error(err))
		}
		return
	}

	tcfg := tunnel.Config{
		DNSServerAddr:       s.cfg.DNSServerTCPAddr(),
		DialTimeout:         durationOrDefault(s.cfg.DialTimeoutDuration(), 5*time.Second),
		UpstreamDialTimeout: durationOrDefault(s.cfg.UpstreamDialTimeoutDuration(), 5*time.Second),
	}

	ctrl := tunnel.New(wsc, hint, tcfg, s.log)
	go func() {
		if err := ctrl.Run(); err != nil {
			if ce := s.log.Check(zap.DebugLevel, "tunnel ended"); ce != nil {
				ce.Write(zap.Error(err))
			}
		}
	}()
}

func durationOrDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
