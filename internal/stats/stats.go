// Package stats tracks process-wide gateway counters. It feeds only a
// periodic log line, never an external exporter: deep observability is
// out of scope for the core.
package stats

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Counters are the gateway's in-process metrics. They are not consulted
// by any routing decision.
type Counters struct {
	ActiveTunnels int64
	TotalTunnels  int64
	BytesUp       int64
	BytesDown     int64
}

var (
	activeTunnels int64
	totalTunnels  int64
	bytesUp       int64
	bytesDown     int64
)

// TunnelOpened records the start of a new tunnel.
func TunnelOpened() {
	atomic.AddInt64(&activeTunnels, 1)
	atomic.AddInt64(&totalTunnels, 1)
}

// TunnelClosed records the end of a tunnel.
func TunnelClosed() {
	atomic.AddInt64(&activeTunnels, -1)
}

// AddUp records n bytes relayed client->remote.
func AddUp(n int64) { atomic.AddInt64(&bytesUp, n) }

// AddDown records n bytes relayed remote->client.
func AddDown(n int64) { atomic.AddInt64(&bytesDown, n) }

// Snapshot reads all counters atomically relative to each other's cost
// (each field itself is read atomically; the group is not a single
// transaction, which is fine for a log line).
func Snapshot() Counters {
	return Counters{
		ActiveTunnels: atomic.LoadInt64(&activeTunnels),
		TotalTunnels:  atomic.LoadInt64(&totalTunnels),
		BytesUp:       atomic.LoadInt64(&bytesUp),
		BytesDown:     atomic.LoadInt64(&bytesDown),
	}
}

// RunLogger emits a counters snapshot to log every interval until stop
// is closed.
func RunLogger(log *zap.Logger, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if ce := log.Check(zap.InfoLevel, "gateway stats"); ce != nil {
				c := Snapshot()
				ce.Write(
					zap.Int64("active_tunnels", c.ActiveTunnels),
					zap.Int64("total_tunnels", c.TotalTunnels),
					zap.Int64("bytes_up", c.BytesUp),
					zap.Int64("bytes_down", c.BytesDown),
				)
			}
		}
	}
}
