package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/e1732a364fed/tunnelgw/internal/config"
	"github.com/e1732a364fed/tunnelgw/internal/gateway"
	"github.com/e1732a364fed/tunnelgw/internal/stats"
	"github.com/e1732a364fed/tunnelgw/internal/wlog"
)

const version = "tunnelgw dev"

var (
	configFileName string
	cmdPrintVer    bool
)

func init() {
	flag.StringVar(&configFileName, "c", "", "config file name (toml); empty uses built-in defaults")
	flag.BoolVar(&cmdPrintVer, "version", false, "print version and exit")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if cmdPrintVer {
		fmt.Println(version)
		return 0
	}

	wlog.Init()
	defer wlog.L.Sync()

	cfg, err := config.Load(configFileName)
	if err != nil {
		if ce := wlog.CanError("failed to load config"); ce != nil {
			ce.Write(zap.Error(err))
		}
		return 1
	}

	srv := gateway.New(cfg, wlog.L)

	statsStop := make(chan struct{})
	go stats.RunLogger(wlog.L, 30*time.Second, statsStop)

	errCh := make(chan error, 1)
	go func() {
		if ce := wlog.CanInfo("gateway listening"); ce != nil {
			ce.Write(zap.String("addr", cfg.ListenAddr), zap.String("path_prefix", cfg.PathPrefix))
		}
		errCh <- srv.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if ce := wlog.CanError("gateway listener stopped"); ce != nil {
			ce.Write(zap.Error(err))
		}
		return 1
	case <-osSignals:
		if ce := wlog.CanInfo("got close signal, shutting down"); ce != nil {
			ce.Write()
		}
	}

	close(statsStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		if ce := wlog.CanError("graceful shutdown failed"); ce != nil {
			ce.Write(zap.Error(err))
		}
		return 1
	}
	return 0
}
