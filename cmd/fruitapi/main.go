// Command fruitapi serves the fruit catalogue HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/config"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/httpapi"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/internal/bootstrap"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fruitapi:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	log, err := telemetry.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "fruitapi", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer flush(log, "tracing", shutdownTracing)

	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer flush(log, "stores", stores.Close)

	svc, err := stores.Service(cfg, log)
	if err != nil {
		return err
	}
	srv := httpapi.New(svc, httpapi.Options{
		Logger:     log,
		Version:    version,
		CORSOrigin: cfg.CORSOrigin,
	})
	return httpapi.ListenAndServe(ctx, cfg.Addr, srv.Handler(), log)
}

func flush(log *slog.Logger, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn("shutdown failed", "component", what, "error", err)
	}
}
