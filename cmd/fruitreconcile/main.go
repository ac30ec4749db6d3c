// Command fruitreconcile compares the document store with the graph and
// prints the drift report as JSON. With -repair it also fixes the drift.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/config"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/fruit"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/internal/bootstrap"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fruitreconcile:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("fruitreconcile", flag.ContinueOnError)
	repair := fs.Bool("repair", false, "write missing nodes and remove orphans instead of only reporting them")
	cfg, err := config.Parse(fs, os.Args[1:])
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stores.Close(closeCtx)
	}()

	svc, err := stores.Service(cfg, log)
	if err != nil {
		return err
	}
	report, err := svc.Reconcile(ctx, fruit.ReconcileOptions{Repair: *repair})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.InSync() && !*repair {
		log.Warn("stores have drifted; rerun with -repair to fix")
	}
	return nil
}
