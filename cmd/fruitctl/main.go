// Command fruitctl inspects the fruit graph directly.
//
// Usage:
//
//	fruitctl [flags] ping
//	fruitctl [flags] stats
//	fruitctl [flags] top [n]
//	fruitctl [flags] benefits <fruit_id>
//	fruitctl [flags] graph <fruit_id>
//
// Connection settings come from the same environment variables as fruitapi.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/config"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

type graphReader interface {
	Ping(ctx context.Context) ([]map[string]any, error)
	Stats(ctx context.Context) (models.GraphStats, error)
	TopFruits(ctx context.Context, limit int) ([]models.FruitRank, error)
	Benefits(ctx context.Context, fruitID string) ([]string, error)
	FruitGraph(ctx context.Context, fruitID string) (*models.GraphResult, error)
}

var errUsage = errors.New("usage: fruitctl [flags] ping|stats|top [n]|benefits <fruit_id>|graph <fruit_id>")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fruitctl:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("fruitctl", flag.ContinueOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec, err := fruitgraph.NewNeo4jExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, cfg.StoreTimeout)
	if err != nil {
		return err
	}
	defer exec.Close(context.Background())
	if err := exec.Verify(ctx); err != nil {
		return fmt.Errorf("could not connect to database %q: %w", cfg.Neo4jDatabase, err)
	}

	manager, err := fruitgraph.NewManager(exec)
	if err != nil {
		return err
	}
	return dispatch(ctx, manager, fs.Args(), os.Stdout)
}

// dispatch runs one subcommand and writes its result to out as indented JSON.
func dispatch(ctx context.Context, graph graphReader, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var (
		result any
		err    error
	)
	switch cmd, rest := args[0], args[1:]; cmd {
	case "ping":
		result, err = graph.Ping(ctx)
	case "stats":
		result, err = graph.Stats(ctx)
	case "top":
		limit := 5
		if len(rest) > 0 {
			if limit, err = strconv.Atoi(rest[0]); err != nil || limit < 1 {
				return fmt.Errorf("top: invalid count %q", rest[0])
			}
		}
		result, err = graph.TopFruits(ctx, limit)
	case "benefits":
		if len(rest) != 1 {
			return errUsage
		}
		result, err = graph.Benefits(ctx, rest[0])
	case "graph":
		if len(rest) != 1 {
			return errUsage
		}
		result, err = graph.FruitGraph(ctx, rest[0])
		if errors.Is(err, fruitgraph.ErrNotFound) {
			return fmt.Errorf("fruit %q not found in graph", rest[0])
		}
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
