// Package config loads process configuration from the environment, then
// lets command-line flags override it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the API server and the reconcile tool.
type Config struct {
	Addr string `env:"FRUIT_API_ADDR" envDefault:":5000"`

	// DocStore selects the document backend: "mongo" or "memory".
	DocStore        string `env:"FRUIT_DOC_STORE" envDefault:"mongo"`
	MongoURI        string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"fruit_graph"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"fnodes_fruit_clear"`

	Neo4jURI      string `env:"NEO4J_URI" envDefault:"neo4j://localhost:7687"`
	Neo4jUser     string `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	Neo4jDatabase string `env:"NEO4J_DATABASE" envDefault:"neo4j"`

	// StoreTimeout bounds every document or graph call.
	StoreTimeout      time.Duration `env:"FRUIT_STORE_TIMEOUT" envDefault:"5s"`
	SearchConcurrency int           `env:"FRUIT_SEARCH_CONCURRENCY" envDefault:"8"`
	ReconcileRate     float64       `env:"FRUIT_RECONCILE_RATE" envDefault:"50"`

	CORSOrigin string `env:"FRUIT_CORS_ORIGIN" envDefault:"*"`

	LogLevel  string `env:"FRUIT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FRUIT_LOG_FORMAT" envDefault:"text"`

	// OTelEndpoint enables OTLP/HTTP tracing when set.
	OTelEndpoint string `env:"FRUIT_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Parse loads the environment, registers the flags that override it on fs
// and parses args.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	cfg, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DocStore, "doc-store", cfg.DocStore, "document store backend (mongo or memory)")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", cfg.StoreTimeout, "timeout for a single store call")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the process cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.DocStore) {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown document store %q", c.DocStore)
	}
	if c.StoreTimeout < 0 {
		return errors.New("store timeout must not be negative")
	}
	if c.SearchConcurrency < 1 {
		return errors.New("search concurrency must be at least 1")
	}
	return nil
}
