// Package bootstrap opens the stores named by a config.Config and builds the
// fruit service the binaries share.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/config"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/docstore"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/fruit"
)

// Stores holds the opened backends. Close releases every connection.
type Stores struct {
	Docs  fruit.DocumentStore
	Graph *fruitgraph.Manager

	closers []func(context.Context) error
}

// Open connects to the document store selected by cfg.DocStore and to Neo4j.
// Both are verified before Open returns.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*Stores, error) {
	s := &Stores{}

	docs, err := s.openDocs(ctx, cfg, log)
	if err != nil {
		return nil, errors.Join(err, s.Close(context.Background()))
	}
	s.Docs = docs

	exec, err := fruitgraph.NewNeo4jExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, cfg.StoreTimeout)
	if err != nil {
		return nil, errors.Join(err, s.Close(context.Background()))
	}
	s.closers = append(s.closers, exec.Close)
	if err := exec.Verify(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("could not connect to neo4j database %q: %w", cfg.Neo4jDatabase, err), s.Close(context.Background()))
	}
	log.Info("connected to neo4j", "uri", cfg.Neo4jURI, "database", cfg.Neo4jDatabase)

	s.Graph, err = fruitgraph.NewManager(exec)
	if err != nil {
		return nil, errors.Join(err, s.Close(context.Background()))
	}
	return s, nil
}

func (s *Stores) openDocs(ctx context.Context, cfg config.Config, log *slog.Logger) (fruit.DocumentStore, error) {
	if strings.EqualFold(cfg.DocStore, "memory") {
		log.Warn("using in-memory document store; records are lost on exit")
		return docstore.NewMemory(), nil
	}

	client, err := docstore.Connect(ctx, cfg.MongoURI, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, client.Disconnect)

	store := docstore.NewMongo(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection), cfg.StoreTimeout)
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	log.Info("connected to mongo", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
	return store, nil
}

// Service builds the fruit service over the opened stores.
func (s *Stores) Service(cfg config.Config, log *slog.Logger) (*fruit.Service, error) {
	return fruit.New(s.Docs, s.Graph, fruit.Options{
		Logger:            log,
		SearchConcurrency: cfg.SearchConcurrency,
		ReconcileRate:     cfg.ReconcileRate,
	})
}

// Close releases the stores in reverse order of opening.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
