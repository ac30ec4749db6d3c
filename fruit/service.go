// Package fruit implements the fruit catalogue operations on top of a
// document store and a graph store. Every write is mirrored into both stores
// under the same fruit_id and every read merges both sides.
//
// The two stores are not written transactionally. A write that fails on the
// second store leaves the first one changed; the failure is returned as
// CodeStoreUnavailable, logged as a divergence, and Reconcile can repair it.
package fruit

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

const (
	defaultSearchConcurrency = 8
	defaultTopFruits         = 5
)

// DocumentStore is the document side of the catalogue.
type DocumentStore interface {
	FindByKeyword(ctx context.Context, keyword string) ([]models.Record, error)
	FindByID(ctx context.Context, fruitID string) (models.Record, error)
	FindAll(ctx context.Context) ([]models.Record, error)
	Insert(ctx context.Context, record models.Record) error
	UpdateFields(ctx context.Context, fruitID string, fields map[string]any) error
	UnsetFields(ctx context.Context, fruitID string, keys ...string) error
	Delete(ctx context.Context, fruitID string) error
	Count(ctx context.Context) (int64, error)
	DistinctCounts(ctx context.Context, field string) ([]models.ValueCount, error)
}

// GraphStore is the graph side of the catalogue.
type GraphStore interface {
	Ping(ctx context.Context) ([]map[string]any, error)
	Benefits(ctx context.Context, fruitID string) ([]string, error)
	MergeFruit(ctx context.Context, fruit models.Fruit, benefits []string) error
	ReplaceBenefits(ctx context.Context, fruitID string, benefits []string) error
	RenameFruit(ctx context.Context, fruitID string, nameVI, nameEN *string) error
	DeleteFruit(ctx context.Context, fruitID string) error
	Stats(ctx context.Context) (models.GraphStats, error)
	TopFruits(ctx context.Context, limit int) ([]models.FruitRank, error)
	FruitIDs(ctx context.Context) ([]string, error)
	OrphanBenefits(ctx context.Context, remove bool) (int64, error)
	FruitGraph(ctx context.Context, fruitID string) (*models.GraphResult, error)
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	Logger *slog.Logger
	// SearchConcurrency bounds concurrent benefit lookups in Search.
	SearchConcurrency int
	// TopFruits is the size of the dashboard ranking.
	TopFruits int
	// ReconcileRate caps graph writes per second during Reconcile.
	// Zero or negative means unlimited.
	ReconcileRate float64
}

// Service is the fan-out core. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	docs   DocumentStore
	graph  GraphStore
	log    *slog.Logger
	tracer trace.Tracer

	searchConcurrency int
	topFruits         int
	reconcileRate     float64
}

// New returns a Service over the two stores.
func New(docs DocumentStore, graph GraphStore, opts Options) (*Service, error) {
	if docs == nil {
		return nil, errors.New("document store is required")
	}
	if graph == nil {
		return nil, errors.New("graph store is required")
	}
	s := &Service{
		docs:              docs,
		graph:             graph,
		log:               opts.Logger,
		tracer:            otel.Tracer("github.com/saulfrancisco-ruizacevedo/fruitgraph/fruit"),
		searchConcurrency: opts.SearchConcurrency,
		topFruits:         opts.TopFruits,
		reconcileRate:     opts.ReconcileRate,
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.searchConcurrency <= 0 {
		s.searchConcurrency = defaultSearchConcurrency
	}
	if s.topFruits <= 0 {
		s.topFruits = defaultTopFruits
	}
	return s, nil
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "fruit."+name, trace.WithAttributes(attrs...))
}

// finish records err on the span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
