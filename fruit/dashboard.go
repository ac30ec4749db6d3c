package fruit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// Dashboard is the response of DashboardStats.
type Dashboard struct {
	Documents DocumentStats `json:"documents"`
	Graph     GraphSummary  `json:"graph"`
}

// DocumentStats are computed from the document store.
type DocumentStats struct {
	TotalFruits int64               `json:"total_fruits"`
	BySeason    []models.ValueCount `json:"by_season"`
	ByRegion    []models.ValueCount `json:"by_region"`
}

// GraphSummary is computed from the graph store. When any graph query
// fails, the counters are zero, TopFruits is empty and Error holds the
// failure.
type GraphSummary struct {
	TotalFruits   int64              `json:"total_fruits"`
	TotalBenefits int64              `json:"total_benefits"`
	TopFruits     []models.FruitRank `json:"top_fruits"`
	Error         string             `json:"error,omitempty"`
}

// Degraded reports whether the graph side failed.
func (g GraphSummary) Degraded() bool {
	return g.Error != ""
}

// DashboardStats aggregates both stores. A document store failure fails the
// call; a graph failure degrades the graph section only.
func (s *Service) DashboardStats(ctx context.Context) (dash *Dashboard, err error) {
	ctx, span := s.start(ctx, "DashboardStats")
	defer func() { finish(span, err) }()

	docs, err := s.documentStats(ctx)
	if err != nil {
		return nil, storeUnavailable("aggregate documents", err)
	}
	return &Dashboard{Documents: docs, Graph: s.graphSummary(ctx)}, nil
}

func (s *Service) documentStats(ctx context.Context) (DocumentStats, error) {
	var stats DocumentStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalFruits, err = s.docs.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.BySeason, err = s.docs.DistinctCounts(gctx, models.KeyHarvestSeason)
		return err
	})
	g.Go(func() (err error) {
		stats.ByRegion, err = s.docs.DistinctCounts(gctx, models.KeyRegions)
		return err
	})
	if err := g.Wait(); err != nil {
		return DocumentStats{}, err
	}
	if stats.BySeason == nil {
		stats.BySeason = []models.ValueCount{}
	}
	if stats.ByRegion == nil {
		stats.ByRegion = []models.ValueCount{}
	}
	return stats, nil
}

func (s *Service) graphSummary(ctx context.Context) GraphSummary {
	degraded := func(err error) GraphSummary {
		s.log.WarnContext(ctx, "graph statistics unavailable, returning zero counts", "error", err)
		return GraphSummary{TopFruits: []models.FruitRank{}, Error: err.Error()}
	}

	stats, err := s.graph.Stats(ctx)
	if err != nil {
		return degraded(err)
	}
	top, err := s.graph.TopFruits(ctx, s.topFruits)
	if err != nil {
		return degraded(err)
	}
	if top == nil {
		top = []models.FruitRank{}
	}
	return GraphSummary{
		TotalFruits:   stats.TotalFruits,
		TotalBenefits: stats.TotalBenefits,
		TopFruits:     top,
	}
}
