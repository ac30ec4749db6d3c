package fruit

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// ReconcileOptions controls Reconcile.
type ReconcileOptions struct {
	// Repair applies the fixes instead of only reporting drift.
	Repair bool
}

// ReconcileReport describes the drift between the two stores.
type ReconcileReport struct {
	Documents   int `json:"documents"`
	GraphFruits int `json:"graph_fruits"`
	// MissingInGraph lists records without a fruit node.
	MissingInGraph []string `json:"missing_in_graph"`
	// OrphanedInGraph lists fruit nodes without a record.
	OrphanedInGraph []string `json:"orphaned_in_graph"`
	// LegacyBenefits lists records still carrying a benefit list in the
	// document. Repair re-derives their graph relationships from it once and
	// then removes the list from the document.
	LegacyBenefits []string `json:"legacy_benefits"`
	// OrphanBenefits counts benefit nodes no fruit points to (removed on repair).
	OrphanBenefits int64 `json:"orphan_benefits"`
	Repaired       bool  `json:"repaired"`
}

// InSync reports whether no drift was found.
func (r *ReconcileReport) InSync() bool {
	return len(r.MissingInGraph) == 0 && len(r.OrphanedInGraph) == 0 &&
		len(r.LegacyBenefits) == 0 && r.OrphanBenefits == 0
}

// Reconcile compares document records with graph fruit nodes. The document
// store is the source of truth: on repair, missing nodes are merged, nodes
// without a record are detach-deleted and orphan benefits are removed.
// Graph writes are paced by the configured rate.
func (s *Service) Reconcile(ctx context.Context, opts ReconcileOptions) (report *ReconcileReport, err error) {
	ctx, span := s.start(ctx, "Reconcile", attribute.Bool("fruit.repair", opts.Repair))
	defer func() { finish(span, err) }()

	records, err := s.docs.FindAll(ctx)
	if err != nil {
		return nil, storeUnavailable("list documents", err)
	}
	graphIDs, err := s.graph.FruitIDs(ctx)
	if err != nil {
		return nil, storeUnavailable("list graph fruits", err)
	}

	report = &ReconcileReport{
		Documents:       len(records),
		GraphFruits:     len(graphIDs),
		MissingInGraph:  []string{},
		OrphanedInGraph: []string{},
		LegacyBenefits:  []string{},
	}

	inGraph := make(map[string]bool, len(graphIDs))
	for _, id := range graphIDs {
		inGraph[id] = true
	}
	inDocs := make(map[string]models.Record, len(records))
	legacy := make(map[string][]string)
	for _, rec := range records {
		id := rec.FruitID()
		if id == "" {
			s.log.WarnContext(ctx, "document without fruit_id skipped")
			continue
		}
		inDocs[id] = rec
		if !inGraph[id] {
			report.MissingInGraph = append(report.MissingInGraph, id)
		}
		benefits, present, err := benefitsOf(rec)
		if err != nil {
			s.log.WarnContext(ctx, "unreadable legacy benefit list skipped", "fruit_id", id, "error", err)
			continue
		}
		if present {
			legacy[id] = benefits
			report.LegacyBenefits = append(report.LegacyBenefits, id)
		}
	}
	for _, id := range graphIDs {
		if _, ok := inDocs[id]; !ok {
			report.OrphanedInGraph = append(report.OrphanedInGraph, id)
		}
	}
	sort.Strings(report.MissingInGraph)
	sort.Strings(report.OrphanedInGraph)
	sort.Strings(report.LegacyBenefits)

	if !opts.Repair {
		report.OrphanBenefits, err = s.graph.OrphanBenefits(ctx, false)
		if err != nil {
			return nil, storeUnavailable("count orphan benefits", err)
		}
		return report, nil
	}

	if err := s.repair(ctx, report, inDocs, legacy); err != nil {
		return report, err
	}
	report.OrphanBenefits, err = s.graph.OrphanBenefits(ctx, true)
	if err != nil {
		return report, storeUnavailable("remove orphan benefits", err)
	}
	report.Repaired = true
	s.log.InfoContext(ctx, "reconciliation repaired drift",
		"missing_in_graph", len(report.MissingInGraph),
		"orphaned_in_graph", len(report.OrphanedInGraph),
		"legacy_benefits", len(report.LegacyBenefits),
		"orphan_benefits", report.OrphanBenefits)
	return report, nil
}

func (s *Service) repair(ctx context.Context, report *ReconcileReport, docs map[string]models.Record, legacy map[string][]string) error {
	limit := rate.Inf
	if s.reconcileRate > 0 {
		limit = rate.Limit(s.reconcileRate)
	}
	limiter := rate.NewLimiter(limit, 1)

	missing := make(map[string]bool, len(report.MissingInGraph))
	for _, id := range report.MissingInGraph {
		missing[id] = true
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.graph.MergeFruit(ctx, docs[id].Fruit(), legacy[id]); err != nil {
			return storeUnavailable("merge missing fruit "+id, err)
		}
		if _, ok := legacy[id]; ok {
			if err := s.dropLegacyBenefits(ctx, id); err != nil {
				return err
			}
		}
	}
	for _, id := range report.LegacyBenefits {
		if missing[id] {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.graph.ReplaceBenefits(ctx, id, legacy[id]); err != nil {
			return storeUnavailable("re-derive benefits of "+id, err)
		}
		if err := s.dropLegacyBenefits(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range report.OrphanedInGraph {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.graph.DeleteFruit(ctx, id); err != nil {
			return storeUnavailable("delete orphan fruit "+id, err)
		}
	}
	return nil
}

// dropLegacyBenefits removes benefit lists from the document once the graph
// holds them, so later repairs cannot overwrite newer relationships.
func (s *Service) dropLegacyBenefits(ctx context.Context, fruitID string) error {
	if err := s.docs.UnsetFields(ctx, fruitID, benefitKeys...); err != nil {
		return storeUnavailable("clear legacy benefits of "+fruitID, err)
	}
	return nil
}
