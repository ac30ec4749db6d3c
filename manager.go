package fruitgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// Manager is the graph store accessor used by the fruit service. It owns the
// Cypher for the Fruit→Benefit graph and delegates node persistence to a
// tag-driven Repository.
type Manager struct {
	runner DBRunner
	fruits *Repository[models.Fruit]
}

// NewManager creates a Manager executing its queries through runner.
func NewManager(runner DBRunner) (*Manager, error) {
	if runner == nil {
		return nil, errors.New("graph runner is required")
	}
	fruits, err := NewRepository[models.Fruit](runner)
	if err != nil {
		return nil, err
	}
	return &Manager{runner: runner, fruits: fruits}, nil
}

// Ping runs a trivial query and returns its rows.
func (m *Manager) Ping(ctx context.Context) ([]map[string]any, error) {
	return Execute(ctx, m.runner, pingQuery, nil)
}

// Benefits returns the sorted benefit names linked to the fruit. An unknown
// fruit has no benefits.
func (m *Manager) Benefits(ctx context.Context, fruitID string) ([]string, error) {
	rows, err := Execute(ctx, m.runner, benefitsQuery, map[string]any{"fruit_id": fruitID})
	if err != nil {
		return nil, fmt.Errorf("benefits of %q: %w", fruitID, err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return stringList(rows[0]["benefits"]), nil
}

// MergeFruit creates or updates the fruit node and merges a relationship to
// each benefit. Existing relationships are kept.
func (m *Manager) MergeFruit(ctx context.Context, fruit models.Fruit, benefits []string) error {
	if err := m.fruits.Save(ctx, &fruit); err != nil {
		return err
	}
	if len(benefits) == 0 {
		return nil
	}
	params := map[string]any{"fruit_id": fruit.FruitID, "benefits": benefits}
	if _, err := m.runner.Run(ctx, mergeBenefitsQuery, params); err != nil {
		return fmt.Errorf("merge benefits of %q: %w", fruit.FruitID, err)
	}
	return nil
}

// ReplaceBenefits makes benefits the exact benefit set of the fruit. It does
// nothing when the fruit node does not exist.
func (m *Manager) ReplaceBenefits(ctx context.Context, fruitID string, benefits []string) error {
	if benefits == nil {
		benefits = []string{}
	}
	params := map[string]any{"fruit_id": fruitID, "benefits": benefits}
	if _, err := m.runner.Run(ctx, replaceBenefitsQuery, params); err != nil {
		return fmt.Errorf("replace benefits of %q: %w", fruitID, err)
	}
	return nil
}

// RenameFruit refreshes the display names held on an existing fruit node.
// Nil names are left untouched; a missing node is not an error.
func (m *Manager) RenameFruit(ctx context.Context, fruitID string, nameVI, nameEN *string) error {
	if nameVI == nil && nameEN == nil {
		return nil
	}
	fruit, err := m.fruits.FindByID(ctx, fruitID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if nameVI != nil {
		fruit.NameVI = *nameVI
	}
	if nameEN != nil {
		fruit.NameEN = *nameEN
	}
	return m.fruits.Save(ctx, fruit)
}

// DeleteFruit detach-deletes the fruit node. Benefit nodes are left in place.
func (m *Manager) DeleteFruit(ctx context.Context, fruitID string) error {
	return m.fruits.Delete(ctx, fruitID)
}

// Stats counts fruit nodes and the distinct benefits reachable from them.
func (m *Manager) Stats(ctx context.Context) (models.GraphStats, error) {
	var stats models.GraphStats
	total, err := m.fruits.Count(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalFruits = total

	rows, err := Execute(ctx, m.runner, reachableBenefitsQuery, nil)
	if err != nil {
		return models.GraphStats{}, fmt.Errorf("count benefits: %w", err)
	}
	if len(rows) > 0 {
		stats.TotalBenefits = int64Value(rows[0]["total_benefits"])
	}
	return stats, nil
}

// TopFruits ranks fruits by their number of distinct benefits.
func (m *Manager) TopFruits(ctx context.Context, limit int) ([]models.FruitRank, error) {
	if limit <= 0 {
		return []models.FruitRank{}, nil
	}
	rows, err := Execute(ctx, m.runner, topFruitsQuery, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("top fruits: %w", err)
	}
	ranks := make([]models.FruitRank, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, models.FruitRank{
			FruitID:      stringValue(row["fruit_id"]),
			NameVI:       stringValue(row["name_vi"]),
			NameEN:       stringValue(row["name_en"]),
			BenefitCount: int64Value(row["benefit_count"]),
		})
	}
	return ranks, nil
}

// FruitIDs lists the fruit_id of every fruit node.
func (m *Manager) FruitIDs(ctx context.Context) ([]string, error) {
	rows, err := Execute(ctx, m.runner, fruitIDsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list fruit ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := strings.TrimSpace(stringValue(row["fruit_id"])); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// OrphanBenefits counts Benefit nodes with no incoming relationship and,
// when remove is set, deletes them.
func (m *Manager) OrphanBenefits(ctx context.Context, remove bool) (int64, error) {
	query := countOrphanBenefitsQuery
	if remove {
		query = deleteOrphanBenefitsQuery
	}
	rows, err := Execute(ctx, m.runner, query, nil)
	if err != nil {
		return 0, fmt.Errorf("orphan benefits: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return int64Value(rows[0]["orphans"]), nil
}

// FruitGraph returns the fruit node, its benefit relationships and benefit
// nodes. It returns ErrNotFound when the fruit node does not exist.
func (m *Manager) FruitGraph(ctx context.Context, fruitID string) (*models.GraphResult, error) {
	return m.FindGraph(ctx, fruitGraphQuery, map[string]any{"fruit_id": fruitID})
}

// FindGraph executes a query returning nodes and relationships and maps the
// rows into a de-duplicated GraphResult. Non-graph values, including nulls
// produced by OPTIONAL MATCH, are ignored.
//
// It returns ErrNotFound when the query yields zero records.
func (m *Manager) FindGraph(ctx context.Context, query string, params map[string]any) (*models.GraphResult, error) {
	eagerResult, err := m.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}

	graph := &models.GraphResult{
		Nodes: make([]*models.GraphNode, 0),
		Edges: make([]*models.Edge, 0),
	}
	seenNodeIDs := make(map[string]bool)
	seenEdgeIDs := make(map[string]bool)

	for _, record := range eagerResult.Records {
		for _, value := range record.Values {
			switch v := value.(type) {
			case neo4j.Node:
				if !seenNodeIDs[v.ElementId] {
					graph.Nodes = append(graph.Nodes, &models.GraphNode{
						ID:         v.ElementId,
						Labels:     v.Labels,
						Properties: v.Props,
					})
					seenNodeIDs[v.ElementId] = true
				}
			case neo4j.Relationship:
				if !seenEdgeIDs[v.ElementId] {
					graph.Edges = append(graph.Edges, &models.Edge{
						ID:         v.ElementId,
						Source:     v.StartElementId,
						Target:     v.EndElementId,
						Type:       v.Type,
						Properties: v.Props,
					})
					seenEdgeIDs[v.ElementId] = true
				}
			}
		}
	}
	return graph, nil
}
