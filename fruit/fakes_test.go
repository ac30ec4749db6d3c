package fruit

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/docstore"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

var errGraphDown = errors.New("graph unavailable")

// fakeGraph keeps the fruit/benefit graph in memory with MERGE semantics.
type fakeGraph struct {
	mu       sync.Mutex
	fruits   map[string]models.Fruit
	rels     map[string]map[string]bool
	benefits map[string]bool
	calls    int

	// fail makes the named method return errGraphDown.
	fail map[string]bool
	// failBenefitsFor makes Benefits fail for these fruit ids only.
	failBenefitsFor map[string]bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		fruits:          map[string]models.Fruit{},
		rels:            map[string]map[string]bool{},
		benefits:        map[string]bool{},
		fail:            map[string]bool{},
		failBenefitsFor: map[string]bool{},
	}
}

// enter locks the graph; callers unlock.
func (g *fakeGraph) enter(method string) error {
	g.mu.Lock()
	g.calls++
	if g.fail[method] {
		return errGraphDown
	}
	return nil
}

func (g *fakeGraph) Ping(context.Context) ([]map[string]any, error) {
	err := g.enter("Ping")
	defer g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []map[string]any{{"ok": int64(1)}}, nil
}

func (g *fakeGraph) Benefits(_ context.Context, fruitID string) ([]string, error) {
	err := g.enter("Benefits")
	defer g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if g.failBenefitsFor[fruitID] {
		return nil, errGraphDown
	}
	out := []string{}
	for name := range g.rels[fruitID] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (g *fakeGraph) MergeFruit(_ context.Context, fruit models.Fruit, benefits []string) error {
	err := g.enter("MergeFruit")
	defer g.mu.Unlock()
	if err != nil {
		return err
	}
	g.fruits[fruit.FruitID] = fruit
	if g.rels[fruit.FruitID] == nil {
		g.rels[fruit.FruitID] = map[string]bool{}
	}
	for _, b := range benefits {
		g.benefits[b] = true
		g.rels[fruit.FruitID][b] = true
	}
	return nil
}

func (g *fakeGraph) ReplaceBenefits(_ context.Context, fruitID string, benefits []string) error {
	err := g.enter("ReplaceBenefits")
	defer g.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := g.fruits[fruitID]; !ok {
		return nil
	}
	g.rels[fruitID] = map[string]bool{}
	for _, b := range benefits {
		g.benefits[b] = true
		g.rels[fruitID][b] = true
	}
	return nil
}

func (g *fakeGraph) RenameFruit(_ context.Context, fruitID string, nameVI, nameEN *string) error {
	err := g.enter("RenameFruit")
	defer g.mu.Unlock()
	if err != nil {
		return err
	}
	f, ok := g.fruits[fruitID]
	if !ok {
		return nil
	}
	if nameVI != nil {
		f.NameVI = *nameVI
	}
	if nameEN != nil {
		f.NameEN = *nameEN
	}
	g.fruits[fruitID] = f
	return nil
}

func (g *fakeGraph) DeleteFruit(_ context.Context, fruitID string) error {
	err := g.enter("DeleteFruit")
	defer g.mu.Unlock()
	if err != nil {
		return err
	}
	delete(g.fruits, fruitID)
	delete(g.rels, fruitID)
	return nil
}

func (g *fakeGraph) Stats(context.Context) (models.GraphStats, error) {
	err := g.enter("Stats")
	defer g.mu.Unlock()
	if err != nil {
		return models.GraphStats{}, err
	}
	reachable := map[string]bool{}
	for _, names := range g.rels {
		for n := range names {
			reachable[n] = true
		}
	}
	return models.GraphStats{TotalFruits: int64(len(g.fruits)), TotalBenefits: int64(len(reachable))}, nil
}

func (g *fakeGraph) TopFruits(_ context.Context, limit int) ([]models.FruitRank, error) {
	err := g.enter("TopFruits")
	defer g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ranks := []models.FruitRank{}
	for id, names := range g.rels {
		if len(names) == 0 {
			continue
		}
		f := g.fruits[id]
		ranks = append(ranks, models.FruitRank{FruitID: id, NameVI: f.NameVI, NameEN: f.NameEN, BenefitCount: int64(len(names))})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].BenefitCount != ranks[j].BenefitCount {
			return ranks[i].BenefitCount > ranks[j].BenefitCount
		}
		return ranks[i].FruitID < ranks[j].FruitID
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

func (g *fakeGraph) FruitIDs(context.Context) ([]string, error) {
	err := g.enter("FruitIDs")
	defer g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for id := range g.fruits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (g *fakeGraph) OrphanBenefits(_ context.Context, remove bool) (int64, error) {
	err := g.enter("OrphanBenefits")
	defer g.mu.Unlock()
	if err != nil {
		return 0, err
	}
	used := map[string]bool{}
	for _, names := range g.rels {
		for n := range names {
			used[n] = true
		}
	}
	var n int64
	for b := range g.benefits {
		if !used[b] {
			n++
			if remove {
				delete(g.benefits, b)
			}
		}
	}
	return n, nil
}

func (g *fakeGraph) FruitGraph(_ context.Context, fruitID string) (*models.GraphResult, error) {
	err := g.enter("FruitGraph")
	defer g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := g.fruits[fruitID]; !ok {
		return nil, fruitgraph.ErrNotFound
	}
	result := &models.GraphResult{
		Nodes: []*models.GraphNode{{ID: "fruit:" + fruitID, Labels: []string{"Fruit"}}},
		Edges: []*models.Edge{},
	}
	for name := range g.rels[fruitID] {
		result.Nodes = append(result.Nodes, &models.GraphNode{ID: "benefit:" + name, Labels: []string{"Benefit"}})
		result.Edges = append(result.Edges, &models.Edge{Source: "fruit:" + fruitID, Target: "benefit:" + name, Type: fruitgraph.RelHasBenefit})
	}
	return result, nil
}

func (g *fakeGraph) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// countingDocs wraps a document store and counts calls.
type countingDocs struct {
	*docstore.Memory
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingDocs) hit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return errors.New("mongo unavailable")
	}
	return nil
}

func (c *countingDocs) FindByKeyword(ctx context.Context, keyword string) ([]models.Record, error) {
	if err := c.hit(); err != nil {
		return nil, err
	}
	return c.Memory.FindByKeyword(ctx, keyword)
}

func (c *countingDocs) Count(ctx context.Context) (int64, error) {
	if err := c.hit(); err != nil {
		return 0, err
	}
	return c.Memory.Count(ctx)
}

func (c *countingDocs) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
