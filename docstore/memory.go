package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// Memory is an in-process document store with the same semantics as Mongo.
// It backs tests and local runs without a MongoDB server.
type Memory struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]models.Record
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]models.Record)}
}

// FindByKeyword matches keyword as a case-insensitive substring of name_vi or name_en.
func (m *Memory) FindByKeyword(_ context.Context, keyword string) ([]models.Record, error) {
	needle := strings.ToLower(keyword)
	return m.filter(func(r models.Record) bool {
		return strings.Contains(strings.ToLower(r.String(models.KeyNameVI)), needle) ||
			strings.Contains(strings.ToLower(r.String(models.KeyNameEN)), needle)
	}), nil
}

// FindAll returns every record in insertion order.
func (m *Memory) FindAll(_ context.Context) ([]models.Record, error) {
	return m.filter(func(models.Record) bool { return true }), nil
}

func (m *Memory) filter(keep func(models.Record) bool) []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Record{}
	for _, id := range m.order {
		if r := m.docs[id]; keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// FindByID returns the record or ErrNotFound.
func (m *Memory) FindByID(_ context.Context, fruitID string) (models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.docs[fruitID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// Insert stores a copy of record.
func (m *Memory) Insert(_ context.Context, record models.Record) error {
	id := record.FruitID()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; ok {
		return fmt.Errorf("insert fruit %q: %w", id, ErrDuplicateKey)
	}
	m.docs[id] = record.Clone()
	m.order = append(m.order, id)
	return nil
}

// UpdateFields overwrites the given keys. A missing record is a no-op.
func (m *Memory) UpdateFields(_ context.Context, fruitID string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.docs[fruitID]
	if !ok {
		return nil
	}
	for k, v := range fields {
		r[k] = v
	}
	return nil
}

// UnsetFields removes the given keys. A missing record is a no-op.
func (m *Memory) UnsetFields(_ context.Context, fruitID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.docs[fruitID]; ok {
		for _, k := range keys {
			delete(r, k)
		}
	}
	return nil
}

// Delete removes the record. A missing record is a no-op.
func (m *Memory) Delete(_ context.Context, fruitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[fruitID]; !ok {
		return nil
	}
	delete(m.docs, fruitID)
	for i, id := range m.order {
		if id == fruitID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of records.
func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

// DistinctCounts mirrors Mongo.DistinctCounts: missing, non-array and empty
// fields are skipped; buckets are sorted by count desc then value.
func (m *Memory) DistinctCounts(_ context.Context, field string) ([]models.ValueCount, error) {
	m.mu.RLock()
	counts := map[any]int64{}
	for _, r := range m.docs {
		for _, v := range arrayValues(r[field]) {
			counts[v]++
		}
	}
	m.mu.RUnlock()

	out := make([]models.ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, models.ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return fmt.Sprint(out[i].Value) < fmt.Sprint(out[j].Value)
	})
	return out, nil
}

// arrayValues returns the hashable elements of an array-valued field.
func arrayValues(v any) []any {
	var out []any
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			switch item.(type) {
			case []any, map[string]any:
				continue
			}
			out = append(out, item)
		}
	case []string:
		for _, s := range list {
			out = append(out, s)
		}
	}
	return out
}
