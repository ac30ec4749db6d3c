package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

type fakeGraph struct {
	limit int
}

func (f *fakeGraph) Ping(context.Context) ([]map[string]any, error) {
	return []map[string]any{{"ok": 1}}, nil
}

func (f *fakeGraph) Stats(context.Context) (models.GraphStats, error) {
	return models.GraphStats{TotalFruits: 2, TotalBenefits: 3}, nil
}

func (f *fakeGraph) TopFruits(_ context.Context, limit int) ([]models.FruitRank, error) {
	f.limit = limit
	return []models.FruitRank{{FruitID: "apple1", BenefitCount: 3}}, nil
}

func (f *fakeGraph) Benefits(_ context.Context, fruitID string) ([]string, error) {
	if fruitID == "apple1" {
		return []string{"fiber", "vitamin C"}, nil
	}
	return []string{}, nil
}

func (f *fakeGraph) FruitGraph(_ context.Context, fruitID string) (*models.GraphResult, error) {
	if fruitID != "apple1" {
		return nil, fruitgraph.ErrNotFound
	}
	return &models.GraphResult{Nodes: []*models.GraphNode{{ID: "n1", Labels: []string{"Fruit"}}}}, nil
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("stats", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, dispatch(ctx, &fakeGraph{}, []string{"stats"}, &out))
		var stats models.GraphStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, models.GraphStats{TotalFruits: 2, TotalBenefits: 3}, stats)
	})

	t.Run("top defaults to five", func(t *testing.T) {
		g := &fakeGraph{}
		require.NoError(t, dispatch(ctx, g, []string{"top"}, &bytes.Buffer{}))
		assert.Equal(t, 5, g.limit)
		require.NoError(t, dispatch(ctx, g, []string{"top", "2"}, &bytes.Buffer{}))
		assert.Equal(t, 2, g.limit)
	})

	t.Run("benefits", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, dispatch(ctx, &fakeGraph{}, []string{"benefits", "apple1"}, &out))
		assert.JSONEq(t, `["fiber","vitamin C"]`, out.String())
	})

	t.Run("graph not found", func(t *testing.T) {
		err := dispatch(ctx, &fakeGraph{}, []string{"graph", "zzz"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("usage errors", func(t *testing.T) {
		for _, args := range [][]string{nil, {"graph"}, {"benefits", "a", "b"}, {"nope"}} {
			assert.ErrorIs(t, dispatch(ctx, &fakeGraph{}, args, &bytes.Buffer{}), errUsage, "%v", args)
		}
		assert.Error(t, dispatch(ctx, &fakeGraph{}, []string{"top", "x"}, &bytes.Buffer{}))
	})
}
