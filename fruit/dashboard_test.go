package fruit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

func seedDashboard(t *testing.T, f *fixture) {
	t.Helper()
	f.create(t, map[string]any{"fruit_id": "apple1", "name_en": "Apple", "harvest_season": []any{"autumn"}, "regions": []any{"north", "central"}, "benefits": []any{"a", "b", "c"}})
	f.create(t, map[string]any{"fruit_id": "mango", "name_en": "Mango", "harvest_season": []any{"summer"}, "regions": []any{"south"}, "benefits": []any{"a"}})
	f.create(t, map[string]any{"fruit_id": "lychee", "harvest_season": []any{"summer"}, "regions": []any{"north"}, "benefits": []any{"b", "d"}})
	// no season, empty regions: excluded from the aggregates
	f.create(t, map[string]any{"fruit_id": "mystery", "regions": []any{}})
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	seedDashboard(t, f)

	dash, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DocumentStats{
		TotalFruits: 4,
		BySeason: []models.ValueCount{
			{Value: "summer", Count: 2},
			{Value: "autumn", Count: 1},
		},
		ByRegion: []models.ValueCount{
			{Value: "north", Count: 2},
			{Value: "central", Count: 1},
			{Value: "south", Count: 1},
		},
	}, dash.Documents)

	assert.False(t, dash.Graph.Degraded())
	assert.Equal(t, int64(4), dash.Graph.TotalFruits)
	assert.Equal(t, int64(4), dash.Graph.TotalBenefits)
	assert.Equal(t, []models.FruitRank{
		{FruitID: "apple1", NameEN: "Apple", BenefitCount: 3},
		{FruitID: "lychee", BenefitCount: 2},
		{FruitID: "mango", NameEN: "Mango", BenefitCount: 1},
	}, dash.Graph.TopFruits)
}

func TestDashboardTopFruitsIsBounded(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		f.create(t, map[string]any{"fruit_id": id, "benefits": []any{"x"}})
	}
	dash, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, dash.Graph.TopFruits, defaultTopFruits)
}

func TestDashboardDegradesOnGraphFailure(t *testing.T) {
	for _, method := range []string{"Stats", "TopFruits"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			seedDashboard(t, f)
			f.graph.fail[method] = true

			dash, err := f.svc.DashboardStats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(4), dash.Documents.TotalFruits)
			assert.True(t, dash.Graph.Degraded())
			assert.Equal(t, errGraphDown.Error(), dash.Graph.Error)
			assert.Zero(t, dash.Graph.TotalFruits)
			assert.Zero(t, dash.Graph.TotalBenefits)
			assert.NotNil(t, dash.Graph.TopFruits)
			assert.Empty(t, dash.Graph.TopFruits)
		})
	}
}

func TestDashboardFailsOnDocumentFailure(t *testing.T) {
	f := newFixture(t)
	f.docs.fail = true

	_, err := f.svc.DashboardStats(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestDashboardEmptyStores(t *testing.T) {
	f := newFixture(t)
	dash, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, dash.Documents.BySeason)
	assert.NotNil(t, dash.Documents.ByRegion)
	assert.NotNil(t, dash.Graph.TopFruits)
}
