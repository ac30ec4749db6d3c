package fruit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// seedDrift builds stores that disagree:
//   - "doc-only" has a record but no node
//   - "legacy" still carries its benefit list in the document
//   - "ghost" has a node but no record
//   - "stale" is a benefit no fruit points to
func seedDrift(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	f.create(t, map[string]any{"fruit_id": "synced", "benefits": []any{"a"}})
	require.NoError(t, f.docs.Insert(ctx, models.Record{"fruit_id": "doc-only", "name_en": "Doc", "benefits": []any{"b"}}))
	require.NoError(t, f.docs.Insert(ctx, models.Record{"fruit_id": "legacy", "cong_dung": []any{"c", "d"}}))
	require.NoError(t, f.graph.MergeFruit(ctx, models.Fruit{FruitID: "legacy"}, []string{"old"}))
	require.NoError(t, f.graph.MergeFruit(ctx, models.Fruit{FruitID: "ghost"}, []string{"z"}))
	f.graph.benefits["stale"] = true
}

func TestReconcileDryRunReportsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	seedDrift(t, f)

	report, err := f.svc.Reconcile(context.Background(), ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{
		Documents:       3,
		GraphFruits:     3,
		MissingInGraph:  []string{"doc-only"},
		OrphanedInGraph: []string{"ghost"},
		LegacyBenefits:  []string{"doc-only", "legacy"},
		OrphanBenefits:  1,
	}, report)
	assert.False(t, report.InSync())

	assert.Contains(t, f.graph.fruits, "ghost")
	assert.NotContains(t, f.graph.fruits, "doc-only")
	assert.True(t, f.graph.benefits["stale"])
}

func TestReconcileRepair(t *testing.T) {
	f := newFixture(t)
	f.svc.reconcileRate = 1000
	seedDrift(t, f)
	ctx := context.Background()

	report, err := f.svc.Reconcile(ctx, ReconcileOptions{Repair: true})
	require.NoError(t, err)
	assert.True(t, report.Repaired)

	assert.Equal(t, models.Fruit{FruitID: "doc-only", NameEN: "Doc"}, f.graph.fruits["doc-only"])
	assert.NotContains(t, f.graph.fruits, "ghost")

	got, err := f.svc.GetByID(ctx, "doc-only")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.Benefits)

	got, err = f.svc.GetByID(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, got.Benefits)

	assert.NotContains(t, f.graph.benefits, "stale")
	assert.NotContains(t, f.graph.benefits, "old")
	assert.NotContains(t, f.graph.benefits, "z")

	assert.NotContains(t, got.Detail, "cong_dung")

	again, err := f.svc.Reconcile(ctx, ReconcileOptions{})
	require.NoError(t, err)
	assert.Empty(t, again.MissingInGraph)
	assert.Empty(t, again.OrphanedInGraph)
	assert.Empty(t, again.LegacyBenefits)
	assert.Zero(t, again.OrphanBenefits)
	assert.True(t, again.InSync())
}

func TestReconcileRepairDoesNotRevertLaterUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.Insert(ctx, models.Record{"fruit_id": "legacy", "cong_dung": []any{"a"}}))

	_, err := f.svc.Reconcile(ctx, ReconcileOptions{Repair: true})
	require.NoError(t, err)
	got, err := f.svc.GetByID(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Benefits)

	require.NoError(t, f.svc.Update(ctx, "legacy", map[string]any{"benefits": []any{"b", "c"}}))

	again, err := f.svc.Reconcile(ctx, ReconcileOptions{Repair: true})
	require.NoError(t, err)
	assert.Empty(t, again.LegacyBenefits)

	got, err = f.svc.GetByID(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got.Benefits)

	check, err := f.svc.Reconcile(ctx, ReconcileOptions{})
	require.NoError(t, err)
	assert.True(t, check.InSync())
}

func TestUpdateWithBenefitsClearsLegacyList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.Insert(ctx, models.Record{"fruit_id": "old", "benefits": []any{"a"}}))
	require.NoError(t, f.graph.MergeFruit(ctx, models.Fruit{FruitID: "old"}, []string{"a"}))

	require.NoError(t, f.svc.Update(ctx, "old", map[string]any{"benefits": []any{"b"}}))

	rec, err := f.docs.FindByID(ctx, "old")
	require.NoError(t, err)
	assert.NotContains(t, rec, "benefits")

	_, err = f.svc.Reconcile(ctx, ReconcileOptions{Repair: true})
	require.NoError(t, err)
	got, err := f.svc.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.Benefits)
}

func TestReconcileInSync(t *testing.T) {
	f := newFixture(t)
	f.create(t, map[string]any{"fruit_id": "a", "benefits": []any{"x"}})

	report, err := f.svc.Reconcile(context.Background(), ReconcileOptions{})
	require.NoError(t, err)
	assert.True(t, report.InSync())
}

func TestReconcileGraphFailure(t *testing.T) {
	f := newFixture(t)
	f.graph.fail["FruitIDs"] = true

	_, err := f.svc.Reconcile(context.Background(), ReconcileOptions{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestReconcileRepairStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t)
	f.svc.reconcileRate = 0.001
	seedDrift(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.Reconcile(ctx, ReconcileOptions{Repair: true})
	assert.Error(t, err)
}
