package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

func retentionGraph(t *testing.T, count int) (*aggregates.HistoryGraph, []valueobjects.NodeID) {
	t.Helper()
	g := aggregates.NewHistoryGraph(nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ids := make([]valueobjects.NodeID, 0, count)
	for i := 0; i < count; i++ {
		snapshot, err := valueobjects.NewDesignSnapshot(base.Add(time.Duration(i)*time.Second), nil, valueobjects.Viewport{Zoom: 1})
		require.NoError(t, err)
		id, err := g.CreateSnapshot(snapshot, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return g, ids
}

func TestRetentionService_Enforce_UnderBound(t *testing.T) {
	svc := NewRetentionService()
	g, _ := retentionGraph(t, 3)

	evicted, err := svc.Enforce(g, 5)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Equal(t, 3, g.Store().Len())
}

func TestRetentionService_Enforce_Disabled(t *testing.T) {
	svc := NewRetentionService()
	g, _ := retentionGraph(t, 3)

	evicted, err := svc.Enforce(g, 0)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Equal(t, 3, g.Store().Len())
}

func TestRetentionService_Enforce_EvictsOldestFirst(t *testing.T) {
	svc := NewRetentionService()
	g, ids := retentionGraph(t, 5)

	evicted, err := svc.Enforce(g, 2)
	require.NoError(t, err)

	require.Len(t, evicted, 3)
	assert.True(t, evicted[0].Equals(ids[0]))
	assert.True(t, evicted[1].Equals(ids[1]))
	assert.True(t, evicted[2].Equals(ids[2]))

	assert.Equal(t, 2, g.Store().Len())
	assert.True(t, g.Store().Has(ids[3]))
	assert.True(t, g.Store().Has(ids[4]))
	require.NoError(t, g.Store().Validate())
}

func TestRetentionService_Enforce_ProtectsCurrentNode(t *testing.T) {
	svc := NewRetentionService()
	g, ids := retentionGraph(t, 4)

	// Move the current pointer to the oldest node
	_, err := g.NavigateTo(ids[0])
	require.NoError(t, err)

	evicted, err := svc.Enforce(g, 1)
	require.NoError(t, err)

	require.Len(t, evicted, 3)
	assert.True(t, g.Store().Has(ids[0]))
	assert.True(t, g.CurrentNode().Equals(ids[0]))
	assert.Equal(t, 1, g.Store().Len())
}

func TestRetentionService_Enforce_PurgesStacksAndBranches(t *testing.T) {
	svc := NewRetentionService()
	g, ids := retentionGraph(t, 4)

	_, err := g.CreateBranch("work", &ids[0], "")
	require.NoError(t, err)

	evicted, err := svc.Enforce(g, 2)
	require.NoError(t, err)
	require.Len(t, evicted, 2)

	// No dangling references survive the eviction
	for _, stackID := range g.UndoStack() {
		assert.True(t, g.Store().Has(stackID))
	}
	for _, branch := range g.Branches().All() {
		for _, nodeID := range branch.Sequence() {
			assert.True(t, g.Store().Has(nodeID))
		}
	}
}
