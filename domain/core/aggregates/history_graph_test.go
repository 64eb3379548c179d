package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

var graphBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func graphSnapshot(t *testing.T, offset time.Duration, elements ...valueobjects.DesignElement) valueobjects.DesignSnapshot {
	t.Helper()
	snapshot, err := valueobjects.NewDesignSnapshot(graphBase.Add(offset), elements, valueobjects.Viewport{Zoom: 1})
	require.NoError(t, err)
	return snapshot
}

func capture(t *testing.T, g *HistoryGraph, offset time.Duration) valueobjects.NodeID {
	t.Helper()
	id, err := g.CreateSnapshot(graphSnapshot(t, offset), "")
	require.NoError(t, err)
	return id
}

func TestHistoryGraph_UndoRedo_Linear(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	c := capture(t, g, 2*time.Second)

	assert.True(t, g.CurrentNode().Equals(c))
	assert.True(t, g.CanUndo())
	assert.False(t, g.CanRedo())

	snapshot, err := g.Undo()
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(b))
	assert.True(t, snapshot.Timestamp.Equal(graphBase.Add(time.Second)))

	_, err = g.Undo()
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(a))
	assert.False(t, g.CanUndo())
	assert.True(t, g.CanRedo())

	_, err = g.Redo()
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(b))
	assert.True(t, g.CanRedo())
}

func TestHistoryGraph_Undo_FailsAtRoot(t *testing.T) {
	g := NewHistoryGraph(nil)

	_, err := g.Undo()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCannotUndo(err))

	capture(t, g, 0)
	_, err = g.Undo()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCannotUndo(err))
}

func TestHistoryGraph_Redo_FailsWithoutUndo(t *testing.T) {
	g := NewHistoryGraph(nil)
	capture(t, g, 0)

	_, err := g.Redo()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCannotRedo(err))
}

func TestHistoryGraph_CreateSnapshot_ClearsRedoAndForks(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	c := capture(t, g, 2*time.Second)

	_, err := g.Undo()
	require.NoError(t, err)
	_, err = g.Undo()
	require.NoError(t, err)
	require.True(t, g.CurrentNode().Equals(a))
	require.True(t, g.CanRedo())

	// Capturing from an earlier node forks the graph instead of truncating
	d := capture(t, g, 3*time.Second)

	assert.False(t, g.CanRedo())
	assert.True(t, g.CurrentNode().Equals(d))

	// The undone nodes survive as a leaf lineage
	assert.True(t, g.Store().Has(b))
	assert.True(t, g.Store().Has(c))

	dNode, err := g.Store().Get(d)
	require.NoError(t, err)
	require.Len(t, dNode.Parents(), 1)
	assert.True(t, dNode.Parents()[0].Equals(a))

	aNode, err := g.Store().Get(a)
	require.NoError(t, err)
	assert.Len(t, aNode.Children(), 2)

	require.NoError(t, g.Store().Validate())
}

func TestHistoryGraph_NavigateTo_RebuildsUndoStack(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	c := capture(t, g, 2*time.Second)

	_, err := g.NavigateTo(a)
	require.NoError(t, err)

	assert.True(t, g.CurrentNode().Equals(a))
	stack := g.UndoStack()
	require.Len(t, stack, 1)
	assert.True(t, stack[0].Equals(a))

	// Navigating back to the tip rebuilds the full spine
	_, err = g.NavigateTo(c)
	require.NoError(t, err)
	stack = g.UndoStack()
	require.Len(t, stack, 3)
	assert.True(t, stack[0].Equals(a))
	assert.True(t, stack[1].Equals(b))
	assert.True(t, stack[2].Equals(c))
}

func TestHistoryGraph_NavigateTo_RedoClearing(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	capture(t, g, time.Second)

	_, err := g.Undo()
	require.NoError(t, err)
	require.True(t, g.CanRedo())

	// Target already on the undo stack: redo survives
	_, err = g.NavigateTo(a)
	require.NoError(t, err)
	assert.True(t, g.CanRedo())

	// Extend the lineage, undo back, then jump to a node off the rebuilt
	// undo stack: the pending redo is invalidated
	d := capture(t, g, 2*time.Second)
	leaf := capture(t, g, 3*time.Second)
	_, err = g.Undo()
	require.NoError(t, err)
	require.True(t, g.CurrentNode().Equals(d))
	require.True(t, g.CanRedo())

	_, err = g.NavigateTo(a)
	require.NoError(t, err)
	assert.True(t, g.CanRedo())

	_, err = g.NavigateTo(leaf)
	require.NoError(t, err)
	assert.False(t, g.CanRedo())
}

func TestHistoryGraph_NavigateTo_UnknownNode(t *testing.T) {
	g := NewHistoryGraph(nil)
	capture(t, g, 0)

	_, err := g.NavigateTo(valueobjects.NewNodeID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNodeNotFound(err))
}

func TestHistoryGraph_Branching(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)

	// Branch from a: new nodes land on the branch's sequence
	_, err := g.NavigateTo(a)
	require.NoError(t, err)

	branchID, err := g.CreateBranch("alternative", nil, "blue")
	require.NoError(t, err)

	branch, err := g.Branches().Get(branchID)
	require.NoError(t, err)
	assert.True(t, branch.Active())
	assert.True(t, branch.StartNode().Equals(a))

	c, err := g.CreateSnapshot(graphSnapshot(t, 2*time.Second), "")
	require.NoError(t, err)

	branch, err = g.Branches().Get(branchID)
	require.NoError(t, err)
	require.Len(t, branch.Sequence(), 2)
	assert.True(t, branch.Tip().Equals(c))

	// Switching to the branch navigates to its tip
	_, err = g.NavigateTo(b)
	require.NoError(t, err)
	_, err = g.SwitchToBranch(branchID)
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(c))
}

func TestHistoryGraph_CreateBranch_FromAncestorRepositionsCurrent(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	require.True(t, g.CurrentNode().Equals(b))

	branchID, err := g.CreateBranch("alt", &a, "")
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(a))

	// The next snapshot parents at the branch point, not at b
	c, err := g.CreateSnapshot(graphSnapshot(t, 2*time.Second), "")
	require.NoError(t, err)

	cNode, err := g.Store().Get(c)
	require.NoError(t, err)
	require.Len(t, cNode.Parents(), 1)
	assert.True(t, cNode.Parents()[0].Equals(a))

	branch, err := g.Branches().Get(branchID)
	require.NoError(t, err)
	assert.True(t, branch.StartNode().Equals(a))
	require.Len(t, branch.Sequence(), 2)
	assert.True(t, branch.Tip().Equals(c))

	// b survives as a sibling lineage off a
	aNode, err := g.Store().Get(a)
	require.NoError(t, err)
	assert.Len(t, aNode.Children(), 2)
	require.NoError(t, g.Store().Validate())
}

func TestHistoryGraph_CreateBranch_RedoClearing(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)

	_, err := g.Undo()
	require.NoError(t, err)
	d := capture(t, g, 2*time.Second)
	capture(t, g, 3*time.Second)
	_, err = g.Undo()
	require.NoError(t, err)
	require.True(t, g.CurrentNode().Equals(d))
	require.True(t, g.CanRedo())

	// Branch point on the undo stack: the pending redo survives
	_, err = g.CreateBranch("rooted", &a, "")
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(a))
	assert.True(t, g.CanRedo())

	// Branch point off the undo stack: forward history is invalidated
	_, err = g.CreateBranch("astray", &b, "")
	require.NoError(t, err)
	assert.True(t, g.CurrentNode().Equals(b))
	assert.False(t, g.CanRedo())
}

func TestHistoryGraph_CreateSnapshot_WithBranchName(t *testing.T) {
	g := NewHistoryGraph(nil)
	capture(t, g, 0)

	id, err := g.CreateSnapshot(graphSnapshot(t, time.Second), "experiment")
	require.NoError(t, err)

	node, err := g.Store().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "experiment", node.BranchLabel())

	active := g.Branches().Active()
	require.NotNil(t, active)
	assert.Equal(t, "experiment", active.Name())
	assert.True(t, active.StartNode().Equals(id))
}

func TestHistoryGraph_DeleteBranch(t *testing.T) {
	g := NewHistoryGraph(nil)
	capture(t, g, 0)

	first, err := g.CreateBranch("first", nil, "")
	require.NoError(t, err)
	second, err := g.CreateBranch("second", nil, "")
	require.NoError(t, err)

	// second is active now; deleting it is refused
	assert.False(t, g.DeleteBranch(second))
	assert.True(t, g.DeleteBranch(first))
	assert.False(t, g.DeleteBranch(first))

	// Nodes are untouched by branch deletion
	assert.Equal(t, 1, g.Store().Len())
}

func TestHistoryGraph_EvictNodes(t *testing.T) {
	g := NewHistoryGraph(nil)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	c := capture(t, g, 2*time.Second)

	// The current node is protected
	err := g.EvictNodes([]valueobjects.NodeID{c})
	require.Error(t, err)

	require.NoError(t, g.EvictNodes([]valueobjects.NodeID{a}))
	assert.False(t, g.Store().Has(a))

	// The undo stack no longer references the evicted node
	for _, id := range g.UndoStack() {
		assert.False(t, id.Equals(a))
	}
	assert.True(t, g.Store().Has(b))
	require.NoError(t, g.Store().Validate())
}

func TestHistoryGraph_StateRoundTrip(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	g := NewHistoryGraph(cfg)

	a := capture(t, g, 0)
	b := capture(t, g, time.Second)
	require.NoError(t, g.SetBookmark(a, true))
	require.NoError(t, g.AddTag(b, "milestone"))
	require.NoError(t, g.SetDescription(b, "second draft"))

	branchID, err := g.CreateBranch("side", nil, "green")
	require.NoError(t, err)

	state := g.State()
	require.Len(t, state.Nodes, 2)
	require.Len(t, state.Branches, 1)
	require.NotNil(t, state.CurrentNode)
	require.NotNil(t, state.ActiveBranch)

	restored, err := ReconstructFromState(cfg, state)
	require.NoError(t, err)

	assert.Equal(t, 2, restored.Store().Len())
	assert.True(t, restored.CurrentNode().Equals(b))

	aNode, err := restored.Store().Get(a)
	require.NoError(t, err)
	assert.True(t, aNode.Bookmarked())

	bNode, err := restored.Store().Get(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"milestone"}, bNode.Tags())
	assert.Equal(t, "second draft", bNode.Description())

	active := restored.Branches().Active()
	require.NotNil(t, active)
	assert.True(t, active.ID().Equals(branchID))

	// The undo stack is re-derived as the root path to the current node
	stack := restored.UndoStack()
	require.Len(t, stack, 2)
	assert.True(t, stack[0].Equals(a))
	assert.True(t, stack[1].Equals(b))
	assert.False(t, restored.CanRedo())
}

func TestHistoryGraph_Annotations(t *testing.T) {
	g := NewHistoryGraph(nil)
	a := capture(t, g, 0)

	require.NoError(t, g.SetBookmark(a, true))
	require.NoError(t, g.AddTag(a, "v1"))
	require.NoError(t, g.AddTag(a, "v1")) // idempotent
	require.NoError(t, g.SetDescription(a, "first"))

	node, err := g.Store().Get(a)
	require.NoError(t, err)
	assert.True(t, node.Bookmarked())
	assert.Equal(t, []string{"v1"}, node.Tags())
	assert.Equal(t, "first", node.Description())

	require.NoError(t, g.RemoveTag(a, "v1"))
	assert.Error(t, g.RemoveTag(a, "v1"))

	missing := valueobjects.NewNodeID()
	assert.True(t, pkgerrors.IsNodeNotFound(g.SetBookmark(missing, true)))
}

func TestHistoryGraph_Events(t *testing.T) {
	g := NewHistoryGraph(nil)

	capture(t, g, 0)
	events := g.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "history.snapshot_captured", events[0].GetEventType())

	g.MarkEventsAsCommitted()
	assert.Empty(t, g.GetUncommittedEvents())

	capture(t, g, time.Second)
	_, err := g.Undo()
	require.NoError(t, err)
	_, err = g.Redo()
	require.NoError(t, err)

	types := []string{}
	for _, e := range g.GetUncommittedEvents() {
		types = append(types, e.GetEventType())
	}
	assert.Equal(t, []string{"history.snapshot_captured", "history.undone", "history.redone"}, types)
}
