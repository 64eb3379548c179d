package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

func TestNewBranch_Validation(t *testing.T) {
	start := valueobjects.NewNodeID()

	branch, err := NewBranch("main", start, "blue")
	require.NoError(t, err)
	assert.Equal(t, "main", branch.Name())
	assert.True(t, branch.StartNode().Equals(start))
	assert.True(t, branch.Tip().Equals(start))
	assert.False(t, branch.Active())

	_, err = NewBranch("", start, "")
	assert.Error(t, err)

	_, err = NewBranch("main", valueobjects.NodeID{}, "")
	assert.Error(t, err)
}

func TestBranch_Append(t *testing.T) {
	start := valueobjects.NewNodeID()
	branch, err := NewBranch("work", start, "")
	require.NoError(t, err)

	next := valueobjects.NewNodeID()
	require.NoError(t, branch.Append(next))
	assert.True(t, branch.Tip().Equals(next))
	assert.Len(t, branch.Sequence(), 2)

	// Re-appending the tip is a no-op
	require.NoError(t, branch.Append(next))
	assert.Len(t, branch.Sequence(), 2)

	assert.Error(t, branch.Append(valueobjects.NodeID{}))
}

func TestBranch_Purge(t *testing.T) {
	start := valueobjects.NewNodeID()
	second := valueobjects.NewNodeID()
	third := valueobjects.NewNodeID()

	branch, err := NewBranch("work", start, "")
	require.NoError(t, err)
	require.NoError(t, branch.Append(second))
	require.NoError(t, branch.Append(third))

	// Purging the start node advances the start to the next member
	assert.True(t, branch.Purge(start))
	assert.True(t, branch.StartNode().Equals(second))
	assert.False(t, branch.Contains(start))

	assert.True(t, branch.Purge(third))
	assert.False(t, branch.Purge(second))
	assert.Empty(t, branch.Sequence())
}

func TestBranch_SequenceIsACopy(t *testing.T) {
	branch, err := NewBranch("work", valueobjects.NewNodeID(), "")
	require.NoError(t, err)

	seq := branch.Sequence()
	seq[0] = valueobjects.NewNodeID()
	assert.False(t, branch.StartNode().Equals(seq[0]))
}
