package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDesignSnapshot_Success(t *testing.T) {
	now := time.Now()
	elements := []DesignElement{
		{ID: "rect-1", Type: "rectangle", X: 10, Y: 20, Width: 100, Height: 50},
		{ID: "text-1", Type: "text", X: 5, Y: 5, Properties: map[string]interface{}{"content": "hello"}},
	}

	snapshot, err := NewDesignSnapshot(now, elements, Viewport{Zoom: 1})

	require.NoError(t, err)
	assert.Len(t, snapshot.Elements, 2)
	assert.True(t, snapshot.Timestamp.Equal(now))

	// The snapshot holds its own copy of the element list
	elements[0].X = 999
	assert.Equal(t, 10.0, snapshot.Elements[0].X)
}

func TestNewDesignSnapshot_RequiresTimestamp(t *testing.T) {
	_, err := NewDesignSnapshot(time.Time{}, nil, Viewport{})
	assert.Error(t, err)
}

func TestNewDesignSnapshot_RejectsDuplicateElementIDs(t *testing.T) {
	elements := []DesignElement{
		{ID: "el-1", Type: "rectangle"},
		{ID: "el-1", Type: "text"},
	}

	_, err := NewDesignSnapshot(time.Now(), elements, Viewport{})
	assert.Error(t, err)
}

func TestNewDesignSnapshot_RejectsMissingElementID(t *testing.T) {
	_, err := NewDesignSnapshot(time.Now(), []DesignElement{{Type: "rectangle"}}, Viewport{})
	assert.Error(t, err)
}

func TestDesignSnapshot_Equals(t *testing.T) {
	now := time.Now()
	base := func() DesignSnapshot {
		s, err := NewDesignSnapshot(now, []DesignElement{
			{ID: "el-1", Type: "rectangle", X: 1, Y: 2, Width: 3, Height: 4, Rotation: 5,
				Properties: map[string]interface{}{"fill": "red"}},
		}, Viewport{CenterX: 10, CenterY: 20, Zoom: 1.5})
		require.NoError(t, err)
		return s
	}

	a, b := base(), base()
	assert.True(t, a.Equals(b))

	moved := base()
	moved.Elements[0].X = 2
	assert.False(t, a.Equals(moved))

	recolored := base()
	recolored.Elements[0].Properties = map[string]interface{}{"fill": "blue"}
	assert.False(t, a.Equals(recolored))

	zoomed := base()
	zoomed.Viewport.Zoom = 2
	assert.False(t, a.Equals(zoomed))

	// Differences below the comparison epsilon are treated as equal
	nudged := base()
	nudged.Elements[0].X = 1 + 1e-12
	assert.True(t, a.Equals(nudged))
}

func TestDesignSnapshot_ElementByID(t *testing.T) {
	snapshot, err := NewDesignSnapshot(time.Now(), []DesignElement{
		{ID: "el-1", Type: "rectangle"},
	}, Viewport{})
	require.NoError(t, err)

	el, found := snapshot.ElementByID("el-1")
	assert.True(t, found)
	assert.Equal(t, "rectangle", el.Type)

	_, found = snapshot.ElementByID("missing")
	assert.False(t, found)
}
