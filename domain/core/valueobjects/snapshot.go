package valueobjects

import (
	"math"
	"reflect"
	"time"

	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// DesignSnapshot is the immutable payload captured by a history node: one
// complete state of the edited design at a point in time. The engine treats
// it as opaque except for the element list and viewport, which the diff
// engine inspects.
type DesignSnapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Elements  []DesignElement `json:"elements"`
	Viewport  Viewport        `json:"viewport"`
}

// DesignElement is a single element of the design canvas
type DesignElement struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	X          float64                `json:"x"`
	Y          float64                `json:"y"`
	Width      float64                `json:"width"`
	Height     float64                `json:"height"`
	Rotation   float64                `json:"rotation"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Viewport describes the visible region of the canvas
type Viewport struct {
	CenterX  float64 `json:"center_x"`
	CenterY  float64 `json:"center_y"`
	Zoom     float64 `json:"zoom"`
	Rotation float64 `json:"rotation"`
}

// NewDesignSnapshot creates a snapshot with validation
func NewDesignSnapshot(timestamp time.Time, elements []DesignElement, viewport Viewport) (DesignSnapshot, error) {
	if timestamp.IsZero() {
		return DesignSnapshot{}, pkgerrors.NewValidationError("snapshot timestamp is required")
	}

	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		if el.ID == "" {
			return DesignSnapshot{}, pkgerrors.NewValidationError("snapshot element is missing an id")
		}
		if seen[el.ID] {
			return DesignSnapshot{}, pkgerrors.NewValidationError("snapshot element ids must be unique")
		}
		seen[el.ID] = true
	}

	copied := make([]DesignElement, len(elements))
	copy(copied, elements)

	return DesignSnapshot{
		Timestamp: timestamp,
		Elements:  copied,
		Viewport:  viewport,
	}, nil
}

// Equals checks structural equality of two snapshots, field by field
func (s DesignSnapshot) Equals(other DesignSnapshot) bool {
	if !s.Timestamp.Equal(other.Timestamp) {
		return false
	}
	if !s.Viewport.Equals(other.Viewport) {
		return false
	}
	if len(s.Elements) != len(other.Elements) {
		return false
	}
	for i, el := range s.Elements {
		if !el.Equals(other.Elements[i]) {
			return false
		}
	}
	return true
}

// ElementByID returns the element with the given id, if present
func (s DesignSnapshot) ElementByID(id string) (DesignElement, bool) {
	for _, el := range s.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return DesignElement{}, false
}

// Equals checks structural equality of two elements
func (e DesignElement) Equals(other DesignElement) bool {
	return e.ID == other.ID &&
		e.Type == other.Type &&
		floatEquals(e.X, other.X) &&
		floatEquals(e.Y, other.Y) &&
		floatEquals(e.Width, other.Width) &&
		floatEquals(e.Height, other.Height) &&
		floatEquals(e.Rotation, other.Rotation) &&
		propertiesEqual(e.Properties, other.Properties)
}

// Equals checks if two viewports describe the same view
func (v Viewport) Equals(other Viewport) bool {
	return floatEquals(v.CenterX, other.CenterX) &&
		floatEquals(v.CenterY, other.CenterY) &&
		floatEquals(v.Zoom, other.Zoom) &&
		floatEquals(v.Rotation, other.Rotation)
}

func floatEquals(a, b float64) bool {
	const epsilon = 1e-9
	return math.Abs(a-b) < epsilon
}

// propertiesEqual compares element property bags. Values come from decoded
// JSON, so deep equality is sufficient.
func propertiesEqual(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
