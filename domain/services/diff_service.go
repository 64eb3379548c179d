package services

import (
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

// ChangeKind tags a single element change
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// ElementChange describes one element-level difference between snapshots
type ElementChange struct {
	Kind      ChangeKind                    `json:"kind"`
	ElementID string                        `json:"element_id"`
	Before    *valueobjects.DesignElement   `json:"before,omitempty"`
	After     *valueobjects.DesignElement   `json:"after,omitempty"`
}

// ViewportChange describes a viewport-level difference
type ViewportChange struct {
	From valueobjects.Viewport `json:"from"`
	To   valueobjects.Viewport `json:"to"`
}

// Comparison is the structural difference between two snapshots. Element
// changes are grouped: added, then removed, then modified; within a group
// the order follows the owning snapshot's element order.
type Comparison struct {
	ElementChanges []ElementChange `json:"element_changes"`
	ViewportChange *ViewportChange `json:"viewport_change,omitempty"`
	HasChanges     bool            `json:"has_changes"`
}

// DiffService computes structural differences between design snapshots.
// Set difference over id-keyed maps plus field equality, O(n) in element
// count.
type DiffService struct{}

// NewDiffService creates a diff service
func NewDiffService() *DiffService {
	return &DiffService{}
}

// Compare diffs snapshot a against snapshot b. Elements present only in b
// are added; only in a, removed; in both with differing fields, modified.
func (s *DiffService) Compare(a, b valueobjects.DesignSnapshot) Comparison {
	inA := make(map[string]valueobjects.DesignElement, len(a.Elements))
	for _, el := range a.Elements {
		inA[el.ID] = el
	}
	inB := make(map[string]valueobjects.DesignElement, len(b.Elements))
	for _, el := range b.Elements {
		inB[el.ID] = el
	}

	var changes []ElementChange

	for _, el := range b.Elements {
		if _, exists := inA[el.ID]; !exists {
			after := el
			changes = append(changes, ElementChange{
				Kind:      ChangeAdded,
				ElementID: el.ID,
				After:     &after,
			})
		}
	}

	for _, el := range a.Elements {
		if _, exists := inB[el.ID]; !exists {
			before := el
			changes = append(changes, ElementChange{
				Kind:      ChangeRemoved,
				ElementID: el.ID,
				Before:    &before,
			})
		}
	}

	for _, el := range b.Elements {
		beforeEl, exists := inA[el.ID]
		if !exists || beforeEl.Equals(el) {
			continue
		}
		before, after := beforeEl, el
		changes = append(changes, ElementChange{
			Kind:      ChangeModified,
			ElementID: el.ID,
			Before:    &before,
			After:     &after,
		})
	}

	comparison := Comparison{ElementChanges: changes}

	if !a.Viewport.Equals(b.Viewport) {
		comparison.ViewportChange = &ViewportChange{
			From: a.Viewport,
			To:   b.Viewport,
		}
	}

	comparison.HasChanges = len(changes) > 0 || comparison.ViewportChange != nil
	return comparison
}
