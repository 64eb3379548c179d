package entities

import (
	"fmt"

	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// Branch is a named, ordered sequence of history nodes representing one
// divergent line of edits. The start node is always the first element of
// the sequence.
type Branch struct {
	id          valueobjects.BranchID
	name        string
	colorTag    string
	sequence    []valueobjects.NodeID
	active      bool
	description string
}

// NewBranch creates a branch rooted at startNode
func NewBranch(name string, startNode valueobjects.NodeID, colorTag string) (*Branch, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("branch name cannot be empty")
	}
	if startNode.IsZero() {
		return nil, pkgerrors.NewValidationError("branch start node is required")
	}

	return &Branch{
		id:       valueobjects.NewBranchID(),
		name:     name,
		colorTag: colorTag,
		sequence: []valueobjects.NodeID{startNode},
	}, nil
}

// ReconstructBranch rebuilds a branch from persisted data
func ReconstructBranch(
	id valueobjects.BranchID,
	name string,
	colorTag string,
	sequence []valueobjects.NodeID,
	active bool,
	description string,
) (*Branch, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("branch id is required for reconstruction")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("branch name cannot be empty")
	}
	if len(sequence) == 0 {
		return nil, pkgerrors.NewValidationError("branch sequence cannot be empty")
	}

	copied := make([]valueobjects.NodeID, len(sequence))
	copy(copied, sequence)

	return &Branch{
		id:          id,
		name:        name,
		colorTag:    colorTag,
		sequence:    copied,
		active:      active,
		description: description,
	}, nil
}

// ID returns the branch's unique identifier
func (b *Branch) ID() valueobjects.BranchID {
	return b.id
}

// Name returns the branch name
func (b *Branch) Name() string {
	return b.name
}

// ColorTag returns the opaque UI color tag
func (b *Branch) ColorTag() string {
	return b.colorTag
}

// StartNode returns the first node of the sequence
func (b *Branch) StartNode() valueobjects.NodeID {
	return b.sequence[0]
}

// Sequence returns a copy of the node sequence in insertion order
func (b *Branch) Sequence() []valueobjects.NodeID {
	seq := make([]valueobjects.NodeID, len(b.sequence))
	copy(seq, b.sequence)
	return seq
}

// Tip returns the most recently appended node
func (b *Branch) Tip() valueobjects.NodeID {
	return b.sequence[len(b.sequence)-1]
}

// Active reports whether this is the active branch
func (b *Branch) Active() bool {
	return b.active
}

// Description returns the branch description
func (b *Branch) Description() string {
	return b.description
}

// SetActive marks the branch active or inactive
func (b *Branch) SetActive(active bool) {
	b.active = active
}

// SetDescription replaces the branch description
func (b *Branch) SetDescription(description string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if len(description) > cfg.MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters", cfg.MaxDescriptionLength)
	}
	b.description = description
	return nil
}

// Append adds a node to the end of the sequence. Duplicate appends of the
// current tip are ignored.
func (b *Branch) Append(id valueobjects.NodeID) error {
	if id.IsZero() {
		return pkgerrors.NewValidationError("node id cannot be zero")
	}
	if b.Tip().Equals(id) {
		return nil
	}
	b.sequence = append(b.sequence, id)
	return nil
}

// Contains checks sequence membership
func (b *Branch) Contains(id valueobjects.NodeID) bool {
	for _, n := range b.sequence {
		if n.Equals(id) {
			return true
		}
	}
	return false
}

// Purge removes a node from the sequence, keeping order. When the start
// node is removed the start advances to the next surviving member. Returns
// true when the sequence still has members afterward.
func (b *Branch) Purge(id valueobjects.NodeID) bool {
	kept := b.sequence[:0]
	for _, n := range b.sequence {
		if !n.Equals(id) {
			kept = append(kept, n)
		}
	}
	b.sequence = kept
	return len(b.sequence) > 0
}
