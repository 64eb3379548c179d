package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// HistoryNode is an immutable design snapshot linked into the history DAG.
// Identity, snapshot payload, and parent edges never change after creation;
// only child edges (recorded by the store when descendants are created) and
// the user annotations are mutable.
type HistoryNode struct {
	// Private fields ensure encapsulation
	id          valueobjects.NodeID
	snapshot    valueobjects.DesignSnapshot
	parents     map[valueobjects.NodeID]bool
	children    map[valueobjects.NodeID]bool
	branchLabel string

	// Mutable user annotations
	bookmarked  bool
	tags        map[string]bool
	description string
}

// NewHistoryNode creates a node capturing the given snapshot.
// branchLabel is the branch opened at creation time, if any.
func NewHistoryNode(snapshot valueobjects.DesignSnapshot, parents []valueobjects.NodeID, branchLabel string) (*HistoryNode, error) {
	if snapshot.Timestamp.IsZero() {
		return nil, pkgerrors.NewValidationError("snapshot timestamp is required")
	}

	parentSet := make(map[valueobjects.NodeID]bool, len(parents))
	for _, p := range parents {
		if p.IsZero() {
			return nil, pkgerrors.NewValidationError("parent id cannot be zero")
		}
		parentSet[p] = true
	}

	return &HistoryNode{
		id:          valueobjects.NewNodeID(),
		snapshot:    snapshot,
		parents:     parentSet,
		children:    make(map[valueobjects.NodeID]bool),
		branchLabel: branchLabel,
		tags:        make(map[string]bool),
	}, nil
}

// ReconstructHistoryNode rebuilds a node from persisted data with its
// original identity and annotations preserved.
func ReconstructHistoryNode(
	id valueobjects.NodeID,
	snapshot valueobjects.DesignSnapshot,
	parents []valueobjects.NodeID,
	children []valueobjects.NodeID,
	branchLabel string,
	bookmarked bool,
	tags []string,
	description string,
) (*HistoryNode, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id is required for reconstruction")
	}

	parentSet := make(map[valueobjects.NodeID]bool, len(parents))
	for _, p := range parents {
		parentSet[p] = true
	}
	childSet := make(map[valueobjects.NodeID]bool, len(children))
	for _, c := range children {
		childSet[c] = true
	}
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[t] = true
	}

	return &HistoryNode{
		id:          id,
		snapshot:    snapshot,
		parents:     parentSet,
		children:    childSet,
		branchLabel: branchLabel,
		bookmarked:  bookmarked,
		tags:        tagSet,
		description: description,
	}, nil
}

// ID returns the node's unique identifier
func (n *HistoryNode) ID() valueobjects.NodeID {
	return n.id
}

// Snapshot returns the immutable snapshot payload
func (n *HistoryNode) Snapshot() valueobjects.DesignSnapshot {
	return n.snapshot
}

// Timestamp returns the snapshot's capture time
func (n *HistoryNode) Timestamp() time.Time {
	return n.snapshot.Timestamp
}

// BranchLabel returns the branch opened at this node, if any
func (n *HistoryNode) BranchLabel() string {
	return n.branchLabel
}

// Bookmarked reports whether the user bookmarked this node
func (n *HistoryNode) Bookmarked() bool {
	return n.bookmarked
}

// Description returns the user-supplied description
func (n *HistoryNode) Description() string {
	return n.description
}

// Parents returns the parent ids, sorted for determinism
func (n *HistoryNode) Parents() []valueobjects.NodeID {
	return sortedIDs(n.parents)
}

// Children returns the child ids, sorted for determinism
func (n *HistoryNode) Children() []valueobjects.NodeID {
	return sortedIDs(n.children)
}

// HasParent checks membership in the parent set
func (n *HistoryNode) HasParent(id valueobjects.NodeID) bool {
	return n.parents[id]
}

// HasChild checks membership in the child set
func (n *HistoryNode) HasChild(id valueobjects.NodeID) bool {
	return n.children[id]
}

// IsRoot reports whether this node has no parents
func (n *HistoryNode) IsRoot() bool {
	return len(n.parents) == 0
}

// Tags returns all tags, sorted
func (n *HistoryNode) Tags() []string {
	tags := make([]string, 0, len(n.tags))
	for t := range n.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// SetBookmark toggles the bookmark annotation
func (n *HistoryNode) SetBookmark(bookmarked bool) {
	n.bookmarked = bookmarked
}

// SetDescription replaces the description annotation
func (n *HistoryNode) SetDescription(description string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if len(description) > cfg.MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters", cfg.MaxDescriptionLength)
	}
	n.description = description
	return nil
}

// AddTag adds a tag annotation
func (n *HistoryNode) AddTag(tag string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}
	if n.tags[tag] {
		return nil // Tag already exists
	}
	if len(n.tags) >= cfg.MaxTagsPerNode {
		return fmt.Errorf("maximum tags reached: %d", cfg.MaxTagsPerNode)
	}
	n.tags[tag] = true
	return nil
}

// RemoveTag removes a tag annotation
func (n *HistoryNode) RemoveTag(tag string) error {
	if !n.tags[tag] {
		return pkgerrors.NewValidationError("tag not present")
	}
	delete(n.tags, tag)
	return nil
}

// LinkChild records a child edge. The node store is the only caller so
// that edges stay mutually recorded.
func (n *HistoryNode) LinkChild(id valueobjects.NodeID) {
	n.children[id] = true
}

// UnlinkChild drops a child edge
func (n *HistoryNode) UnlinkChild(id valueobjects.NodeID) {
	delete(n.children, id)
}

// UnlinkParent drops a parent edge
func (n *HistoryNode) UnlinkParent(id valueobjects.NodeID) {
	delete(n.parents, id)
}

func sortedIDs(set map[valueobjects.NodeID]bool) []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
