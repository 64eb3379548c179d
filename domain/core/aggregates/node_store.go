package aggregates

import (
	"sort"

	"github.com/BeadW/vyb-web-sub000/domain/core/entities"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// NodeStore is the exclusive owner of all history nodes and the edges
// between them. Every other component reads nodes through it, and edges are
// only ever recorded mutually: a child id appears in a parent's children set
// iff the parent id appears in the child's parents set.
type NodeStore struct {
	nodes map[valueobjects.NodeID]*entities.HistoryNode
}

// NewNodeStore creates an empty node store
func NewNodeStore() *NodeStore {
	return &NodeStore{
		nodes: make(map[valueobjects.NodeID]*entities.HistoryNode),
	}
}

// Insert adds a node to the store. Every declared parent must already be
// stored; the mutual child edges are recorded here.
func (s *NodeStore) Insert(node *entities.HistoryNode) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := s.nodes[node.ID()]; exists {
		return pkgerrors.NewDuplicateIDError(node.ID().String())
	}

	for _, parentID := range node.Parents() {
		if _, exists := s.nodes[parentID]; !exists {
			return pkgerrors.NewNodeNotFoundError(parentID.String())
		}
	}

	s.nodes[node.ID()] = node
	for _, parentID := range node.Parents() {
		if err := s.Link(parentID, node.ID()); err != nil {
			delete(s.nodes, node.ID())
			return err
		}
	}
	return nil
}

// Link records the child edge for an existing parent/child pair. The child
// must already name the parent in its parents set, and the edge must not
// close a cycle.
func (s *NodeStore) Link(parentID, childID valueobjects.NodeID) error {
	parent, exists := s.nodes[parentID]
	if !exists {
		return pkgerrors.NewNodeNotFoundError(parentID.String())
	}
	child, exists := s.nodes[childID]
	if !exists {
		return pkgerrors.NewNodeNotFoundError(childID.String())
	}
	if !child.HasParent(parentID) {
		return pkgerrors.NewValidationError("child does not record the parent edge")
	}
	if s.IsAncestor(childID, parentID) {
		return pkgerrors.NewConflictError("edge would create a cycle")
	}

	parent.LinkChild(child.ID())
	return nil
}

// Remove deletes a node and unlinks it from all parents' children sets and
// all children's parents sets. Descendants are not deleted; eviction policy
// is the caller's responsibility.
func (s *NodeStore) Remove(id valueobjects.NodeID) error {
	node, exists := s.nodes[id]
	if !exists {
		return pkgerrors.NewNodeNotFoundError(id.String())
	}

	for _, parentID := range node.Parents() {
		if parent, ok := s.nodes[parentID]; ok {
			parent.UnlinkChild(id)
		}
	}
	for _, childID := range node.Children() {
		if child, ok := s.nodes[childID]; ok {
			child.UnlinkParent(id)
		}
	}

	delete(s.nodes, id)
	return nil
}

// Get retrieves a node by id
func (s *NodeStore) Get(id valueobjects.NodeID) (*entities.HistoryNode, error) {
	node, exists := s.nodes[id]
	if !exists {
		return nil, pkgerrors.NewNodeNotFoundError(id.String())
	}
	return node, nil
}

// Has checks node existence without error
func (s *NodeStore) Has(id valueobjects.NodeID) bool {
	_, exists := s.nodes[id]
	return exists
}

// Len returns the number of stored nodes
func (s *NodeStore) Len() int {
	return len(s.nodes)
}

// All returns every node, ordered by snapshot timestamp ascending with ties
// broken by id, so callers iterate deterministically.
func (s *NodeStore) All() []*entities.HistoryNode {
	nodes := make([]*entities.HistoryNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		ti, tj := nodes[i].Timestamp(), nodes[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
	return nodes
}

// Roots returns all nodes with no parents, in the same deterministic order
// as All. Root selection for path reconstruction takes the first entry.
func (s *NodeStore) Roots() []*entities.HistoryNode {
	roots := []*entities.HistoryNode{}
	for _, node := range s.All() {
		if node.IsRoot() {
			roots = append(roots, node)
		}
	}
	return roots
}

// IsAncestor reports whether ancestorID appears in the ancestor closure of
// descendantID. Walks parent edges with a visited set.
func (s *NodeStore) IsAncestor(ancestorID, descendantID valueobjects.NodeID) bool {
	visited := make(map[valueobjects.NodeID]bool)
	stack := []valueobjects.NodeID{descendantID}

	for len(stack) > 0 {
		currentID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, exists := s.nodes[currentID]
		if !exists {
			continue
		}
		for _, parentID := range node.Parents() {
			if parentID.Equals(ancestorID) {
				return true
			}
			stack = append(stack, parentID)
		}
	}
	return false
}

// FindPath finds a path from one node to another following children edges
// only, depth first. Returns the first discovered path, or an empty slice
// when the target is unreachable. O(V+E) worst case.
func (s *NodeStore) FindPath(fromID, toID valueobjects.NodeID) []valueobjects.NodeID {
	if !s.Has(fromID) || !s.Has(toID) {
		return nil
	}

	visited := make(map[valueobjects.NodeID]bool)
	var path []valueobjects.NodeID

	var dfs func(id valueobjects.NodeID) bool
	dfs = func(id valueobjects.NodeID) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		path = append(path, id)

		if id.Equals(toID) {
			return true
		}

		node := s.nodes[id]
		for _, childID := range node.Children() {
			if dfs(childID) {
				return true
			}
		}

		path = path[:len(path)-1]
		return false
	}

	if dfs(fromID) {
		result := make([]valueobjects.NodeID, len(path))
		copy(result, path)
		return result
	}
	return nil
}

// Validate ensures graph invariants: acyclicity and mutually recorded edges
func (s *NodeStore) Validate() error {
	for id, node := range s.nodes {
		for _, parentID := range node.Parents() {
			parent, exists := s.nodes[parentID]
			if !exists {
				return pkgerrors.NewValidationError("node references non-existent parent")
			}
			if !parent.HasChild(id) {
				return pkgerrors.NewValidationError("parent does not record the child edge")
			}
		}
		for _, childID := range node.Children() {
			child, exists := s.nodes[childID]
			if !exists {
				return pkgerrors.NewValidationError("node references non-existent child")
			}
			if !child.HasParent(id) {
				return pkgerrors.NewValidationError("child does not record the parent edge")
			}
		}
		if s.IsAncestor(id, id) {
			return pkgerrors.NewValidationError("graph contains a cycle")
		}
	}
	return nil
}

// load inserts a reconstructed node without re-deriving edges. Used when
// rebuilding the store from persisted data; Validate runs afterward.
func (s *NodeStore) load(node *entities.HistoryNode) error {
	if _, exists := s.nodes[node.ID()]; exists {
		return pkgerrors.NewDuplicateIDError(node.ID().String())
	}
	s.nodes[node.ID()] = node
	return nil
}
