package aggregates

import (
	"time"

	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/entities"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	"github.com/BeadW/vyb-web-sub000/domain/events"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// HistoryGraph is the aggregate root for the versioned history engine. It
// composes the node store, the branch registry, and the linear navigation
// stacks behind one state machine. All mutating operations assume
// single-writer, serialized access; there is no internal locking.
//
// The undo stack is the path walked from a root to the current node, so its
// last element is always the current node while one is set. The redo stack
// holds nodes popped by undo and is disjoint from the undo stack.
type HistoryGraph struct {
	cfg      *config.DomainConfig
	store    *NodeStore
	branches *BranchRegistry

	undoStack []valueobjects.NodeID
	redoStack []valueobjects.NodeID
	current   valueobjects.NodeID

	// Domain events raised since the last commit
	events []events.DomainEvent
}

// NewHistoryGraph creates an empty history graph
func NewHistoryGraph(cfg *config.DomainConfig) *HistoryGraph {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &HistoryGraph{
		cfg:      cfg,
		store:    NewNodeStore(),
		branches: NewBranchRegistry(),
	}
}

// ReconstructHistoryGraph rebuilds an aggregate from persisted nodes and
// branches. The undo stack is re-derived as the root path to the current
// node; the redo stack does not survive a reload.
func ReconstructHistoryGraph(
	cfg *config.DomainConfig,
	nodes []*entities.HistoryNode,
	branches []*entities.Branch,
	currentNode *valueobjects.NodeID,
	activeBranch *valueobjects.BranchID,
) (*HistoryGraph, error) {
	g := NewHistoryGraph(cfg)

	for _, node := range nodes {
		if err := g.store.load(node); err != nil {
			return nil, err
		}
	}
	if err := g.store.Validate(); err != nil {
		return nil, err
	}
	for _, branch := range branches {
		if err := g.branches.load(branch); err != nil {
			return nil, err
		}
	}

	if activeBranch != nil && !activeBranch.IsZero() {
		if err := g.branches.SetActive(*activeBranch); err != nil {
			return nil, err
		}
	}
	if currentNode != nil && !currentNode.IsZero() {
		node, err := g.store.Get(*currentNode)
		if err != nil {
			return nil, err
		}
		g.current = node.ID()
		g.undoStack = g.rootPathTo(node.ID())
	}
	return g, nil
}

// CreateSnapshot captures a snapshot as a new history node whose parent is
// the current node (none for the first call). The redo stack is cleared
// unconditionally. When branchName is given a new branch rooted at the node
// is opened and made active; otherwise the node joins the active branch's
// sequence, if any.
func (g *HistoryGraph) CreateSnapshot(snapshot valueobjects.DesignSnapshot, branchName string) (valueobjects.NodeID, error) {
	var parents []valueobjects.NodeID
	if !g.current.IsZero() {
		parents = []valueobjects.NodeID{g.current}
	}

	node, err := entities.NewHistoryNode(snapshot, parents, branchName)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	if err := g.store.Insert(node); err != nil {
		return valueobjects.NodeID{}, err
	}

	g.undoStack = append(g.undoStack, node.ID())
	g.redoStack = nil
	g.current = node.ID()

	if branchName != "" {
		branch, err := g.branches.Create(branchName, node.ID(), "", g.cfg)
		if err != nil {
			return valueobjects.NodeID{}, err
		}
		if err := g.branches.SetActive(branch.ID()); err != nil {
			return valueobjects.NodeID{}, err
		}
		g.addEvent(events.NewBranchCreated(branch.ID(), branchName, node.ID(), time.Now()))
	} else if active := g.branches.Active(); active != nil {
		if err := active.Append(node.ID()); err != nil {
			return valueobjects.NodeID{}, err
		}
	}

	g.addEvent(events.NewSnapshotCaptured(node.ID(), node.Parents(), branchName, time.Now()))
	return node.ID(), nil
}

// Undo steps back to the previous node on the undo stack and returns its
// snapshot. Fails with CannotUndo when nothing precedes the current node.
func (g *HistoryGraph) Undo() (valueobjects.DesignSnapshot, error) {
	if len(g.undoStack) <= 1 {
		return valueobjects.DesignSnapshot{}, pkgerrors.NewCannotUndoError()
	}

	popped := g.undoStack[len(g.undoStack)-1]
	g.undoStack = g.undoStack[:len(g.undoStack)-1]
	g.redoStack = append(g.redoStack, popped)
	g.current = g.undoStack[len(g.undoStack)-1]

	node, err := g.store.Get(g.current)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}

	g.addEvent(events.NewHistoryUndone(popped, g.current, time.Now()))
	return node.Snapshot(), nil
}

// Redo re-applies the most recently undone node and returns its snapshot.
// Fails with CannotRedo when the redo stack is empty.
func (g *HistoryGraph) Redo() (valueobjects.DesignSnapshot, error) {
	if len(g.redoStack) == 0 {
		return valueobjects.DesignSnapshot{}, pkgerrors.NewCannotRedoError()
	}

	from := g.current
	next := g.redoStack[len(g.redoStack)-1]
	g.redoStack = g.redoStack[:len(g.redoStack)-1]
	g.undoStack = append(g.undoStack, next)
	g.current = next

	node, err := g.store.Get(next)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}

	g.addEvent(events.NewHistoryRedone(from, next, time.Now()))
	return node.Snapshot(), nil
}

// NavigateTo jumps to an arbitrary node. The undo stack is recomputed as
// the path from a root to the target; the redo stack is cleared when the
// target was not already on the old undo stack, because jumping to another
// branch invalidates forward history.
func (g *HistoryGraph) NavigateTo(id valueobjects.NodeID) (valueobjects.DesignSnapshot, error) {
	node, err := g.store.Get(id)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}

	wasOnUndoStack := false
	for _, stackID := range g.undoStack {
		if stackID.Equals(id) {
			wasOnUndoStack = true
			break
		}
	}

	g.undoStack = g.rootPathTo(id)
	g.current = id
	if !wasOnUndoStack {
		g.redoStack = nil
	}

	g.addEvent(events.NewHistoryNavigated(id, !wasOnUndoStack, time.Now()))
	return node.Snapshot(), nil
}

// CreateBranch opens a branch starting at fromNode (default: the current
// node, or a fresh placeholder id when no node exists yet) and makes it
// active. It does not create a node. Branching from a node other than the
// current one repositions the current node at the branch point, so the next
// snapshot parents there rather than at the old current node.
func (g *HistoryGraph) CreateBranch(name string, fromNode *valueobjects.NodeID, colorTag string) (valueobjects.BranchID, error) {
	start := g.current
	if fromNode != nil && !fromNode.IsZero() {
		if !g.store.Has(*fromNode) {
			return valueobjects.BranchID{}, pkgerrors.NewNodeNotFoundError(fromNode.String())
		}
		start = *fromNode
	}
	placeholder := start.IsZero()
	if placeholder {
		start = valueobjects.NewNodeID()
	}

	branch, err := g.branches.Create(name, start, colorTag, g.cfg)
	if err != nil {
		return valueobjects.BranchID{}, err
	}
	if err := g.branches.SetActive(branch.ID()); err != nil {
		return valueobjects.BranchID{}, err
	}

	if !placeholder && !start.Equals(g.current) {
		if _, err := g.NavigateTo(start); err != nil {
			return valueobjects.BranchID{}, err
		}
	}

	now := time.Now()
	g.addEvent(events.NewBranchCreated(branch.ID(), name, start, now))
	g.addEvent(events.NewBranchActivated(branch.ID(), now))
	return branch.ID(), nil
}

// SwitchToBranch navigates to the branch's most recently appended node and
// makes the branch active.
func (g *HistoryGraph) SwitchToBranch(id valueobjects.BranchID) (valueobjects.DesignSnapshot, error) {
	branch, err := g.branches.Get(id)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}

	snapshot, err := g.NavigateTo(branch.Tip())
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}
	if err := g.branches.SetActive(id); err != nil {
		return valueobjects.DesignSnapshot{}, err
	}

	g.addEvent(events.NewBranchActivated(id, time.Now()))
	return snapshot, nil
}

// DeleteBranch removes the branch registry entry only. Returns false when
// the branch is absent or currently active. Nodes stay reachable through
// the DAG and other branches.
func (g *HistoryGraph) DeleteBranch(id valueobjects.BranchID) bool {
	branch, err := g.branches.Get(id)
	if err != nil {
		return false
	}
	name := branch.Name()
	if !g.branches.Delete(id) {
		return false
	}
	g.addEvent(events.NewBranchDeleted(id, name, time.Now()))
	return true
}

// FindPath delegates to the node store's depth-first search
func (g *HistoryGraph) FindPath(fromID, toID valueobjects.NodeID) []valueobjects.NodeID {
	return g.store.FindPath(fromID, toID)
}

// Annotation operations

// SetBookmark toggles a node's bookmark annotation
func (g *HistoryGraph) SetBookmark(id valueobjects.NodeID, bookmarked bool) error {
	node, err := g.store.Get(id)
	if err != nil {
		return err
	}
	node.SetBookmark(bookmarked)
	g.addEvent(events.NewNodeAnnotated(id, "bookmarked", time.Now()))
	return nil
}

// AddTag adds a tag annotation to a node
func (g *HistoryGraph) AddTag(id valueobjects.NodeID, tag string) error {
	node, err := g.store.Get(id)
	if err != nil {
		return err
	}
	if err := node.AddTag(tag, g.cfg); err != nil {
		return err
	}
	g.addEvent(events.NewNodeAnnotated(id, "tags", time.Now()))
	return nil
}

// RemoveTag removes a tag annotation from a node
func (g *HistoryGraph) RemoveTag(id valueobjects.NodeID, tag string) error {
	node, err := g.store.Get(id)
	if err != nil {
		return err
	}
	if err := node.RemoveTag(tag); err != nil {
		return err
	}
	g.addEvent(events.NewNodeAnnotated(id, "tags", time.Now()))
	return nil
}

// SetDescription replaces a node's description annotation
func (g *HistoryGraph) SetDescription(id valueobjects.NodeID, description string) error {
	node, err := g.store.Get(id)
	if err != nil {
		return err
	}
	if err := node.SetDescription(description, g.cfg); err != nil {
		return err
	}
	g.addEvent(events.NewNodeAnnotated(id, "description", time.Now()))
	return nil
}

// EvictNodes removes the given nodes from the store and purges their ids
// from the navigation stacks and every branch sequence. The current node is
// never evicted; callers exclude it when selecting candidates.
func (g *HistoryGraph) EvictNodes(ids []valueobjects.NodeID) error {
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if id.Equals(g.current) {
			return pkgerrors.NewConflictError("cannot evict the current node")
		}
	}

	for _, id := range ids {
		if err := g.store.Remove(id); err != nil {
			return err
		}
		g.undoStack = purgeID(g.undoStack, id)
		g.redoStack = purgeID(g.redoStack, id)
		g.branches.PurgeNode(id)
	}

	g.addEvent(events.NewNodesEvicted(ids, time.Now()))
	return nil
}

// Accessors

// Store exposes the node store for read-side collaborators
func (g *HistoryGraph) Store() *NodeStore {
	return g.store
}

// Branches exposes the branch registry for read-side collaborators
func (g *HistoryGraph) Branches() *BranchRegistry {
	return g.branches
}

// CurrentNode returns the current node id, zero when none
func (g *HistoryGraph) CurrentNode() valueobjects.NodeID {
	return g.current
}

// CanUndo reports whether a prior state exists
func (g *HistoryGraph) CanUndo() bool {
	return len(g.undoStack) > 1
}

// CanRedo reports whether a forward state exists
func (g *HistoryGraph) CanRedo() bool {
	return len(g.redoStack) > 0
}

// UndoStack returns a copy of the undo stack, oldest first
func (g *HistoryGraph) UndoStack() []valueobjects.NodeID {
	stack := make([]valueobjects.NodeID, len(g.undoStack))
	copy(stack, g.undoStack)
	return stack
}

// RedoStack returns a copy of the redo stack
func (g *HistoryGraph) RedoStack() []valueobjects.NodeID {
	stack := make([]valueobjects.NodeID, len(g.redoStack))
	copy(stack, g.redoStack)
	return stack
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *HistoryGraph) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(g.events))
	copy(all, g.events)
	return all
}

// MarkEventsAsCommitted clears the uncommitted events
func (g *HistoryGraph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

// Private helpers

func (g *HistoryGraph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

// rootPathTo rebuilds the linear spine from a root to the target. Roots are
// tried oldest first (ties by id) so selection is deterministic even with
// multiple roots; the target alone is the fallback for orphaned nodes.
func (g *HistoryGraph) rootPathTo(target valueobjects.NodeID) []valueobjects.NodeID {
	for _, root := range g.store.Roots() {
		if path := g.store.FindPath(root.ID(), target); len(path) > 0 {
			return path
		}
	}
	return []valueobjects.NodeID{target}
}

func purgeID(stack []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	kept := stack[:0]
	for _, stackID := range stack {
		if !stackID.Equals(id) {
			kept = append(kept, stackID)
		}
	}
	return kept
}
