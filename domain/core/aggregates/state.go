package aggregates

import (
	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/entities"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

// NodeView is an immutable projection of a history node
type NodeView struct {
	ID          valueobjects.NodeID         `json:"id"`
	Snapshot    valueobjects.DesignSnapshot `json:"snapshot"`
	Parents     []valueobjects.NodeID       `json:"parents"`
	Children    []valueobjects.NodeID       `json:"children"`
	BranchLabel string                      `json:"branch_label,omitempty"`
	Bookmarked  bool                        `json:"bookmarked"`
	Tags        []string                    `json:"tags"`
	Description string                      `json:"description,omitempty"`
}

// BranchView is an immutable projection of a branch
type BranchView struct {
	ID          valueobjects.BranchID `json:"id"`
	Name        string                `json:"name"`
	StartNode   valueobjects.NodeID   `json:"start_node"`
	ColorTag    string                `json:"color_tag,omitempty"`
	Sequence    []valueobjects.NodeID `json:"node_sequence"`
	Active      bool                  `json:"active"`
	Description string                `json:"description,omitempty"`
}

// HistoryState is the engine's externally visible snapshot. It is a deep
// copy: callers on other threads may hold it freely but must not assume it
// stays current beyond the moment it was taken.
type HistoryState struct {
	Nodes        map[valueobjects.NodeID]NodeView     `json:"nodes"`
	Branches     map[valueobjects.BranchID]BranchView `json:"branches"`
	CurrentNode  *valueobjects.NodeID                 `json:"current_node,omitempty"`
	ActiveBranch *valueobjects.BranchID               `json:"active_branch,omitempty"`
	CanUndo      bool                                 `json:"can_undo"`
	CanRedo      bool                                 `json:"can_redo"`
}

// State takes an immutable snapshot of the whole engine state
func (g *HistoryGraph) State() HistoryState {
	state := HistoryState{
		Nodes:    make(map[valueobjects.NodeID]NodeView, g.store.Len()),
		Branches: make(map[valueobjects.BranchID]BranchView, g.branches.Len()),
		CanUndo:  g.CanUndo(),
		CanRedo:  g.CanRedo(),
	}

	for _, node := range g.store.All() {
		state.Nodes[node.ID()] = NodeView{
			ID:          node.ID(),
			Snapshot:    node.Snapshot(),
			Parents:     node.Parents(),
			Children:    node.Children(),
			BranchLabel: node.BranchLabel(),
			Bookmarked:  node.Bookmarked(),
			Tags:        node.Tags(),
			Description: node.Description(),
		}
	}

	for _, branch := range g.branches.All() {
		state.Branches[branch.ID()] = BranchView{
			ID:          branch.ID(),
			Name:        branch.Name(),
			StartNode:   branch.StartNode(),
			ColorTag:    branch.ColorTag(),
			Sequence:    branch.Sequence(),
			Active:      branch.Active(),
			Description: branch.Description(),
		}
	}

	if !g.current.IsZero() {
		current := g.current
		state.CurrentNode = &current
	}
	if active := g.branches.Active(); active != nil {
		activeID := active.ID()
		state.ActiveBranch = &activeID
	}
	return state
}

// ReconstructFromState rebuilds an aggregate from a previously taken state
// snapshot, re-validating every graph invariant on the way in.
func ReconstructFromState(cfg *config.DomainConfig, state HistoryState) (*HistoryGraph, error) {
	nodes := make([]*entities.HistoryNode, 0, len(state.Nodes))
	for _, view := range state.Nodes {
		node, err := entities.ReconstructHistoryNode(
			view.ID,
			view.Snapshot,
			view.Parents,
			view.Children,
			view.BranchLabel,
			view.Bookmarked,
			view.Tags,
			view.Description,
		)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	branches := make([]*entities.Branch, 0, len(state.Branches))
	for _, view := range state.Branches {
		branch, err := entities.ReconstructBranch(
			view.ID,
			view.Name,
			view.ColorTag,
			view.Sequence,
			view.Active,
			view.Description,
		)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	return ReconstructHistoryGraph(cfg, nodes, branches, state.CurrentNode, state.ActiveBranch)
}
