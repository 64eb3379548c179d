// Package codec serializes the full engine state to and from a portable
// JSON document. The document format is versioned so older exports keep
// importing as the schema evolves.
package codec

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
	"github.com/BeadW/vyb-web-sub000/pkg/utils"
)

// FormatVersion is the current export document schema version
const FormatVersion = 1

// JSONCodec implements the application's state codec port on top of the
// versioned document format.
type JSONCodec struct{}

// NewJSONCodec creates a JSON state codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode implements ports.StateCodec
func (c *JSONCodec) Encode(state aggregates.HistoryState) ([]byte, error) {
	return Encode(state)
}

// Decode implements ports.StateCodec
func (c *JSONCodec) Decode(data []byte) (*aggregates.HistoryState, error) {
	return Decode(data)
}

// Document is the portable wire form of the engine state
type Document struct {
	FormatVersion int            `json:"format_version" validate:"required,eq=1"`
	Nodes         []NodeRecord   `json:"nodes" validate:"dive"`
	Branches      []BranchRecord `json:"branches" validate:"dive"`
	CurrentNode   string         `json:"current_node,omitempty"`
	ActiveBranch  string         `json:"active_branch,omitempty"`
}

// NodeRecord is one node in the export document
type NodeRecord struct {
	ID          string                      `json:"id" validate:"required,uuid"`
	Snapshot    valueobjects.DesignSnapshot `json:"snapshot"`
	Parents     []string                    `json:"parents" validate:"dive,uuid"`
	BranchLabel string                      `json:"branch_label,omitempty"`
	Bookmarked  bool                        `json:"bookmarked,omitempty"`
	Tags        []string                    `json:"tags,omitempty"`
	Description string                      `json:"description,omitempty"`
}

// BranchRecord is one branch in the export document
type BranchRecord struct {
	ID          string   `json:"id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required"`
	ColorTag    string   `json:"color_tag,omitempty"`
	Sequence    []string `json:"node_sequence" validate:"min=1,dive,uuid"`
	Active      bool     `json:"active,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Encode renders a state snapshot as a versioned JSON document. Nodes and
// branches are emitted in a stable order so exports are diffable.
func Encode(state aggregates.HistoryState) ([]byte, error) {
	doc := Document{
		FormatVersion: FormatVersion,
		Nodes:         make([]NodeRecord, 0, len(state.Nodes)),
		Branches:      make([]BranchRecord, 0, len(state.Branches)),
	}

	for _, view := range state.Nodes {
		parents := make([]string, 0, len(view.Parents))
		for _, parent := range view.Parents {
			parents = append(parents, parent.String())
		}
		doc.Nodes = append(doc.Nodes, NodeRecord{
			ID:          view.ID.String(),
			Snapshot:    view.Snapshot,
			Parents:     parents,
			BranchLabel: view.BranchLabel,
			Bookmarked:  view.Bookmarked,
			Tags:        view.Tags,
			Description: view.Description,
		})
	}
	sort.Slice(doc.Nodes, func(i, j int) bool {
		a, b := doc.Nodes[i], doc.Nodes[j]
		if !a.Snapshot.Timestamp.Equal(b.Snapshot.Timestamp) {
			return a.Snapshot.Timestamp.Before(b.Snapshot.Timestamp)
		}
		return a.ID < b.ID
	})

	for _, view := range state.Branches {
		sequence := make([]string, 0, len(view.Sequence))
		for _, id := range view.Sequence {
			sequence = append(sequence, id.String())
		}
		doc.Branches = append(doc.Branches, BranchRecord{
			ID:          view.ID.String(),
			Name:        view.Name,
			ColorTag:    view.ColorTag,
			Sequence:    sequence,
			Active:      view.Active,
			Description: view.Description,
		})
	}
	sort.Slice(doc.Branches, func(i, j int) bool {
		if doc.Branches[i].Name != doc.Branches[j].Name {
			return doc.Branches[i].Name < doc.Branches[j].Name
		}
		return doc.Branches[i].ID < doc.Branches[j].ID
	})

	if state.CurrentNode != nil {
		doc.CurrentNode = state.CurrentNode.String()
	}
	if state.ActiveBranch != nil {
		doc.ActiveBranch = state.ActiveBranch.String()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("encode", err)
	}
	return data, nil
}

// Decode parses and validates an exported document into a state snapshot.
// Any structural problem yields an import decode error; no partial state is
// ever returned.
func Decode(data []byte) (*aggregates.HistoryState, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, pkgerrors.NewImportDecodeError("document is not valid JSON", err)
	}
	if doc.FormatVersion != FormatVersion {
		return nil, pkgerrors.NewImportDecodeError("unsupported format version", nil)
	}
	if err := utils.ValidateStruct(doc); err != nil {
		return nil, pkgerrors.NewImportDecodeError("document failed validation", err)
	}

	state := aggregates.HistoryState{
		Nodes:    make(map[valueobjects.NodeID]aggregates.NodeView, len(doc.Nodes)),
		Branches: make(map[valueobjects.BranchID]aggregates.BranchView, len(doc.Branches)),
	}

	for _, record := range doc.Nodes {
		id, err := valueobjects.NewNodeIDFromString(record.ID)
		if err != nil {
			return nil, pkgerrors.NewImportDecodeError("invalid node id", err)
		}
		if _, exists := state.Nodes[id]; exists {
			return nil, pkgerrors.NewImportDecodeError("duplicate node id "+record.ID, nil)
		}
		parents := make([]valueobjects.NodeID, 0, len(record.Parents))
		for _, parent := range record.Parents {
			parentID, err := valueobjects.NewNodeIDFromString(parent)
			if err != nil {
				return nil, pkgerrors.NewImportDecodeError("invalid parent id", err)
			}
			parents = append(parents, parentID)
		}
		state.Nodes[id] = aggregates.NodeView{
			ID:          id,
			Snapshot:    record.Snapshot,
			Parents:     parents,
			BranchLabel: record.BranchLabel,
			Bookmarked:  record.Bookmarked,
			Tags:        record.Tags,
			Description: record.Description,
		}
	}

	// Children are re-derived from parent edges so the document stays
	// minimal and the two edge directions cannot disagree.
	children := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for id, view := range state.Nodes {
		for _, parent := range view.Parents {
			if _, exists := state.Nodes[parent]; !exists {
				return nil, pkgerrors.NewImportDecodeError("node "+id.String()+" references unknown parent "+parent.String(), nil)
			}
			children[parent] = append(children[parent], id)
		}
	}
	for id, view := range state.Nodes {
		view.Children = children[id]
		state.Nodes[id] = view
	}

	for _, record := range doc.Branches {
		id, err := valueobjects.NewBranchIDFromString(record.ID)
		if err != nil {
			return nil, pkgerrors.NewImportDecodeError("invalid branch id", err)
		}
		if _, exists := state.Branches[id]; exists {
			return nil, pkgerrors.NewImportDecodeError("duplicate branch id "+record.ID, nil)
		}
		sequence := make([]valueobjects.NodeID, 0, len(record.Sequence))
		for _, nodeID := range record.Sequence {
			parsed, err := valueobjects.NewNodeIDFromString(nodeID)
			if err != nil {
				return nil, pkgerrors.NewImportDecodeError("invalid branch sequence id", err)
			}
			sequence = append(sequence, parsed)
		}
		state.Branches[id] = aggregates.BranchView{
			ID:          id,
			Name:        record.Name,
			StartNode:   sequence[0],
			ColorTag:    record.ColorTag,
			Sequence:    sequence,
			Active:      record.Active,
			Description: record.Description,
		}
	}

	if doc.CurrentNode != "" {
		current, err := valueobjects.NewNodeIDFromString(doc.CurrentNode)
		if err != nil {
			return nil, pkgerrors.NewImportDecodeError("invalid current node id", err)
		}
		if _, exists := state.Nodes[current]; !exists {
			return nil, pkgerrors.NewImportDecodeError("current node "+doc.CurrentNode+" is not in the document", nil)
		}
		state.CurrentNode = &current
	}
	if doc.ActiveBranch != "" {
		active, err := valueobjects.NewBranchIDFromString(doc.ActiveBranch)
		if err != nil {
			return nil, pkgerrors.NewImportDecodeError("invalid active branch id", err)
		}
		if _, exists := state.Branches[active]; !exists {
			return nil, pkgerrors.NewImportDecodeError("active branch "+doc.ActiveBranch+" is not in the document", nil)
		}
		state.ActiveBranch = &active
	}

	return &state, nil
}
