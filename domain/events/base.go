package events

import (
	"time"

	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// History events

// SnapshotCaptured is raised when a new history node is created
type SnapshotCaptured struct {
	BaseEvent
	NodeID     valueobjects.NodeID   `json:"node_id"`
	ParentIDs  []valueobjects.NodeID `json:"parent_ids"`
	BranchName string                `json:"branch_name,omitempty"`
}

// NewSnapshotCaptured creates a SnapshotCaptured event
func NewSnapshotCaptured(nodeID valueobjects.NodeID, parentIDs []valueobjects.NodeID, branchName string, timestamp time.Time) SnapshotCaptured {
	return SnapshotCaptured{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "history.snapshot_captured",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:     nodeID,
		ParentIDs:  parentIDs,
		BranchName: branchName,
	}
}

// HistoryUndone is raised when undo moves the current node backward
type HistoryUndone struct {
	BaseEvent
	FromNodeID valueobjects.NodeID `json:"from_node_id"`
	ToNodeID   valueobjects.NodeID `json:"to_node_id"`
}

// NewHistoryUndone creates a HistoryUndone event
func NewHistoryUndone(fromID, toID valueobjects.NodeID, timestamp time.Time) HistoryUndone {
	return HistoryUndone{
		BaseEvent: BaseEvent{
			AggregateID: toID.String(),
			EventType:   "history.undone",
			Timestamp:   timestamp,
			Version:     1,
		},
		FromNodeID: fromID,
		ToNodeID:   toID,
	}
}

// HistoryRedone is raised when redo moves the current node forward
type HistoryRedone struct {
	BaseEvent
	FromNodeID valueobjects.NodeID `json:"from_node_id"`
	ToNodeID   valueobjects.NodeID `json:"to_node_id"`
}

// NewHistoryRedone creates a HistoryRedone event
func NewHistoryRedone(fromID, toID valueobjects.NodeID, timestamp time.Time) HistoryRedone {
	return HistoryRedone{
		BaseEvent: BaseEvent{
			AggregateID: toID.String(),
			EventType:   "history.redone",
			Timestamp:   timestamp,
			Version:     1,
		},
		FromNodeID: fromID,
		ToNodeID:   toID,
	}
}

// HistoryNavigated is raised when navigation jumps to an arbitrary node
type HistoryNavigated struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	RedoCleared bool                `json:"redo_cleared"`
}

// NewHistoryNavigated creates a HistoryNavigated event
func NewHistoryNavigated(nodeID valueobjects.NodeID, redoCleared bool, timestamp time.Time) HistoryNavigated {
	return HistoryNavigated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "history.navigated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:      nodeID,
		RedoCleared: redoCleared,
	}
}

// Branch events

// BranchCreated is raised when a branch is opened
type BranchCreated struct {
	BaseEvent
	BranchID  valueobjects.BranchID `json:"branch_id"`
	Name      string                `json:"name"`
	StartNode valueobjects.NodeID   `json:"start_node"`
}

// NewBranchCreated creates a BranchCreated event
func NewBranchCreated(branchID valueobjects.BranchID, name string, startNode valueobjects.NodeID, timestamp time.Time) BranchCreated {
	return BranchCreated{
		BaseEvent: BaseEvent{
			AggregateID: branchID.String(),
			EventType:   "history.branch_created",
			Timestamp:   timestamp,
			Version:     1,
		},
		BranchID:  branchID,
		Name:      name,
		StartNode: startNode,
	}
}

// BranchActivated is raised when the active branch changes
type BranchActivated struct {
	BaseEvent
	BranchID valueobjects.BranchID `json:"branch_id"`
}

// NewBranchActivated creates a BranchActivated event
func NewBranchActivated(branchID valueobjects.BranchID, timestamp time.Time) BranchActivated {
	return BranchActivated{
		BaseEvent: BaseEvent{
			AggregateID: branchID.String(),
			EventType:   "history.branch_activated",
			Timestamp:   timestamp,
			Version:     1,
		},
		BranchID: branchID,
	}
}

// BranchDeleted is raised when a branch registry entry is removed
type BranchDeleted struct {
	BaseEvent
	BranchID valueobjects.BranchID `json:"branch_id"`
	Name     string                `json:"name"`
}

// NewBranchDeleted creates a BranchDeleted event
func NewBranchDeleted(branchID valueobjects.BranchID, name string, timestamp time.Time) BranchDeleted {
	return BranchDeleted{
		BaseEvent: BaseEvent{
			AggregateID: branchID.String(),
			EventType:   "history.branch_deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		BranchID: branchID,
		Name:     name,
	}
}

// Retention events

// NodesEvicted is raised when the retention policy removes old nodes
type NodesEvicted struct {
	BaseEvent
	NodeIDs []valueobjects.NodeID `json:"node_ids"`
}

// NewNodesEvicted creates a NodesEvicted event
func NewNodesEvicted(nodeIDs []valueobjects.NodeID, timestamp time.Time) NodesEvicted {
	aggregateID := ""
	if len(nodeIDs) > 0 {
		aggregateID = nodeIDs[0].String()
	}
	return NodesEvicted{
		BaseEvent: BaseEvent{
			AggregateID: aggregateID,
			EventType:   "history.nodes_evicted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeIDs: nodeIDs,
	}
}

// Annotation events

// NodeAnnotated is raised when a node's bookmark, tags, or description change
type NodeAnnotated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Field  string              `json:"field"`
}

// NewNodeAnnotated creates a NodeAnnotated event
func NewNodeAnnotated(nodeID valueobjects.NodeID, field string, timestamp time.Time) NodeAnnotated {
	return NodeAnnotated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "history.node_annotated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		Field:  field,
	}
}
