package services

import (
	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
)

// RetentionService bounds the total number of stored history nodes.
//
// Eviction is oldest-first by snapshot timestamp with ties broken by id,
// with one protection: the current node is never evicted (the next oldest
// candidate takes its place). Evicted ids are purged from the navigation
// stacks and from every branch sequence by the aggregate, so no dangling
// references survive an eviction.
type RetentionService struct{}

// NewRetentionService creates a retention service
func NewRetentionService() *RetentionService {
	return &RetentionService{}
}

// Enforce evicts the oldest nodes until at most maxSize remain. A maxSize
// below one disables retention. Returns the evicted ids.
func (s *RetentionService) Enforce(graph *aggregates.HistoryGraph, maxSize int) ([]valueobjects.NodeID, error) {
	if maxSize < 1 {
		return nil, nil
	}

	over := graph.Store().Len() - maxSize
	if over <= 0 {
		return nil, nil
	}

	current := graph.CurrentNode()
	var evict []valueobjects.NodeID
	for _, node := range graph.Store().All() {
		if len(evict) == over {
			break
		}
		if node.ID().Equals(current) {
			continue
		}
		evict = append(evict, node.ID())
	}

	if err := graph.EvictNodes(evict); err != nil {
		return nil, err
	}
	return evict, nil
}
