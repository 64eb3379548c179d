// Package services contains the application facade over the history domain.
package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/ports"
	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	domainservices "github.com/BeadW/vyb-web-sub000/domain/services"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// HistoryService is the single entry point into the history engine. It
// serializes all access to the aggregate behind one mutex, applies the
// retention bound after every capture, publishes domain events, and
// persists state changes asynchronously. Persistence failures are logged
// and never fail the in-memory operation that triggered them.
type HistoryService struct {
	mu sync.Mutex

	cfg       *config.DomainConfig
	graph     *aggregates.HistoryGraph
	diff      *domainservices.DiffService
	retention *domainservices.RetentionService

	repo      ports.HistoryRepository
	publisher ports.EventPublisher
	codec     ports.StateCodec
	logger    *zap.Logger

	// Saves run detached from the mutating call; the sequence numbers keep
	// a slow early save from clobbering a newer state on disk.
	saveSeq      uint64
	saveMu       sync.Mutex
	lastSavedSeq uint64
}

// NewHistoryService creates a history service with an empty graph. Call
// Restore to pick up previously persisted state.
func NewHistoryService(
	cfg *config.DomainConfig,
	repo ports.HistoryRepository,
	publisher ports.EventPublisher,
	codec ports.StateCodec,
	logger *zap.Logger,
) *HistoryService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &HistoryService{
		cfg:       cfg,
		graph:     aggregates.NewHistoryGraph(cfg),
		diff:      domainservices.NewDiffService(),
		retention: domainservices.NewRetentionService(),
		repo:      repo,
		publisher: publisher,
		codec:     codec,
		logger:    logger,
	}
}

// Restore loads the last persisted state, if any, replacing the current
// graph. A corrupt or unreadable record leaves the service on an empty
// graph and returns the error so the caller can decide how loudly to
// complain; starting fresh is always safe.
func (s *HistoryService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load persisted history, starting empty", zap.Error(err))
		return err
	}
	if state == nil {
		s.logger.Info("no persisted history found, starting empty")
		return nil
	}

	graph, err := aggregates.ReconstructFromState(s.cfg, *state)
	if err != nil {
		s.logger.Warn("persisted history failed validation, starting empty", zap.Error(err))
		return err
	}

	s.graph = graph
	s.logger.Info("restored persisted history",
		zap.Int("nodes", graph.Store().Len()),
		zap.Int("branches", graph.Branches().Len()),
	)
	return nil
}

// CreateSnapshot captures a new snapshot as a child of the current node and
// enforces the retention bound. When branchName is non-empty a new branch is
// opened at the node and made active.
func (s *HistoryService) CreateSnapshot(ctx context.Context, snapshot valueobjects.DesignSnapshot, branchName string) (valueobjects.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.CreateSnapshot(snapshot, branchName)
	if err != nil {
		return valueobjects.NodeID{}, err
	}

	evicted, err := s.retention.Enforce(s.graph, s.cfg.MaxHistorySize)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	if len(evicted) > 0 {
		s.logger.Debug("retention evicted nodes",
			zap.Int("count", len(evicted)),
			zap.Int("max_history_size", s.cfg.MaxHistorySize),
		)
	}

	s.commit(ctx)
	return id, nil
}

// Undo steps back one node and returns the restored snapshot
func (s *HistoryService) Undo(ctx context.Context) (valueobjects.DesignSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.graph.Undo()
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}
	s.commit(ctx)
	return snapshot, nil
}

// Redo re-applies the most recently undone node and returns its snapshot
func (s *HistoryService) Redo(ctx context.Context) (valueobjects.DesignSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.graph.Redo()
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}
	s.commit(ctx)
	return snapshot, nil
}

// NavigateTo jumps to an arbitrary node and returns its snapshot
func (s *HistoryService) NavigateTo(ctx context.Context, id valueobjects.NodeID) (valueobjects.DesignSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.graph.NavigateTo(id)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}
	s.commit(ctx)
	return snapshot, nil
}

// CreateBranch opens a named branch and makes it active. fromNode defaults
// to the current node.
func (s *HistoryService) CreateBranch(ctx context.Context, name string, fromNode *valueobjects.NodeID, colorTag string) (valueobjects.BranchID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.CreateBranch(name, fromNode, colorTag)
	if err != nil {
		return valueobjects.BranchID{}, err
	}
	s.commit(ctx)
	return id, nil
}

// SwitchToBranch activates a branch and navigates to its tip
func (s *HistoryService) SwitchToBranch(ctx context.Context, id valueobjects.BranchID) (valueobjects.DesignSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.graph.SwitchToBranch(id)
	if err != nil {
		return valueobjects.DesignSnapshot{}, err
	}
	s.commit(ctx)
	return snapshot, nil
}

// DeleteBranch removes a branch registry entry. It reports false for an
// unknown or active branch and leaves every node in place.
func (s *HistoryService) DeleteBranch(ctx context.Context, id valueobjects.BranchID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.DeleteBranch(id) {
		return false
	}
	s.commit(ctx)
	return true
}

// Compare diffs the snapshots of two stored nodes
func (s *HistoryService) Compare(ctx context.Context, aID, bID valueobjects.NodeID) (domainservices.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.graph.Store().Get(aID)
	if err != nil {
		return domainservices.Comparison{}, err
	}
	b, err := s.graph.Store().Get(bID)
	if err != nil {
		return domainservices.Comparison{}, err
	}
	return s.diff.Compare(a.Snapshot(), b.Snapshot()), nil
}

// FindPath returns the node ids along a parent-to-descendant path, or nil
// when no such path exists.
func (s *HistoryService) FindPath(fromID, toID valueobjects.NodeID) []valueobjects.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.FindPath(fromID, toID)
}

// SetBookmark toggles a node's bookmark annotation
func (s *HistoryService) SetBookmark(ctx context.Context, id valueobjects.NodeID, bookmarked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.SetBookmark(id, bookmarked); err != nil {
		return err
	}
	s.commit(ctx)
	return nil
}

// AddTag adds a tag annotation to a node
func (s *HistoryService) AddTag(ctx context.Context, id valueobjects.NodeID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.AddTag(id, tag); err != nil {
		return err
	}
	s.commit(ctx)
	return nil
}

// RemoveTag removes a tag annotation from a node
func (s *HistoryService) RemoveTag(ctx context.Context, id valueobjects.NodeID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.RemoveTag(id, tag); err != nil {
		return err
	}
	s.commit(ctx)
	return nil
}

// SetDescription replaces a node's description annotation
func (s *HistoryService) SetDescription(ctx context.Context, id valueobjects.NodeID, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.SetDescription(id, description); err != nil {
		return err
	}
	s.commit(ctx)
	return nil
}

// State returns a deep-copy snapshot of the full engine state
func (s *HistoryService) State() aggregates.HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.State()
}

// Export renders the engine state as a portable versioned document
func (s *HistoryService) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.Encode(s.graph.State())
}

// Import replaces the engine state with a previously exported document.
// Malformed documents are rejected with an import decode error and leave
// the running state untouched.
func (s *HistoryService) Import(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.codec.Decode(data)
	if err != nil {
		return err
	}
	graph, err := aggregates.ReconstructFromState(s.cfg, *state)
	if err != nil {
		return pkgerrors.NewImportDecodeError("document violates graph invariants", err)
	}

	s.graph = graph
	s.persistAsync(s.graph.State())
	return nil
}

// commit publishes the aggregate's uncommitted events and schedules an
// asynchronous save of the post-mutation state. Must be called with the
// mutex held.
func (s *HistoryService) commit(ctx context.Context) {
	uncommitted := s.graph.GetUncommittedEvents()
	s.graph.MarkEventsAsCommitted()

	if len(uncommitted) > 0 && s.publisher != nil {
		if err := s.publisher.Publish(ctx, uncommitted...); err != nil {
			s.logger.Warn("failed to publish domain events",
				zap.Int("count", len(uncommitted)),
				zap.Error(err),
			)
		}
	}

	s.persistAsync(s.graph.State())
}

// persistAsync saves a state snapshot on a detached goroutine. The snapshot
// is a deep copy, so the save never races later mutations. Must be called
// with the mutex held.
func (s *HistoryService) persistAsync(state aggregates.HistoryState) {
	if s.repo == nil {
		return
	}
	s.saveSeq++
	seq := s.saveSeq

	go func() {
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if seq <= s.lastSavedSeq {
			return
		}
		if err := s.repo.Save(context.Background(), state); err != nil {
			s.logger.Error("failed to persist history state", zap.Error(err))
			return
		}
		s.lastSavedSeq = seq
	}()
}
