package aggregates

import (
	"sort"

	"github.com/BeadW/vyb-web-sub000/domain/config"
	"github.com/BeadW/vyb-web-sub000/domain/core/entities"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// BranchRegistry holds the named pointers into the node graph and tracks
// which branch is active. Branch deletion never touches nodes.
type BranchRegistry struct {
	branches map[valueobjects.BranchID]*entities.Branch
	activeID valueobjects.BranchID
}

// NewBranchRegistry creates an empty registry
func NewBranchRegistry() *BranchRegistry {
	return &BranchRegistry{
		branches: make(map[valueobjects.BranchID]*entities.Branch),
	}
}

// Create opens a new branch rooted at startNode
func (r *BranchRegistry) Create(name string, startNode valueobjects.NodeID, colorTag string, cfg *config.DomainConfig) (*entities.Branch, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if len(r.branches) >= cfg.MaxBranches {
		return nil, pkgerrors.NewConflictError("maximum branches reached")
	}

	branch, err := entities.NewBranch(name, startNode, colorTag)
	if err != nil {
		return nil, err
	}
	r.branches[branch.ID()] = branch
	return branch, nil
}

// Get retrieves a branch by id
func (r *BranchRegistry) Get(id valueobjects.BranchID) (*entities.Branch, error) {
	branch, exists := r.branches[id]
	if !exists {
		return nil, pkgerrors.NewBranchNotFoundError(id.String())
	}
	return branch, nil
}

// Has checks branch existence without error
func (r *BranchRegistry) Has(id valueobjects.BranchID) bool {
	_, exists := r.branches[id]
	return exists
}

// Len returns the number of registered branches
func (r *BranchRegistry) Len() int {
	return len(r.branches)
}

// Active returns the active branch, or nil when none is active
func (r *BranchRegistry) Active() *entities.Branch {
	if r.activeID.IsZero() {
		return nil
	}
	return r.branches[r.activeID]
}

// SetActive marks the given branch active and deactivates the previous one
func (r *BranchRegistry) SetActive(id valueobjects.BranchID) error {
	branch, exists := r.branches[id]
	if !exists {
		return pkgerrors.NewBranchNotFoundError(id.String())
	}
	if prev := r.Active(); prev != nil {
		prev.SetActive(false)
	}
	branch.SetActive(true)
	r.activeID = id
	return nil
}

// Delete removes a branch registry entry only. Returns false when the
// branch is absent or currently active.
func (r *BranchRegistry) Delete(id valueobjects.BranchID) bool {
	if _, exists := r.branches[id]; !exists {
		return false
	}
	if r.activeID.Equals(id) {
		return false
	}
	delete(r.branches, id)
	return true
}

// All returns every branch ordered by name, ties broken by id
func (r *BranchRegistry) All() []*entities.Branch {
	branches := make([]*entities.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Name() != branches[j].Name() {
			return branches[i].Name() < branches[j].Name()
		}
		return branches[i].ID().String() < branches[j].ID().String()
	})
	return branches
}

// PurgeNode removes an evicted node from every branch sequence. A branch
// whose sequence empties is dropped; if that branch was active, the
// registry is left with no active branch.
func (r *BranchRegistry) PurgeNode(id valueobjects.NodeID) {
	for branchID, branch := range r.branches {
		if !branch.Contains(id) {
			continue
		}
		if !branch.Purge(id) {
			if r.activeID.Equals(branchID) {
				branch.SetActive(false)
				r.activeID = valueobjects.BranchID{}
			}
			delete(r.branches, branchID)
		}
	}
}

// load registers a reconstructed branch. Used when rebuilding from
// persisted data.
func (r *BranchRegistry) load(branch *entities.Branch) error {
	if _, exists := r.branches[branch.ID()]; exists {
		return pkgerrors.NewDuplicateIDError(branch.ID().String())
	}
	r.branches[branch.ID()] = branch
	if branch.Active() {
		if !r.activeID.IsZero() {
			return pkgerrors.NewValidationError("multiple active branches in persisted data")
		}
		r.activeID = branch.ID()
	}
	return nil
}
