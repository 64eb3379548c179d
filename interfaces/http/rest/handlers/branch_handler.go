package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/services"
	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	"github.com/BeadW/vyb-web-sub000/pkg/common"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
	"github.com/BeadW/vyb-web-sub000/pkg/utils"
)

// BranchHandler handles branch-related HTTP requests
type BranchHandler struct {
	service *services.HistoryService
	errorsH *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(service *services.HistoryService, errorsH *pkgerrors.ErrorHandler, logger *zap.Logger) *BranchHandler {
	return &BranchHandler{
		service: service,
		errorsH: errorsH,
		logger:  logger,
	}
}

// CreateBranchRequest represents the request body for creating a branch
type CreateBranchRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	FromNode string `json:"from_node,omitempty" validate:"omitempty,uuid"`
	ColorTag string `json:"color_tag,omitempty" validate:"omitempty,max=50"`
}

// CreateBranchResponse represents the response for creating a branch
type CreateBranchResponse struct {
	BranchID string `json:"branch_id"`
}

// CreateBranch handles POST /branches
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	var fromNode *valueobjects.NodeID
	if req.FromNode != "" {
		id, err := valueobjects.NewNodeIDFromString(req.FromNode)
		if err != nil {
			h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid from_node id: "+req.FromNode))
			return
		}
		fromNode = &id
	}

	branchID, err := h.service.CreateBranch(r.Context(), req.Name, fromNode, req.ColorTag)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	h.logger.Debug("Branch created",
		zap.String("branchID", branchID.String()),
		zap.String("name", req.Name),
	)
	common.RespondJSON(w, http.StatusCreated, CreateBranchResponse{BranchID: branchID.String()})
}

// ListBranches handles GET /branches
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	state := h.service.State()

	branches := make([]aggregates.BranchView, 0, len(state.Branches))
	for _, view := range state.Branches {
		branches = append(branches, view)
	}
	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Name != branches[j].Name {
			return branches[i].Name < branches[j].Name
		}
		return branches[i].ID.String() < branches[j].ID.String()
	})

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"branches": branches,
		"total":    len(branches),
	})
}

// SwitchBranch handles POST /branches/{branchID}/switch
func (h *BranchHandler) SwitchBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := h.branchIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	snapshot, err := h.service.SwitchToBranch(r.Context(), branchID)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snapshot})
}

// DeleteBranch handles DELETE /branches/{branchID}
func (h *BranchHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := h.branchIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	if !h.service.DeleteBranch(r.Context(), branchID) {
		h.errorsH.Handle(w, r, pkgerrors.NewConflictError("branch does not exist or is active"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func (h *BranchHandler) branchIDParam(r *http.Request) (valueobjects.BranchID, error) {
	raw := chi.URLParam(r, "branchID")
	if raw == "" {
		return valueobjects.BranchID{}, pkgerrors.NewValidationError("branch id is required")
	}
	id, err := valueobjects.NewBranchIDFromString(raw)
	if err != nil {
		return valueobjects.BranchID{}, pkgerrors.NewValidationError("invalid branch id: " + raw)
	}
	return id, nil
}
