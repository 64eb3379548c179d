// Package handlers contains the HTTP request handlers for the history API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/services"
	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	"github.com/BeadW/vyb-web-sub000/pkg/common"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
	"github.com/BeadW/vyb-web-sub000/pkg/utils"
)

// maxImportSize bounds import payloads at 32 MiB
const maxImportSize = 32 << 20

// HistoryHandler handles history-related HTTP requests
type HistoryHandler struct {
	service *services.HistoryService
	errorsH *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *services.HistoryService, errorsH *pkgerrors.ErrorHandler, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		errorsH: errorsH,
		logger:  logger,
	}
}

// CaptureSnapshotRequest represents the request body for capturing a snapshot
type CaptureSnapshotRequest struct {
	Timestamp  time.Time                    `json:"timestamp"`
	Elements   []valueobjects.DesignElement `json:"elements"`
	Viewport   valueobjects.Viewport        `json:"viewport"`
	BranchName string                       `json:"branch_name,omitempty" validate:"omitempty,min=1,max=100"`
}

// CaptureSnapshotResponse represents the response for capturing a snapshot
type CaptureSnapshotResponse struct {
	NodeID string `json:"node_id"`
}

// SnapshotResponse carries the snapshot restored by a navigation operation
type SnapshotResponse struct {
	Snapshot valueobjects.DesignSnapshot `json:"snapshot"`
}

// CaptureSnapshot handles POST /snapshots
func (h *HistoryHandler) CaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	var req CaptureSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	snapshot, err := valueobjects.NewDesignSnapshot(req.Timestamp, req.Elements, req.Viewport)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	nodeID, err := h.service.CreateSnapshot(r.Context(), snapshot, req.BranchName)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	h.logger.Debug("Snapshot captured",
		zap.String("nodeID", nodeID.String()),
		zap.String("branch", req.BranchName),
	)
	common.RespondJSON(w, http.StatusCreated, CaptureSnapshotResponse{NodeID: nodeID.String()})
}

// Undo handles POST /undo
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Undo(r.Context())
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snapshot})
}

// Redo handles POST /redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Redo(r.Context())
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snapshot})
}

// Navigate handles POST /nodes/{nodeID}/navigate
func (h *HistoryHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	snapshot, err := h.service.NavigateTo(r.Context(), nodeID)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snapshot})
}

// GetState handles GET /state
func (h *HistoryHandler) GetState(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.service.State())
}

// GetNode handles GET /nodes/{nodeID}
func (h *HistoryHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	state := h.service.State()
	view, exists := state.Nodes[nodeID]
	if !exists {
		h.errorsH.Handle(w, r, pkgerrors.NewNodeNotFoundError(nodeID.String()))
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// Compare handles GET /compare?from={nodeID}&to={nodeID}
func (h *HistoryHandler) Compare(w http.ResponseWriter, r *http.Request) {
	fromID, err := parseNodeID(r.URL.Query().Get("from"))
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	toID, err := parseNodeID(r.URL.Query().Get("to"))
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	comparison, err := h.service.Compare(r.Context(), fromID, toID)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comparison)
}

// PathResponse carries the node ids along a history path
type PathResponse struct {
	Path  []valueobjects.NodeID `json:"path"`
	Found bool                  `json:"found"`
}

// FindPath handles GET /path?from={nodeID}&to={nodeID}
func (h *HistoryHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	fromID, err := parseNodeID(r.URL.Query().Get("from"))
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	toID, err := parseNodeID(r.URL.Query().Get("to"))
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	path := h.service.FindPath(fromID, toID)
	common.RespondJSON(w, http.StatusOK, PathResponse{Path: path, Found: path != nil})
}

// SetBookmarkRequest represents the request body for toggling a bookmark
type SetBookmarkRequest struct {
	Bookmarked bool `json:"bookmarked"`
}

// SetBookmark handles PUT /nodes/{nodeID}/bookmark
func (h *HistoryHandler) SetBookmark(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	var req SetBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if err := h.service.SetBookmark(r.Context(), nodeID, req.Bookmarked); err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTagRequest represents the request body for adding a tag
type AddTagRequest struct {
	Tag string `json:"tag" validate:"required,min=1,max=50"`
}

// AddTag handles POST /nodes/{nodeID}/tags
func (h *HistoryHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	var req AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	if err := h.service.AddTag(r.Context(), nodeID, req.Tag); err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTag handles DELETE /nodes/{nodeID}/tags/{tag}
func (h *HistoryHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("tag is required"))
		return
	}

	if err := h.service.RemoveTag(r.Context(), nodeID, tag); err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDescriptionRequest represents the request body for setting a description
type SetDescriptionRequest struct {
	Description string `json:"description" validate:"max=500"`
}

// SetDescription handles PUT /nodes/{nodeID}/description
func (h *HistoryHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.nodeIDParam(r)
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	var req SetDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	if err := h.service.SetDescription(r.Context(), nodeID, req.Description); err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /export
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export()
	if err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="history-export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /import
func (h *HistoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		h.errorsH.Handle(w, r, pkgerrors.NewValidationError("failed to read request body"))
		return
	}

	if err := h.service.Import(r.Context(), data); err != nil {
		h.errorsH.Handle(w, r, err)
		return
	}

	state := h.service.State()
	h.logger.Info("History imported",
		zap.Int("nodes", len(state.Nodes)),
		zap.Int("branches", len(state.Branches)),
	)
	common.RespondJSON(w, http.StatusOK, state)
}

// Helpers

func (h *HistoryHandler) nodeIDParam(r *http.Request) (valueobjects.NodeID, error) {
	return parseNodeID(chi.URLParam(r, "nodeID"))
}

func parseNodeID(raw string) (valueobjects.NodeID, error) {
	if raw == "" {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("node id is required")
	}
	id, err := valueobjects.NewNodeIDFromString(raw)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("invalid node id: " + raw)
	}
	return id, nil
}
