package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"castlist-be/internal/codec"
	"castlist-be/internal/middleware"
	"castlist-be/internal/repository"
	"castlist-be/internal/service"
	"castlist-be/pkg/logger"
	"castlist-be/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// CastlistHandler handles castlist HTTP requests
type CastlistHandler struct {
	service service.CastlistService
	logger  *logger.Logger
}

// NewCastlistHandler creates a new castlist handler
func NewCastlistHandler(castlistService service.CastlistService, logger *logger.Logger) *CastlistHandler {
	return &CastlistHandler{
		service: castlistService,
		logger:  logger,
	}
}

// ListResponse is the envelope for list endpoints
type ListResponse struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MembersData is the payload of the members endpoint
type MembersData struct {
	CastlistID     string   `json:"castlist_id"`
	MemberGroupIDs []string `json:"member_group_ids"`
	Count          int      `json:"count"`
}

// MaterializeData is the payload of the materialize endpoint
type MaterializeData struct {
	CastlistID   string `json:"castlist_id"`
	Materialized bool   `json:"materialized"`
}

// ListCastlists handles GET /api/communities/{communityID}/castlists
func (h *CastlistHandler) ListCastlists(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	lists, err := h.service.GetAllLists(r.Context(), communityID)
	if err != nil {
		h.sendStoreError(w, communityID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data: map[string]interface{}{
			"castlists": lists,
			"count":     len(lists),
		},
	})
}

// GetCastlist handles GET /api/communities/{communityID}/castlists/{castlistID}
func (h *CastlistHandler) GetCastlist(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	castlistID := chi.URLParam(r, "castlistID")

	list, err := h.service.GetList(r.Context(), communityID, castlistID)
	if err != nil {
		h.sendStoreError(w, communityID, err)
		return
	}
	if list == nil {
		h.sendError(w, http.StatusNotFound, "not_found", "Castlist not found")
		return
	}

	h.sendJSON(w, http.StatusOK, ListResponse{Success: true, Data: list})
}

// GetMembers handles GET /api/communities/{communityID}/castlists/{castlistID}/members
func (h *CastlistHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	castlistID := chi.URLParam(r, "castlistID")

	members, err := h.service.ResolveMembership(r.Context(), communityID, castlistID)
	if err != nil {
		h.sendStoreError(w, communityID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data: MembersData{
			CastlistID:     castlistID,
			MemberGroupIDs: members,
			Count:          len(members),
		},
	})
}

// GetMigrationStats handles GET /api/communities/{communityID}/migration-stats
func (h *CastlistHandler) GetMigrationStats(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	stats, err := h.service.MigrationStats(r.Context(), communityID)
	if err != nil {
		h.sendStoreError(w, communityID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, ListResponse{Success: true, Data: stats})
}

// Materialize handles POST /api/communities/{communityID}/castlists/{castlistID}/materialize
func (h *CastlistHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	castlistID := chi.URLParam(r, "castlistID")
	actorID := middleware.ActorID(r.Context())

	resultID, err := h.service.Materialize(r.Context(), communityID, castlistID, actorID)
	if err != nil {
		metrics.MaterializationsTotal.WithLabelValues("error").Inc()
		h.sendStoreError(w, communityID, err)
		return
	}

	materialized := resultID != castlistID
	if !materialized && codec.IsVirtual(resultID) {
		// The virtual id resolved to nothing; absence is a normal outcome.
		metrics.MaterializationsTotal.WithLabelValues("not_found").Inc()
		h.sendError(w, http.StatusNotFound, "not_found", "Castlist not found")
		return
	}
	metrics.MaterializationsTotal.WithLabelValues("ok").Inc()

	h.logger.WithFields(map[string]interface{}{
		"community_id": communityID,
		"castlist_id":  resultID,
		"actor_id":     actorID,
		"materialized": materialized,
	}).Info("Materialize request completed")

	h.sendJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data: MaterializeData{
			CastlistID:   resultID,
			Materialized: materialized,
		},
	})
}

// sendStoreError maps store failures onto the generic "try again" statuses.
func (h *CastlistHandler) sendStoreError(w http.ResponseWriter, communityID string, err error) {
	h.logger.WithError(err).WithField("community_id", communityID).Error("Castlist store operation failed")

	switch {
	case errors.Is(err, repository.ErrStoreConflict):
		h.sendError(w, http.StatusConflict, "conflict", "A concurrent change was detected. Please try again.")
	case errors.Is(err, repository.ErrStoreUnavailable):
		h.sendError(w, http.StatusServiceUnavailable, "unavailable", "The castlist store is unavailable. Please try again.")
	default:
		h.sendError(w, http.StatusInternalServerError, "internal", "Something went wrong. Please try again.")
	}
}

func (h *CastlistHandler) sendError(w http.ResponseWriter, statusCode int, errorType, message string) {
	h.sendJSON(w, statusCode, ListResponse{
		Success: false,
		Error: &ErrorResponse{
			Type:    errorType,
			Message: message,
		},
	})
}

func (h *CastlistHandler) sendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}
