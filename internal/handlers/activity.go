package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/models"
	"github.com/jansunwai/grievance-server/internal/services"
)

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	activitySvc *services.ActivityLogService
	logger      *zap.SugaredLogger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(as *services.ActivityLogService, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{activitySvc: as, logger: logger}
}

// Log handles POST /api/v1/activity
func (h *ActivityHandler) Log(w http.ResponseWriter, r *http.Request) {
	var entry models.ActivityLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if entry.ActivityType == "" || entry.ActionDescription == "" || entry.Authority == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: activity_type, action_description, authority")
		return
	}

	if err := h.activitySvc.Log(r.Context(), &entry); err != nil {
		h.logger.Errorw("Failed to log activity", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to log activity")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "logged"})
}

// ByComplaint handles GET /api/v1/activity/complaint/{id}
func (h *ActivityHandler) ByComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 50)

	logs, err := h.activitySvc.FetchByComplaint(r.Context(), id, limit)
	if err != nil {
		h.logger.Errorw("Failed to fetch activity logs", "complaint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch activity logs")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// Recent handles GET /api/v1/activity/recent (admin)
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 100)

	logs, err := h.activitySvc.FetchRecent(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to fetch recent activity", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch recent activity")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
