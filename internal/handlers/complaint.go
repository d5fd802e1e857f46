// Package handlers contains HTTP request handlers for the Jan Sunwai API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/models"
	"github.com/jansunwai/grievance-server/internal/services"
)

// maxImageBytes caps decoded attachment size (5 MB).
const maxImageBytes = 5 * 1024 * 1024

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	complaintSvc *services.ComplaintService
	activitySvc  *services.ActivityLogService
	logger       *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(cs *services.ComplaintService, as *services.ActivityLogService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: cs, activitySvc: as, logger: logger}
}

// Submit handles POST /api/v1/complaints
// Accepts a complaint submission, runs validation and risk scoring,
// and stores the complaint together with its assessment. Validation
// findings never reject a submission — they only shape the assessment.
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Subject == "" || req.Description == "" || req.Address == "" || req.District == "" || req.State == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: subject, description, address, district, state")
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		respondError(w, http.StatusBadRequest, "Latitude and longitude must be provided together")
		return
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
			respondError(w, http.StatusBadRequest, "Invalid GPS coordinates")
			return
		}
	}

	var content []byte
	if req.ImageB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageB64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "image_b64 is not valid base64")
			return
		}
		if len(decoded) > maxImageBytes {
			respondError(w, http.StatusBadRequest, "Image size must be less than 5MB")
			return
		}
		content = decoded
	}

	complaint, err := h.complaintSvc.Create(r.Context(), &req, content)
	if err != nil {
		h.logger.Errorw("Failed to create complaint", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to submit complaint")
		return
	}

	// Log the submission activity
	_ = h.activitySvc.Log(r.Context(), &models.ActivityLogEntry{
		ComplaintID:       &complaint.ID,
		ActivityType:      "submission",
		ActionDescription: "Complaint received and validated",
		Authority:         "SYSTEM",
	})

	h.logger.Infow("Complaint submitted",
		"id", complaint.ID,
		"district", complaint.District,
		"risk_level", complaint.Validation.RiskLevel,
	)

	respondJSON(w, http.StatusCreated, complaint)
}

// Get handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	complaint, err := h.complaintSvc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Complaint not found")
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}

// List handles GET /api/v1/complaints
// Supported filters: status, district, risk_level, needs_review, limit.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.ComplaintFilter{
		Status:      q.Get("status"),
		District:    q.Get("district"),
		RiskLevel:   q.Get("risk_level"),
		NeedsReview: q.Get("needs_review") == "true",
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	complaints, err := h.complaintSvc.List(r.Context(), filter)
	if err != nil {
		h.logger.Errorw("Failed to list complaints", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}

	respondJSON(w, http.StatusOK, complaints)
}

// UpdateStatus handles PATCH /api/v1/complaints/{id}/status
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	var req models.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "Status must be one of: pending, in_progress, resolved, rejected")
		return
	}
	if req.Authority == "" {
		respondError(w, http.StatusBadRequest, "Authority is required")
		return
	}

	if err := h.complaintSvc.UpdateStatus(r.Context(), id, req.Status, req.ResolutionDetails); err != nil {
		h.logger.Errorw("Failed to update status", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	_ = h.activitySvc.Log(r.Context(), &models.ActivityLogEntry{
		ComplaintID:       &id,
		ActivityType:      "status_change",
		ActionDescription: "Status changed to " + req.Status,
		Authority:         req.Authority,
	})

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// Count handles GET /api/v1/complaints/count
func (h *ComplaintHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.complaintSvc.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get count")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Trends handles GET /api/v1/analytics/trends
func (h *ComplaintHandler) Trends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.complaintSvc.GetTrends(r.Context(), 72)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch trends")
		return
	}
	respondJSON(w, http.StatusOK, trends)
}

// Categories handles GET /api/v1/analytics/categories
func (h *ComplaintHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.complaintSvc.GetCategoryDistribution(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

// Districts handles GET /api/v1/analytics/districts
func (h *ComplaintHandler) Districts(w http.ResponseWriter, r *http.Request) {
	dists, err := h.complaintSvc.GetDistrictDistribution(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch districts")
		return
	}
	respondJSON(w, http.StatusOK, dists)
}

// RiskLevels handles GET /api/v1/analytics/risk-levels
func (h *ComplaintHandler) RiskLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.complaintSvc.GetRiskDistribution(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch risk levels")
		return
	}
	respondJSON(w, http.StatusOK, levels)
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
