// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jansunwai/grievance-server/internal/validation"
)

// Complaint lifecycle states.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Complaint represents a citizen grievance stored in the database.
// Validation carries the engine's risk assessment; it is nil until the
// complaint has been validated (assessments are backfilled lazily on
// read and by the background worker).
type Complaint struct {
	ID                uuid.UUID                  `json:"id" db:"id"`
	Reference         string                     `json:"reference" db:"reference"`
	Subject           string                     `json:"subject" db:"subject"`
	Description       string                     `json:"description" db:"description"`
	Category          string                     `json:"category,omitempty" db:"category"`
	Address           string                     `json:"address" db:"address"`
	District          string                     `json:"district" db:"district"`
	State             string                     `json:"state" db:"state"`
	Pincode           string                     `json:"pincode,omitempty" db:"pincode"`
	Latitude          *float64                   `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64                   `json:"longitude,omitempty" db:"longitude"`
	ContentHash       *string                    `json:"content_hash,omitempty" db:"content_hash"`
	Status            string                     `json:"status" db:"status"`
	UrgencyLevel      string                     `json:"urgency_level" db:"urgency_level"`
	ResolutionDetails *string                    `json:"resolution_details,omitempty" db:"resolution_details"`
	Validation        *validation.RiskAssessment `json:"validation,omitempty" db:"validation"`
	CreatedAt         time.Time                  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at" db:"updated_at"`
}

// ComplaintSubmission is the request body for filing a new complaint.
// ImageB64 optionally carries attached photo bytes; only its
// fingerprint is retained.
type ComplaintSubmission struct {
	Subject      string   `json:"subject" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Category     string   `json:"category"`
	Address      string   `json:"address" validate:"required"`
	District     string   `json:"district" validate:"required"`
	State        string   `json:"state" validate:"required"`
	Pincode      string   `json:"pincode"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	UrgencyLevel string   `json:"urgency_level"`
	ImageB64     string   `json:"image_b64,omitempty"`
}

// StatusUpdate is the request body for an admin status change.
type StatusUpdate struct {
	Status            string `json:"status" validate:"required"`
	ResolutionDetails string `json:"resolution_details,omitempty"`
	Authority         string `json:"authority" validate:"required"`
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status      string
	District    string
	RiskLevel   string
	NeedsReview bool
	Limit       int
}

// ActivityLog records an action taken on a complaint for
// accountability tracking.
type ActivityLog struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	ComplaintID       *uuid.UUID `json:"complaint_id,omitempty" db:"complaint_id"`
	ActivityType      string     `json:"activity_type" db:"activity_type"`
	ActionDescription string     `json:"action_description" db:"action_description"`
	Authority         string     `json:"authority" db:"authority"`
	Metadata          string     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// ActivityLogEntry is the request body for logging an activity
type ActivityLogEntry struct {
	ComplaintID       *uuid.UUID `json:"complaint_id,omitempty"`
	ActivityType      string     `json:"activity_type" validate:"required"`
	ActionDescription string     `json:"action_description" validate:"required"`
	Authority         string     `json:"authority" validate:"required"`
	Metadata          string     `json:"metadata,omitempty"`
}

// AnalyticsTrend represents aggregated complaint trend data
type AnalyticsTrend struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CategoryDistribution for pie/bar charts
type CategoryDistribution struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DistrictDistribution for the district heatmap
type DistrictDistribution struct {
	District string `json:"district"`
	State    string `json:"state"`
	Count    int    `json:"count"`
}

// RiskDistribution aggregates complaints by assessed risk level
type RiskDistribution struct {
	RiskLevel string `json:"risk_level"`
	Count     int    `json:"count"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}
