// Package validation implements the complaint validation and risk
// scoring engine: GPS cross-validation against a reverse-geocoding
// oracle, spatio-temporal and content-hash duplicate detection, and a
// deterministic risk classification policy that feeds the manual
// review queue.
//
// The engine is a pure decision component. It talks to the outside
// world only through three collaborator interfaces (GeocodingOracle,
// ComplaintStore, ContentHasher) and never lets a collaborator failure
// escape as an error — every failure mode degrades to a conservative,
// review-required assessment so that validation can never block
// complaint creation.
package validation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the overall risk classification of a submission.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk factor strings attached to assessments. These are user-visible
// in the admin review queue, so the wording is part of the contract.
const (
	FactorNoCoordinates    = "No GPS coordinates provided"
	FactorLocationMismatch = "GPS location does not match provided address"
	FactorGeocodeFailed    = "Failed to validate GPS location"
	FactorDuplicateImage   = "Duplicate image detected"
	FactorInternalError    = "Error during validation"
)

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SubmissionContext is the data one validation pass operates on.
// ComplaintID is nil for a not-yet-persisted complaint; on
// re-validation it carries the complaint's own id so the duplicate
// checks exclude it from matching against itself.
type SubmissionContext struct {
	ComplaintID *uuid.UUID
	Coordinates *Coordinate
	Address     string
	District    string
	State       string
	Category    string

	// Content holds the raw submitted media bytes, if any.
	Content []byte
	// ContentHash is a pre-computed fingerprint used when the raw
	// bytes are no longer available (re-validation of a stored
	// complaint). Ignored when Content is set.
	ContentHash string
}

// GeoValidationResult is the outcome of cross-checking reported
// coordinates against the geocoding oracle. DistanceMeters and
// VerifiedAddress are nil when no verified location was obtained.
type GeoValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	DistanceMeters  *float64 `json:"distance_meters"`
	ReportedAddress string   `json:"reported_address"`
	VerifiedAddress *string  `json:"verified_address"`
}

// DuplicateValidationResult is the outcome of the duplicate checks.
// ID sequences preserve the store's return order (creation-descending).
type DuplicateValidationResult struct {
	IsDuplicateContent        bool        `json:"is_duplicate_content"`
	NearbyReportIDs           []uuid.UUID `json:"nearby_report_ids"`
	DuplicateContentReportIDs []uuid.UUID `json:"duplicate_content_report_ids"`
}

// RiskAssessment is the complete, immutable output of one engine
// invocation. It is persisted alongside the complaint and only ever
// replaced wholesale by a re-validation, never mutated in place.
type RiskAssessment struct {
	RiskLevel         RiskLevel                 `json:"risk_level"`
	RiskFactors       []string                  `json:"risk_factors"`
	NeedsManualReview bool                      `json:"needs_manual_review"`
	EvaluatedAt       time.Time                 `json:"evaluated_at"`
	Geo               GeoValidationResult       `json:"gps_validation"`
	Duplicates        DuplicateValidationResult `json:"duplicate_validation"`
}

// GeocodedLocation is a verified place description returned by the
// geocoding oracle.
type GeocodedLocation struct {
	DisplayAddress string     `json:"display_address"`
	Coordinate     Coordinate `json:"coordinate"`
}

// GeocodingOracle resolves coordinates to a verified location. It is
// an external, best-effort, rate-limited network dependency; callers
// must treat any failure as "unverifiable", never as fatal.
type GeocodingOracle interface {
	ReverseGeocode(ctx context.Context, coord Coordinate) (*GeocodedLocation, error)
}

// NearbyQuery selects candidate neighbors for the spatial check.
// Implementations must exclude resolved complaints, complaints without
// coordinates, and the complaint identified by ExcludeID (when set),
// and return rows in creation-descending order.
type NearbyQuery struct {
	ExcludeID *uuid.UUID
	District  string
	State     string
	Since     time.Time
}

// NearbyComplaint is one candidate returned by a NearbyQuery.
type NearbyComplaint struct {
	ID         uuid.UUID
	Coordinate Coordinate
	Status     string
}

// ContentHashQuery selects prior complaints with an identical content
// fingerprint. The search is global by hash and time, not bounded by
// district or state.
type ContentHashQuery struct {
	ExcludeID *uuid.UUID
	Hash      string
	Since     time.Time
}

// ComplaintStore provides read access to prior complaints for the
// duplicate checks.
type ComplaintStore interface {
	FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyComplaint, error)
	FindByContentHash(ctx context.Context, q ContentHashQuery) ([]uuid.UUID, error)
}

// ContentHasher produces a stable fingerprint of submitted media for
// exact-duplicate detection.
type ContentHasher interface {
	Fingerprint(content []byte) string
}

// Config holds the validation policy thresholds. They are explicit
// parameters rather than constants so the engine can be tested against
// varied policy.
type Config struct {
	// MaxGeoDistanceMeters is how far the oracle-resolved location may
	// be from the reported coordinates before the location is flagged.
	MaxGeoDistanceMeters float64
	// NearbyRadiusMeters bounds the spatial neighbor check.
	NearbyRadiusMeters float64
	// NearbyWindowDays bounds the temporal neighbor check.
	NearbyWindowDays int
	// DuplicateWindowDays bounds the content-hash duplicate check.
	DuplicateWindowDays int
	// GeocodeTimeout bounds each oracle call.
	GeocodeTimeout time.Duration
	// StoreTimeout bounds each store query.
	StoreTimeout time.Duration
}

// DefaultConfig returns the production policy thresholds.
func DefaultConfig() Config {
	return Config{
		MaxGeoDistanceMeters: 1000,
		NearbyRadiusMeters:   500,
		NearbyWindowDays:     30,
		DuplicateWindowDays:  90,
		GeocodeTimeout:       10 * time.Second,
		StoreTimeout:         5 * time.Second,
	}
}
