package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DuplicateDetector runs the spatio-temporal neighbor check and the
// exact content-hash duplicate check against the complaint store.
type DuplicateDetector struct {
	store  ComplaintStore
	hasher ContentHasher
	cfg    Config
	logger *zap.SugaredLogger
}

// NewDuplicateDetector creates a duplicate detector.
func NewDuplicateDetector(store ComplaintStore, hasher ContentHasher, cfg Config, logger *zap.SugaredLogger) *DuplicateDetector {
	return &DuplicateDetector{store: store, hasher: hasher, cfg: cfg, logger: logger}
}

// DetectDuplicates runs both duplicate checks. Each check is advisory:
// it is skipped silently when its required inputs are absent, and a
// store failure degrades to "no duplicates found" for that check with
// an internal risk factor attached. Returns the duplicate result, the
// risk factors detected (neighbor check first, then content check),
// and whether manual review is forced.
func (d *DuplicateDetector) DetectDuplicates(ctx context.Context, sub SubmissionContext) (DuplicateValidationResult, []string, bool) {
	var result DuplicateValidationResult
	var factors []string
	force := false

	if sub.Coordinates != nil && sub.District != "" && sub.State != "" {
		nearby, err := d.findNearby(ctx, sub)
		switch {
		case err != nil:
			d.logger.Errorw("Nearby complaint lookup failed", "error", err)
			factors = append(factors, FactorInternalError)
			force = true
		case len(nearby) > 0:
			result.NearbyReportIDs = nearby
			factors = append(factors, fmt.Sprintf("%d similar complaints found nearby", len(nearby)))
			force = true
		}
	}

	fingerprint := sub.ContentHash
	if len(sub.Content) > 0 {
		fingerprint = d.hasher.Fingerprint(sub.Content)
	}
	if fingerprint != "" {
		matches, err := d.findByFingerprint(ctx, sub, fingerprint)
		switch {
		case err != nil:
			d.logger.Errorw("Content-hash duplicate lookup failed", "error", err)
			factors = append(factors, FactorInternalError)
			force = true
		case len(matches) > 0:
			result.IsDuplicateContent = true
			result.DuplicateContentReportIDs = matches
			factors = append(factors, FactorDuplicateImage)
			force = true
		}
	}

	return result, factors, force
}

// findNearby queries the store for same-district candidates and keeps
// those within the configured radius, preserving store order.
func (d *DuplicateDetector) findNearby(ctx context.Context, sub SubmissionContext) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	candidates, err := d.store.FindNearby(ctx, NearbyQuery{
		ExcludeID: sub.ComplaintID,
		District:  sub.District,
		State:     sub.State,
		Since:     time.Now().AddDate(0, 0, -d.cfg.NearbyWindowDays),
	})
	if err != nil {
		return nil, err
	}

	var nearby []uuid.UUID
	for _, c := range candidates {
		if Distance(*sub.Coordinates, c.Coordinate) <= d.cfg.NearbyRadiusMeters {
			nearby = append(nearby, c.ID)
		}
	}
	return nearby, nil
}

// findByFingerprint queries the store for prior complaints carrying an
// identical content fingerprint within the duplicate window.
func (d *DuplicateDetector) findByFingerprint(ctx context.Context, sub SubmissionContext, fingerprint string) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	return d.store.FindByContentHash(ctx, ContentHashQuery{
		ExcludeID: sub.ComplaintID,
		Hash:      fingerprint,
		Since:     time.Now().AddDate(0, 0, -d.cfg.DuplicateWindowDays),
	})
}
