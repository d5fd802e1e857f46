package validation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Validator is the engine's public entry point. It sequences the geo
// cross-validator and the duplicate detector, classifies the combined
// risk factors, and always returns a complete assessment.
type Validator struct {
	geo    *GeoValidator
	dup    *DuplicateDetector
	logger *zap.SugaredLogger
}

// NewValidator wires a validator from its three collaborators and the
// policy configuration.
func NewValidator(oracle GeocodingOracle, store ComplaintStore, hasher ContentHasher, cfg Config, logger *zap.SugaredLogger) *Validator {
	return &Validator{
		geo:    NewGeoValidator(oracle, cfg, logger),
		dup:    NewDuplicateDetector(store, hasher, cfg, logger),
		logger: logger,
	}
}

// Validate runs all checks against the submission and returns the
// assembled risk assessment. The two detector branches run
// concurrently in isolated failure domains: a panic or failure in one
// never cancels or corrupts the other. Validate itself never fails —
// an unexpected internal error is recovered, surfaced as a risk
// factor, and forces manual review on whatever partial result was
// computed.
func (v *Validator) Validate(ctx context.Context, sub SubmissionContext) RiskAssessment {
	var (
		geoResult  = GeoValidationResult{ReportedAddress: sub.Address}
		geoFactors []string
		geoForce   bool
		dupResult  DuplicateValidationResult
		dupFactors []string
		dupForce   bool
		geoPanic   bool
		dupPanic   bool
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				v.logger.Errorw("Panic in geo validation", "panic", r)
				geoPanic = true
			}
		}()
		geoResult, geoFactors, geoForce = v.geo.ValidateLocation(ctx, sub.Coordinates, sub.Address)
	}()

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				v.logger.Errorw("Panic in duplicate detection", "panic", r)
				dupPanic = true
			}
		}()
		dupResult, dupFactors, dupForce = v.dup.DetectDuplicates(ctx, sub)
	}()

	wg.Wait()

	// Fixed evaluation order: GPS checks, then neighbor checks, then
	// content checks.
	factors := make([]string, 0, len(geoFactors)+len(dupFactors)+1)
	factors = append(factors, geoFactors...)
	factors = append(factors, dupFactors...)

	force := geoForce || dupForce
	if geoPanic || dupPanic {
		factors = append(factors, FactorInternalError)
		force = true
	}

	level := Classify(factors, dupResult.IsDuplicateContent)

	return RiskAssessment{
		RiskLevel:         level,
		RiskFactors:       factors,
		NeedsManualReview: force || level == RiskHigh,
		EvaluatedAt:       time.Now().UTC(),
		Geo:               geoResult,
		Duplicates:        dupResult,
	}
}
