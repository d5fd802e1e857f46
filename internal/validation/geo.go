package validation

import (
	"context"

	"go.uber.org/zap"
)

// GeoValidator cross-checks a submission's reported coordinates
// against the reverse-geocoding oracle.
type GeoValidator struct {
	oracle GeocodingOracle
	cfg    Config
	logger *zap.SugaredLogger
}

// NewGeoValidator creates a geo cross-validator.
func NewGeoValidator(oracle GeocodingOracle, cfg Config, logger *zap.SugaredLogger) *GeoValidator {
	return &GeoValidator{oracle: oracle, cfg: cfg, logger: logger}
}

// ValidateLocation resolves the reported coordinates via the oracle
// and compares the resolved location against them. It returns the geo
// result, the risk factors it detected, and whether manual review is
// forced. Oracle failures never propagate — they degrade to an
// unverifiable result with a risk factor attached.
func (v *GeoValidator) ValidateLocation(ctx context.Context, coords *Coordinate, reportedAddress string) (GeoValidationResult, []string, bool) {
	result := GeoValidationResult{ReportedAddress: reportedAddress}

	if coords == nil {
		return result, []string{FactorNoCoordinates}, true
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.GeocodeTimeout)
	defer cancel()

	loc, err := v.oracle.ReverseGeocode(ctx, *coords)
	if err != nil || loc == nil {
		v.logger.Warnw("Reverse geocoding failed",
			"lat", coords.Latitude,
			"lon", coords.Longitude,
			"error", err,
		)
		return result, []string{FactorGeocodeFailed}, true
	}

	if loc.DisplayAddress != "" {
		verified := loc.DisplayAddress
		result.VerifiedAddress = &verified
	}

	dist := Distance(*coords, loc.Coordinate)
	result.DistanceMeters = &dist
	result.IsValid = dist <= v.cfg.MaxGeoDistanceMeters

	if !result.IsValid {
		v.logger.Infow("GPS location mismatch",
			"distance_m", dist,
			"max_distance_m", v.cfg.MaxGeoDistanceMeters,
		)
		return result, []string{FactorLocationMismatch}, true
	}

	return result, nil, false
}
