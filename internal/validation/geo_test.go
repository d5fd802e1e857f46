package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLocation_NoCoordinates(t *testing.T) {
	oracle := &fakeOracle{}
	v := NewGeoValidator(oracle, DefaultConfig(), testLogger())

	result, factors, force := v.ValidateLocation(context.Background(), nil, "12 MG Road")

	assert.False(t, result.IsValid)
	assert.Nil(t, result.DistanceMeters)
	assert.Equal(t, "12 MG Road", result.ReportedAddress)
	assert.Nil(t, result.VerifiedAddress)
	assert.Equal(t, []string{FactorNoCoordinates}, factors)
	assert.True(t, force)
	assert.Zero(t, oracle.calls, "oracle must not be called without coordinates")
}

func TestValidateLocation_ResolvedFarAway(t *testing.T) {
	// Resolved point ~1200 m east of the reported coordinates.
	oracle := &fakeOracle{loc: &GeocodedLocation{
		DisplayAddress: "Somewhere Else, Bengaluru",
		Coordinate:     Coordinate{Latitude: 0, Longitude: 0.0108},
	}}
	v := NewGeoValidator(oracle, DefaultConfig(), testLogger())

	coords := &Coordinate{Latitude: 0, Longitude: 0}
	result, factors, force := v.ValidateLocation(context.Background(), coords, "12 MG Road")

	assert.False(t, result.IsValid)
	require.NotNil(t, result.DistanceMeters)
	assert.InDelta(t, 1200, *result.DistanceMeters, 10)
	require.NotNil(t, result.VerifiedAddress)
	assert.Equal(t, "Somewhere Else, Bengaluru", *result.VerifiedAddress)
	assert.Equal(t, []string{FactorLocationMismatch}, factors)
	assert.True(t, force)
}

func TestValidateLocation_ResolvedNearby(t *testing.T) {
	// Resolved point ~400 m east of the reported coordinates.
	oracle := &fakeOracle{loc: &GeocodedLocation{
		DisplayAddress: "12 MG Road, Bengaluru",
		Coordinate:     Coordinate{Latitude: 0, Longitude: 0.0036},
	}}
	v := NewGeoValidator(oracle, DefaultConfig(), testLogger())

	coords := &Coordinate{Latitude: 0, Longitude: 0}
	result, factors, force := v.ValidateLocation(context.Background(), coords, "12 MG Road")

	assert.True(t, result.IsValid)
	require.NotNil(t, result.DistanceMeters)
	assert.InDelta(t, 400, *result.DistanceMeters, 10)
	assert.Empty(t, factors)
	assert.False(t, force)
}

func TestValidateLocation_OracleFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("service unavailable")}
	v := NewGeoValidator(oracle, DefaultConfig(), testLogger())

	coords := &Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	result, factors, force := v.ValidateLocation(context.Background(), coords, "12 MG Road")

	assert.False(t, result.IsValid)
	assert.Nil(t, result.DistanceMeters)
	assert.Nil(t, result.VerifiedAddress)
	assert.Equal(t, []string{FactorGeocodeFailed}, factors)
	assert.True(t, force)
}

func TestValidateLocation_NilLocationTreatedAsFailure(t *testing.T) {
	oracle := &fakeOracle{loc: nil, err: nil}
	v := NewGeoValidator(oracle, DefaultConfig(), testLogger())

	coords := &Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	result, factors, force := v.ValidateLocation(context.Background(), coords, "12 MG Road")

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{FactorGeocodeFailed}, factors)
	assert.True(t, force)
}

func TestValidateLocation_CustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGeoDistanceMeters = 200

	oracle := &fakeOracle{loc: &GeocodedLocation{
		Coordinate: Coordinate{Latitude: 0, Longitude: 0.0036}, // ~400 m
	}}
	v := NewGeoValidator(oracle, cfg, testLogger())

	coords := &Coordinate{Latitude: 0, Longitude: 0}
	result, factors, _ := v.ValidateLocation(context.Background(), coords, "12 MG Road")

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{FactorLocationMismatch}, factors)
}
