package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanSubmission(t *testing.T) {
	oracle := &fakeOracle{loc: &GeocodedLocation{
		DisplayAddress: "12 MG Road, Bengaluru",
		Coordinate:     Coordinate{Latitude: 0, Longitude: 0.0036}, // ~400 m
	}}
	store := &fakeStore{}
	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	assessment := v.Validate(context.Background(), submissionAt(0, 0))

	assert.Equal(t, RiskLow, assessment.RiskLevel)
	assert.Empty(t, assessment.RiskFactors)
	assert.False(t, assessment.NeedsManualReview)
	assert.True(t, assessment.Geo.IsValid)
	assert.False(t, assessment.EvaluatedAt.IsZero())
}

func TestValidate_FactorOrderIsFixed(t *testing.T) {
	// No coordinates kills both the geo check and the neighbor check;
	// duplicate content still fires. Evaluation order must be GPS,
	// then neighbors, then content.
	prior := uuid.New()
	store := &fakeStore{hashMatches: []uuid.UUID{prior}}
	oracle := &fakeOracle{}
	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	sub := SubmissionContext{
		Address:  "12 MG Road",
		District: "Bengaluru Urban",
		State:    "Karnataka",
		Content:  []byte("jpeg bytes"),
	}
	assessment := v.Validate(context.Background(), sub)

	assert.Equal(t, []string{FactorNoCoordinates, FactorDuplicateImage}, assessment.RiskFactors)
	assert.Equal(t, RiskHigh, assessment.RiskLevel, "content duplicate forces high regardless of count")
	assert.True(t, assessment.NeedsManualReview)
	assert.True(t, assessment.Duplicates.IsDuplicateContent)
	assert.Equal(t, []uuid.UUID{prior}, assessment.Duplicates.DuplicateContentReportIDs)
}

func TestValidate_AllChecksFire(t *testing.T) {
	near := uuid.New()
	prior := uuid.New()
	oracle := &fakeOracle{loc: &GeocodedLocation{
		Coordinate: Coordinate{Latitude: 0, Longitude: 0.0108}, // ~1200 m
	}}
	store := &fakeStore{
		nearby:      []NearbyComplaint{{ID: near, Coordinate: Coordinate{Latitude: 0, Longitude: 0.0036}}},
		hashMatches: []uuid.UUID{prior},
	}
	sub := submissionAt(0, 0)
	sub.Content = []byte("jpeg bytes")

	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())
	assessment := v.Validate(context.Background(), sub)

	require.Len(t, assessment.RiskFactors, 3)
	assert.Equal(t, FactorLocationMismatch, assessment.RiskFactors[0])
	assert.Equal(t, "1 similar complaints found nearby", assessment.RiskFactors[1])
	assert.Equal(t, FactorDuplicateImage, assessment.RiskFactors[2])
	assert.Equal(t, RiskHigh, assessment.RiskLevel)
	assert.True(t, assessment.NeedsManualReview)
	assert.Equal(t, []uuid.UUID{near}, assessment.Duplicates.NearbyReportIDs)
}

func TestValidate_SingleFactorIsMedium(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("timeout")}
	store := &fakeStore{}
	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	assessment := v.Validate(context.Background(), submissionAt(0, 0))

	assert.Equal(t, RiskMedium, assessment.RiskLevel)
	assert.Equal(t, []string{FactorGeocodeFailed}, assessment.RiskFactors)
	assert.True(t, assessment.NeedsManualReview, "oracle failure forces review even below high")
}

func TestValidate_OracleFailureNeverEscapes(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("boom")}
	store := &fakeStore{nearbyErr: errors.New("boom"), hashErr: errors.New("boom")}
	sub := submissionAt(0, 0)
	sub.Content = []byte("jpeg bytes")

	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	var assessment RiskAssessment
	assert.NotPanics(t, func() {
		assessment = v.Validate(context.Background(), sub)
	})
	assert.False(t, assessment.Geo.IsValid)
	assert.True(t, assessment.NeedsManualReview)
	assert.Contains(t, assessment.RiskFactors, FactorGeocodeFailed)
	assert.Contains(t, assessment.RiskFactors, FactorInternalError)
}

func TestValidate_PanicIsolatedAndFlagged(t *testing.T) {
	oracle := &fakeOracle{panic: true}
	near := uuid.New()
	store := &fakeStore{nearby: []NearbyComplaint{{ID: near, Coordinate: Coordinate{Latitude: 0, Longitude: 0.0036}}}}
	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	var assessment RiskAssessment
	assert.NotPanics(t, func() {
		assessment = v.Validate(context.Background(), submissionAt(0, 0))
	})

	// The duplicate branch still completed despite the geo panic.
	assert.Equal(t, []uuid.UUID{near}, assessment.Duplicates.NearbyReportIDs)
	assert.Contains(t, assessment.RiskFactors, FactorInternalError)
	assert.True(t, assessment.NeedsManualReview)
	assert.Equal(t, "12 MG Road", assessment.Geo.ReportedAddress, "partial geo result is preserved")
}

func TestValidate_Idempotent(t *testing.T) {
	oracle := &fakeOracle{loc: &GeocodedLocation{
		DisplayAddress: "12 MG Road, Bengaluru",
		Coordinate:     Coordinate{Latitude: 0, Longitude: 0.0036},
	}}
	near := uuid.New()
	store := &fakeStore{nearby: []NearbyComplaint{{ID: near, Coordinate: Coordinate{Latitude: 0, Longitude: 0.0040}}}}
	v := NewValidator(oracle, store, SHA256Hasher{}, DefaultConfig(), testLogger())

	sub := submissionAt(0, 0)
	first := v.Validate(context.Background(), sub)
	time.Sleep(5 * time.Millisecond)
	second := v.Validate(context.Background(), sub)

	assert.True(t, second.EvaluatedAt.After(first.EvaluatedAt))
	first.EvaluatedAt = second.EvaluatedAt
	assert.Equal(t, first, second)
}
