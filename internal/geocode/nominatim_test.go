package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/validation"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(zap.NewNop().Sugar(),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(1000), // don't slow tests down
	)
}

func TestReverseGeocode_Success(t *testing.T) {
	var gotUA, gotLat, gotLon string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lat":"12.9719","lon":"77.5937","display_name":"MG Road, Bengaluru, Karnataka, India"}`))
	})

	loc, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 12.9716, Longitude: 77.5946})

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "MG Road, Bengaluru, Karnataka, India", loc.DisplayAddress)
	assert.InDelta(t, 12.9719, loc.Coordinate.Latitude, 1e-9)
	assert.InDelta(t, 77.5937, loc.Coordinate.Longitude, 1e-9)
	assert.Equal(t, defaultUserAgent, gotUA)
	assert.Equal(t, "12.9716", gotLat)
	assert.Equal(t, "77.5946", gotLon)
}

func TestReverseGeocode_NominatimError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	})

	loc, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 0, Longitude: 0})

	assert.Error(t, err)
	assert.Nil(t, loc)
	assert.Contains(t, err.Error(), "Unable to geocode")
}

func TestReverseGeocode_MissingCoordinates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"somewhere"}`))
	})

	_, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 1, Longitude: 2})
	assert.Error(t, err)
}

func TestReverseGeocode_MalformedCoordinates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":"not-a-number","lon":"77.59","display_name":"x"}`))
	})

	_, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 1, Longitude: 2})
	assert.Error(t, err)
}

func TestReverseGeocode_MalformedJSON(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>rate limited</html>`))
	})

	_, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 1, Longitude: 2})
	assert.Error(t, err)
}

func TestReverseGeocode_ServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ReverseGeocode(context.Background(), validation.Coordinate{Latitude: 1, Longitude: 2})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestReverseGeocode_ContextCancelled(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":"1","lon":"2","display_name":"x"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReverseGeocode(ctx, validation.Coordinate{Latitude: 1, Longitude: 2})
	assert.Error(t, err)
}
