package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Zero(t *testing.T) {
	points := []Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 28.6139, Longitude: 77.2090},
		{Latitude: -33.8688, Longitude: 151.2093},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 1}},
		{{Latitude: 28.6139, Longitude: 77.2090}, {Latitude: 19.0760, Longitude: 72.8777}},
		{{Latitude: -45.0, Longitude: -120.5}, {Latitude: 62.3, Longitude: 8.1}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]), 1e-9)
	}
}

func TestDistance_OneDegreeLongitudeAtEquator(t *testing.T) {
	d := Distance(Coordinate{Latitude: 0, Longitude: 0}, Coordinate{Latitude: 0, Longitude: 1})
	assert.InDelta(t, 111195, d, 50)
}

func TestDistance_Antipodal(t *testing.T) {
	// Half the circumference of the reference sphere.
	d := Distance(Coordinate{Latitude: 0, Longitude: 0}, Coordinate{Latitude: 0, Longitude: 180})
	assert.InDelta(t, math.Pi*earthRadiusMeters, d, 1e-3)
}

func TestDistance_ShortRange(t *testing.T) {
	// ~500 m apart along a parallel at Bengaluru's latitude.
	a := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	b := Coordinate{Latitude: 12.9716, Longitude: 77.5992}
	assert.InDelta(t, 498, Distance(a, b), 5)
}
