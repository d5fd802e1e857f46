package validation

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeOracle lets tests script the geocoding oracle.
type fakeOracle struct {
	loc   *GeocodedLocation
	err   error
	panic bool
	calls int
}

func (f *fakeOracle) ReverseGeocode(ctx context.Context, coord Coordinate) (*GeocodedLocation, error) {
	f.calls++
	if f.panic {
		panic("oracle blew up")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.loc, f.err
}

// fakeStore lets tests script the complaint store.
type fakeStore struct {
	nearby      []NearbyComplaint
	nearbyErr   error
	hashMatches []uuid.UUID
	hashErr     error

	nearbyCalls int
	hashCalls   int
	lastNearby  NearbyQuery
	lastHash    ContentHashQuery
}

func (f *fakeStore) FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyComplaint, error) {
	f.nearbyCalls++
	f.lastNearby = q
	return f.nearby, f.nearbyErr
}

func (f *fakeStore) FindByContentHash(ctx context.Context, q ContentHashQuery) ([]uuid.UUID, error) {
	f.hashCalls++
	f.lastHash = q
	return f.hashMatches, f.hashErr
}

// fakeHasher returns a fixed fingerprint.
type fakeHasher struct {
	hash  string
	calls int
}

func (f *fakeHasher) Fingerprint(content []byte) string {
	f.calls++
	return f.hash
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
