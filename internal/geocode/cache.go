package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/validation"
)

// CachedOracle layers a Redis response cache over a geocoding oracle.
// Cache failures are invisible to callers: a miss or a Redis error
// falls through to the live oracle, and a failed store is only logged.
type CachedOracle struct {
	oracle validation.GeocodingOracle
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewCachedOracle wraps oracle with a Redis cache.
func NewCachedOracle(oracle validation.GeocodingOracle, rdb *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *CachedOracle {
	return &CachedOracle{oracle: oracle, rdb: rdb, ttl: ttl, logger: logger}
}

// cacheKey normalizes coordinates to ~1 m precision so repeated
// submissions from the same spot share a cache entry.
func cacheKey(coord validation.Coordinate) string {
	return fmt.Sprintf("geocode:rev:%.5f,%.5f", coord.Latitude, coord.Longitude)
}

// ReverseGeocode implements validation.GeocodingOracle.
func (c *CachedOracle) ReverseGeocode(ctx context.Context, coord validation.Coordinate) (*validation.GeocodedLocation, error) {
	key := cacheKey(coord)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var loc validation.GeocodedLocation
		if err := json.Unmarshal(data, &loc); err == nil {
			c.logger.Debugw("Geocode cache hit", "key", key)
			return &loc, nil
		}
		// Unreadable entry: drop it and fall through to the oracle.
		_ = c.rdb.Del(ctx, key).Err()
	}

	loc, err := c.oracle.ReverseGeocode(ctx, coord)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(loc); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debugw("Geocode cache store failed", "key", key, "error", err)
		}
	}

	return loc, nil
}
