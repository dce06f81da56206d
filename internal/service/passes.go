// Package service contains the pass listing orchestration logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bloxkit/passproxy/internal/adapter/otel"
	"github.com/bloxkit/passproxy/internal/domain/pass"
	"github.com/bloxkit/passproxy/internal/port/cache"
)

// DefaultTTL is how long a cached listing stays fresh.
const DefaultTTL = 10 * time.Minute

// cacheKeyPrefix namespaces listing entries in the cache.
const cacheKeyPrefix = "passes:"

// Upstream is the subset of the Roblox client the service depends on.
type Upstream interface {
	ResolveUniverseID(ctx context.Context, placeID string) (string, error)
	ListGamePasses(ctx context.Context, universeID string) ([]pass.GamePass, error)
}

// PassService resolves identifiers and serves game-pass listings through the cache.
type PassService struct {
	client  Upstream
	store   cache.Cache
	ttl     time.Duration
	metrics *otel.Metrics
	group   singleflight.Group
}

// NewPassService creates a PassService. A zero ttl falls back to DefaultTTL;
// metrics may be nil.
func NewPassService(client Upstream, store cache.Cache, ttl time.Duration, metrics *otel.Metrics) *PassService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PassService{
		client:  client,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
	}
}

// ResolvePlace resolves a place identifier to its universe identifier.
func (s *PassService) ResolvePlace(ctx context.Context, placeID string) (string, error) {
	universeID, err := s.client.ResolveUniverseID(ctx, placeID)
	if err != nil {
		slog.Warn("place resolution failed", "place_id", placeID, "error", err)
		return "", err
	}
	slog.Debug("place resolved", "place_id", placeID, "universe_id", universeID)
	return universeID, nil
}

// GetPasses returns the game-pass listing for a universe, serving from cache
// when a fresh entry exists. The bool result reports whether the payload came
// from cache. Concurrent misses for the same universe share one upstream call.
func (s *PassService) GetPasses(ctx context.Context, universeID string) ([]pass.GamePass, bool, error) {
	key := CacheKey(universeID)

	if data, ok, err := s.store.Get(ctx, key); err == nil && ok {
		var passes []pass.GamePass
		if err := json.Unmarshal(data, &passes); err == nil {
			slog.Debug("cache hit", "universe_id", universeID, "passes", len(passes))
			s.countLookup(ctx, true)
			if passes == nil {
				passes = []pass.GamePass{}
			}
			return passes, true, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}
	s.countLookup(ctx, false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		if s.metrics != nil {
			s.metrics.UpstreamCalls.Add(ctx, 1)
		}
		passes, err := s.client.ListGamePasses(ctx, universeID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(passes); err == nil {
			if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("cache store failed", "key", key, "error", err)
			}
		}
		return passes, nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.UpstreamErrors.Add(ctx, 1)
		}
		slog.Error("game pass fetch failed", "universe_id", universeID, "error", err)
		return nil, false, err
	}

	passes := v.([]pass.GamePass)
	if passes == nil {
		passes = []pass.GamePass{}
	}
	slog.Info("fetched game passes", "universe_id", universeID, "passes", len(passes))
	return passes, false, nil
}

func (s *PassService) countLookup(ctx context.Context, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Add(ctx, 1)
		return
	}
	s.metrics.CacheMisses.Add(ctx, 1)
}

// CacheKey returns the cache key for a universe's listing.
func CacheKey(universeID string) string {
	return fmt.Sprintf("%s%s", cacheKeyPrefix, universeID)
}
