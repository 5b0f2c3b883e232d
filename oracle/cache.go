package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/exmas-go/exmas/request"
)

// ErrBadTimeBinSize indicates a non-positive timeBinSize was supplied to
// NewCached; spec.md §6 requires timeBinSize > 0 (a ConfigurationError kind).
var ErrBadTimeBinSize = errors.New("oracle: timeBinSize must be positive")

// cacheKey identifies one (from, to, timeBin) routing query.
type cacheKey struct {
	from, to request.Location
	bin      int64
}

// CachedRoutingOracle wraps an underlying RoutingOracle (typically one whose
// cache-miss path runs an expensive shortest-path computation) with a
// thread-safe, time-binned, compute-if-absent cache.
//
// The compute-if-absent primitive is golang.org/x/sync/singleflight: all
// goroutines racing to resolve the same (from, to, bin) key block on a
// single in-flight underlying call rather than duplicating the work or
// invoking a non-thread-safe solver concurrently (spec.md §5).
type CachedRoutingOracle struct {
	underlying RoutingOracle
	binSize    float64

	cache sync.Map // cacheKey -> request.TravelSegment
	group singleflight.Group

	AtomicCounters
}

// NewCached builds a CachedRoutingOracle over underlying with the given
// timeBinSize (seconds). Returns ErrBadTimeBinSize if timeBinSize <= 0.
func NewCached(underlying RoutingOracle, timeBinSize float64) (*CachedRoutingOracle, error) {
	if timeBinSize <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrBadTimeBinSize, timeBinSize)
	}
	return &CachedRoutingOracle{underlying: underlying, binSize: timeBinSize}, nil
}

// TimeBin returns the bin index for departureTime under this oracle's
// configured timeBinSize. Two departure times in the same bin are guaranteed
// to hit the same cache entry.
func (c *CachedRoutingOracle) TimeBin(departureTime float64) int64 {
	return int64(math.Floor(departureTime / c.binSize))
}

// Segment implements RoutingOracle, serving from cache when possible and
// collapsing concurrent misses for the same key onto one underlying call.
func (c *CachedRoutingOracle) Segment(ctx context.Context, from, to request.Location, departureTime float64) (request.TravelSegment, error) {
	c.RecordAttempt()

	key := cacheKey{from: from, to: to, bin: c.TimeBin(departureTime)}
	if v, ok := c.cache.Load(key); ok {
		seg := v.(request.TravelSegment)
		if !seg.Reachable {
			c.RecordFailure()
		}
		return seg, nil
	}

	skey := fmt.Sprintf("%s\x00%s\x00%d", from, to, key.bin)
	v, err, _ := c.group.Do(skey, func() (interface{}, error) {
		// Re-check the cache: another goroutine may have filled it while we
		// were waiting to enter Do (singleflight only dedupes concurrent
		// callers, not callers that arrive after the first completes).
		if v, ok := c.cache.Load(key); ok {
			return v.(request.TravelSegment), nil
		}
		seg, err := c.underlying.Segment(ctx, from, to, departureTime)
		if err != nil {
			return request.TravelSegment{}, err
		}
		c.cache.Store(key, seg)
		return seg, nil
	})
	if err != nil {
		c.RecordFailure()
		return request.TravelSegment{}, fmt.Errorf("%w: %s->%s @%.3f: %v", ErrOracleFailure, from, to, departureTime, err)
	}

	seg := v.(request.TravelSegment)
	if !seg.Reachable {
		c.RecordFailure()
	}
	return seg, nil
}

// Counters returns the cumulative attempt/failure totals across all Segment
// calls made through this cache (cache hits included), satisfying
// CountingRoutingOracle.
func (c *CachedRoutingOracle) Counters() Counters { return c.AtomicCounters.Snapshot() }
