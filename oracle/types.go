// Package oracle defines the two external collaborators the ExMAS engine
// consumes but never implements for production use: the routing oracle
// (time-dependent travel segments between locations) and the scoring oracle
// (utility of a proposed shared-trip experience). It also provides the
// caching/compute-if-absent wrapper spec.md §5 mandates around a routing
// oracle whose cache-miss path may block on a shortest-path computation.
//
// Concrete, non-production implementations usable in tests and the demo CLI
// live in this package (InMemoryRoutingOracle, LinearScoringOracle) and in
// internal/network (the computed variant backed by an adapted lvlath
// core.Graph + dijkstra, which CachedRoutingOracle wraps).
package oracle

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/exmas-go/exmas/request"
)

// ErrOracleFailure wraps an unexpected error raised by a routing or scoring
// oracle call, as opposed to a normal "unreachable" outcome. The error text
// names the offending query. pairgen and extend reject the affected candidate
// and continue, so it never propagates past the calling engine stage; it is
// not logged.
var ErrOracleFailure = errors.New("oracle: call failed")

// RoutingOracle returns a TravelSegment for a (from, to, departureTime)
// query. Implementations must be pure with respect to (from, to,
// timeBin(departureTime)): two queries landing in the same bin must return
// equal segments. An unreachable leg is signaled via
// request.TravelSegment.Reachable == false, not via a non-nil error; a
// non-nil error means the call itself failed (ErrOracleFailure territory).
type RoutingOracle interface {
	Segment(ctx context.Context, from, to request.Location, departureTime float64) (request.TravelSegment, error)
}

// ScoringOracle computes the disutility (returned as a utility, negative
// disutility convention) of a rider's proposed shared-trip experience.
// Implementations must be pure: the same inputs always yield the same score.
type ScoringOracle interface {
	Score(ctx context.Context, requestIndex int, delay, passengerTravelTime, passengerDistance float64) (float64, error)
}

// Counters exposes the routing oracle's auxiliary attempt/failure totals
// (spec.md §6's "two auxiliary counters"). Zero values are valid (no calls yet).
type Counters struct {
	Attempts uint64
	Failures uint64
}

// SuccessRate returns Attempts-Failures / Attempts, or 1.0 when Attempts==0.
func (c Counters) SuccessRate() float64 {
	if c.Attempts == 0 {
		return 1.0
	}
	return float64(c.Attempts-c.Failures) / float64(c.Attempts)
}

// CountingRoutingOracle is implemented by routing oracles that track their
// own attempt/failure counters (the cached/computed variant always does).
type CountingRoutingOracle interface {
	RoutingOracle
	Counters() Counters
}

// AtomicCounters is an embeddable, thread-safe Counters accumulator shared
// by the oracle implementations in this module. Routing-failure and attempt
// counters in spec.md §5 are required to be atomic integers; this is that.
type AtomicCounters struct {
	attempts atomic.Uint64
	failures atomic.Uint64
}

// RecordAttempt increments the attempt counter. Call once per Segment call,
// regardless of outcome.
func (c *AtomicCounters) RecordAttempt() { c.attempts.Add(1) }

// RecordFailure increments the failure counter. Call when the query resolved
// to an unreachable sentinel or to an oracle error.
func (c *AtomicCounters) RecordFailure() { c.failures.Add(1) }

// Snapshot returns the current Counters value.
func (c *AtomicCounters) Snapshot() Counters {
	return Counters{Attempts: c.attempts.Load(), Failures: c.failures.Load()}
}
