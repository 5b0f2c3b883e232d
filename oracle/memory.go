package oracle

import (
	"context"
	"fmt"

	"github.com/exmas-go/exmas/request"
)

// legKey identifies a fixed (from, to) leg in an InMemoryRoutingOracle's
// lookup table. Unlike CachedRoutingOracle, the in-memory table ignores
// departureTime entirely: it models a static, time-independent network,
// which is exactly what spec.md §9 calls the "in-memory table" variant.
type legKey struct{ from, to request.Location }

// InMemoryRoutingOracle is a RoutingOracle backed by a fixed lookup table of
// TravelSegment values, with no time-dependence and no routing computation.
// It is intended for tests and the scenario fixtures in spec.md §8, not for
// production use — production traffic should go through a network-backed
// oracle wrapped in a CachedRoutingOracle (see internal/network).
type InMemoryRoutingOracle struct {
	table map[legKey]request.TravelSegment
	AtomicCounters
}

// NewInMemory builds an empty InMemoryRoutingOracle. Use Set to populate legs.
func NewInMemory() *InMemoryRoutingOracle {
	return &InMemoryRoutingOracle{table: make(map[legKey]request.TravelSegment)}
}

// Set registers the TravelSegment for a (from, to) leg, reachable or not.
func (o *InMemoryRoutingOracle) Set(from, to request.Location, seg request.TravelSegment) {
	o.table[legKey{from, to}] = seg
}

// SetReachable is a convenience wrapper around Set + request.Reach.
func (o *InMemoryRoutingOracle) SetReachable(from, to request.Location, travelTime, distance, utility float64) {
	o.Set(from, to, request.Reach(travelTime, distance, utility))
}

// Segment implements RoutingOracle. A leg absent from the table is treated
// as unreachable rather than an error, matching the routing-oracle contract:
// "returns unreachable sentinel rather than failing".
func (o *InMemoryRoutingOracle) Segment(_ context.Context, from, to request.Location, _ float64) (request.TravelSegment, error) {
	o.RecordAttempt()
	seg, ok := o.table[legKey{from, to}]
	if !ok {
		o.RecordFailure()
		return request.Unreachable, nil
	}
	if !seg.Reachable {
		o.RecordFailure()
	}
	return seg, nil
}

// Counters implements CountingRoutingOracle.
func (o *InMemoryRoutingOracle) Counters() Counters { return o.AtomicCounters.Snapshot() }

// LinearScoringOracle is the "simple linear-in-travel-time scorer" spec.md
// §9 calls sufficient for tests: utility degrades linearly with delay
// magnitude, passenger travel time, and passenger distance.
//
//	utility = -(DelayWeight*|delay| + TimeWeight*passengerTravelTime + DistanceWeight*passengerDistance)
type LinearScoringOracle struct {
	DelayWeight    float64
	TimeWeight     float64
	DistanceWeight float64
}

// NewLinearScoring returns a LinearScoringOracle with the given per-unit
// weights (utils per second of delay/travel-time, utils per meter).
func NewLinearScoring(delayWeight, timeWeight, distanceWeight float64) LinearScoringOracle {
	return LinearScoringOracle{DelayWeight: delayWeight, TimeWeight: timeWeight, DistanceWeight: distanceWeight}
}

// Score implements ScoringOracle.
func (s LinearScoringOracle) Score(_ context.Context, requestIndex int, delay, passengerTravelTime, passengerDistance float64) (float64, error) {
	if requestIndex < 0 {
		return 0, fmt.Errorf("%w: negative requestIndex %d", ErrOracleFailure, requestIndex)
	}
	absDelay := delay
	if absDelay < 0 {
		absDelay = -absDelay
	}
	u := -(s.DelayWeight*absDelay + s.TimeWeight*passengerTravelTime + s.DistanceWeight*passengerDistance)
	return u, nil
}
