package network

import (
	"context"
	"fmt"

	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/request"
)

// RoutingOracle implements oracle.RoutingOracle over a Graph by running
// ShortestPaths from the query's origin on every call. It is the "shortest
// path computer" variant spec.md §9 describes; production callers are
// expected to wrap it in oracle.NewCached so repeated queries with the same
// (from, to, timeBin) don't re-run Dijkstra. This graph is static
// (time-independent): departureTime only affects which cache bin a wrapping
// CachedRoutingOracle files the result under, not the computed segment.
type RoutingOracle struct {
	g *Graph
	oracle.AtomicCounters
}

// NewRoutingOracle wraps g as an oracle.CountingRoutingOracle.
func NewRoutingOracle(g *Graph) *RoutingOracle {
	return &RoutingOracle{g: g}
}

// Segment implements oracle.RoutingOracle.
func (o *RoutingOracle) Segment(_ context.Context, from, to request.Location, _ float64) (request.TravelSegment, error) {
	o.RecordAttempt()

	if !o.g.HasLocation(from) {
		o.RecordFailure()
		return request.TravelSegment{}, fmt.Errorf("%w: %s", ErrUnknownLocation, from)
	}
	if from == to {
		return request.Reach(0, 0, 0), nil
	}

	res, err := ShortestPaths(o.g, from)
	if err != nil {
		o.RecordFailure()
		return request.TravelSegment{}, err
	}

	tt, ok := res.Dist[to]
	if !ok {
		o.RecordFailure()
		return request.Unreachable, nil
	}
	dist := res.Distance[to]
	// Utility is the negative generalized cost; with no scoring inputs of
	// its own, the routing oracle reports raw travel time as cost.
	return request.Reach(tt, dist, -tt), nil
}

// Counters implements oracle.CountingRoutingOracle.
func (o *RoutingOracle) Counters() oracle.Counters { return o.AtomicCounters.Snapshot() }

var (
	_ oracle.RoutingOracle         = (*RoutingOracle)(nil)
	_ oracle.CountingRoutingOracle = (*RoutingOracle)(nil)
)
