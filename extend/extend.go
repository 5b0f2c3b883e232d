// Package extend implements RideExtender (spec.md's C5): grows every
// accepted ride at degree d into candidate rides at degree d+1 by attaching
// one more request, using the shareability graph to find common neighbors
// and classifying the new dropoff's insertion position as FIFO, LIFO, or
// MIXED. Tied with pairgen for the heaviest share of the engine.
package extend

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/exmas-go/exmas/delay"
	"github.com/exmas-go/exmas/internal/xmath"
	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/request"
	"github.com/exmas-go/exmas/ride"
	"github.com/exmas-go/exmas/shareability"
)

// candidate is an accepted-but-unindexed degree-(d+1) ride, keyed by
// (baseRideIndex, candidateRequest) for spec.md §4.5's determinism rule.
type candidate struct {
	baseRideIndex int
	candidateReq  int
	spec          ride.Spec
}

// Result is one extension phase's output.
type Result struct {
	Rides []ride.Ride
}

// Extend grows every ride in base (all of the same degree d) to degree d+1,
// querying g for common neighbors and routing/scoring for leg/budget
// validation. Accepted rides are returned with indices assigned starting at
// startIndex, sorted by (baseRideIndex, candidateRequest) per spec.md §4.5's
// last paragraph.
func Extend(ctx context.Context, base []ride.Ride, byIndex map[int]request.Request, g *shareability.Graph, routing oracle.RoutingOracle, scoring oracle.ScoringOracle, startIndex, parallelism int) (Result, error) {
	perWorker := make([][]candidate, len(base))

	grp, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		grp.SetLimit(parallelism)
	}

	for slot, r := range base {
		slot, r := slot, r
		grp.Go(func() error {
			local, err := extendOne(gctx, r, byIndex, g, routing, scoring)
			if err != nil {
				return err
			}
			perWorker[slot] = local
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return Result{}, err
	}

	var all []candidate
	for _, local := range perWorker {
		all = append(all, local...)
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].baseRideIndex != all[b].baseRideIndex {
			return all[a].baseRideIndex < all[b].baseRideIndex
		}
		return all[a].candidateReq < all[b].candidateReq
	})

	rides := make([]ride.Ride, 0, len(all))
	for i, c := range all {
		c.spec.Index = startIndex + i
		built, err := ride.Build(c.spec)
		if err != nil {
			return Result{}, fmt.Errorf("extend: building base=%d candidate=%d: %w", c.baseRideIndex, c.candidateReq, err)
		}
		rides = append(rides, built)
	}

	return Result{Rides: rides}, nil
}

// extendOne implements spec.md §4.5 steps 1-9 for a single base ride.
func extendOne(ctx context.Context, base ride.Ride, byIndex map[int]request.Request, g *shareability.Graph, routing oracle.RoutingOracle, scoring oracle.ScoringOracle) ([]candidate, error) {
	reqIndices := make([]int, base.Degree())
	for i, r := range base.Requests() {
		reqIndices[i] = r.Index()
	}

	neighbors := g.CommonNeighborsSorted(reqIndices)
	if len(neighbors) == 0 {
		return nil, nil
	}

	basePaxIDs := make(map[string]struct{}, base.Degree())
	for _, r := range base.Requests() {
		basePaxIDs[r.PaxID()] = struct{}{}
	}

	var out []candidate
	for _, c := range neighbors {
		cand := byIndex[c]
		if _, dup := basePaxIDs[cand.PaxID()]; dup {
			continue
		}

		pos, kind, ok := classifyInsertion(base, c, g)
		if !ok {
			continue
		}

		spec, err := buildExtendedSpec(ctx, base, cand, pos, kind, routing, scoring)
		if err != nil {
			// OracleFailure: reject this candidate only; the phase continues.
			continue
		}
		if spec == nil {
			continue
		}

		out = append(out, candidate{baseRideIndex: base.Index(), candidateReq: c, spec: *spec})
	}
	return out, nil
}

// classifyInsertion implements spec.md §4.5 steps 2b-2c: for each existing
// rider, find the deterministic representative pair edge to the candidate,
// then classify the insertion position of the candidate's dropoff.
func classifyInsertion(base ride.Ride, candidateReq int, g *shareability.Graph) (pos int, kind ride.Kind, ok bool) {
	destReqs := base.DestinationsOrderedRequests()
	// positionOf maps a rider's request index to its dropoff position.
	positionOf := make(map[int]int, len(destReqs))
	for i, reqIdx := range destReqs {
		positionOf[reqIdx] = i
	}

	hasFIFO, hasLIFO := false, false
	maxFifoPos, minLifoPos := -1, len(destReqs)+1
	for _, r := range base.Requests() {
		edge, found := g.Representative(r.Index(), candidateReq)
		if !found {
			return 0, 0, false
		}
		switch edge.Kind {
		case ride.FIFO:
			hasFIFO = true
			if p := positionOf[r.Index()]; p > maxFifoPos {
				maxFifoPos = p
			}
		case ride.LIFO:
			hasLIFO = true
			if p := positionOf[r.Index()]; p < minLifoPos {
				minLifoPos = p
			}
		}
	}

	switch {
	case !hasLIFO:
		// No r_k->c pair ride is LIFO: FIFO insertion, append at the end.
		return base.Degree(), ride.FIFO, true
	case !hasFIFO:
		// No r_k->c pair ride is FIFO: LIFO insertion, prepend at the front.
		return 0, ride.LIFO, true
	default:
		if minLifoPos > maxFifoPos {
			return minLifoPos, ride.MIXED, true
		}
		return 0, 0, false
	}
}

// buildExtendedSpec implements spec.md §4.5 steps 3-9: build the new
// ordering, query the routing oracle for every leg, validate travel time,
// delay, and budget. Returns (nil, nil) on any local rejection.
func buildExtendedSpec(ctx context.Context, base ride.Ride, cand request.Request, pos int, kind ride.Kind, routing oracle.RoutingOracle, scoring oracle.ScoringOracle) (*ride.Spec, error) {
	newDegree := base.Degree() + 1

	requests := append(append([]request.Request{}, base.Requests()...), cand)
	originsOrdered := append(append([]request.Location{}, base.OriginsOrdered()...), cand.Origin())

	destinationsOrdered := insertLocation(base.DestinationsOrdered(), pos, cand.Destination())
	destinationsOrderedRequests := insertInt(base.DestinationsOrderedRequests(), pos, cand.Index())

	// Step 4: connection sequence = pickups then dropoffs, in that order.
	locs := make([]request.Location, 0, 2*newDegree)
	locs = append(locs, originsOrdered...)
	locs = append(locs, destinationsOrdered...)

	startTime := requests[0].RequestTime()
	connTT := make([]float64, len(locs)-1)
	connDist := make([]float64, len(locs)-1)
	connUtil := make([]float64, len(locs)-1)
	for k := 0; k < len(locs)-1; k++ {
		seg, err := routing.Segment(ctx, locs[k], locs[k+1], startTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
		}
		if !seg.Reachable {
			return nil, nil
		}
		connTT[k] = seg.TravelTime
		connDist[k] = seg.Distance
		connUtil[k] = seg.Utility
	}

	// Step 5: per-passenger in-vehicle time between pickup and dropoff index.
	pickupIndexOf := make(map[int]int, newDegree)
	for i, r := range requests {
		pickupIndexOf[r.Index()] = i
	}
	dropoffIndexOf := make(map[int]int, newDegree)
	for i, reqIdx := range destinationsOrderedRequests {
		dropoffIndexOf[reqIdx] = newDegree + i
	}

	ptt := make([]float64, newDegree)
	pdist := make([]float64, newDegree)
	putil := make([]float64, newDegree)
	for i, r := range requests {
		from, to := pickupIndexOf[r.Index()], dropoffIndexOf[r.Index()]
		tt, d, u := 0.0, 0.0, 0.0
		for k := from; k < to; k++ {
			tt += connTT[k]
			d += connDist[k]
			u += connUtil[k]
		}
		tt = xmath.FloorTravelTime(tt, r.DirectTravelTime())
		if tt > r.MaxTravelTime() {
			return nil, nil
		}
		ptt[i] = tt
		pdist[i] = d
		putil[i] = u
	}

	// Step 6: raw delays relative to each rider's own requestTime.
	delays := make([]float64, newDegree)
	cum := 0.0
	for i, r := range requests {
		delays[i] = startTime + cum - r.RequestTime()
		cum += connTT[i]
	}

	// Step 7: effective delay window per passenger.
	effNeg := make([]float64, newDegree)
	effPos := make([]float64, newDegree)
	for i, r := range requests {
		det := ptt[i] - r.DirectTravelTime()
		posAdj, negAdj := 0.0, 0.0
		if r.PositiveDelayRelComponent() > 0 {
			posAdj = maxF(0, r.PositiveDelayRelComponent()-det)
		}
		if r.NegativeDelayRelComponent() > 0 {
			negAdj = maxF(0, r.NegativeDelayRelComponent()-det)
		}
		effPos[i] = (r.MaxPositiveDelay() - det) - posAdj
		effNeg[i] = r.MaxNegativeDelay() - negAdj
	}

	// Step 8: delay optimization.
	adjusted, err := delay.Optimize(delays, effNeg, effPos)
	if err != nil {
		return nil, nil
	}

	// Step 9: budget validation.
	remaining := make([]float64, newDegree)
	for i, r := range requests {
		score, err := scoring.Score(ctx, r.Index(), adjusted[i], ptt[i], pdist[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
		}
		rem := score - r.BestAlternativeScore()
		if rem < 0 {
			return nil, nil
		}
		remaining[i] = rem
	}

	return &ride.Spec{
		Kind:                        kind,
		Requests:                    requests,
		OriginsOrdered:              originsOrdered,
		DestinationsOrdered:         destinationsOrdered,
		DestinationsOrderedRequests: destinationsOrderedRequests,
		PassengerTravelTime:         ptt,
		PassengerDistance:           pdist,
		PassengerNetworkUtil:        putil,
		Delay:                       adjusted,
		RemainingBudget:             remaining,
		ConnectionTravelTime:        connTT,
		ConnectionDistance:          connDist,
		ConnectionUtility:           connUtil,
		StartTime:                   startTime,
	}, nil
}

func insertLocation(s []request.Location, pos int, v request.Location) []request.Location {
	out := make([]request.Location, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, v)
	out = append(out, s[pos:]...)
	return out
}

func insertInt(s []int, pos int, v int) []int {
	out := make([]int, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, v)
	out = append(out, s[pos:]...)
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
