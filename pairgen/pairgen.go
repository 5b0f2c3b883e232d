// Package pairgen implements PairGenerator (spec.md's C3): for every ordered
// pair of requests within the temporal horizon, attempts a FIFO and a LIFO
// degree-2 ride, validating travel time, delay window, and budget. It is the
// single heaviest component of the engine and the one that must stay
// parallelizable over its outer loop while remaining output-deterministic.
package pairgen

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/exmas-go/exmas/delay"
	"github.com/exmas-go/exmas/horizon"
	"github.com/exmas-go/exmas/internal/xmath"
	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/request"
	"github.com/exmas-go/exmas/ride"
)

// candidate is an accepted-but-unindexed pair ride, keyed for the
// sort-then-assign-index determinism rule of spec.md §4.3's last paragraph.
type candidate struct {
	source, target int
	kind           ride.Kind
	spec           ride.Spec
}

// Result is the outcome of a Generate call: the produced rides, indexed and
// ready to publish. Routing attempt/failure counts are not part of it; the
// engine reads them from the routing oracle's own counters.
type Result struct {
	Rides []ride.Ride
}

// Generate enumerates every ordered pair (i, j) within horizon of each
// other, attempts FIFO and LIFO rides per spec.md §4.3 Steps A-I, and
// returns the accepted rides with indices assigned starting at
// startIndex — the caller passes len(requests) per spec.md §6's output
// ordering (singles fill [0,N), pairs start at N).
//
// The outer loop over source requests runs on an errgroup-bounded worker
// pool; each worker returns its own local candidate list, nothing is
// written to shared state until the final deterministic sort-and-assign
// step, matching the "local per-worker vectors, concatenate on join" policy
// of spec.md §9.
func Generate(ctx context.Context, requests []request.Request, tf *horizon.TimeFilter, horizonSeconds float64, routing oracle.RoutingOracle, scoring oracle.ScoringOracle, startIndex, parallelism int) (Result, error) {
	byIndex := make(map[int]request.Request, len(requests))
	for _, r := range requests {
		byIndex[r.Index()] = r
	}

	perWorker := make([][]candidate, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for slot, r := range requests {
		slot, r := slot, r
		g.Go(func() error {
			cands, err := tf.Candidates(r.Index(), horizonSeconds)
			if err != nil {
				return err
			}
			var local []candidate
			for _, j := range cands {
				other := byIndex[j]
				if r.PaxID() == other.PaxID() {
					continue
				}
				found, err := attemptPair(gctx, r, other, routing, scoring)
				if err != nil {
					// OracleFailure: reject this pair only; the phase continues.
					continue
				}
				local = append(local, found...)
			}
			perWorker[slot] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []candidate
	for _, local := range perWorker {
		all = append(all, local...)
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].source != all[b].source {
			return all[a].source < all[b].source
		}
		if all[a].target != all[b].target {
			return all[a].target < all[b].target
		}
		return all[a].kind < all[b].kind
	})

	rides := make([]ride.Ride, 0, len(all))
	for i, c := range all {
		c.spec.Index = startIndex + i
		r, err := ride.Build(c.spec)
		if err != nil {
			return Result{}, fmt.Errorf("pairgen: building (%d,%d,%s): %w", c.source, c.target, c.kind, err)
		}
		rides = append(rides, r)
	}

	return Result{Rides: rides}, nil
}

// attemptPair runs spec.md §4.3 Steps A-I for ordered pair (i, j), returning
// zero, one, or two candidates (FIFO and/or LIFO). An oracle error is
// returned wrapped in oracle.ErrOracleFailure and ends the attempt for this
// ordered pair; Generate then skips the pair and continues. Unreachable legs
// and constraint violations are silent rejections (spec.md §7), reflected by
// simply omitting that kind.
func attemptPair(ctx context.Context, i, j request.Request, routing oracle.RoutingOracle, scoring oracle.ScoringOracle) ([]candidate, error) {
	// Step A: coarse temporal window, no routing yet.
	if j.LatestDeparture() < i.EarliestDeparture() {
		return nil, nil
	}
	if j.EarliestDeparture() > i.LatestDeparture()+i.DirectTravelTime() {
		return nil, nil
	}

	// Step B: common leg lookup, reused for both FIFO and LIFO attempts.
	oo, err := routing.Segment(ctx, i.Origin(), j.Origin(), i.RequestTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
	}
	if !oo.Reachable {
		return nil, nil
	}

	// Step C: refined temporal check using actual oo.TravelTime.
	if i.LatestDeparture()+oo.TravelTime < j.EarliestDeparture() {
		return nil, nil
	}
	if i.EarliestDeparture()+oo.TravelTime > j.LatestDeparture() {
		return nil, nil
	}

	var out []candidate

	if fifo, err := tryFIFO(ctx, i, j, oo, routing, scoring); err != nil {
		return nil, err
	} else if fifo != nil {
		out = append(out, *fifo)
	}

	if lifo, err := tryLIFO(ctx, i, j, oo, routing, scoring); err != nil {
		return nil, err
	} else if lifo != nil {
		out = append(out, *lifo)
	}

	return out, nil
}

func tryFIFO(ctx context.Context, i, j request.Request, oo request.TravelSegment, routing oracle.RoutingOracle, scoring oracle.ScoringOracle) (*candidate, error) {
	od, err := routing.Segment(ctx, j.Origin(), i.Destination(), i.RequestTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
	}
	if !od.Reachable {
		return nil, nil
	}
	dd, err := routing.Segment(ctx, i.Destination(), j.Destination(), i.RequestTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
	}
	if !dd.Reachable {
		return nil, nil
	}

	pttI := xmath.FloorTravelTime(oo.TravelTime+od.TravelTime, i.DirectTravelTime())
	pttJ := xmath.FloorTravelTime(od.TravelTime+dd.TravelTime, j.DirectTravelTime())
	if pttI > i.MaxTravelTime() || pttJ > j.MaxTravelTime() {
		return nil, nil
	}

	delays, effNeg, effPos := effectiveWindow(i, j, pttI, pttJ)
	// Step G: raw delays. rider0 = i, delay 0; rider1 = j, delay relative to
	// j's own requestTime using cumulative connection time up to j's pickup
	// (oo.TravelTime, the only leg before j's pickup in FIFO pickup order).
	delays[0] = 0
	delays[1] = i.RequestTime() + oo.TravelTime - j.RequestTime()

	adjusted, err := delay.Optimize(delays, effNeg, effPos)
	if err != nil {
		return nil, nil // WindowViolation: silent rejection
	}

	spec := ride.Spec{
		Kind:                        ride.FIFO,
		Requests:                    []request.Request{i, j},
		OriginsOrdered:              []request.Location{i.Origin(), j.Origin()},
		DestinationsOrdered:         []request.Location{i.Destination(), j.Destination()},
		DestinationsOrderedRequests: []int{i.Index(), j.Index()},
		PassengerTravelTime:         []float64{pttI, pttJ},
		PassengerDistance:           []float64{oo.Distance + od.Distance, od.Distance + dd.Distance},
		PassengerNetworkUtil:        []float64{oo.Utility + od.Utility, od.Utility + dd.Utility},
		Delay:                       adjusted,
		ConnectionTravelTime:        []float64{oo.TravelTime, od.TravelTime, dd.TravelTime},
		ConnectionDistance:          []float64{oo.Distance, od.Distance, dd.Distance},
		ConnectionUtility:           []float64{oo.Utility, od.Utility, dd.Utility},
		StartTime:                   i.RequestTime(),
	}

	budget, ok, err := validateBudget(ctx, spec, []request.Request{i, j}, scoring)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	spec.RemainingBudget = budget

	return &candidate{source: i.Index(), target: j.Index(), kind: ride.FIFO, spec: spec}, nil
}

func tryLIFO(ctx context.Context, i, j request.Request, oo request.TravelSegment, routing oracle.RoutingOracle, scoring oracle.ScoringOracle) (*candidate, error) {
	oj, err := routing.Segment(ctx, j.Origin(), j.Destination(), i.RequestTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
	}
	if !oj.Reachable {
		return nil, nil
	}
	jd, err := routing.Segment(ctx, j.Destination(), i.Destination(), i.RequestTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
	}
	if !jd.Reachable {
		return nil, nil
	}

	pttI := xmath.FloorTravelTime(oo.TravelTime+oj.TravelTime+jd.TravelTime, i.DirectTravelTime())
	pttJ := xmath.FloorTravelTime(oj.TravelTime, j.DirectTravelTime())
	if pttI > i.MaxTravelTime() || pttJ > j.MaxTravelTime() {
		return nil, nil
	}

	delays, effNeg, effPos := effectiveWindow(i, j, pttI, pttJ)
	delays[0] = 0
	delays[1] = i.RequestTime() + oo.TravelTime - j.RequestTime()

	adjusted, err := delay.Optimize(delays, effNeg, effPos)
	if err != nil {
		return nil, nil
	}

	spec := ride.Spec{
		Kind:                        ride.LIFO,
		Requests:                    []request.Request{i, j},
		OriginsOrdered:              []request.Location{i.Origin(), j.Origin()},
		DestinationsOrdered:         []request.Location{j.Destination(), i.Destination()},
		DestinationsOrderedRequests: []int{j.Index(), i.Index()},
		PassengerTravelTime:         []float64{pttI, pttJ},
		PassengerDistance:           []float64{oo.Distance + oj.Distance + jd.Distance, oj.Distance},
		PassengerNetworkUtil:        []float64{oo.Utility + oj.Utility + jd.Utility, oj.Utility},
		Delay:                       adjusted,
		ConnectionTravelTime:        []float64{oo.TravelTime, oj.TravelTime, jd.TravelTime},
		ConnectionDistance:          []float64{oo.Distance, oj.Distance, jd.Distance},
		ConnectionUtility:           []float64{oo.Utility, oj.Utility, jd.Utility},
		StartTime:                   i.RequestTime(),
	}

	budget, ok, err := validateBudget(ctx, spec, []request.Request{i, j}, scoring)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	spec.RemainingBudget = budget

	return &candidate{source: i.Index(), target: j.Index(), kind: ride.LIFO, spec: spec}, nil
}

// effectiveWindow implements spec.md §4.3 Step F for a two-passenger
// candidate ride, returning fresh delays/effNeg/effPos slices (delays
// entries are placeholders the caller overwrites with Step G's values).
func effectiveWindow(i, j request.Request, pttI, pttJ float64) (delays, effNeg, effPos []float64) {
	riders := [2]request.Request{i, j}
	ptt := [2]float64{pttI, pttJ}

	effNeg = make([]float64, 2)
	effPos = make([]float64, 2)
	for p, r := range riders {
		det := ptt[p] - r.DirectTravelTime()

		posAdj := 0.0
		if r.PositiveDelayRelComponent() > 0 {
			posAdj = maxF(0, r.PositiveDelayRelComponent()-det)
		}
		negAdj := 0.0
		if r.NegativeDelayRelComponent() > 0 {
			negAdj = maxF(0, r.NegativeDelayRelComponent()-det)
		}

		effPos[p] = (r.MaxPositiveDelay() - det) - posAdj
		effNeg[p] = r.MaxNegativeDelay() - negAdj
	}

	return make([]float64, 2), effNeg, effPos
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// validateBudget runs spec.md §4.7 for every passenger in spec, returning
// the per-passenger remaining budgets and whether the ride is accepted.
func validateBudget(ctx context.Context, spec ride.Spec, riders []request.Request, scoring oracle.ScoringOracle) ([]float64, bool, error) {
	out := make([]float64, len(riders))
	for p, r := range riders {
		score, err := scoring.Score(ctx, r.Index(), spec.Delay[p], spec.PassengerTravelTime[p], spec.PassengerDistance[p])
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", oracle.ErrOracleFailure, err)
		}
		remaining := score - r.BestAlternativeScore()
		if remaining < 0 {
			return nil, false, nil
		}
		out[p] = remaining
	}
	return out, true, nil
}
