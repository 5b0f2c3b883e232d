package ride

import (
	"context"
	"fmt"

	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/request"
)

// GenerateSingles produces exactly one degree-1 ride per request, using the
// direct-trip metrics verbatim (no routing calls: the direct metrics already
// describe the unshared trip). Ride.Index() equals Request.Index() for every
// produced ride (spec.md §3 invariant 6), and output order matches the input
// request order, which the orchestrator publishes as indices [0, N).
//
// Each single still goes through the scoring oracle once, at zero delay and
// direct travel time/distance, to populate RemainingBudget — this is the
// concrete rule spec.md §8's "Singles identity" property pins down.
func GenerateSingles(ctx context.Context, requests []request.Request, scorer oracle.ScoringOracle) ([]Ride, error) {
	out := make([]Ride, len(requests))
	for i, r := range requests {
		utility, err := scorer.Score(ctx, r.Index(), 0, r.DirectTravelTime(), r.DirectDistance())
		if err != nil {
			return nil, fmt.Errorf("ride: single %d: %w", r.Index(), err)
		}
		remaining := utility - r.BestAlternativeScore()

		rd, err := Build(Spec{
			Index:                       r.Index(),
			Kind:                        SINGLE,
			Requests:                    []request.Request{r},
			OriginsOrdered:              []request.Location{r.Origin()},
			DestinationsOrdered:         []request.Location{r.Destination()},
			DestinationsOrderedRequests: []int{r.Index()},
			PassengerTravelTime:         []float64{r.DirectTravelTime()},
			PassengerDistance:           []float64{r.DirectDistance()},
			PassengerNetworkUtil:        []float64{utility},
			Delay:                       []float64{0},
			RemainingBudget:             []float64{remaining},
			ConnectionTravelTime:        []float64{r.DirectTravelTime()},
			ConnectionDistance:          []float64{r.DirectDistance()},
			ConnectionUtility:           []float64{utility},
			StartTime:                   r.RequestTime(),
		})
		if err != nil {
			return nil, fmt.Errorf("ride: single %d: %w", r.Index(), err)
		}
		out[i] = rd
	}
	return out, nil
}
