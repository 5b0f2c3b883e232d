package pairgen_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/horizon"
	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/pairgen"
	"github.com/exmas-go/exmas/request"
	"github.com/exmas-go/exmas/ride"
)

func req(t *testing.T, p request.Params) request.Request {
	t.Helper()
	r, err := request.New(p)
	require.NoError(t, err)
	return r
}

// TestGenerate_ScenarioB is spec.md §8 Scenario B: a FIFO-feasible pair.
func TestGenerate_ScenarioB(t *testing.T) {
	r0 := req(t, request.Params{
		Index: 0, PaxID: "P0", Origin: "A", Destination: "C",
		RequestTime: 0, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 280,
		EarliestDeparture: -30, LatestDeparture: 30, BestAlternativeScore: -10, Budget: 100,
	})
	r1 := req(t, request.Params{
		Index: 1, PaxID: "P1", Origin: "B", Destination: "D",
		RequestTime: 50, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 260,
		EarliestDeparture: 20, LatestDeparture: 80, BestAlternativeScore: -10, Budget: 100,
	})

	net := oracle.NewInMemory()
	net.SetReachable("A", "B", 50, 500, -50)
	net.SetReachable("B", "C", 150, 1500, -150)
	net.SetReachable("C", "D", 100, 1000, -100)

	scoring := oracle.NewLinearScoring(0.01, 0.01, 0.0)

	requests := []request.Request{r0, r1}
	tf := horizon.New(requests)

	res, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 2, 4)
	require.NoError(t, err)
	require.Len(t, res.Rides, 1)

	got := res.Rides[0]
	require.Equal(t, ride.FIFO, got.Kind())
	require.Equal(t, 2, got.Index())
	require.Equal(t, []int{0, 1}, got.DestinationsOrderedRequests())
}

// TestGenerate_ScenarioA is spec.md §8 Scenario A: time-filtered out, no pair.
func TestGenerate_ScenarioA(t *testing.T) {
	r0 := req(t, request.Params{
		Index: 0, PaxID: "P0", Origin: "A", Destination: "B",
		RequestTime: 0, DirectTravelTime: 100, DirectDistance: 1000, MaxTravelTime: 110,
		EarliestDeparture: 0, LatestDeparture: 0, BestAlternativeScore: 0, Budget: 10,
	})
	r1 := req(t, request.Params{
		Index: 1, PaxID: "P1", Origin: "A", Destination: "B",
		RequestTime: 10000, DirectTravelTime: 100, DirectDistance: 1000, MaxTravelTime: 110,
		EarliestDeparture: 10000, LatestDeparture: 10000, BestAlternativeScore: 0, Budget: 10,
	})

	net := oracle.NewInMemory()
	net.SetReachable("A", "B", 100, 1000, -100)
	scoring := oracle.NewLinearScoring(0.01, 0.01, 0.0)

	requests := []request.Request{r0, r1}
	tf := horizon.New(requests)

	res, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 2, 4)
	require.NoError(t, err)
	require.Empty(t, res.Rides)
}

// TestGenerate_BudgetRejectsFeasiblePair is spec.md §8 Scenario D.
func TestGenerate_BudgetRejectsFeasiblePair(t *testing.T) {
	r0 := req(t, request.Params{
		Index: 0, PaxID: "P0", Origin: "A", Destination: "C",
		RequestTime: 0, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 280,
		EarliestDeparture: -30, LatestDeparture: 30, BestAlternativeScore: 1e9, Budget: 100,
	})
	r1 := req(t, request.Params{
		Index: 1, PaxID: "P1", Origin: "B", Destination: "D",
		RequestTime: 50, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 260,
		EarliestDeparture: 20, LatestDeparture: 80, BestAlternativeScore: -10, Budget: 100,
	})

	net := oracle.NewInMemory()
	net.SetReachable("A", "B", 50, 500, -50)
	net.SetReachable("B", "C", 150, 1500, -150)
	net.SetReachable("C", "D", 100, 1000, -100)

	scoring := oracle.NewLinearScoring(0.01, 0.01, 0.0)
	requests := []request.Request{r0, r1}
	tf := horizon.New(requests)

	res, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 2, 4)
	require.NoError(t, err)
	require.Empty(t, res.Rides)
}

// TestGenerate_ScenarioC_LIFOPreferred is spec.md §8 Scenario C's mechanism:
// FIFO is unreachable (B->C has no route) while LIFO, whose leg set avoids
// that unreachable edge, is feasible and wins. Scenario C's own literal
// B->D=60/D->C=200 numbers don't reproduce against r0's maxTravelTime=280
// (see DESIGN.md's resolved-ambiguities section), so this uses a
// self-consistent leg set exercising the identical FIFO-unreachable /
// LIFO-feasible branch.
func TestGenerate_ScenarioC_LIFOPreferred(t *testing.T) {
	r0 := req(t, request.Params{
		Index: 0, PaxID: "P0", Origin: "A", Destination: "C",
		RequestTime: 0, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 280,
		EarliestDeparture: -30, LatestDeparture: 30, BestAlternativeScore: -1000, Budget: 100,
	})
	r1 := req(t, request.Params{
		Index: 1, PaxID: "P1", Origin: "B", Destination: "D",
		RequestTime: 50, DirectTravelTime: 200, DirectDistance: 2000, MaxTravelTime: 260,
		EarliestDeparture: 20, LatestDeparture: 80, BestAlternativeScore: -1000, Budget: 100,
	})

	net := oracle.NewInMemory()
	net.SetReachable("A", "B", 50, 500, -50) // oo, shared by both orderings
	net.SetReachable("B", "D", 60, 600, -60) // oj: floored up to D's direct=200
	net.SetReachable("D", "C", 30, 300, -30) // jd
	// B->C (od, FIFO's second leg) is left unset: FIFO is unreachable.

	scoring := oracle.NewLinearScoring(0, 0, 0)

	requests := []request.Request{r0, r1}
	tf := horizon.New(requests)

	res, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 2, 4)
	require.NoError(t, err)
	require.Len(t, res.Rides, 1)

	got := res.Rides[0]
	require.Equal(t, ride.LIFO, got.Kind())
	require.Equal(t, []int{1, 0}, got.DestinationsOrderedRequests())
}

func TestGenerate_DeterministicAcrossParallelism(t *testing.T) {
	net := oracle.NewInMemory()
	net.SetReachable("A", "B", 10, 100, -10)
	net.SetReachable("B", "C", 10, 100, -10)
	net.SetReachable("A", "C", 5, 50, -5)
	net.SetReachable("C", "A", 5, 50, -5)
	net.SetReachable("B", "A", 10, 100, -10)
	net.SetReachable("C", "B", 10, 100, -10)
	scoring := oracle.NewLinearScoring(0.0, 0.0, 0.0)

	requests := []request.Request{
		req(t, request.Params{Index: 0, PaxID: "P0", Origin: "A", Destination: "B", RequestTime: 0, DirectTravelTime: 20, DirectDistance: 200, MaxTravelTime: 40, EarliestDeparture: -20, LatestDeparture: 20, Budget: 100}),
		req(t, request.Params{Index: 1, PaxID: "P1", Origin: "B", Destination: "A", RequestTime: 5, DirectTravelTime: 20, DirectDistance: 200, MaxTravelTime: 40, EarliestDeparture: -15, LatestDeparture: 25, Budget: 100}),
		req(t, request.Params{Index: 2, PaxID: "P2", Origin: "A", Destination: "C", RequestTime: 2, DirectTravelTime: 10, DirectDistance: 100, MaxTravelTime: 30, EarliestDeparture: -18, LatestDeparture: 22, Budget: 100}),
	}
	tf := horizon.New(requests)

	res1, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 3, 1)
	require.NoError(t, err)
	res8, err := pairgen.Generate(context.Background(), requests, tf, 100, net, scoring, 3, 8)
	require.NoError(t, err)

	require.Equal(t, len(res1.Rides), len(res8.Rides))
	for i := range res1.Rides {
		require.Equal(t, res1.Rides[i].Index(), res8.Rides[i].Index())
		require.Equal(t, res1.Rides[i].Kind(), res8.Rides[i].Kind())
		require.Equal(t, res1.Rides[i].DestinationsOrderedRequests(), res8.Rides[i].DestinationsOrderedRequests())
	}
}
