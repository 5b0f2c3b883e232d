package shareability_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/request"
	"github.com/exmas-go/exmas/ride"
	"github.com/exmas-go/exmas/shareability"
)

func pairRide(t *testing.T, index int, src, dst request.Request, kind ride.Kind) ride.Ride {
	t.Helper()
	r, err := ride.Build(ride.Spec{
		Index:                       index,
		Kind:                        kind,
		Requests:                    []request.Request{src, dst},
		OriginsOrdered:              []request.Location{src.Origin(), dst.Origin()},
		DestinationsOrdered:         []request.Location{src.Destination(), dst.Destination()},
		DestinationsOrderedRequests: []int{src.Index(), dst.Index()},
		PassengerTravelTime:         []float64{src.DirectTravelTime(), dst.DirectTravelTime()},
		PassengerDistance:           []float64{src.DirectDistance(), dst.DirectDistance()},
		PassengerNetworkUtil:        []float64{0, 0},
		Delay:                       []float64{0, 0},
		RemainingBudget:             []float64{1, 1},
		ConnectionTravelTime:        []float64{1, 1, 1},
		ConnectionDistance:          []float64{1, 1, 1},
		ConnectionUtility:           []float64{0, 0, 0},
		StartTime:                   src.RequestTime(),
	})
	require.NoError(t, err)
	return r
}

func mkReq(t *testing.T, idx int, paxID string) request.Request {
	t.Helper()
	r, err := request.New(request.Params{
		Index:             idx,
		PaxID:             paxID,
		Origin:            "O",
		Destination:       "D",
		RequestTime:       0,
		DirectTravelTime:  10,
		DirectDistance:    100,
		MaxTravelTime:     20,
		EarliestDeparture: -10,
		LatestDeparture:   10,
	})
	require.NoError(t, err)
	return r
}

func TestGraph_CommonNeighborsSorted(t *testing.T) {
	r0, r1, r2 := mkReq(t, 0, "P0"), mkReq(t, 1, "P1"), mkReq(t, 2, "P2")
	pairs := []ride.Ride{
		pairRide(t, 10, r0, r2, ride.FIFO),
		pairRide(t, 11, r1, r2, ride.FIFO),
	}
	g := shareability.Build(pairs)

	common := g.CommonNeighborsSorted([]int{0, 1})
	require.Equal(t, []int{2}, common)
}

func TestGraph_EdgesAndRepresentative(t *testing.T) {
	r0, r1 := mkReq(t, 0, "P0"), mkReq(t, 1, "P1")
	pairs := []ride.Ride{
		pairRide(t, 5, r0, r1, ride.LIFO),
		pairRide(t, 3, r0, r1, ride.FIFO),
	}
	g := shareability.Build(pairs)

	edges := g.Edges(0, 1)
	require.Len(t, edges, 2)

	rep, ok := g.Representative(0, 1)
	require.True(t, ok)
	require.Equal(t, 3, rep.RideIndex)
	require.Equal(t, ride.FIFO, rep.Kind)
}

func TestGraph_NoCommonNeighbors(t *testing.T) {
	g := shareability.Build(nil)
	require.Nil(t, g.CommonNeighborsSorted([]int{0, 1}))
}
