package horizon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/horizon"
	"github.com/exmas-go/exmas/request"
)

func reqAt(t *testing.T, idx int, rt float64) request.Request {
	t.Helper()
	r, err := request.New(request.Params{
		Index: idx, PaxID: "P", Origin: "A", Destination: "B",
		RequestTime: rt, DirectTravelTime: 10, MaxTravelTime: 20,
		EarliestDeparture: rt - 100, LatestDeparture: rt + 100,
	})
	require.NoError(t, err)
	return r
}

func TestCandidates_ZeroHorizonEmpty(t *testing.T) {
	reqs := []request.Request{reqAt(t, 0, 0), reqAt(t, 1, 0)}
	f := horizon.New(reqs)
	c, err := f.Candidates(0, 0)
	require.NoError(t, err)
	require.Empty(t, c)
}

func TestCandidates_NegativeHorizonErrors(t *testing.T) {
	f := horizon.New([]request.Request{reqAt(t, 0, 0)})
	_, err := f.Candidates(0, -1)
	require.ErrorIs(t, err, horizon.ErrBadHorizon)
}

func TestCandidates_Window(t *testing.T) {
	reqs := []request.Request{
		reqAt(t, 0, 0),
		reqAt(t, 1, 50),
		reqAt(t, 2, 150),
		reqAt(t, 3, -80),
	}
	f := horizon.New(reqs)
	c, err := f.Candidates(0, 100)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, c) // ascending requestTime order: -80, 50
}

func TestCandidates_ExcludesSelf(t *testing.T) {
	reqs := []request.Request{reqAt(t, 0, 0), reqAt(t, 1, 0)}
	f := horizon.New(reqs)
	c, err := f.Candidates(0, 10)
	require.NoError(t, err)
	require.Equal(t, []int{1}, c)
}
