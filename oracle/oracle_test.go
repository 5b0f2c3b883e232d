package oracle_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/oracle"
	"github.com/exmas-go/exmas/request"
)

func TestInMemoryRoutingOracle_UnreachableByDefault(t *testing.T) {
	o := oracle.NewInMemory()
	seg, err := o.Segment(context.Background(), "A", "B", 0)
	require.NoError(t, err)
	require.False(t, seg.Reachable)
	require.Equal(t, uint64(1), o.Counters().Attempts)
	require.Equal(t, uint64(1), o.Counters().Failures)
}

func TestInMemoryRoutingOracle_Reachable(t *testing.T) {
	o := oracle.NewInMemory()
	o.SetReachable("A", "B", 100, 1000, -5)
	seg, err := o.Segment(context.Background(), "A", "B", 0)
	require.NoError(t, err)
	require.True(t, seg.Reachable)
	require.Equal(t, 100.0, seg.TravelTime)
	require.Equal(t, uint64(0), o.Counters().Failures)
}

// countingUnderlying counts how many times Segment is actually invoked, to
// verify CachedRoutingOracle's compute-if-absent behavior.
type countingUnderlying struct {
	mu    sync.Mutex
	calls int
}

func (u *countingUnderlying) Segment(_ context.Context, from, to request.Location, _ float64) (request.TravelSegment, error) {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()
	return request.Reach(42, 420, -1), nil
}

func TestCachedRoutingOracle_DedupesSameBin(t *testing.T) {
	under := &countingUnderlying{}
	c, err := oracle.NewCached(under, 900)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seg, err := c.Segment(context.Background(), "A", "B", 10)
			require.NoError(t, err)
			require.True(t, seg.Reachable)
		}()
	}
	wg.Wait()

	under.mu.Lock()
	defer under.mu.Unlock()
	require.Equal(t, 1, under.calls, "all 32 concurrent callers in the same bin should trigger exactly one underlying call")
	require.Equal(t, uint64(32), c.Counters().Attempts)
}

func TestCachedRoutingOracle_DifferentBinsRecompute(t *testing.T) {
	under := &countingUnderlying{}
	c, err := oracle.NewCached(under, 900)
	require.NoError(t, err)

	_, _ = c.Segment(context.Background(), "A", "B", 0)
	_, _ = c.Segment(context.Background(), "A", "B", 901)

	under.mu.Lock()
	defer under.mu.Unlock()
	require.Equal(t, 2, under.calls)
}

func TestCachedRoutingOracle_BadTimeBinSize(t *testing.T) {
	_, err := oracle.NewCached(&countingUnderlying{}, 0)
	require.ErrorIs(t, err, oracle.ErrBadTimeBinSize)
}

type failingUnderlying struct{}

func (failingUnderlying) Segment(context.Context, request.Location, request.Location, float64) (request.TravelSegment, error) {
	return request.TravelSegment{}, errors.New("boom")
}

func TestCachedRoutingOracle_WrapsUnderlyingError(t *testing.T) {
	c, err := oracle.NewCached(failingUnderlying{}, 900)
	require.NoError(t, err)
	_, err = c.Segment(context.Background(), "A", "B", 0)
	require.ErrorIs(t, err, oracle.ErrOracleFailure)
	require.Equal(t, uint64(1), c.Counters().Failures)
}

func TestLinearScoringOracle(t *testing.T) {
	s := oracle.NewLinearScoring(1, 0.1, 0.01)
	u, err := s.Score(context.Background(), 0, 10, 200, 1000)
	require.NoError(t, err)
	require.InDelta(t, -(10 + 20 + 10), u, 1e-9)
}
