package delay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exmas-go/exmas/delay"
)

func TestOptimize_CentersBetweenTwoRiders(t *testing.T) {
	// rider0 is 10s late, rider1 10s early; both have ample window. The
	// distribution is already centered (-(10 + -10)/2 = 0), so the single
	// shift is 0 and both delays are kept.
	delays := []float64{10, -10}
	effMaxNeg := []float64{100, 100}
	effMaxPos := []float64{100, 100}
	adj, err := delay.Optimize(delays, effMaxNeg, effMaxPos)
	require.NoError(t, err)
	require.InDelta(t, 10, adj[0], 1e-9)
	require.InDelta(t, -10, adj[1], 1e-9)
}

func TestOptimize_CenterAlreadyInsideFeasibleRange(t *testing.T) {
	delays := []float64{0, 0}
	effMaxNeg := []float64{0, 50}
	effMaxPos := []float64{5, 50}
	// lower = max(-0-0, -0-50) = 0 ; upper = min(5-0, 50-0) = 5
	// centerShift = -(0+0)/2 = 0, already inside [0,5]
	adj, err := delay.Optimize(delays, effMaxNeg, effMaxPos)
	require.NoError(t, err)
	require.InDelta(t, 0, adj[0], 1e-9)
}

func TestOptimize_CollapsedWindowInfeasible(t *testing.T) {
	delays := []float64{0}
	effMaxNeg := []float64{5}
	effMaxPos := []float64{-10} // effMaxPos < -effMaxNeg(-5)
	_, err := delay.Optimize(delays, effMaxNeg, effMaxPos)
	require.ErrorIs(t, err, delay.ErrInfeasible)
}

func TestOptimize_EmptyRangeInfeasible(t *testing.T) {
	// rider0 needs shift <= -10, rider1 needs shift >= 10: disjoint ranges.
	delays := []float64{20, -20}
	effMaxNeg := []float64{0, 10}
	effMaxPos := []float64{10, 0}
	_, err := delay.Optimize(delays, effMaxNeg, effMaxPos)
	require.ErrorIs(t, err, delay.ErrInfeasible)
}
