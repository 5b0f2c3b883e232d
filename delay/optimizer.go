// Package delay implements the single-shift delay optimizer of spec.md
// §4.6: given each rider's raw pickup delay and effective delay window, find
// one additive shift to the ride's anchor departure that keeps every rider
// inside their window, centering the shifted distribution when more than one
// shift would work.
//
// The centering strategy (-(max+min)/2, clipped into the feasible range) is
// a normative choice, not a derived optimum: a different clip would change
// which near-tolerance-limit rides become feasible. Treat it as fixed.
package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/exmas-go/exmas/internal/xmath"
)

// ErrInfeasible indicates no single shift keeps every passenger inside their
// effective delay window. Callers treat this as a WindowViolation: reject
// the candidate ride, do not propagate as a fatal error.
var ErrInfeasible = errors.New("delay: no feasible shift")

// Epsilon is the numeric tolerance spec.md §4.6 applies to every window
// comparison, matching ride.Epsilon.
const Epsilon = 1e-9

// Optimize finds the centering shift described in spec.md §4.6 and returns
// the shifted per-passenger delays. len(delays) == len(effMaxNeg) ==
// len(effMaxPos) is required; all three must describe the same passengers in
// the same order.
func Optimize(delays, effMaxNeg, effMaxPos []float64) ([]float64, error) {
	n := len(delays)
	if n == 0 || len(effMaxNeg) != n || len(effMaxPos) != n {
		return nil, fmt.Errorf("%w: mismatched slice lengths", ErrInfeasible)
	}

	// Step 1: per-rider window collapse check.
	for p := 0; p < n; p++ {
		if effMaxPos[p] < -effMaxNeg[p] {
			return nil, fmt.Errorf("%w: passenger %d window collapsed (effMaxPos=%.6f < -effMaxNeg=%.6f)",
				ErrInfeasible, p, effMaxPos[p], -effMaxNeg[p])
		}
	}

	// Step 2: global shift range.
	lower := math.Inf(-1)
	upper := math.Inf(1)
	for p := 0; p < n; p++ {
		lower = math.Max(lower, -delays[p]-effMaxNeg[p])
		upper = math.Min(upper, effMaxPos[p]-delays[p])
	}
	if lower > upper+Epsilon {
		return nil, fmt.Errorf("%w: empty shift range [%.6f, %.6f]", ErrInfeasible, lower, upper)
	}

	// Step 3: centering shift, clipped into [lower, upper].
	maxDelay, minDelay := delays[0], delays[0]
	for _, d := range delays[1:] {
		maxDelay = math.Max(maxDelay, d)
		minDelay = math.Min(minDelay, d)
	}
	centerShift := -(maxDelay + minDelay) / 2
	shift := xmath.Clip(centerShift, lower, upper)

	// Step 4: apply and re-verify.
	adjusted := make([]float64, n)
	for p := 0; p < n; p++ {
		adjusted[p] = delays[p] + shift
		if adjusted[p] < -effMaxNeg[p]-Epsilon || adjusted[p] > effMaxPos[p]+Epsilon {
			return nil, fmt.Errorf("%w: passenger %d shifted delay %.6f outside [-%.6f, %.6f]",
				ErrInfeasible, p, adjusted[p], effMaxNeg[p], effMaxPos[p])
		}
	}

	return adjusted, nil
}
