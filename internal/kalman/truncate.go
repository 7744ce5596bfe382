package kalman

import (
	"math"

	"github.com/mapmatch/core/internal/linalg"
)

// TruncateRoadBelief applies the arc-length truncation policy of
// §4.4: the s dimension (index 0) is lower-bounded at lowerBound via
// the closed-form truncated-Gaussian mean/variance (reflecting any
// predicted mass below the bound back toward it), then hard-clamped
// not to exceed upperBound (a path's total length is a hard physical
// wall, not a soft probabilistic one, so it is clamped rather than
// folded into the truncated-normal moments).
//
// The covariance's off-diagonal entries are rescaled in proportion to
// the change in the s-dimension's variance, preserving the filter's
// correlation structure between s and v_s rather than just overwriting
// the (0,0) entry in isolation.
func TruncateRoadBelief(b Belief, lowerBound, upperBound float64) Belief {
	dense := b.Cov.Dense()
	oldVar := dense.At(0, 0)
	sigma := 0.0
	if oldVar > 0 {
		sigma = math.Sqrt(oldVar)
	}

	tn := linalg.TruncatedNormal{Mu: b.Mean[0], Sigma: sigma, Lower: lowerBound}
	newMean := tn.Mean()
	newVar := tn.Variance()
	if newMean > upperBound {
		newMean = upperBound
	}

	scale := 1.0
	if oldVar > 1e-12 {
		scale = math.Sqrt(newVar / oldVar)
	}

	rows, cols := dense.Dims()
	scaled := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := dense.At(i, j)
			if i == 0 {
				v *= scale
			}
			if j == 0 {
				v *= scale
			}
			scaled[i*cols+j] = v
		}
	}
	scaled[0] = newVar

	mean := append([]float64(nil), b.Mean...)
	mean[0] = newMean

	return Belief{Mean: mean, Cov: linalg.FromDense(rows, scaled)}
}
