package covariance

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mapmatch/core/internal/kalman"
	"github.com/mapmatch/core/internal/linalg"
)

// Estimate is one step of a completed particle's ground-coordinate
// history: the predicted (pre-measurement) and filtered
// (post-measurement) beliefs, and the state-transition matrix that
// produced Predicted from the previous step's Filtered belief.
type Estimate struct {
	Timestamp time.Time
	Predicted kalman.Belief
	Filtered  kalman.Belief
	A         *mat.Dense
}

// Smooth performs fixed-interval Rauch-Tung-Striebel smoothing over a
// completed particle history, strictly offline: every entry must
// already carry both its predicted and filtered belief, which only
// exist once a particle's full run has been recorded. It never runs on
// the online per-step path.
func Smooth(history []Estimate) []Estimate {
	n := len(history)
	if n == 0 {
		return history
	}
	out := make([]Estimate, n)
	copy(out, history)
	out[n-1].Predicted = out[n-1].Filtered

	for t := n - 2; t >= 0; t-- {
		filtered := out[t].Filtered
		nextPredicted := history[t+1].Predicted
		nextSmoothed := out[t+1].Filtered

		dim := len(filtered.Mean)
		A := history[t+1].A
		if A == nil {
			A = identity(dim)
		}

		filteredCov := filtered.Cov.Dense()
		var AFc mat.Dense
		AFc.Mul(A, filteredCov)
		var gain mat.Dense
		gain.Mul(&AFc, A.T())

		nextPredCov := nextPredicted.Cov.Dense()
		var inv mat.Dense
		if err := inv.Inverse(nextPredCov); err != nil {
			// Singular predicted covariance: nothing to correct with,
			// leave this step's filtered belief as the smoothed result.
			continue
		}

		var C mat.Dense
		C.Mul(filteredCov, A.T())
		C.Mul(&C, &inv)

		meanDiff := mat.NewVecDense(dim, nil)
		for i := 0; i < dim; i++ {
			meanDiff.SetVec(i, nextSmoothed.Mean[i]-nextPredicted.Mean[i])
		}
		var correction mat.VecDense
		correction.MulVec(&C, meanDiff)

		smoothedMean := make([]float64, dim)
		for i := 0; i < dim; i++ {
			smoothedMean[i] = filtered.Mean[i] + correction.AtVec(i)
		}

		covDiffDense := mat.NewDense(dim, dim, nil)
		nextSmoothedCov := nextSmoothed.Cov.Dense()
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				covDiffDense.Set(i, j, nextSmoothedCov.At(i, j)-nextPredCov.At(i, j))
			}
		}
		var CCovDiff mat.Dense
		CCovDiff.Mul(&C, covDiffDense)
		var correctionCov mat.Dense
		correctionCov.Mul(&CCovDiff, C.T())

		smoothedCovRowMajor := make([]float64, dim*dim)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				smoothedCovRowMajor[i*dim+j] = filteredCov.At(i, j) + correctionCov.At(i, j)
			}
		}

		out[t].Filtered = kalman.Belief{Mean: smoothedMean, Cov: linalg.FromDense(dim, smoothedCovRowMajor)}
	}
	return out
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
