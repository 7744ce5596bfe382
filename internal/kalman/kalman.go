// Package kalman implements the generic linear-Gaussian predict and
// measure math shared by the ground and road filters; the two filter
// constructions (§4.4) are built from it in ground.go and road.go.
package kalman

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mapmatch/core/internal/linalg"
	"github.com/mapmatch/core/internal/trackerr"
)

// Belief is a Gaussian over a motion state: mean vector plus an
// SVD-backed covariance.
type Belief struct {
	Mean []float64
	Cov  *linalg.SvdMatrix
}

// Clone returns an independent copy of the belief.
func (b Belief) Clone() Belief {
	mean := append([]float64(nil), b.Mean...)
	cov := &linalg.SvdMatrix{
		U: cloneMat(b.Cov.U),
		S: append([]float64(nil), b.Cov.S...),
		V: cloneMat(b.Cov.V),
	}
	return Belief{Mean: mean, Cov: cov}
}

func cloneMat(d *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.CloneFrom(d)
	return &c
}

// Model is a linear-Gaussian dynamical system: an n-dimensional state
// transitioning under A, observed through an m x n matrix Obs.
type Model struct {
	Dim int
	A   *mat.Dense
	Obs *mat.Dense
}

func vecToDense(v []float64) *mat.VecDense {
	return mat.NewVecDense(len(v), append([]float64(nil), v...))
}

// Predict advances belief through the model's transition, adding the
// given process covariance.
func (m Model) Predict(belief Belief, processCov *linalg.SvdMatrix) Belief {
	meanVec := vecToDense(belief.Mean)
	var newMean mat.VecDense
	newMean.MulVec(m.A, meanVec)

	transformed := belief.Cov.Transform(m.A)
	newCov := transformed.Add(processCov)

	out := make([]float64, m.Dim)
	for i := range out {
		out[i] = newMean.AtVec(i)
	}
	return Belief{Mean: out, Cov: newCov}
}

// PSDTolerance is how far below zero a reconstructed covariance's
// spectrum may dip before Measure reports a NumericError instead of
// clipping it.
const PSDTolerance = 1e-6

// Measure folds an observation into belief via the standard Kalman
// update, returning a NumericError if the resulting covariance is not
// PSD within PSDTolerance.
func (m Model) Measure(belief Belief, obs []float64, measurementCov *linalg.SvdMatrix) (Belief, error) {
	meanVec := vecToDense(belief.Mean)
	var predictedObs mat.VecDense
	predictedObs.MulVec(m.Obs, meanVec)

	innovDim := len(obs)
	innov := mat.NewVecDense(innovDim, nil)
	for i := 0; i < innovDim; i++ {
		innov.SetVec(i, obs[i]-predictedObs.AtVec(i))
		if math.IsNaN(obs[i]) {
			return Belief{}, trackerr.New(trackerr.Numeric, "kalman.Measure", "NaN in observation vector")
		}
	}

	// Innovation covariance S = Obs*Cov*Obs^T + R.
	sCov := belief.Cov.Transform(m.Obs).Add(measurementCov)
	sDense := sCov.Dense()

	var sInv mat.Dense
	if err := sInv.Inverse(sDense); err != nil {
		return Belief{}, trackerr.Wrap(trackerr.Numeric, "kalman.Measure", "innovation covariance not invertible", err)
	}

	// Kalman gain K = Cov*Obs^T*S^-1.
	covDense := belief.Cov.Dense()
	var obsT mat.Dense
	obsT.CloneFrom(m.Obs.T())
	var covObsT mat.Dense
	covObsT.Mul(covDense, &obsT)
	var K mat.Dense
	K.Mul(&covObsT, &sInv)

	var correction mat.VecDense
	correction.MulVec(&K, innov)

	newMean := make([]float64, m.Dim)
	for i := 0; i < m.Dim; i++ {
		newMean[i] = belief.Mean[i] + correction.AtVec(i)
		if math.IsNaN(newMean[i]) {
			return Belief{}, trackerr.New(trackerr.Numeric, "kalman.Measure", "NaN in updated state vector")
		}
	}

	// Posterior covariance (I - K*Obs) * Cov, symmetrized before
	// refactoring.
	var kObs mat.Dense
	kObs.Mul(&K, m.Obs)
	ident := identity(m.Dim)
	var imKObs mat.Dense
	imKObs.Sub(ident, &kObs)
	var newCovDense mat.Dense
	newCovDense.Mul(&imKObs, covDense)

	sym := mat.NewSymDense(m.Dim, nil)
	for i := 0; i < m.Dim; i++ {
		for j := i; j < m.Dim; j++ {
			v := 0.5 * (newCovDense.At(i, j) + newCovDense.At(j, i))
			sym.SetSym(i, j, v)
		}
	}
	newCov := linalg.NewSvdMatrix(sym)
	if !newCov.Symmetric(PSDTolerance) {
		return Belief{}, trackerr.New(trackerr.Numeric, "kalman.Measure", "posterior covariance not PSD within tolerance")
	}

	return Belief{Mean: newMean, Cov: newCov}, nil
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
