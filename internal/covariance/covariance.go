// Package covariance implements the two conjugate covariance learners
// of §4.7: a scaled-inverse-gamma posterior over a scalar noise
// inflation factor (observation covariance) and an inverse-Wishart
// posterior over a full process covariance matrix (ground/road
// models).
package covariance

import "github.com/mapmatch/core/internal/linalg"

// ScaledInvGamma is the conjugate posterior for a scalar variance
// inflation factor applied to a fixed-shape base covariance.
type ScaledInvGamma struct {
	Shape float64
	Scale float64
}

// NewScaledInvGamma builds a prior. The external-interface default is
// shape=2, scale=1, giving Mean()==1 (no inflation).
func NewScaledInvGamma(shape, scale float64) ScaledInvGamma {
	return ScaledInvGamma{Shape: shape, Scale: scale}
}

// Mean returns the posterior mean scale/ (shape-1), falling back to
// scale itself when shape <= 1 (an improper-prior edge case that
// should not arise past the first update, since shape only grows).
func (s ScaledInvGamma) Mean() float64 {
	if s.Shape <= 1 {
		return s.Scale
	}
	return s.Scale / (s.Shape - 1)
}

// Update folds a new observation-error vector e into the posterior:
// shape' = shape + 0.5, scale' = scale + 0.5*||e||^2.
func (s ScaledInvGamma) Update(e []float64) ScaledInvGamma {
	sumSq := 0.0
	for _, v := range e {
		sumSq += v * v
	}
	return ScaledInvGamma{Shape: s.Shape + 0.5, Scale: s.Scale + 0.5*sumSq}
}

// Apply scales base's spectrum by the posterior mean, returning a new
// covariance of the same factorization.
func (s ScaledInvGamma) Apply(base *linalg.SvdMatrix) *linalg.SvdMatrix {
	mean := s.Mean()
	scaled := make([]float64, len(base.S))
	for i, v := range base.S {
		scaled[i] = v * mean
	}
	return &linalg.SvdMatrix{U: base.U, S: scaled, V: base.V}
}

// InverseWishart is the conjugate posterior for a full process
// covariance: degrees of freedom Dof and scale matrix Scale.
type InverseWishart struct {
	Dof   float64
	Scale *linalg.SvdMatrix
}

// NewInverseWishart builds a prior from an initial degrees-of-freedom
// and scale matrix.
func NewInverseWishart(dof float64, scale *linalg.SvdMatrix) InverseWishart {
	return InverseWishart{Dof: dof, Scale: scale}
}

// Mean returns the posterior mean covariance, Scale/(Dof - dim - 1),
// falling back to Scale unscaled when the degrees of freedom haven't
// yet cleared that threshold.
func (iw InverseWishart) Mean() *linalg.SvdMatrix {
	dim := float64(iw.Scale.Dim())
	denom := iw.Dof - dim - 1
	if denom <= 0 {
		denom = 1
	}
	scaled := make([]float64, len(iw.Scale.S))
	for i, v := range iw.Scale.S {
		scaled[i] = v / denom
	}
	return &linalg.SvdMatrix{U: iw.Scale.U, S: scaled, V: iw.Scale.V}
}

// Update folds a reconstructed state-transition residual into the
// posterior via the standard Wishart-conjugate rule: Dof' = Dof + 1,
// Scale' = Scale + residual*residualᵀ.
func (iw InverseWishart) Update(residual []float64) InverseWishart {
	n := len(residual)
	dense := iw.Scale.Dense()
	rowMajor := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rowMajor[i*n+j] = dense.At(i, j) + residual[i]*residual[j]
		}
	}
	return InverseWishart{Dof: iw.Dof + 1, Scale: linalg.FromDense(n, rowMajor)}
}
