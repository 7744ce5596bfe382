package kalman

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mapmatch/core/internal/linalg"
)

// RoadMeasurementError is the fixed measurement covariance diag(50,0)
// modeling inaccuracy in edge geometry; the second (velocity) entry is
// zero because velocity is never measured directly on-road.
var RoadMeasurementError = linalg.DiagSvd([]float64{50.0, 0.0})

// RoadModel returns the 2-D road dynamical system (s, v_s) for the
// given time step: transition A_r(Δt) is identity with A[0,1] = Δt,
// observed through [[1,0]].
func RoadModel(dt float64) Model {
	a := identity(2)
	a.Set(0, 1, dt)
	obs := mat.NewDense(1, 2, []float64{1, 0})
	return Model{Dim: 2, A: a, Obs: obs}
}

// RoadProcessCov builds Σ_r = F_r(Δt)·Q_r·F_r(Δt)ᵀ, where F_r is the
// covariance factor [[Δt²/2],[Δt]] and Q_r is a scalar arc-length
// acceleration-noise variance.
func RoadProcessCov(dt float64, qr float64) *linalg.SvdMatrix {
	half := dt * dt / 2
	f := mat.NewDense(2, 1, []float64{half, dt})
	qSvd := linalg.DiagSvd([]float64{qr})
	return qSvd.Transform(f)
}
