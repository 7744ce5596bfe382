package kalman

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mapmatch/core/internal/linalg"
)

// GroundModel returns the 4-D ground dynamical system (x, vx, y, vy)
// for the given time step: transition A_g(Δt) is identity with
// A[0,1] = A[2,3] = Δt, observed through [[1,0,0,0],[0,0,1,0]].
func GroundModel(dt float64) Model {
	a := identity(4)
	a.Set(0, 1, dt)
	a.Set(2, 3, dt)
	obs := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 0, 1, 0,
	})
	return Model{Dim: 4, A: a, Obs: obs}
}

// GroundProcessCov builds Σ_g = F_g(Δt)·Q·F_g(Δt)ᵀ, where F_g is the
// covariance factor [[Δt²/2,0],[Δt,0],[0,Δt²/2],[0,Δt]] and Q is a
// diagonal 2x2 acceleration-noise covariance, represented via the
// SVD-preserving linear transform of §4.1.
func GroundProcessCov(dt float64, q [2]float64) *linalg.SvdMatrix {
	half := dt * dt / 2
	f := mat.NewDense(4, 2, []float64{
		half, 0,
		dt, 0,
		0, half,
		0, dt,
	})
	qSvd := linalg.DiagSvd(q[:])
	return qSvd.Transform(f)
}

// GroundMeasurementCov builds the observation-noise covariance for the
// ground filter from the learned Q_obs diagonal (variance in x and y).
func GroundMeasurementCov(qObs [2]float64) *linalg.SvdMatrix {
	return linalg.DiagSvd(qObs[:])
}
