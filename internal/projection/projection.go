// Package projection implements the bidirectional ground↔road belief
// projection (§4.5): the subtlest component in the system. It turns a
// straight-line projection frame (pathstate.Frame) into the 4x2
// projection matrix pair (P, a) the spec describes, and uses it both
// to lift a road belief onto the plane and to snap a ground belief
// onto a path.
package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/kalman"
	"github.com/mapmatch/core/internal/linalg"
	"github.com/mapmatch/core/internal/pathstate"
)

// pair holds the projection matrix P (4x2, ground-per-road) and
// offset vector a for a given frame, in ground order (x, vx, y, vy).
type pair struct {
	P *mat.Dense
	A []float64
}

func buildPair(f pathstate.Frame) pair {
	p1x, p1y := f.Dir.X, f.Dir.Y
	P := mat.NewDense(4, 2, []float64{
		p1x, 0,
		0, p1x,
		p1y, 0,
		0, p1y,
	})
	a := []float64{
		f.Start.X - p1x*f.PathOffset,
		0,
		f.Start.Y - p1y*f.PathOffset,
		0,
	}
	return pair{P: P, A: a}
}

// GroundFromRoad lifts a road belief (s, v_s) at frame f onto the
// ground plane: mean_ground = P*[s,v_s] + a, Σ_ground = P·Σ_road·Pᵀ.
// When useAbsVelocity is set, the ground velocity sub-vector is
// rescaled so its norm exactly matches |v_s| rather than relying on
// floating-point unit-vector precision.
func GroundFromRoad(f pathstate.Frame, road kalman.Belief, useAbsVelocity bool) kalman.Belief {
	pr := buildPair(f)
	s, vs := road.Mean[0], road.Mean[1]

	mean := make([]float64, 4)
	mean[0] = pr.A[0] + pr.P.At(0, 0)*s
	mean[1] = pr.P.At(1, 1) * vs
	mean[2] = pr.A[2] + pr.P.At(2, 0)*s
	mean[3] = pr.P.At(3, 1) * vs

	if useAbsVelocity {
		norm := math.Hypot(mean[1], mean[3])
		target := math.Abs(vs)
		if norm > 1e-12 {
			scale := target / norm
			mean[1] *= scale
			mean[3] *= scale
		}
	}

	cov := road.Cov.Transform(pr.P)
	return kalman.Belief{Mean: mean, Cov: cov}
}

// RoadFromGround snaps a ground belief onto path π at the frame
// covering the point of π nearest the ground mean's position
// (RoadFromGroundAtSegment takes that offset from the caller instead).
// previousLocation and dt, if non-nil and positive, overwrite the scalar velocity
// magnitude with the finite-difference speed between the snap point
// and the previous location, preserving the sign the projection
// already computed.
func RoadFromGround(path pathstate.Path, ground kalman.Belief, previousLocation *geom.Point, dt float64) kalman.Belief {
	snapDist, _ := path.Snap(geom.Point{X: ground.Mean[0], Y: ground.Mean[2]})
	f := path.FrameAt(snapDist)
	return roadFromGroundAtFrame(f, ground, previousLocation, dt)
}

// RoadFromGroundAtSegment is RoadFromGround but with the projection
// frame pinned to the straight segment covering pathOffset, for a
// caller that has already located the relevant segment and must not
// let floating-point snap noise pick a neighboring one.
func RoadFromGroundAtSegment(path pathstate.Path, pathOffset float64, ground kalman.Belief, previousLocation *geom.Point, dt float64) kalman.Belief {
	f := path.FrameAt(pathOffset)
	return roadFromGroundAtFrame(f, ground, previousLocation, dt)
}

func roadFromGroundAtFrame(f pathstate.Frame, ground kalman.Belief, previousLocation *geom.Point, dt float64) kalman.Belief {
	pr := buildPair(f)
	adjusted := []float64{
		ground.Mean[0] - pr.A[0],
		ground.Mean[1],
		ground.Mean[2] - pr.A[2],
		ground.Mean[3],
	}

	var pt mat.Dense
	pt.CloneFrom(pr.P.T())
	meanVec := mat.NewVecDense(4, adjusted)
	var roadMean mat.VecDense
	roadMean.MulVec(&pt, meanVec)

	mean := []float64{roadMean.AtVec(0), roadMean.AtVec(1)}

	if previousLocation != nil && dt > 0 {
		snapPoint := geom.Point{X: pr.A[0] + pr.P.At(0, 0)*mean[0], Y: pr.A[2] + pr.P.At(2, 0)*mean[0]}
		speed := linalg.Norm2(snapPoint.X-previousLocation.X, snapPoint.Y-previousLocation.Y) / dt
		mean[1] = linalg.Sign(mean[1]) * speed
	}

	cov := ground.Cov.Transform(&pt)
	return kalman.Belief{Mean: mean, Cov: cov}
}
