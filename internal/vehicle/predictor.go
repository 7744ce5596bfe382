package vehicle

import (
	"math"
	"math/rand"

	"github.com/mapmatch/core/internal/covariance"
	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
	"github.com/mapmatch/core/internal/kalman"
	"github.com/mapmatch/core/internal/linalg"
	"github.com/mapmatch/core/internal/pathstate"
	"github.com/mapmatch/core/internal/projection"
	"github.com/mapmatch/core/internal/trackerr"
	"github.com/mapmatch/core/internal/transition"
)

// State is one particle's complete belief: its path (null iff
// off-road), its belief (4-D ground or 2-D road, matching the path),
// and the learned parameters C6/C7 carry forward step to step.
type State struct {
	Path    pathstate.Path
	Belief  kalman.Belief
	Parent  *Observation

	GroundAccelCov covariance.InverseWishart // 2x2, ground (x,y) acceleration noise
	RoadAccelCov   covariance.InverseWishart // 1x1, road arc-length acceleration noise
	ObsCov         covariance.ScaledInvGamma
	ObsCovBase     *linalg.SvdMatrix // base 2x2 ground measurement covariance shape

	Transition transition.Model
	RNG        *rand.Rand
}

// NewState builds the initial particle for an off-road start at
// location with zero velocity, with the weakly-informative priors the
// external-interface constants specify.
func NewState(seed int64, location geom.Point, obsBase *linalg.SvdMatrix) State {
	return State{
		Path:   pathstate.NullPath(),
		Belief: kalman.Belief{Mean: []float64{location.X, 0, location.Y, 0}, Cov: linalg.DiagSvd([]float64{25, 1, 25, 1})},

		GroundAccelCov: covariance.NewInverseWishart(4, linalg.DiagSvd([]float64{1, 1})),
		RoadAccelCov:   covariance.NewInverseWishart(3, linalg.DiagSvd([]float64{1})),
		ObsCov:         covariance.NewScaledInvGamma(2, 1),
		ObsCovBase:     obsBase,

		Transition: transition.NewModel(),
		RNG:        rand.New(rand.NewSource(seed)),
	}
}

// StepReport records what happened during a Step call, for logging and
// export (C9/C11).
type StepReport struct {
	DtSeconds     float64
	Skipped       bool
	TransitionTo  string
	WasOnRoad     bool
	IsOnRoad      bool
}

// Step sequences one particle-step per §4.8: rebuild the filters for
// Δt, predict, project, measure, sample the next edge via C6, and
// update the C7 posteriors. Returns the advanced state and a report;
// a NumericError/GeometryError from Measure is returned as err and the
// caller (the harness, C11) decides whether to discard the particle.
func (s State) Step(g graph.RoadGraph, obs *Observation) (State, StepReport, error) {
	if s.Parent == nil {
		return s, StepReport{Skipped: true}, trackerr.New(trackerr.Contract, "vehicle.Step", "Step called with no parent observation")
	}
	dt := obs.Timestamp.Sub(s.Parent.Timestamp).Seconds()
	if dt <= 0 {
		return s, StepReport{Skipped: true, DtSeconds: dt}, nil
	}

	wasOnRoad := !s.Path.IsNull()

	groundAccel := diagValues(s.GroundAccelCov.Mean(), 2)
	roadAccel := diagValues(s.RoadAccelCov.Mean(), 1)
	groundModel := kalman.GroundModel(dt)
	roadModel := kalman.RoadModel(dt)
	groundProcessCov := kalman.GroundProcessCov(dt, [2]float64{groundAccel[0], groundAccel[1]})
	roadProcessCov := kalman.RoadProcessCov(dt, roadAccel[0])

	var predicted kalman.Belief
	var groundBelief kalman.Belief
	prevArcLength := 0.0

	if wasOnRoad {
		prevArcLength = s.Belief.Mean[0]
		predicted = roadModel.Predict(s.Belief, roadProcessCov)
		upper := math.Abs(s.Path.TotalPathDistance())
		predicted = kalman.TruncateRoadBelief(predicted, 0, upper)
		frame := s.Path.FrameAt(predicted.Mean[0])
		groundBelief = projection.GroundFromRoad(frame, predicted, false)
	} else {
		predicted = groundModel.Predict(s.Belief, groundProcessCov)
		groundBelief = predicted
	}

	obsVec := []float64{obs.ProjectedXY.X, obs.ProjectedXY.Y}
	measurementCov := s.ObsCov.Apply(s.ObsCovBase)
	measured, err := groundModel.Measure(groundBelief, obsVec, measurementCov)
	if err != nil {
		return s, StepReport{DtSeconds: dt, WasOnRoad: wasOnRoad, IsOnRoad: wasOnRoad}, err
	}

	chosen := s.sampleTransition(g, wasOnRoad, prevArcLength, predicted, measured)

	newPath, newBelief, err := s.reproject(wasOnRoad, chosen, s.Path, measured, &s.Parent.ProjectedXY, dt)
	if err != nil {
		return s, StepReport{DtSeconds: dt, WasOnRoad: wasOnRoad, IsOnRoad: wasOnRoad}, err
	}

	s.updateCovariances(wasOnRoad, !newPath.IsNull(), predicted, newBelief, obsVec, newPath)

	next := s
	next.Path = newPath
	next.Belief = newBelief
	obsCopy := *obs
	next.Parent = &obsCopy

	return next, StepReport{
		DtSeconds:    dt,
		WasOnRoad:    wasOnRoad,
		IsOnRoad:     !newPath.IsNull(),
		TransitionTo: chosen.ID(),
	}, nil
}

func (s State) sampleTransition(g graph.RoadGraph, wasOnRoad bool, prevArcLength float64, predicted, measured kalman.Belief) graph.Edge {
	if wasOnRoad {
		pe, _ := s.Path.PathEdgeAt(predicted.Mean[0])
		stepDistance := predicted.Mean[0] - prevArcLength
		domain := transition.OnRoadDomain(g, pe.Edge, stepDistance)
		domain = append(domain, graph.NullEdge())
		return s.Transition.Sample(s.RNG, true, domain)
	}
	loc := geom.Point{X: measured.Mean[0], Y: measured.Mean[2]}
	domain := transition.OffRoadDomain(g, loc, s.ObsCov.Apply(s.ObsCovBase))
	domain = append(domain, graph.NullEdge())
	return s.Transition.Sample(s.RNG, false, domain)
}

// reproject binds the measured ground belief into the path the
// transition sample selected: a fresh single-edge path off-road→on-road;
// on-road→on-road, the current path when the chosen edge is its last
// edge and otherwise a fresh single-edge path on the chosen edge
// (MergePaths joins paths only where they share whole edges, so a
// different chosen edge is not appended to the current path); or a drop
// to ground coordinates for any →off-road outcome.
func (s State) reproject(wasOnRoad bool, chosen graph.Edge, current pathstate.Path, measured kalman.Belief, previousLocation *geom.Point, dt float64) (pathstate.Path, kalman.Belief, error) {
	if chosen.IsNull() {
		return pathstate.NullPath(), measured, nil
	}

	if !wasOnRoad {
		newPath := pathstate.NewPath([]graph.Edge{chosen}, false)
		belief := projection.RoadFromGround(newPath, measured, previousLocation, dt)
		belief = kalman.TruncateRoadBelief(belief, 0, chosen.Length())
		return newPath, belief, nil
	}

	lastEdge := current.LastEdge()
	if lastEdge.Equal(chosen) {
		belief := projection.RoadFromGround(current, measured, previousLocation, dt)
		belief = kalman.TruncateRoadBelief(belief, 0, math.Abs(current.TotalPathDistance()))
		return current, belief, nil
	}

	candidate := pathstate.NewPath([]graph.Edge{chosen}, false)
	if merged, _, ok := pathstate.MergePaths(current, candidate); ok {
		belief := projection.RoadFromGround(merged, measured, previousLocation, dt)
		belief = kalman.TruncateRoadBelief(belief, 0, math.Abs(merged.TotalPathDistance()))
		return merged, belief, nil
	}

	belief := projection.RoadFromGround(candidate, measured, previousLocation, dt)
	belief = kalman.TruncateRoadBelief(belief, 0, chosen.Length())
	return candidate, belief, nil
}

// updateCovariances folds this step's residuals into the C7 posteriors.
// The observation-error vector is obs minus the ground projection of
// the post-transition state (the "sampled new state" of §4.7); the
// process-noise residual is the velocity correction Measure applied,
// taken as a proxy for this step's realized acceleration noise.
func (s *State) updateCovariances(wasOnRoad, isOnRoad bool, predicted, newBelief kalman.Belief, obsVec []float64, newPath pathstate.Path) {
	var newGroundX, newGroundY, newGroundVX, newGroundVY float64
	if isOnRoad {
		frame := newPath.FrameAt(newBelief.Mean[0])
		g := projection.GroundFromRoad(frame, newBelief, false)
		newGroundX, newGroundVX, newGroundY, newGroundVY = g.Mean[0], g.Mean[1], g.Mean[2], g.Mean[3]
	} else {
		newGroundX, newGroundVX, newGroundY, newGroundVY = newBelief.Mean[0], newBelief.Mean[1], newBelief.Mean[2], newBelief.Mean[3]
	}

	e := []float64{obsVec[0] - newGroundX, obsVec[1] - newGroundY}
	s.ObsCov = s.ObsCov.Update(e)

	if wasOnRoad && isOnRoad && len(predicted.Mean) == 2 && len(newBelief.Mean) == 2 {
		residual := []float64{newBelief.Mean[1] - predicted.Mean[1]}
		s.RoadAccelCov = s.RoadAccelCov.Update(residual)
		return
	}
	if !wasOnRoad && !isOnRoad {
		residual := []float64{newGroundVX - predicted.Mean[1], newGroundVY - predicted.Mean[3]}
		s.GroundAccelCov = s.GroundAccelCov.Update(residual)
	}
}

func diagValues(m *linalg.SvdMatrix, n int) []float64 {
	dense := m.Dense()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = dense.At(i, i)
		if out[i] <= 0 {
			out[i] = 1e-6
		}
	}
	return out
}
