package projection

import (
	"math"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/pathstate"
	"github.com/mapmatch/core/internal/trackerr"
)

// DiffCase names the five canonical topological relationships
// state_diff recognizes between from.path and to.path.
type DiffCase int

const (
	// CaseHeadToTail: from's last edge is to's first edge, and from's
	// last edge is not also to's last edge.
	CaseHeadToTail DiffCase = iota
	// CaseSameStart: from and to start on the same edge in the same
	// direction.
	CaseSameStart
	// CaseHeadToTailReversed: from's last edge is to's first edge with
	// opposite orientation.
	CaseHeadToTailReversed
	// CaseSameStartReversed: from and to start on the same edge with
	// opposite orientation.
	CaseSameStartReversed
	// CaseReversedFromTo: from's first edge is to's last edge.
	CaseReversedFromTo
)

// classify determines which of the five canonical cases relates
// from.path and to.path, in the priority order spec.md lists them.
func classify(from, to pathstate.Path) (DiffCase, bool) {
	fromFirst, fromLast := from.FirstEdge(), from.LastEdge()
	toFirst, toLast := to.FirstEdge(), to.LastEdge()

	if fromLast.Equal(toFirst) && !fromLast.Equal(toLast) {
		return CaseHeadToTail, true
	}
	if fromFirst.Equal(toFirst) {
		return CaseSameStart, true
	}
	if fromLast.TopologicallyEquivalent(toFirst) && !fromLast.Equal(toFirst) {
		return CaseHeadToTailReversed, true
	}
	if fromFirst.TopologicallyEquivalent(toFirst) && !fromFirst.Equal(toFirst) {
		return CaseSameStartReversed, true
	}
	if fromFirst.Equal(toLast) {
		return CaseReversedFromTo, true
	}
	return 0, false
}

// StateDiff computes to - from as a 2-D [Δs, Δv] road motion state, or
// a 4-D ground difference if either state is off-road. Both states
// being on-road routes through one of the five canonical cases (see
// classify); when neither applies the paths share no coherent
// coordinate relationship and StateDiff returns a TopologyError, per
// §7's fatal-error policy.
//
// All five cases reduce to the same geometric operation: translate
// to's ground position onto from's path (a snap, exactly the Road←Ground
// projection of §4.5) and subtract in from's coordinate, with velocity
// sign aligned by comparing the two paths' direction of travel at the
// point of contact. classify exists to validate that such a coherent
// relationship exists before trusting the snap — a snap onto
// unrelated, non-adjacent paths would silently produce a numerically
// plausible but meaningless answer. When useRaw is set, the sign
// alignment and coordinate translation are skipped: the caller is
// asserting the two paths already share an origin and direction (used
// by diagnostics comparing two beliefs already known to be
// co-located).
func StateDiff(from, to pathstate.PathState, useRaw bool) (pathstate.MotionState, error) {
	if !from.IsOnRoad() || !to.IsOnRoad() {
		return groundDiff(from, to), nil
	}

	if _, ok := classify(from.Path, to.Path); !ok {
		return nil, trackerr.New(trackerr.Topology, "StateDiff",
			"from.path and to.path share none of the five canonical topological relationships")
	}

	if useRaw {
		return pathstate.MotionState{
			to.Motion[0] - from.Motion[0],
			to.Motion[1] - from.Motion[1],
		}, nil
	}

	toX, toY, _, _ := groundMeanFromRoad(to.Path.FrameAt(to.Motion[0]), to.Motion[0], to.Motion[1], false)
	snapDist, _ := from.Path.Snap(geom.Point{X: toX, Y: toY})

	fromFrame := from.Path.FrameAt(snapDist)
	toFrame := to.Path.FrameAt(to.Motion[0])
	dot := fromFrame.Dir.X*toFrame.Dir.X + fromFrame.Dir.Y*toFrame.Dir.Y
	sign := 1.0
	if dot < 0 {
		sign = -1.0
	}

	diffS := snapDist - from.Motion[0]
	diffV := sign*to.Motion[1] - from.Motion[1]
	return pathstate.MotionState{diffS, diffV}, nil
}

// groundMeanFromRoad applies the projection pair (P, a) to a bare
// (s, v_s) mean without carrying a covariance, for callers (StateDiff,
// path-merge) that only need the resulting point.
func groundMeanFromRoad(f pathstate.Frame, s, vs float64, useAbsVelocity bool) (x, vx, y, vy float64) {
	pr := buildPair(f)
	x = pr.A[0] + pr.P.At(0, 0)*s
	vx = pr.P.At(1, 1) * vs
	y = pr.A[2] + pr.P.At(2, 0)*s
	vy = pr.P.At(3, 1) * vs
	if useAbsVelocity {
		norm := math.Hypot(vx, vy)
		if norm > 1e-12 {
			scale := math.Abs(vs) / norm
			vx *= scale
			vy *= scale
		}
	}
	return
}

func groundDiff(from, to pathstate.PathState) pathstate.MotionState {
	fg := asGround(from)
	tg := asGround(to)
	out := make(pathstate.MotionState, 4)
	for i := range out {
		out[i] = tg[i] - fg[i]
	}
	return out
}

func asGround(s pathstate.PathState) pathstate.MotionState {
	if !s.IsOnRoad() {
		return s.Motion
	}
	x, vx, y, vy := groundMeanFromRoad(s.Path.FrameAt(s.Motion[0]), s.Motion[0], s.Motion[1], false)
	return pathstate.MotionState{x, vx, y, vy}
}

// edgeDistanceBound returns a generous upper bound on |Δs| between
// from and to, the summed length of both paths' edges, for checking
// the §8 assertion |result[0]| <= distance_max + 1.0.
func edgeDistanceBound(from, to pathstate.Path) float64 {
	total := 0.0
	for _, pe := range from.Edges {
		total += pe.Edge.Length()
	}
	for _, pe := range to.Edges {
		total += pe.Edge.Length()
	}
	return total
}
