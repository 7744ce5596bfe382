package pathstate

// MotionState is a state vector: 4-D [x, vx, y, vy] off-road, 2-D
// [s, v_s] on-road.
type MotionState []float64

// Dim returns the vector's dimensionality.
func (m MotionState) Dim() int { return len(m) }

// Clone returns an independent copy.
func (m MotionState) Clone() MotionState {
	out := make(MotionState, len(m))
	copy(out, m)
	return out
}

// GroundState constructs a 4-D ground motion state.
func GroundState(x, vx, y, vy float64) MotionState {
	return MotionState{x, vx, y, vy}
}

// RoadState constructs a 2-D road motion state.
func RoadState(s, vs float64) MotionState {
	return MotionState{s, vs}
}

// IsGround and IsRoad report the vector's coordinate system by its
// dimensionality.
func (m MotionState) IsGround() bool { return len(m) == 4 }
func (m MotionState) IsRoad() bool   { return len(m) == 2 }

// PathState is the fundamental unit of belief: a path together with a
// motion state expressed in that path's coordinate system. The
// invariant motion_state.dim == 4 iff path.is_null always holds for a
// validly constructed PathState.
type PathState struct {
	Path   Path
	Motion MotionState
}

// NewPathState validates and constructs a PathState, clamping an
// on-road arc-length to the path's valid range.
func NewPathState(path Path, motion MotionState) PathState {
	if path.IsNull() {
		if !motion.IsGround() {
			panic("pathstate: off-road PathState requires a 4-D ground motion state")
		}
		return PathState{Path: path, Motion: motion}
	}
	if !motion.IsRoad() {
		panic("pathstate: on-road PathState requires a 2-D road motion state")
	}
	clamped := motion.Clone()
	clamped[0] = path.Clamp(clamped[0])
	return PathState{Path: path, Motion: clamped}
}

// IsOnRoad reports whether the state is currently bound to a path.
func (s PathState) IsOnRoad() bool { return !s.Path.IsNull() }

// ArcLength returns the road-mode arc-length coordinate. Panics if
// off-road.
func (s PathState) ArcLength() float64 {
	if !s.IsOnRoad() {
		panic("pathstate: ArcLength called on an off-road state")
	}
	return s.Motion[0]
}
