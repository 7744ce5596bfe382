package pathstate

import (
	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
)

// Frame is the per-segment projection frame used by the ground↔road
// projection pair (§4.5): a straight segment oriented along the
// path's direction of travel, its path-relative start offset, and the
// owning PathEdge.
type Frame struct {
	Dir        geom.Point // unit direction along path travel
	Start      geom.Point // segment's start point, in path-travel order
	PathOffset float64    // signed path distance to Start
	PathEdge   PathEdge
}

// FrameAt returns the projection frame covering signed path distance
// d: the straight-line piece of the path's geometry containing d,
// reoriented (reversed, with offsets recomputed) so that its direction
// and start point match the path's direction of travel rather than the
// underlying edge's native direction.
func (p Path) FrameAt(d float64) Frame {
	pe, local := p.PathEdgeAt(d)
	seg := graph.SegmentAt(pe.Edge, local)
	native := seg.Geometry()
	nativeLen := native.Length()

	if !pe.IsBackward {
		dx, dy := native.Direction()
		return Frame{
			Dir:        geom.Point{X: dx, Y: dy},
			Start:      native.Start,
			PathOffset: pe.DistToStartOfEdge + seg.StartOffset,
			PathEdge:   pe,
		}
	}

	rev := native.Reverse()
	dx, dy := rev.Direction()
	return Frame{
		Dir:        geom.Point{X: dx, Y: dy},
		Start:      rev.Start, // == native.End
		PathOffset: pe.DistToStartOfEdge - seg.StartOffset - nativeLen,
		PathEdge:   pe,
	}
}
