// Package pathstate implements the path-state algebra: paths as
// directed concatenations of road edges, motion states expressed
// either in ground (x, vx, y, vy) or road (s, v_s) coordinates, and
// the operations — differencing, reprojection, merging — that treat a
// (path, motion-state) pair as the unit of belief about a vehicle.
package pathstate

import (
	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
)

// PathEdge is one edge of a Path, carrying the edge's signed offset
// from the path's start and whether the path traverses it against its
// native (graph) direction.
type PathEdge struct {
	Edge              graph.Edge
	DistToStartOfEdge float64 // signed; 0 for the first edge
	IsBackward        bool
}

// Path is an ordered, directed concatenation of road edges. The zero
// value is the null path, representing off-road motion.
type Path struct {
	Edges      []PathEdge
	IsBackward bool
}

// NullPath returns the empty path used to encode off-road motion.
func NullPath() Path { return Path{} }

// IsNull reports whether p is the null (off-road) path.
func (p Path) IsNull() bool { return len(p.Edges) == 0 }

// NewPath builds a path from an ordered list of whole edges traversed
// in the given direction. Every edge carries the path's backward flag;
// each edge's offset is the cumulative length of the edges before it,
// negated for a backward path.
func NewPath(edges []graph.Edge, isBackward bool) Path {
	if len(edges) == 0 {
		return NullPath()
	}
	out := make([]PathEdge, len(edges))
	acc := 0.0
	for i, e := range edges {
		dist := 0.0
		if i > 0 {
			dist = acc
			if isBackward {
				dist = -acc
			}
		}
		out[i] = PathEdge{Edge: e, DistToStartOfEdge: dist, IsBackward: isBackward}
		acc += e.Length()
	}
	return Path{Edges: out, IsBackward: isBackward}
}

// FirstEdge and LastEdge return the path's boundary edges. Both panic
// on the null path — callers must check IsNull first.
func (p Path) FirstEdge() graph.Edge { return p.Edges[0].Edge }
func (p Path) LastEdge() graph.Edge  { return p.Edges[len(p.Edges)-1].Edge }

// TotalPathDistance returns the signed total length of the path: its
// magnitude is the polyline length of the concatenation, its sign
// matches the path's direction.
func (p Path) TotalPathDistance() float64 {
	total := 0.0
	for _, e := range p.Edges {
		total += e.Edge.Length()
	}
	if p.IsBackward {
		return -total
	}
	return total
}

// edgeWindow returns the [lo, hi] signed arc-length window (lo<=hi)
// that PathEdge pe occupies within the path's coordinate system.
func edgeWindow(pe PathEdge) (lo, hi float64) {
	length := pe.Edge.Length()
	if pe.IsBackward {
		return pe.DistToStartOfEdge - length, pe.DistToStartOfEdge
	}
	return pe.DistToStartOfEdge, pe.DistToStartOfEdge + length
}

// localOffset converts a path-relative arc-length d that falls within
// pe's window into the edge-local arc length (0..edge length) measured
// in the edge's own (graph) direction.
func localOffset(pe PathEdge, d float64) float64 {
	if pe.IsBackward {
		return pe.DistToStartOfEdge - d
	}
	return d - pe.DistToStartOfEdge
}

// PathEdgeAt returns the PathEdge and edge-local offset covering
// signed path distance d.
func (p Path) PathEdgeAt(d float64) (PathEdge, float64) {
	for _, pe := range p.Edges {
		lo, hi := edgeWindow(pe)
		if d >= lo-geom.EdgeLengthErrorTolerance && d <= hi+geom.EdgeLengthErrorTolerance {
			local := localOffset(pe, d)
			length := pe.Edge.Length()
			if local < 0 {
				local = 0
			}
			if local > length {
				local = length
			}
			return pe, local
		}
	}
	// Fall back to clamping against the nearest boundary edge.
	if p.IsBackward {
		if d > 0 {
			pe := p.Edges[0]
			return pe, 0
		}
		pe := p.Edges[len(p.Edges)-1]
		return pe, pe.Edge.Length()
	}
	if d < 0 {
		pe := p.Edges[0]
		return pe, 0
	}
	pe := p.Edges[len(p.Edges)-1]
	return pe, pe.Edge.Length()
}

// PointAt returns the planar point at signed path distance d.
func (p Path) PointAt(d float64) geom.Point {
	pe, local := p.PathEdgeAt(d)
	return pe.Edge.Geometry().PointAt(local)
}

// Clamp restricts d to the path's valid [0, TotalPathDistance] range
// (sign-aware: for a backward path this is [TotalPathDistance, 0]).
func (p Path) Clamp(d float64) float64 {
	total := p.TotalPathDistance()
	lo, hi := total, 0.0
	if total >= 0 {
		lo, hi = 0, total
	}
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// Snap projects pt onto the nearest point of the path's concatenated
// geometry, returning the signed path distance and the perpendicular
// distance.
func (p Path) Snap(pt geom.Point) (dist, perp float64) {
	best := -1.0
	bestDist := 0.0
	for _, pe := range p.Edges {
		localDist, localPerp, _ := pe.Edge.Geometry().Snap(pt)
		if best < 0 || localPerp < best {
			best = localPerp
			if pe.IsBackward {
				bestDist = pe.DistToStartOfEdge - localDist
			} else {
				bestDist = pe.DistToStartOfEdge + localDist
			}
		}
	}
	return bestDist, best
}

// SegmentAt returns the graph.Segment (straight polyline piece) and
// its path-relative start offset covering signed path distance d.
func (p Path) SegmentAt(d float64) (graph.Segment, float64) {
	pe, local := p.PathEdgeAt(d)
	seg := graph.SegmentAt(pe.Edge, local)
	var pathOffset float64
	if pe.IsBackward {
		pathOffset = pe.DistToStartOfEdge - seg.StartOffset
	} else {
		pathOffset = pe.DistToStartOfEdge + seg.StartOffset
	}
	return seg, pathOffset
}

// Equal reports whether two paths traverse the same edges in the same
// direction.
func (p Path) Equal(o Path) bool {
	if p.IsNull() || o.IsNull() {
		return p.IsNull() && o.IsNull()
	}
	if len(p.Edges) != len(o.Edges) || p.IsBackward != o.IsBackward {
		return false
	}
	for i := range p.Edges {
		if !p.Edges[i].Edge.Equal(o.Edges[i].Edge) {
			return false
		}
	}
	return true
}
