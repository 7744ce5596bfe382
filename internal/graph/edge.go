// Package graph defines the read-only road-network view the tracking
// core queries: edges, their segment geometry, and transferable
// adjacency. It never mutates; a RoadGraph is built once and shared by
// every particle.
package graph

import (
	"sort"

	"github.com/mapmatch/core/internal/geom"
)

// Edge is a directed road edge: a polyline geometry plus metadata. The
// zero value is not a valid edge — use NullEdge() for the sentinel
// representing off-road motion.
type Edge struct {
	id       string
	geometry geom.Polyline
	hasRev   bool
	isNull   bool
}

// NewEdge builds a real edge from its id, geometry and whether the
// graph also carries the reverse direction as a distinct traversable
// edge.
func NewEdge(id string, geometry geom.Polyline, hasReverse bool) Edge {
	return Edge{id: id, geometry: geometry, hasRev: hasReverse}
}

// NullEdge is the sentinel representing free, off-road motion. It is
// equal only to itself.
func NullEdge() Edge { return Edge{isNull: true} }

// IsNull reports whether e is the off-road sentinel.
func (e Edge) IsNull() bool { return e.isNull }

// ID returns the edge's identifier ("" for the null edge).
func (e Edge) ID() string { return e.id }

// Geometry returns the edge's polyline. Undefined for the null edge.
func (e Edge) Geometry() geom.Polyline { return e.geometry }

// Length returns the edge's polyline length, 0 for the null edge.
func (e Edge) Length() float64 {
	if e.isNull {
		return 0
	}
	return e.geometry.Length()
}

// StartPoint and EndPoint return the edge's endpoints.
func (e Edge) StartPoint() geom.Point { return e.geometry.StartPoint() }
func (e Edge) EndPoint() geom.Point   { return e.geometry.EndPoint() }

// HasReverse reports whether the graph also exposes this edge's
// reverse direction as a distinct edge.
func (e Edge) HasReverse() bool { return e.hasRev }

// Equal reports geometry equality. Two null edges are equal; a null
// edge is never equal to a real one.
func (e Edge) Equal(o Edge) bool {
	if e.isNull || o.isNull {
		return e.isNull == o.isNull
	}
	return e.geometry.Equal(o.geometry)
}

// TopologicallyEquivalent reports geometric equality up to reversal.
func (e Edge) TopologicallyEquivalent(o Edge) bool {
	if e.isNull || o.isNull {
		return e.isNull == o.isNull
	}
	return e.geometry.TopologicallyEquivalent(o.geometry)
}

// Less provides a total order over edges by lexicographic comparison
// of their geometry, with the null edge sorting first.
func (e Edge) Less(o Edge) bool {
	if e.isNull != o.isNull {
		return e.isNull
	}
	if e.isNull {
		return false
	}
	as, bs := e.geometry.Segments, o.geometry.Segments
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i].Start != bs[i].Start {
			return pointLess(as[i].Start, bs[i].Start)
		}
		if as[i].End != bs[i].End {
			return pointLess(as[i].End, bs[i].End)
		}
	}
	return len(as) < len(bs)
}

func pointLess(a, b geom.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// SortEdges returns edges in the canonical Less order, for
// deterministic iteration (e.g. domain construction in the transition
// model).
func SortEdges(edges []Edge) []Edge {
	out := append([]Edge(nil), edges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Segment is a single straight segment of an edge's polyline, carrying
// its start offset (arc-length) within the edge.
type Segment struct {
	Edge        Edge
	Index       int
	StartOffset float64
}

// Geometry returns the underlying straight-line geometry.
func (s Segment) Geometry() geom.Segment {
	return s.Edge.geometry.Segments[s.Index]
}

// SegmentAt returns the graph Segment containing arc-length d along
// e's polyline.
func SegmentAt(e Edge, d float64) Segment {
	loc := e.geometry.LengthToLocation(d)
	return Segment{
		Edge:        e,
		Index:       loc.SegmentIndex,
		StartOffset: e.geometry.LocationToLength(geom.Location{SegmentIndex: loc.SegmentIndex, Fraction: 0}),
	}
}
