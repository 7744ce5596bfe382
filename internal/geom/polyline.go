// Package geom implements arc-length indexing over polylines: the
// geometry adapter the path-state algebra snaps, extracts, reverses,
// and merges against.
package geom

import (
	"math"

	"github.com/mapmatch/core/internal/linalg"
)

// EdgeLengthErrorTolerance is the numerical tolerance within which an
// arc-length value is treated as lying on a polyline.
const EdgeLengthErrorTolerance = 1.0

// Point is a planar coordinate in meters.
type Point struct{ X, Y float64 }

// Segment is a single straight segment of a polyline.
type Segment struct{ Start, End Point }

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return linalg.Norm2(s.End.X-s.Start.X, s.End.Y-s.Start.Y)
}

// Direction returns the segment's unit direction vector, (0,0) for a
// degenerate zero-length segment.
func (s Segment) Direction() (dx, dy float64) {
	return linalg.Unit2(s.End.X-s.Start.X, s.End.Y-s.Start.Y)
}

// PointAt returns the point a fraction (0..1) along the segment.
func (s Segment) PointAt(frac float64) Point {
	return Point{
		X: s.Start.X + frac*(s.End.X-s.Start.X),
		Y: s.Start.Y + frac*(s.End.Y-s.Start.Y),
	}
}

// Reverse returns the segment traversed in the opposite direction.
func (s Segment) Reverse() Segment {
	return Segment{Start: s.End, End: s.Start}
}

// Project returns the fraction (clamped to [0,1]) along the segment
// closest to p, the perpendicular distance from p to that point, and
// the point itself.
func (s Segment) Project(p Point) (frac, dist float64, at Point) {
	dx, dy := s.End.X-s.Start.X, s.End.Y-s.Start.Y
	length2 := dx*dx + dy*dy
	if length2 < 1e-18 {
		return 0, linalg.Norm2(p.X-s.Start.X, p.Y-s.Start.Y), s.Start
	}
	t := ((p.X-s.Start.X)*dx + (p.Y-s.Start.Y)*dy) / length2
	t = linalg.Clamp(t, 0, 1)
	at = s.PointAt(t)
	return t, linalg.Norm2(p.X-at.X, p.Y-at.Y), at
}

// Polyline is an ordered sequence of straight segments forming a
// single connected edge geometry.
type Polyline struct {
	Segments []Segment
}

// NewPolyline builds a polyline from an ordered list of vertices.
func NewPolyline(points []Point) Polyline {
	if len(points) < 2 {
		return Polyline{}
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		segs = append(segs, Segment{Start: points[i], End: points[i+1]})
	}
	return Polyline{Segments: segs}
}

// Length returns the total arc length of the polyline.
func (p Polyline) Length() float64 {
	total := 0.0
	for _, s := range p.Segments {
		total += s.Length()
	}
	return total
}

// StartPoint and EndPoint return the polyline's endpoints.
func (p Polyline) StartPoint() Point { return p.Segments[0].Start }
func (p Polyline) EndPoint() Point   { return p.Segments[len(p.Segments)-1].End }

// Location identifies a point on a polyline by segment index and the
// fraction (0..1) along that segment.
type Location struct {
	SegmentIndex int
	Fraction     float64
}

// LengthToLocation maps an arc-length distance d (clamped into
// [0,length]) to a segment index and fraction. If d falls exactly on
// the shared endpoint between two segments, the later segment
// (fraction 0) is preferred — consistent with the component-boundary
// policy used when chaining multiple polylines into a path.
func (p Polyline) LengthToLocation(d float64) Location {
	d = linalg.Clamp(d, 0, p.Length())
	acc := 0.0
	for i, s := range p.Segments {
		segLen := s.Length()
		if d <= acc+segLen || i == len(p.Segments)-1 {
			frac := 0.0
			if segLen > 1e-12 {
				frac = (d - acc) / segLen
			}
			frac = linalg.Clamp(frac, 0, 1)
			if frac >= 1 && i+1 < len(p.Segments) {
				return Location{SegmentIndex: i + 1, Fraction: 0}
			}
			return Location{SegmentIndex: i, Fraction: frac}
		}
		acc += segLen
	}
	last := len(p.Segments) - 1
	return Location{SegmentIndex: last, Fraction: 1}
}

// LocationToLength is the inverse of LengthToLocation.
func (p Polyline) LocationToLength(loc Location) float64 {
	acc := 0.0
	for i := 0; i < loc.SegmentIndex && i < len(p.Segments); i++ {
		acc += p.Segments[i].Length()
	}
	if loc.SegmentIndex < len(p.Segments) {
		acc += loc.Fraction * p.Segments[loc.SegmentIndex].Length()
	}
	return acc
}

// PointAt returns the planar point at arc-length d along the
// polyline.
func (p Polyline) PointAt(d float64) Point {
	loc := p.LengthToLocation(d)
	return p.Segments[loc.SegmentIndex].PointAt(loc.Fraction)
}

// ClampLength restricts d to the polyline's [0, Length()] range.
func (p Polyline) ClampLength(d float64) float64 {
	return linalg.Clamp(d, 0, p.Length())
}

// OnPath reports whether d is within EdgeLengthErrorTolerance of the
// polyline's valid [0, Length()] range.
func (p Polyline) OnPath(d float64) bool {
	return d >= -EdgeLengthErrorTolerance && d <= p.Length()+EdgeLengthErrorTolerance
}

// Snap orthogonally projects pt onto the nearest segment of the
// polyline, returning the arc-length distance of the snap point, the
// perpendicular distance from pt, and the snapped point itself.
func (p Polyline) Snap(pt Point) (distAlong, perpDist float64, at Point) {
	best := math.Inf(1)
	bestDist, bestAt := 0.0, Point{}
	acc := 0.0
	for _, s := range p.Segments {
		frac, dist, segAt := s.Project(pt)
		if dist < best {
			best = dist
			bestDist = acc + frac*s.Length()
			bestAt = segAt
		}
		acc += s.Length()
	}
	return bestDist, best, bestAt
}

// Sub extracts the subline between arc-lengths d0 and d1 (d0 may
// exceed d1, in which case the result runs backwards along the
// original direction — callers that need a forward-only result should
// call Reverse on it).
func (p Polyline) Sub(d0, d1 float64) Polyline {
	lo, hi := d0, d1
	reversed := false
	if lo > hi {
		lo, hi = hi, lo
		reversed = true
	}
	lo = p.ClampLength(lo)
	hi = p.ClampLength(hi)
	points := []Point{p.PointAt(lo)}
	acc := 0.0
	for _, s := range p.Segments {
		segStart, segEnd := acc, acc+s.Length()
		if segEnd > lo && segStart < hi {
			if segStart > lo && segStart < hi {
				points = append(points, s.Start)
			}
		}
		acc = segEnd
	}
	points = append(points, p.PointAt(hi))
	out := NewPolyline(dedupe(points))
	if reversed {
		return out.Reverse()
	}
	return out
}

func dedupe(points []Point) []Point {
	out := points[:0:0]
	for i, p := range points {
		if i > 0 && math.Abs(p.X-points[i-1].X) < 1e-9 && math.Abs(p.Y-points[i-1].Y) < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 2 {
		return points
	}
	return out
}

// Reverse returns the polyline traversed in the opposite direction.
func (p Polyline) Reverse() Polyline {
	n := len(p.Segments)
	segs := make([]Segment, n)
	for i, s := range p.Segments {
		segs[n-1-i] = s.Reverse()
	}
	return Polyline{Segments: segs}
}

// Equal reports exact coordinate equality between two polylines,
// matching the graph edge's equality-by-geometry contract.
func (p Polyline) Equal(o Polyline) bool {
	if len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i].Start != o.Segments[i].Start || p.Segments[i].End != o.Segments[i].End {
			return false
		}
	}
	return true
}

// TopologicallyEquivalent reports whether p and o trace the same
// geometry, allowing one to be the reverse of the other.
func (p Polyline) TopologicallyEquivalent(o Polyline) bool {
	return p.Equal(o) || p.Equal(o.Reverse())
}
