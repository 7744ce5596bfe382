package pathstate

import (
	"math"
	"testing"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
)

func edge(id string, x0, y0, x1, y1 float64) graph.Edge {
	return graph.NewEdge(id, geom.NewPolyline([]geom.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}), false)
}

func TestNewPathComputesOffsets(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 10, 5)
	p := NewPath([]graph.Edge{a, b}, false)
	if p.Edges[0].DistToStartOfEdge != 0 {
		t.Fatalf("first edge offset = %f, want 0", p.Edges[0].DistToStartOfEdge)
	}
	if math.Abs(p.Edges[1].DistToStartOfEdge-10) > 1e-9 {
		t.Fatalf("second edge offset = %f, want 10", p.Edges[1].DistToStartOfEdge)
	}
	if math.Abs(p.TotalPathDistance()-15) > 1e-9 {
		t.Fatalf("TotalPathDistance() = %f, want 15", p.TotalPathDistance())
	}
}

func TestNullPath(t *testing.T) {
	if !NullPath().IsNull() {
		t.Fatal("NullPath() should report IsNull()")
	}
	p := NewPath(nil, false)
	if !p.IsNull() {
		t.Fatal("NewPath(nil, false) should be the null path")
	}
}

func TestPathPointAtSpansEdges(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 10, 5)
	p := NewPath([]graph.Edge{a, b}, false)

	pt := p.PointAt(12)
	if math.Abs(pt.X-10) > 1e-9 || math.Abs(pt.Y-2) > 1e-9 {
		t.Fatalf("PointAt(12) = %+v, want (10,2)", pt)
	}
}

func TestPathSnapFindsClosestEdge(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 10, 10)
	p := NewPath([]graph.Edge{a, b}, false)

	dist, perp := p.Snap(geom.Point{X: 10, Y: 3})
	if math.Abs(dist-13) > 1e-6 {
		t.Fatalf("Snap dist = %f, want 13", dist)
	}
	if perp > 1e-6 {
		t.Fatalf("Snap perp = %f, want ~0", perp)
	}
}

func TestPathClampRespectsDirection(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	fwd := NewPath([]graph.Edge{a}, false)
	if got := fwd.Clamp(-5); got != 0 {
		t.Fatalf("forward Clamp(-5) = %f, want 0", got)
	}
	if got := fwd.Clamp(20); got != 10 {
		t.Fatalf("forward Clamp(20) = %f, want 10", got)
	}
}

func TestPathEqual(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	p1 := NewPath([]graph.Edge{a}, false)
	p2 := NewPath([]graph.Edge{a}, false)
	if !p1.Equal(p2) {
		t.Fatal("two paths over the same edge/direction should be equal")
	}
	if NullPath().Equal(p1) {
		t.Fatal("null path should not equal a real path")
	}
}
