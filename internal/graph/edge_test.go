package graph

import (
	"testing"

	"github.com/mapmatch/core/internal/geom"
)

func straightEdge(id string) Edge {
	return NewEdge(id, geom.NewPolyline([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}), true)
}

func TestNullEdgeEquality(t *testing.T) {
	a, b := NullEdge(), NullEdge()
	if !a.Equal(b) {
		t.Fatal("two null edges should be equal")
	}
	real := straightEdge("e1")
	if a.Equal(real) || real.Equal(a) {
		t.Fatal("a null edge should never equal a real edge")
	}
}

func TestEdgeEqualRequiresSameDirection(t *testing.T) {
	e := straightEdge("e1")
	reversed := NewEdge("e1-rev", geom.NewPolyline([]geom.Point{{X: 10, Y: 0}, {X: 0, Y: 0}}), true)
	if e.Equal(reversed) {
		t.Fatal("Equal should require matching direction")
	}
	if !e.TopologicallyEquivalent(reversed) {
		t.Fatal("TopologicallyEquivalent should allow reversal")
	}
}

func TestSortEdgesPutsNullFirst(t *testing.T) {
	edges := []Edge{straightEdge("e1"), NullEdge()}
	sorted := SortEdges(edges)
	if !sorted[0].IsNull() {
		t.Fatal("SortEdges should place the null edge first")
	}
}

func TestSegmentAt(t *testing.T) {
	e := straightEdge("e1")
	seg := SegmentAt(e, 5)
	if seg.StartOffset != 0 {
		t.Fatalf("StartOffset = %f, want 0 (single-segment edge)", seg.StartOffset)
	}
}
