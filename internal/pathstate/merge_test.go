package pathstate

import (
	"math"
	"testing"

	"github.com/mapmatch/core/internal/graph"
)

func TestMergePathsSameDirectionOverlap(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 20, 0)
	from := NewPath([]graph.Edge{a, b}, false)
	to := NewPath([]graph.Edge{b, edge("c", 20, 0, 30, 0)}, false)

	merged, reversed, found := MergePaths(from, to)
	if !found {
		t.Fatal("expected an overlap")
	}
	if reversed {
		t.Fatal("did not expect to to need reversing")
	}
	if len(merged.Edges) != 3 {
		t.Fatalf("merged has %d edges, want 3", len(merged.Edges))
	}
	if math.Abs(merged.TotalPathDistance()-30) > 1e-9 {
		t.Fatalf("merged TotalPathDistance() = %f, want 30", merged.TotalPathDistance())
	}
}

func TestMergePathsOppositeOrientation(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 20, 0)
	c := edge("c", 20, 0, 30, 0)
	from := NewPath([]graph.Edge{a, b}, false)
	// to traverses c then b, in the opposite direction from 'from's tail.
	to := reversePath(NewPath([]graph.Edge{b, c}, false))

	merged, reversed, found := MergePaths(from, to)
	if !found {
		t.Fatal("expected an overlap after reversing to")
	}
	if !reversed {
		t.Fatal("expected to to need reversing to align with from")
	}
	if len(merged.Edges) != 3 {
		t.Fatalf("merged has %d edges, want 3", len(merged.Edges))
	}
}

func TestMergePathsNoOverlap(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	d := edge("d", 100, 100, 110, 100)
	from := NewPath([]graph.Edge{a}, false)
	to := NewPath([]graph.Edge{d}, false)

	_, _, found := MergePaths(from, to)
	if found {
		t.Fatal("did not expect an overlap between disjoint edges")
	}
}

func TestReversePathFlipsDirectionAndOffsets(t *testing.T) {
	a := edge("a", 0, 0, 10, 0)
	b := edge("b", 10, 0, 20, 0)
	p := NewPath([]graph.Edge{a, b}, false)
	r := reversePath(p)

	if r.Edges[0].Edge.ID() != "b" || r.Edges[1].Edge.ID() != "a" {
		t.Fatalf("reversePath did not reverse edge order: %+v", r.Edges)
	}
	if !r.Edges[0].IsBackward || !r.Edges[1].IsBackward {
		t.Fatal("reversePath should flip every edge's backward flag")
	}
	if math.Abs(r.TotalPathDistance()+20) > 1e-9 {
		t.Fatalf("reversePath TotalPathDistance() = %f, want -20", r.TotalPathDistance())
	}
	if math.Abs(r.Edges[1].DistToStartOfEdge+10) > 1e-9 {
		t.Fatalf("reversePath second edge DistToStartOfEdge = %f, want -10", r.Edges[1].DistToStartOfEdge)
	}
}
