package geom

import (
	"math"
	"testing"
)

func TestLineMergeChainsColinearSegments(t *testing.T) {
	segs := []Segment{
		{Start: Point{X: 10, Y: 0}, End: Point{X: 20, Y: 0}},
		{Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 0}},
	}
	merged := LineMerge(segs)
	if len(merged) != 1 {
		t.Fatalf("LineMerge returned %d polylines, want 1", len(merged))
	}
	if math.Abs(merged[0].Length()-20) > 1e-9 {
		t.Fatalf("merged length = %f, want 20", merged[0].Length())
	}
}

func TestLineMergeLeavesDisjointSegmentsSeparate(t *testing.T) {
	segs := []Segment{
		{Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 0}},
		{Start: Point{X: 100, Y: 100}, End: Point{X: 110, Y: 100}},
	}
	merged := LineMerge(segs)
	if len(merged) != 2 {
		t.Fatalf("LineMerge returned %d polylines, want 2", len(merged))
	}
}

func TestOverlapFindsSameDirection(t *testing.T) {
	a := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}})
	b := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	ov, reversed, found := Overlap(a, b)
	if !found {
		t.Fatal("expected an overlap")
	}
	if reversed {
		t.Fatal("did not expect b to need reversing")
	}
	if math.Abs(ov.Length()-10) > 1e-9 {
		t.Fatalf("overlap length = %f, want 10", ov.Length())
	}
}

func TestOverlapFindsReversed(t *testing.T) {
	a := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	b := NewPolyline([]Point{{X: 10, Y: 0}, {X: 0, Y: 0}})
	_, reversed, found := Overlap(a, b)
	if !found {
		t.Fatal("expected an overlap")
	}
	if !reversed {
		t.Fatal("expected b to need reversing to align")
	}
}

func TestOverlapNoneFound(t *testing.T) {
	a := NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	b := NewPolyline([]Point{{X: 0, Y: 100}, {X: 10, Y: 100}})
	_, _, found := Overlap(a, b)
	if found {
		t.Fatal("did not expect an overlap between parallel, non-coincident lines")
	}
}
