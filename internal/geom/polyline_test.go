package geom

import (
	"math"
	"testing"
)

func straightLine() Polyline {
	return NewPolyline([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}})
}

func TestPolylineLength(t *testing.T) {
	p := straightLine()
	if got := p.Length(); math.Abs(got-20) > 1e-9 {
		t.Fatalf("Length() = %f, want 20", got)
	}
}

func TestPolylinePointAtMidpoint(t *testing.T) {
	p := straightLine()
	pt := p.PointAt(15)
	if math.Abs(pt.X-15) > 1e-9 || pt.Y != 0 {
		t.Fatalf("PointAt(15) = %+v, want (15,0)", pt)
	}
}

func TestPolylineLengthToLocationRoundTrip(t *testing.T) {
	p := straightLine()
	for _, d := range []float64{0, 5, 10, 10.0001, 19.999, 20} {
		loc := p.LengthToLocation(d)
		back := p.LocationToLength(loc)
		if math.Abs(back-d) > 1e-6 {
			t.Errorf("LocationToLength(LengthToLocation(%f)) = %f, want %f", d, back, d)
		}
	}
}

func TestPolylineSnap(t *testing.T) {
	p := straightLine()
	dist, perp, at := p.Snap(Point{X: 5, Y: 3})
	if math.Abs(dist-5) > 1e-9 {
		t.Fatalf("Snap dist = %f, want 5", dist)
	}
	if math.Abs(perp-3) > 1e-9 {
		t.Fatalf("Snap perp = %f, want 3", perp)
	}
	if math.Abs(at.X-5) > 1e-9 || at.Y != 0 {
		t.Fatalf("Snap at = %+v, want (5,0)", at)
	}
}

func TestPolylineReverseIsInvolution(t *testing.T) {
	p := straightLine()
	back := p.Reverse().Reverse()
	if !p.Equal(back) {
		t.Fatal("Reverse(Reverse(p)) should equal p")
	}
	if p.StartPoint() != p.Reverse().EndPoint() {
		t.Fatalf("Reverse should swap endpoints")
	}
}

func TestPolylineTopologicallyEquivalent(t *testing.T) {
	p := straightLine()
	r := p.Reverse()
	if !p.TopologicallyEquivalent(r) {
		t.Fatal("a polyline and its reverse should be topologically equivalent")
	}
	if p.Equal(r) {
		t.Fatal("a non-degenerate polyline should not equal its own reverse")
	}
}

func TestPolylineSub(t *testing.T) {
	p := straightLine()
	sub := p.Sub(5, 15)
	if math.Abs(sub.Length()-10) > 1e-9 {
		t.Fatalf("Sub(5,15).Length() = %f, want 10", sub.Length())
	}
	if math.Abs(sub.StartPoint().X-5) > 1e-9 {
		t.Fatalf("Sub(5,15).StartPoint() = %+v, want X=5", sub.StartPoint())
	}
}

func TestPolylineOnPath(t *testing.T) {
	p := straightLine()
	if !p.OnPath(10) {
		t.Fatal("10 should be on a 20-length path")
	}
	if p.OnPath(100) {
		t.Fatal("100 should not be on a 20-length path")
	}
}
