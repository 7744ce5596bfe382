package vehicle

import (
	"testing"
	"time"

	"github.com/mapmatch/core/internal/geom"
)

func TestSeedVelocityWithoutPreviousIsZero(t *testing.T) {
	o := &Observation{ProjectedXY: geom.Point{X: 1, Y: 1}}
	vx, vy := o.SeedVelocity()
	if vx != 0 || vy != 0 {
		t.Fatalf("SeedVelocity() = (%f,%f), want (0,0) with no previous observation", vx, vy)
	}
}

func TestSeedVelocityFiniteDifference(t *testing.T) {
	prev := &Observation{Timestamp: time.Unix(0, 0), ProjectedXY: geom.Point{X: 0, Y: 0}}
	o := &Observation{Timestamp: time.Unix(2, 0), ProjectedXY: geom.Point{X: 10, Y: 4}, PreviousObs: prev}
	vx, vy := o.SeedVelocity()
	if vx != 5 || vy != 2 {
		t.Fatalf("SeedVelocity() = (%f,%f), want (5,2)", vx, vy)
	}
}

func TestSeedVelocityNonPositiveDtIsZero(t *testing.T) {
	prev := &Observation{Timestamp: time.Unix(5, 0), ProjectedXY: geom.Point{X: 0, Y: 0}}
	o := &Observation{Timestamp: time.Unix(5, 0), ProjectedXY: geom.Point{X: 10, Y: 10}, PreviousObs: prev}
	vx, vy := o.SeedVelocity()
	if vx != 0 || vy != 0 {
		t.Fatalf("SeedVelocity() = (%f,%f), want (0,0) for a non-positive dt", vx, vy)
	}
}

func TestResetSeversPreviousObs(t *testing.T) {
	prev := &Observation{Timestamp: time.Unix(0, 0)}
	o := &Observation{PreviousObs: prev}
	o.Reset()
	if o.PreviousObs != nil {
		t.Fatal("Reset should clear PreviousObs")
	}
}
