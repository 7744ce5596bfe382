package harness

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
	"github.com/mapmatch/core/internal/linalg"
	"github.com/mapmatch/core/internal/oracle"
	"github.com/mapmatch/core/internal/vehicle"
)

func newFixtureSet(n int) (*ParticleSet, *vehicle.Observation) {
	g := graph.NewStaticGraph(nil, nil)
	o := oracle.NewStaticOracle(g)
	obsBase := linalg.DiagSvd([]float64{1, 1})
	first := &vehicle.Observation{Timestamp: time.Unix(0, 0), ProjectedXY: geom.Point{X: 0, Y: 0}}

	ps := NewParticleSet(g, o, n, func(i int) vehicle.State {
		st := vehicle.NewState(int64(i), first.ProjectedXY, obsBase)
		st.Parent = first
		return st
	})
	return ps, first
}

func TestUniformWeightAlwaysOne(t *testing.T) {
	if w := UniformWeight(Particle{}); w != 1 {
		t.Fatalf("UniformWeight(...) = %f, want 1", w)
	}
}

func TestNewParticleSetWeightsSumToOne(t *testing.T) {
	ps, _ := newFixtureSet(5)
	sum := 0.0
	for _, p := range ps.Particles {
		sum += p.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("initial weights sum to %f, want 1", sum)
	}
}

func TestParticleSetStepAdvancesSurvivors(t *testing.T) {
	ps, _ := newFixtureSet(4)
	next := &vehicle.Observation{Timestamp: time.Unix(1, 0), ProjectedXY: geom.Point{X: 1, Y: 1}}

	report, err := ps.Step(context.Background(), next)
	if err != nil {
		t.Fatalf("Step returned error: %s", err)
	}
	if report.Survivors != 4 || report.Failed != 0 || report.Critical {
		t.Fatalf("report = %+v, want 4 survivors, 0 failed, not critical", report)
	}
	if len(ps.Particles) != 4 {
		t.Fatalf("ParticleSet has %d particles after Step, want 4", len(ps.Particles))
	}
}

func TestParticleSetStepAllRecoverableErrorsIsCritical(t *testing.T) {
	ps, _ := newFixtureSet(3)
	bad := &vehicle.Observation{Timestamp: time.Unix(1, 0), ProjectedXY: geom.Point{X: math.NaN(), Y: 0}}

	report, err := ps.Step(context.Background(), bad)
	if err != nil {
		t.Fatalf("a recoverable (Numeric) error on every particle must not be fatal, got: %s", err)
	}
	if !report.Critical || report.Survivors != 0 || report.Failed != 3 {
		t.Fatalf("report = %+v, want Critical with 0 survivors and 3 failed", report)
	}
	if ps.Particles != nil {
		t.Fatal("a critical step should leave the particle set empty")
	}
}

func TestParticleSetStepPropagatesFatalContractError(t *testing.T) {
	g := graph.NewStaticGraph(nil, nil)
	o := oracle.NewStaticOracle(g)
	obsBase := linalg.DiagSvd([]float64{1, 1})
	ps := NewParticleSet(g, o, 2, func(i int) vehicle.State {
		return vehicle.NewState(int64(i), geom.Point{X: 0, Y: 0}, obsBase) // Parent left nil
	})

	next := &vehicle.Observation{Timestamp: time.Unix(1, 0), ProjectedXY: geom.Point{X: 1, Y: 1}}
	_, err := ps.Step(context.Background(), next)
	if err == nil {
		t.Fatal("expected a fatal ContractViolation when a particle has no parent observation")
	}
}

func TestMultinomialResamplePreservesTargetCount(t *testing.T) {
	survivors := []Particle{{Weight: 3}, {Weight: 1}}
	out := multinomialResample(survivors, 10)
	if len(out) != 10 {
		t.Fatalf("multinomialResample returned %d particles, want 10", len(out))
	}
	for _, p := range out {
		if math.Abs(p.Weight-0.1) > 1e-9 {
			t.Fatalf("resampled particle weight = %f, want 0.1 (uniform after resample)", p.Weight)
		}
	}
}

func TestMultinomialResampleFavorsHeavierWeight(t *testing.T) {
	heavy := Particle{State: vehicle.NewState(1, geom.Point{X: 1, Y: 1}, linalg.DiagSvd([]float64{1, 1})), Weight: 100}
	light := Particle{State: vehicle.NewState(2, geom.Point{X: 2, Y: 2}, linalg.DiagSvd([]float64{1, 1})), Weight: 0.001}
	out := multinomialResample([]Particle{heavy, light}, 20)

	heavyCount := 0
	for _, p := range out {
		if p.State.Belief.Mean[0] == 1 {
			heavyCount++
		}
	}
	if heavyCount < 15 {
		t.Fatalf("expected the heavily-weighted particle to dominate resampling, got %d/20", heavyCount)
	}
}

func TestSummarizeEmptySetIsZeroValue(t *testing.T) {
	ps := &ParticleSet{}
	d := Summarize(ps)
	if d != (DataDistribution{}) {
		t.Fatalf("Summarize of an empty set = %+v, want zero value", d)
	}
}

func TestSummarizeAveragesOffRoadParticles(t *testing.T) {
	ps, _ := newFixtureSet(1)
	ps.Particles = append(ps.Particles, Particle{
		State: vehicle.NewState(9, geom.Point{X: 10, Y: 10}, linalg.DiagSvd([]float64{1, 1})),
	})
	ps.Particles[0].State.Belief.Mean = []float64{0, 0, 0, 0}
	ps.Particles[1].State.Belief.Mean = []float64{10, 0, 10, 0}

	d := Summarize(ps)
	if math.Abs(d.MeanX-5) > 1e-9 || math.Abs(d.MeanY-5) > 1e-9 {
		t.Fatalf("Summarize MeanX/MeanY = %f/%f, want 5/5", d.MeanX, d.MeanY)
	}
	if d.OnRoadFraction != 0 {
		t.Fatalf("OnRoadFraction = %f, want 0 for two off-road particles", d.OnRoadFraction)
	}
}
