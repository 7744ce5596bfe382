// Package harness implements the particle-set driver (C11): N
// vehicle.State particles sharing one RoadGraph and Oracle, stepped in
// parallel across a bounded worker pool, with a pluggable resample
// hook and a weighted-mixture summary for downstream consumers.
package harness

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	kitlog "github.com/go-kit/log"

	"github.com/mapmatch/core/internal/graph"
	"github.com/mapmatch/core/internal/oracle"
	"github.com/mapmatch/core/internal/projection"
	"github.com/mapmatch/core/internal/trackerr"
	"github.com/mapmatch/core/internal/vehicle"
)

// Particle pairs a vehicle.State with its current importance weight.
type Particle struct {
	State  vehicle.State
	Weight float64
	Report vehicle.StepReport
	Err    error
}

// ParticleSet owns N particles sharing one RoadGraph and Oracle.
type ParticleSet struct {
	Graph    graph.RoadGraph
	Oracle   oracle.Oracle
	Particles []Particle

	// WeightFunc scores a particle after a step, for the resample hook.
	// The core prescribes no resampling strategy (spec.md Non-goals);
	// this is the pluggable seam a harness/outer filter supplies.
	WeightFunc func(p Particle) float64

	// Logger receives the per-particle-failure and critical-step log
	// lines Step emits (§4.9); defaults to a no-op logger so a caller
	// that doesn't care about logging doesn't have to supply one.
	Logger kitlog.Logger
}

// NewParticleSet seeds n particles via the given factory (typically
// vehicle.NewState with per-particle seeds).
func NewParticleSet(g graph.RoadGraph, o oracle.Oracle, n int, factory func(index int) vehicle.State) *ParticleSet {
	particles := make([]Particle, n)
	for i := 0; i < n; i++ {
		particles[i] = Particle{State: factory(i), Weight: 1.0 / float64(n)}
	}
	return &ParticleSet{Graph: g, Oracle: o, Particles: particles, WeightFunc: UniformWeight, Logger: kitlog.NewNopLogger()}
}

// UniformWeight is the default WeightFunc: every surviving particle
// keeps equal weight.
func UniformWeight(p Particle) float64 { return 1 }

// StepReport summarizes one ParticleSet.Step call across all particles.
type StepReport struct {
	Survivors int
	Failed    int
	Critical  bool // true when every particle failed this step
}

// Step drives vehicle.State.Step for every particle concurrently across
// a worker pool sized to runtime.GOMAXPROCS, then applies the resample
// hook: particles reporting a recoverable (Numeric/Geometry) error are
// dropped, survivors are resampled in proportion to WeightFunc (the
// i-th of the N new particles copies the survivor whose cumulative
// normalized weight first reaches i/N, so the draw is deterministic;
// each copy gets its own RNG seeded from its survivor's). A
// Topology/Contract error is fatal per §7 and is returned rather than
// absorbed into the resample.
func (ps *ParticleSet) Step(ctx context.Context, obs *vehicle.Observation) (StepReport, error) {
	logger := ps.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(ps.Particles) {
		workers = len(ps.Particles)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, len(ps.Particles))
	for i := range ps.Particles {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				next, report, err := ps.Particles[i].State.Step(ps.Graph, obs)
				ps.Particles[i].State = next
				ps.Particles[i].Report = report
				ps.Particles[i].Err = err
			}
		}()
	}
	wg.Wait()

	survivors := make([]Particle, 0, len(ps.Particles))
	failed := 0
	for i, p := range ps.Particles {
		if p.Err != nil {
			if trackerr.IsKind(p.Err, trackerr.Contract) || trackerr.IsKind(p.Err, trackerr.Topology) {
				return StepReport{}, p.Err
			}
			logger.Log("level", "warning", "msg", "particle dropped", "particle", i, "err", p.Err)
			failed++
			continue
		}
		p.Weight = ps.WeightFunc(p)
		survivors = append(survivors, p)
	}

	if len(survivors) == 0 {
		ps.Particles = nil
		logger.Log("level", "critical", "msg", "every particle failed this step", "failed", failed)
		return StepReport{Survivors: 0, Failed: failed, Critical: true}, nil
	}

	ps.Particles = multinomialResample(survivors, len(ps.Particles))
	return StepReport{Survivors: len(survivors), Failed: failed}, nil
}

func multinomialResample(survivors []Particle, targetN int) []Particle {
	total := 0.0
	for _, p := range survivors {
		total += p.Weight
	}
	if total <= 0 {
		total = 1
	}
	cum := make([]float64, len(survivors))
	acc := 0.0
	for i, p := range survivors {
		acc += p.Weight / total
		cum[i] = acc
	}

	out := make([]Particle, targetN)
	for i := 0; i < targetN; i++ {
		u := float64(i) / float64(targetN)
		idx := sort.SearchFloat64s(cum, u)
		if idx >= len(survivors) {
			idx = len(survivors) - 1
		}
		out[i] = survivors[idx]
		out[i].Weight = 1.0 / float64(targetN)
		if src := survivors[idx].State.RNG; src != nil {
			// Copies of one survivor are stepped concurrently, so they
			// must not share its generator.
			out[i].State.RNG = rand.New(rand.NewSource(src.Int63()))
		}
	}
	return out
}

// DataDistribution aggregates a ParticleSet's particles into a
// weighted-mixture summary: mean ground position/velocity, per-axis
// position variance (VarX, VarY), and the fraction currently on-road.
type DataDistribution struct {
	MeanX, MeanY   float64
	MeanVX, MeanVY float64
	VarX, VarY     float64
	OnRoadFraction float64
}

// Summarize computes the DataDistribution over the set's current
// particles, projecting on-road beliefs to ground for the summary.
func Summarize(ps *ParticleSet) DataDistribution {
	n := len(ps.Particles)
	if n == 0 {
		return DataDistribution{}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	vxs := make([]float64, n)
	vys := make([]float64, n)
	onRoad := 0

	for i, p := range ps.Particles {
		x, vx, y, vy := groundPoint(p.State)
		xs[i], vxs[i], ys[i], vys[i] = x, vx, y, vy
		if !p.State.Path.IsNull() {
			onRoad++
		}
	}

	meanX, meanY := mean(xs), mean(ys)
	meanVX, meanVY := mean(vxs), mean(vys)
	return DataDistribution{
		MeanX: meanX, MeanY: meanY,
		MeanVX: meanVX, MeanVY: meanVY,
		VarX: variance(xs, meanX), VarY: variance(ys, meanY),
		OnRoadFraction: float64(onRoad) / float64(n),
	}
}

func groundPoint(s vehicle.State) (x, vx, y, vy float64) {
	if s.Path.IsNull() {
		return s.Belief.Mean[0], s.Belief.Mean[1], s.Belief.Mean[2], s.Belief.Mean[3]
	}
	frame := s.Path.FrameAt(s.Belief.Mean[0])
	g := projection.GroundFromRoad(frame, s.Belief, false)
	return g.Mean[0], g.Mean[1], g.Mean[2], g.Mean[3]
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64, m float64) float64 {
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / math.Max(1, float64(len(xs)-1))
}
