// Package transition implements the on/off-edge transition model
// (§4.6): domain construction over the road graph, Dirichlet-Multinomial
// sampling between free-motion and edge-motion starts, and the
// deterministic argmax used for the filter mean.
package transition

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
	"github.com/mapmatch/core/internal/linalg"
)

// ZeroTolerance is the probability-mass threshold below which a
// transition vector is treated as having collapsed onto a single
// outcome.
const ZeroTolerance = 1e-6

// DomainRadiusMultiplier inflates the observation covariance's
// Frobenius norm into a nearby-edge search radius, approximating the
// 95% quantile of the induced normal.
const DomainRadiusMultiplier = 1.98

// Type is one of the four transition outcomes the model recognizes.
type Type int

const (
	OffOff Type = iota
	OffOn
	OnOn
	OnOff
)

func (t Type) String() string {
	switch t {
	case OffOff:
		return "off->off"
	case OffOn:
		return "off->on"
	case OnOn:
		return "on->on"
	case OnOff:
		return "on->off"
	default:
		return "unknown"
	}
}

// TransitionType classifies the move from edge `from` to edge `to`,
// where either may be the null edge.
func TransitionType(from, to graph.Edge) Type {
	switch {
	case from.IsNull() && to.IsNull():
		return OffOff
	case from.IsNull():
		return OffOn
	case to.IsNull():
		return OnOff
	default:
		return OnOn
	}
}

// Param is a Dirichlet-Multinomial pair over a small fixed set of
// categorical outcomes: Alpha holds the Dirichlet concentration
// parameters, one per outcome.
type Param struct {
	Alpha []float64
}

// Mean returns the categorical distribution's expected probability
// vector, Alpha normalized to sum to 1.
func (p Param) Mean() []float64 {
	sum := 0.0
	for _, a := range p.Alpha {
		sum += a
	}
	out := make([]float64, len(p.Alpha))
	for i, a := range p.Alpha {
		out[i] = a / sum
	}
	return out
}

// Argmax returns the index of the most probable outcome under Mean.
func (p Param) Argmax() int {
	mean := p.Mean()
	best := 0
	for i, v := range mean {
		if v > mean[best] {
			best = i
		}
	}
	return best
}

// Sample draws one categorical outcome: first a probability vector
// from Dirichlet(Alpha), then one draw from that categorical. If Mean
// has already collapsed onto a single outcome within ZeroTolerance,
// that outcome is returned directly rather than routed through the
// Gamma-based Dirichlet sampler, which can diverge numerically as any
// alpha component approaches zero.
func (p Param) Sample(rng *rand.Rand) int {
	mean := p.Mean()
	for i, v := range mean {
		if v >= 1-ZeroTolerance {
			return i
		}
	}
	probs := sampleDirichlet(p.Alpha, rng)
	return sampleCategorical(probs, rng)
}

func sampleDirichlet(alpha []float64, rng *rand.Rand) []float64 {
	draws := make([]float64, len(alpha))
	sum := 0.0
	for i, a := range alpha {
		g := distuv.Gamma{Alpha: a, Beta: 1, Src: rand.NewSource(rng.Int63())}
		draws[i] = g.Rand()
		sum += draws[i]
	}
	if sum <= 0 {
		// Degenerate: every alpha produced a zero draw. Fall back to
		// the Dirichlet mean rather than dividing by zero.
		out := make([]float64, len(alpha))
		total := 0.0
		for _, a := range alpha {
			total += a
		}
		for i, a := range alpha {
			out[i] = a / total
		}
		return out
	}
	for i := range draws {
		draws[i] /= sum
	}
	return draws
}

func sampleCategorical(probs []float64, rng *rand.Rand) int {
	u := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u <= acc {
			return i
		}
	}
	return len(probs) - 1
}

// DomainRadius computes the Mahalanobis-inflated nearby-edge search
// radius from an observation covariance.
func DomainRadius(qObs *linalg.SvdMatrix) float64 {
	return DomainRadiusMultiplier * math.Sqrt(qObs.FrobeniusNorm())
}

// OffRoadDomain returns the candidate edge set for a particle
// currently off-road: every edge within DomainRadius of meanLocation,
// plus the null edge (encoded by its absence — callers append it).
func OffRoadDomain(g graph.RoadGraph, meanLocation geom.Point, qObs *linalg.SvdMatrix) []graph.Edge {
	return g.NearbyEdges(meanLocation, DomainRadius(qObs))
}

// OnRoadDomain returns the edges reachable by traveling
// distanceToTravel meters along the graph from currentEdge: outgoing
// adjacency when the sign is positive, incoming when negative (which
// happens when a prediction overshoots currentEdge against its
// direction of travel). currentEdge itself is always included.
func OnRoadDomain(g graph.RoadGraph, currentEdge graph.Edge, distanceToTravel float64) []graph.Edge {
	budget := math.Abs(distanceToTravel)
	visited := map[string]bool{}
	var out []graph.Edge

	var dfs func(e graph.Edge, remaining float64)
	dfs = func(e graph.Edge, remaining float64) {
		if visited[e.ID()] {
			return
		}
		visited[e.ID()] = true
		out = append(out, e)
		remaining -= e.Length()
		if remaining <= 0 {
			return
		}
		var next []graph.Edge
		if distanceToTravel >= 0 {
			next = g.OutgoingTransferable(e)
		} else {
			next = g.IncomingTransferable(e)
		}
		for _, n := range next {
			dfs(n, remaining)
		}
	}
	dfs(currentEdge, budget)
	return out
}
