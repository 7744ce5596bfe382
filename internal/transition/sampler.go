package transition

import (
	"math/rand"

	"github.com/mapmatch/core/internal/graph"
)

// Model bundles the free-motion and edge-motion Dirichlet-Multinomial
// parameters that together define the transition distribution for one
// particle.
type Model struct {
	FreeMotion Param // 2 categories: {off->off, off->on}
	EdgeMotion Param // 2 categories: {on->on, on->off}
}

// NewModel builds a Model with the weakly-informative symmetric prior
// used before any particle-specific learning has occurred: alpha = 1
// on every outcome, i.e. a uniform categorical.
func NewModel() Model {
	return Model{
		FreeMotion: Param{Alpha: []float64{1, 1}},
		EdgeMotion: Param{Alpha: []float64{1, 1}},
	}
}

// hasNull reports whether domain contains the null edge.
func hasNull(domain []graph.Edge) bool {
	for _, e := range domain {
		if e.IsNull() {
			return true
		}
	}
	return false
}

// nonNull returns domain with the null edge (if present) removed.
func nonNull(domain []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, 0, len(domain))
	for _, e := range domain {
		if !e.IsNull() {
			out = append(out, e)
		}
	}
	return out
}

// Sample picks the next edge for a particle currently off-road (onRoad
// false) or on currentEdge (onRoad true), given the domain already
// constructed via OffRoadDomain/OnRoadDomain (including the null edge).
func (m Model) Sample(rng *rand.Rand, onRoad bool, domain []graph.Edge) graph.Edge {
	candidates := nonNull(domain)

	if !onRoad {
		idx := m.FreeMotion.Sample(rng)
		if Type(idx) == OffOn && len(candidates) > 0 {
			return candidates[rng.Intn(len(candidates))]
		}
		return graph.NullEdge()
	}

	if !hasNull(domain) {
		// Deterministically on->on: no legal way off this edge set.
		if len(candidates) == 0 {
			return graph.NullEdge()
		}
		return candidates[rng.Intn(len(candidates))]
	}

	idx := m.EdgeMotion.Sample(rng)
	// EdgeMotion's categories are {on->on, on->off}; index 1 is on->off.
	if idx == 1 || len(candidates) == 0 {
		return graph.NullEdge()
	}
	return candidates[rng.Intn(len(candidates))]
}

// Mean returns the deterministic argmax edge, resolved the same way as
// Sample but using Argmax instead of a random draw — used when the
// filter reports its point estimate rather than drawing a particle.
func (m Model) Mean(onRoad bool, domain []graph.Edge) graph.Edge {
	candidates := nonNull(domain)

	if !onRoad {
		if Type(m.FreeMotion.Argmax()) == OffOn && len(candidates) > 0 {
			return candidates[0]
		}
		return graph.NullEdge()
	}

	if !hasNull(domain) {
		if len(candidates) == 0 {
			return graph.NullEdge()
		}
		return candidates[0]
	}

	if m.EdgeMotion.Argmax() == 1 || len(candidates) == 0 {
		return graph.NullEdge()
	}
	return candidates[0]
}
