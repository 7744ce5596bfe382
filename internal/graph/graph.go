package graph

import "github.com/mapmatch/core/internal/geom"

// RoadGraph is the pure, read-only query surface the tracking core
// uses. Implementations must be safe for concurrent use by many
// particles; the core never calls a mutating method because there
// isn't one.
type RoadGraph interface {
	// NearbyEdges returns every edge whose geometry passes within
	// radius meters of point.
	NearbyEdges(point geom.Point, radius float64) []Edge

	// OutgoingTransferable returns the edges reachable by continuing
	// forward from e's end, already filtered for legal transfers
	// (e.g. one-way restrictions).
	OutgoingTransferable(e Edge) []Edge

	// IncomingTransferable returns the edges that can legally transfer
	// into e's start, i.e. the reverse-adjacency of OutgoingTransferable.
	IncomingTransferable(e Edge) []Edge

	// EdgeHasReverse reports whether the graph carries the reverse
	// direction of e as a distinct traversable edge.
	EdgeHasReverse(e Edge) bool
}

// StaticGraph is an immutable, in-memory RoadGraph built once at
// startup (or from a test fixture) and shared read-only by every
// particle, matching the ownership model in section 5 of the design.
type StaticGraph struct {
	edges []Edge
	out   map[string][]Edge
	in    map[string][]Edge
}

// NewStaticGraph builds a graph from a fixed edge set and an explicit
// adjacency map (outgoing transfers keyed by edge id). Incoming
// adjacency is derived by inversion.
func NewStaticGraph(edges []Edge, outgoing map[string][]Edge) *StaticGraph {
	g := &StaticGraph{
		edges: edges,
		out:   outgoing,
		in:    make(map[string][]Edge),
	}
	for fromID, tos := range outgoing {
		var from Edge
		for _, e := range edges {
			if e.ID() == fromID {
				from = e
				break
			}
		}
		for _, to := range tos {
			g.in[to.ID()] = append(g.in[to.ID()], from)
		}
	}
	return g
}

// NearbyEdges returns every edge whose geometry comes within radius
// meters of point, via brute-force segment projection (fine for the
// small fixtures this graph is built from; a production graph would
// back this with an R-tree).
func (g *StaticGraph) NearbyEdges(point geom.Point, radius float64) []Edge {
	var out []Edge
	for _, e := range g.edges {
		_, perp, _ := e.Geometry().Snap(point)
		if perp <= radius {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingTransferable returns e's configured forward adjacency.
func (g *StaticGraph) OutgoingTransferable(e Edge) []Edge {
	return g.out[e.ID()]
}

// IncomingTransferable returns e's derived backward adjacency.
func (g *StaticGraph) IncomingTransferable(e Edge) []Edge {
	return g.in[e.ID()]
}

// EdgeHasReverse reports the edge's own HasReverse flag.
func (g *StaticGraph) EdgeHasReverse(e Edge) bool {
	return e.HasReverse()
}

// Edges returns every edge in the graph, in Less order.
func (g *StaticGraph) Edges() []Edge {
	return SortEdges(g.edges)
}
