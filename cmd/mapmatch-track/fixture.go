package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/graph"
)

// graphFile is the on-disk shape a -graph file is decoded from: an
// explicit edge list plus an adjacency map, matching the constructor
// arguments graph.NewStaticGraph already takes.
type graphFile struct {
	Edges []struct {
		ID         string      `json:"id"`
		Points     [][2]float64 `json:"points"`
		HasReverse bool        `json:"has_reverse"`
	} `json:"edges"`
	Adjacency map[string][]string `json:"adjacency"`
}

// loadGraph decodes a graph file from path, or returns the small
// built-in fixture (a three-edge fork) when path is empty, for demo
// runs without a prepared road network on disk.
func loadGraph(path string) (*graph.StaticGraph, error) {
	if path == "" {
		return builtinFixtureGraph(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("main: opening graph file %s: %w", path, err)
	}
	defer f.Close()

	var gf graphFile
	if err := json.NewDecoder(f).Decode(&gf); err != nil {
		return nil, fmt.Errorf("main: decoding graph file %s: %w", path, err)
	}

	edges := make([]graph.Edge, 0, len(gf.Edges))
	byID := make(map[string]graph.Edge, len(gf.Edges))
	for _, e := range gf.Edges {
		points := make([]geom.Point, len(e.Points))
		for i, p := range e.Points {
			points[i] = geom.Point{X: p[0], Y: p[1]}
		}
		edge := graph.NewEdge(e.ID, geom.NewPolyline(points), e.HasReverse)
		edges = append(edges, edge)
		byID[e.ID] = edge
	}

	outgoing := make(map[string][]graph.Edge, len(gf.Adjacency))
	for id, tos := range gf.Adjacency {
		list := make([]graph.Edge, 0, len(tos))
		for _, toID := range tos {
			to, ok := byID[toID]
			if !ok {
				return nil, fmt.Errorf("main: graph file %s: adjacency references unknown edge %q", path, toID)
			}
			list = append(list, to)
		}
		outgoing[id] = list
	}

	return graph.NewStaticGraph(edges, outgoing), nil
}

// builtinFixtureGraph is a small fork: a straight east-bound road
// splitting into a northbound and a continuing eastbound leg, enough
// to exercise an off-road start, an on-road transition, and a
// topologically ambiguous fork for the sampler.
func builtinFixtureGraph() *graph.StaticGraph {
	main := graph.NewEdge("main", geom.NewPolyline([]geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}), true)
	north := graph.NewEdge("north", geom.NewPolyline([]geom.Point{{X: 100, Y: 0}, {X: 100, Y: 100}}), true)
	east := graph.NewEdge("east", geom.NewPolyline([]geom.Point{{X: 100, Y: 0}, {X: 200, Y: 0}}), true)

	return graph.NewStaticGraph(
		[]graph.Edge{main, north, east},
		map[string][]graph.Edge{
			"main": {north, east},
		},
	)
}
