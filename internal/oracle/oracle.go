// Package oracle defines the shortest-path routing boundary (C10): a
// thin client interface plus an HTTP implementation styled on a
// commercial turn-by-turn routing API's request/response shape, and an
// in-memory implementation for the harness and tests. The routing
// algorithm itself is out of scope; only the request-shaping,
// response-decoding and error-propagation boundary lives here.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mapmatch/core/internal/graph"
	"github.com/mapmatch/core/internal/pathstate"
)

// Oracle is the pluggable routing backend: given a coarse start/end
// location, return candidate paths through the road graph.
type Oracle interface {
	CandidatePaths(ctx context.Context, from, to graph.Edge) ([]pathstate.Path, error)
}

// RouteInputLocation mirrors a commercial routing API's location
// break/via/through semantics, restricted to the fields this client
// actually sends.
type RouteInputLocation struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type,omitempty"`
}

// RouteInputCosting names the routing profile, mirroring the same
// API's costing-model vocabulary.
type RouteInputCosting string

const (
	RouteInputCostingAuto       RouteInputCosting = "auto"
	RouteInputCostingTruck      RouteInputCosting = "truck"
	RouteInputCostingPedestrian RouteInputCosting = "pedestrian"
)

// RouteRequest is the JSON body an HTTPOracle POSTs.
type RouteRequest struct {
	Locations []RouteInputLocation `json:"locations"`
	Costing   RouteInputCosting    `json:"costing"`
	Directions struct {
		Units string `json:"units"`
	} `json:"directions_options"`
}

// RouteResponse is the subset of the routing API's response this
// client decodes: an ordered list of edge identifiers per leg.
type RouteResponse struct {
	Trip struct {
		Legs []struct {
			EdgeIDs []string `json:"edge_ids"`
		} `json:"legs"`
	} `json:"trip"`
}

// HTTPOracle issues a JSON POST to a routing backend and decodes the
// response into paths via the graph's edge lookup.
type HTTPOracle struct {
	BaseURL string
	Client  *http.Client
	Graph   graph.RoadGraph
	Costing RouteInputCosting
}

// NewHTTPOracle builds an HTTPOracle with a default http.Client and
// auto costing.
func NewHTTPOracle(baseURL string, g graph.RoadGraph) *HTTPOracle {
	return &HTTPOracle{BaseURL: baseURL, Client: http.DefaultClient, Graph: g, Costing: RouteInputCostingAuto}
}

// CandidatePaths posts a two-location route request and resolves the
// returned edge-id legs into Paths via the graph's edge set.
func (o *HTTPOracle) CandidatePaths(ctx context.Context, from, to graph.Edge) ([]pathstate.Path, error) {
	req := RouteRequest{
		Locations: []RouteInputLocation{
			{Lat: from.StartPoint().Y, Lon: from.StartPoint().X, Type: "break"},
			{Lat: to.EndPoint().Y, Lon: to.EndPoint().X, Type: "break"},
		},
		Costing: o.Costing,
	}
	req.Directions.Units = "kilometers"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: encoding route request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/route", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("oracle: building route request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("oracle: route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle: route request returned status %d", resp.StatusCode)
	}

	var out RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("oracle: decoding route response: %w", err)
	}

	byID := make(map[string]graph.Edge)
	if sg, ok := o.Graph.(interface{ Edges() []graph.Edge }); ok {
		for _, e := range sg.Edges() {
			byID[e.ID()] = e
		}
	}

	var paths []pathstate.Path
	for _, leg := range out.Trip.Legs {
		edges := make([]graph.Edge, 0, len(leg.EdgeIDs))
		for _, id := range leg.EdgeIDs {
			e, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("oracle: route response referenced unknown edge %q", id)
			}
			edges = append(edges, e)
		}
		if len(edges) > 0 {
			paths = append(paths, pathstate.NewPath(edges, false))
		}
	}
	return paths, nil
}

// StaticOracle enumerates simple paths between two edges over a
// pre-built graph via bounded-depth DFS, for the harness and tests
// where no real routing backend is available.
type StaticOracle struct {
	Graph   graph.RoadGraph
	MaxHops int
}

// NewStaticOracle builds a StaticOracle with a default hop bound.
func NewStaticOracle(g graph.RoadGraph) *StaticOracle {
	return &StaticOracle{Graph: g, MaxHops: 12}
}

// CandidatePaths enumerates every simple edge sequence from `from` to
// `to` within MaxHops, via DFS over OutgoingTransferable.
func (o *StaticOracle) CandidatePaths(ctx context.Context, from, to graph.Edge) ([]pathstate.Path, error) {
	var out []pathstate.Path
	visited := map[string]bool{from.ID(): true}
	trail := []graph.Edge{from}

	var dfs func(current graph.Edge, depth int)
	dfs = func(current graph.Edge, depth int) {
		if ctx.Err() != nil {
			return
		}
		if current.Equal(to) {
			out = append(out, pathstate.NewPath(append([]graph.Edge(nil), trail...), false))
			return
		}
		if depth >= o.MaxHops {
			return
		}
		for _, next := range o.Graph.OutgoingTransferable(current) {
			if visited[next.ID()] {
				continue
			}
			visited[next.ID()] = true
			trail = append(trail, next)
			dfs(next, depth+1)
			trail = trail[:len(trail)-1]
			visited[next.ID()] = false
		}
	}
	dfs(from, 0)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return out, nil
}
