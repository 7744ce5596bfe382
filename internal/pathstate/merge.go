package pathstate

// MergePaths concatenates two paths that share a colinear run at their
// boundary: the tail of from and the head of to (or of to reversed).
// It returns the merged path, whether to had to be reversed to align,
// and whether any overlap was found at all.
//
// Overlap is resolved at edge granularity: since a Path is itself a
// concatenation of whole graph edges (§4.2), "last colinear overlap"
// here means the longest run of edges, traversed in the same
// direction, shared between from's tail and to's head. A boundary
// where the two paths' edges are only partially, sub-edge colinear
// (e.g. two distinct graph edges that happen to trace the same
// physical alignment) is treated as no overlap — the ambiguity the
// spec leaves open for this case is resolved by requiring a clean
// edge match rather than guessing at a sub-edge split point.
func MergePaths(from, to Path) (merged Path, toReversed bool, found bool) {
	if from.IsNull() || to.IsNull() {
		return Path{}, false, false
	}

	if m, ok := mergeOriented(from, to); ok {
		return m, false, true
	}
	if m, ok := mergeOriented(from, reversePath(to)); ok {
		return m, true, true
	}
	return Path{}, false, false
}

// mergeOriented attempts the merge assuming to is already oriented the
// way it should be concatenated after from.
func mergeOriented(from, to Path) (Path, bool) {
	overlap := edgeOverlapLength(from, to)
	if overlap == 0 {
		return Path{}, false
	}

	shift := from.Edges[len(from.Edges)-overlap].DistToStartOfEdge

	merged := append([]PathEdge(nil), from.Edges...)
	for _, pe := range to.Edges[overlap:] {
		merged = append(merged, PathEdge{
			Edge:              pe.Edge,
			DistToStartOfEdge: pe.DistToStartOfEdge + shift,
			IsBackward:        pe.IsBackward,
		})
	}
	return Path{Edges: merged, IsBackward: from.IsBackward}, true
}

// edgeOverlapLength returns the length of the longest run of edges,
// traversed in the same direction, shared between from's tail and
// to's head. Zero if none.
func edgeOverlapLength(from, to Path) int {
	max := len(from.Edges)
	if len(to.Edges) < max {
		max = len(to.Edges)
	}
	for k := max; k > 0; k-- {
		if tailMatchesHead(from.Edges, to.Edges, k) {
			return k
		}
	}
	return 0
}

func tailMatchesHead(fromEdges, toEdges []PathEdge, k int) bool {
	tail := fromEdges[len(fromEdges)-k:]
	head := toEdges[:k]
	for i := range tail {
		if !tail[i].Edge.Equal(head[i].Edge) {
			return false
		}
		if tail[i].IsBackward != head[i].IsBackward {
			return false
		}
	}
	return true
}

// reversePath returns p traversed in the opposite direction: edges
// reversed in order, each edge's backward flag flipped, and offsets
// recomputed from the new start.
func reversePath(p Path) Path {
	n := len(p.Edges)
	out := make([]PathEdge, n)
	acc := 0.0
	for i := 0; i < n; i++ {
		src := p.Edges[n-1-i]
		out[i] = PathEdge{
			Edge:              src.Edge,
			DistToStartOfEdge: signedDist(acc, i, !p.IsBackward),
			IsBackward:        !src.IsBackward,
		}
		acc += src.Edge.Length()
	}
	return Path{Edges: out, IsBackward: !p.IsBackward}
}

func signedDist(acc float64, i int, backward bool) float64 {
	if i == 0 {
		return 0
	}
	if backward {
		return -acc
	}
	return acc
}
