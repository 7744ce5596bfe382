package geom

import "math"

const colinearAngleTol = 1e-6
const pointTol = 1e-6

func pointsClose(a, b Point) bool {
	return math.Abs(a.X-b.X) < pointTol && math.Abs(a.Y-b.Y) < pointTol
}

func colinear(a, b Segment) bool {
	adx, ady := a.Direction()
	bdx, bdy := b.Direction()
	cross := adx*bdy - ady*bdx
	return math.Abs(cross) < colinearAngleTol
}

// LineMerge unions colinear, end-to-end-connected segments into
// maximal polylines. Segments that don't chain into anything are
// returned as single-segment polylines. Order of the input segments
// does not need to already be connected; LineMerge greedily chains
// whatever connects.
func LineMerge(segments []Segment) []Polyline {
	remaining := append([]Segment(nil), segments...)
	var result []Polyline
	used := make([]bool, len(remaining))

	for i := range remaining {
		if used[i] {
			continue
		}
		chain := []Segment{remaining[i]}
		used[i] = true
		// Extend forward.
		for {
			last := chain[len(chain)-1]
			extended := false
			for j := range remaining {
				if used[j] {
					continue
				}
				if pointsClose(last.End, remaining[j].Start) && colinear(last, remaining[j]) {
					chain = append(chain, remaining[j])
					used[j] = true
					extended = true
					break
				}
				if pointsClose(last.End, remaining[j].End) && colinear(last, remaining[j].Reverse()) {
					chain = append(chain, remaining[j].Reverse())
					used[j] = true
					extended = true
					break
				}
			}
			if !extended {
				break
			}
		}
		// Extend backward.
		for {
			first := chain[0]
			extended := false
			for j := range remaining {
				if used[j] {
					continue
				}
				if pointsClose(remaining[j].End, first.Start) && colinear(remaining[j], first) {
					chain = append([]Segment{remaining[j]}, chain...)
					used[j] = true
					extended = true
					break
				}
				if pointsClose(remaining[j].Start, first.Start) && colinear(remaining[j].Reverse(), first) {
					chain = append([]Segment{remaining[j].Reverse()}, chain...)
					used[j] = true
					extended = true
					break
				}
			}
			if !extended {
				break
			}
		}
		result = append(result, Polyline{Segments: chain})
	}
	return result
}

// Overlap finds the maximal colinear, coincident run shared between
// polylines a and b, trying both the given orientation of b and its
// reverse. It returns the overlap sub-polyline of a, whether b had to
// be reversed to align, and whether any overlap was found at all.
func Overlap(a, b Polyline) (overlapOfA Polyline, bReversed bool, found bool) {
	if ov, ok := overlapSameDirection(a, b); ok {
		return ov, false, true
	}
	if ov, ok := overlapSameDirection(a, b.Reverse()); ok {
		return ov, true, true
	}
	return Polyline{}, false, false
}

func overlapSameDirection(a, b Polyline) (Polyline, bool) {
	// Find coincident segment runs: walk a's segments and b's segments
	// looking for the longest shared colinear, coincident prefix
	// anchored at any matching endpoint pair.
	for ai, as := range a.Segments {
		for bi, bs := range b.Segments {
			if !pointsClose(as.Start, bs.Start) {
				continue
			}
			if !colinear(as, bs) {
				continue
			}
			// Extend the match forward from (ai, bi).
			end := ai
			for end < len(a.Segments) && end-ai < len(b.Segments)-bi {
				sa := a.Segments[end]
				sb := b.Segments[bi+(end-ai)]
				if !pointsClose(sa.Start, sb.Start) || !pointsClose(sa.End, sb.End) {
					break
				}
				end++
			}
			if end > ai {
				return Polyline{Segments: append([]Segment(nil), a.Segments[ai:end]...)}, true
			}
		}
	}
	return Polyline{}, false
}
