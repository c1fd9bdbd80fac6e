package ingest

import (
	"maps"
	"sort"
)

// Point is one sample of a period. Fields == nil marks a synthesized point whose
// values are absent. Expanded holds per-point sub-rows for documents that nest a
// list of records under each point.
type Point struct {
	Position int
	Fields   map[string]string
	Expanded []map[string]string
}

func (p Point) clone(position int) Point {
	out := Point{Position: position}
	if p.Fields != nil {
		out.Fields = maps.Clone(p.Fields)
	}
	if p.Expanded != nil {
		out.Expanded = make([]map[string]string, len(p.Expanded))
		for i, sub := range p.Expanded {
			out.Expanded[i] = maps.Clone(sub)
		}
	}
	return out
}

// RepairPoints returns a sorted copy of points with every position in
// [1, max] present, padded to expected entries.
//
// A missing position takes the fields of the nearest lower present point. When
// nothing lower exists the synthesized point has nil Fields. Padding beyond the
// highest position copies the last present point. Input longer than expected is
// returned sorted but otherwise untouched so assembly can reject it.
func RepairPoints(points []Point, expected int) []Point {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	if len(sorted) == 0 {
		out := make([]Point, 0, expected)
		for p := 1; p <= expected; p++ {
			out = append(out, Point{Position: p})
		}
		return out
	}

	out := make([]Point, 0, max(expected, len(sorted)))
	var last *Point
	next := 1
	for i := range sorted {
		cur := sorted[i]
		for ; next < cur.Position; next++ {
			if last == nil {
				out = append(out, Point{Position: next})
			} else {
				out = append(out, last.clone(next))
			}
		}
		out = append(out, cur.clone(cur.Position))
		last = &sorted[i]
		if cur.Position >= next {
			next = cur.Position + 1
		}
	}

	for len(out) < expected {
		out = append(out, last.clone(next))
		next++
	}
	return out
}
