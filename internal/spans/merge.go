// SPDX-License-Identifier: Apache-2.0

// Package spans partitions a document's text against named sets of
// string_span values and prepares the fragments for display.
package spans

import (
	"maps"
	"slices"

	"github.com/lilacml/lilac-view/internal/schema"
)

// SpanSets maps a set name, usually the serialized path of a string_span
// field, to the span value nodes found in one document.
type SpanSets map[string][]*schema.ValueNode

// MergedSpan is one fragment of the partition of a text. OriginalSpans holds,
// per set, every input span overlapping the fragment; sets with no overlap are
// absent.
type MergedSpan struct {
	Text          string                         `json:"text"`
	Span          schema.Span                    `json:"span"`
	OriginalSpans map[string][]*schema.ValueNode `json:"-"`
	Paths         []string                       `json:"paths"`
	NewPaths      []string                       `json:"new_paths"`
}

// interval is a normalized input span.
type interval struct {
	start, end int
	node       *schema.ValueNode
}

// MergeSpans cuts text into contiguous fragments whose boundaries are exactly
// the offsets where some input span starts or ends. Offsets are counted in
// runes. Out-of-range offsets are clamped to the text and an inverted span
// collapses to a zero-width span at its start. A zero-width span is attributed
// to the fragment holding its offset, or to the last fragment when it sits at
// the end of the text. Nodes without a span are ignored. sets is not modified.
func MergeSpans(text string, sets SpanSets) []MergedSpan {
	runes := []rune(text)
	n := len(runes)

	names := slices.Sorted(maps.Keys(sets))
	normalized := make(map[string][]interval, len(sets))
	boundaries := map[int]struct{}{0: {}, n: {}}
	total := 0
	for _, name := range names {
		ivs := normalize(sets[name], n)
		normalized[name] = ivs
		total += len(ivs)
		for _, iv := range ivs {
			boundaries[iv.start] = struct{}{}
			boundaries[iv.end] = struct{}{}
		}
	}

	if n == 0 {
		if total == 0 {
			return nil
		}
		// Spans on an empty text still need a home.
		return []MergedSpan{fragment(runes, 0, 0, names, normalized, true, map[string]bool{})}
	}

	points := slices.Sorted(maps.Keys(boundaries))
	out := make([]MergedSpan, 0, len(points)-1)
	seen := map[string]bool{}
	for i := 0; i+1 < len(points); i++ {
		last := i+2 == len(points)
		out = append(out, fragment(runes, points[i], points[i+1], names, normalized, last, seen))
	}
	return out
}

// fragment builds the merged span covering [a, b).
func fragment(runes []rune, a, b int, names []string, sets map[string][]interval, last bool, seen map[string]bool) MergedSpan {
	m := MergedSpan{
		Text:          string(runes[a:b]),
		Span:          schema.Span{Start: a, End: b},
		OriginalSpans: map[string][]*schema.ValueNode{},
		Paths:         []string{},
		NewPaths:      []string{},
	}
	for _, name := range names {
		for _, iv := range sets[name] {
			if iv.start > b || (iv.start == b && !last) {
				// Sorted by start: nothing further can overlap.
				break
			}
			if !overlaps(iv, a, b, last) {
				continue
			}
			m.OriginalSpans[name] = append(m.OriginalSpans[name], iv.node)
			path := spanPath(iv.node)
			m.Paths = append(m.Paths, path)
			if !seen[path] {
				seen[path] = true
				m.NewPaths = append(m.NewPaths, path)
			}
		}
	}
	return m
}

// spanPath identifies a span node by its concrete location, falling back to
// its schema path for nodes built outside a row.
func spanPath(node *schema.ValueNode) string {
	if len(node.Location) > 0 {
		return schema.Serialize(node.Location)
	}
	return schema.Serialize(node.Path)
}

func overlaps(iv interval, a, b int, last bool) bool {
	if iv.start == iv.end {
		return iv.start >= a && (iv.start < b || (last && iv.start == b))
	}
	return iv.start < b && iv.end > a
}

// normalize clamps the spans of one set into [0, n] and sorts a copy by start.
func normalize(nodes []*schema.ValueNode, n int) []interval {
	out := make([]interval, 0, len(nodes))
	for _, node := range nodes {
		s := node.SpanValue()
		if s == nil {
			continue
		}
		start, end := clamp(s.Start, n), clamp(s.End, n)
		if start > end {
			end = start
		}
		out = append(out, interval{start: start, end: end, node: node})
	}
	slices.SortStableFunc(out, func(x, y interval) int {
		return x.start - y.start
	})
	return out
}

func clamp(v, n int) int {
	return max(0, min(v, n))
}
