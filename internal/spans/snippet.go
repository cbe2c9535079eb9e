// SPDX-License-Identifier: Apache-2.0

package spans

import "unicode/utf8"

// SnippetConfig holds the display budgets of the snippet pass. Lengths are in
// runes.
type SnippetConfig struct {
	// ContextLen is how much of a hidden fragment is kept next to a shown one.
	ContextLen int `json:"context_len" yaml:"context_len"`
	// LenBudget bounds the text shown when no fragment is of interest.
	LenBudget int `json:"len_budget" yaml:"len_budget"`
	// ScoreThreshold is the score a concept or similarity value must exceed
	// for its fragment to be shown.
	ScoreThreshold float64 `json:"score_threshold" yaml:"score_threshold"`
}

// DefaultSnippetConfig returns the stock budgets.
func DefaultSnippetConfig() SnippetConfig {
	return SnippetConfig{ContextLen: 50, LenBudget: 300, ScoreThreshold: 0.5}
}

// SnippetSpan is one piece of snippet output. Index is the fragment it was
// cut from; for an ellipsis, the first fragment it stands in for.
type SnippetSpan struct {
	Index      int    `json:"index"`
	Text       string `json:"text,omitempty"`
	IsEllipsis bool   `json:"is_ellipsis,omitempty"`
}

// Snippet shortens merged spans for display. Fragments for which isShown
// returns true are kept whole. A hidden fragment next to a shown one keeps
// ContextLen runes of context on that side; everything else collapses, with
// a single ellipsis per collapsed run. When nothing is shown, the first
// fragment is cut to LenBudget runes, followed by an ellipsis when the text
// goes on. The second result reports whether anything was hidden.
func Snippet(merged []MergedSpan, isShown func(i int) bool, cfg SnippetConfig) ([]SnippetSpan, bool) {
	texts := make([]string, len(merged))
	for i, m := range merged {
		texts[i] = m.Text
	}
	return snippet(texts, isShown, cfg)
}

// SnippetRenderSpans runs Snippet over render spans using their
// IsShownSnippet flags. An expanded document is returned whole.
func SnippetRenderSpans(spans []RenderSpan, expanded bool, cfg SnippetConfig) ([]SnippetSpan, bool) {
	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.SnippetText
	}
	if expanded {
		out := make([]SnippetSpan, len(texts))
		for i, t := range texts {
			out[i] = SnippetSpan{Index: i, Text: t}
		}
		return out, false
	}
	return snippet(texts, func(i int) bool { return spans[i].IsShownSnippet }, cfg)
}

type snippetBuilder struct {
	out    []SnippetSpan
	hidden bool
}

func (b *snippetBuilder) text(i int, s string) {
	if s != "" {
		b.out = append(b.out, SnippetSpan{Index: i, Text: s})
	}
}

func (b *snippetBuilder) ellipsis(i int) {
	b.hidden = true
	if n := len(b.out); n > 0 && b.out[n-1].IsEllipsis {
		return
	}
	b.out = append(b.out, SnippetSpan{Index: i, IsEllipsis: true})
}

func snippet(texts []string, isShown func(i int) bool, cfg SnippetConfig) ([]SnippetSpan, bool) {
	if len(texts) == 0 {
		return []SnippetSpan{}, false
	}
	shown := make([]bool, len(texts))
	anyShown := false
	for i := range texts {
		shown[i] = isShown(i)
		anyShown = anyShown || shown[i]
	}
	if !anyShown {
		return fallback(texts, cfg)
	}

	b := &snippetBuilder{out: []SnippetSpan{}}
	ctx := max(cfg.ContextLen, 0)
	for i, t := range texts {
		if shown[i] {
			b.text(i, t)
			continue
		}
		n := utf8.RuneCountInString(t)
		after := i > 0 && shown[i-1]
		before := i+1 < len(texts) && shown[i+1]
		switch {
		case after && before:
			if n <= 2*ctx {
				b.text(i, t)
				continue
			}
			b.text(i, prefix(t, ctx))
			b.ellipsis(i)
			b.text(i, suffix(t, ctx))
		case after:
			b.text(i, prefix(t, ctx))
			if n > ctx {
				b.ellipsis(i)
			}
		case before:
			if n > ctx {
				b.ellipsis(i)
			}
			b.text(i, suffix(t, ctx))
		default:
			b.ellipsis(i)
		}
	}
	return b.out, b.hidden
}

func fallback(texts []string, cfg SnippetConfig) ([]SnippetSpan, bool) {
	budget := max(cfg.LenBudget, 0)
	b := &snippetBuilder{out: []SnippetSpan{}}
	first := prefix(texts[0], budget)
	b.text(0, first)

	total := 0
	for _, t := range texts {
		total += utf8.RuneCountInString(t)
	}
	if total > utf8.RuneCountInString(first) {
		idx := 0
		if len(texts) > 1 && utf8.RuneCountInString(texts[0]) <= budget {
			idx = 1
		}
		b.ellipsis(idx)
	}
	return b.out, b.hidden
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

// suffix returns the last n runes of s.
func suffix(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	return s[len(prefix(s, count-n)):]
}
