// SPDX-License-Identifier: Apache-2.0

package signals

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/lilacml/lilac-view/internal/schema"
)

// SubstringSearchName is the signal name of keyword matches. Its spans render
// as keyword values.
const SubstringSearchName = "substring_search"

// SubstringSearch marks every case-insensitive occurrence of its query terms.
type SubstringSearch struct {
	query []string
	terms [][]rune
}

// NewSubstringSearch creates a keyword signal. Blank terms are ignored.
func NewSubstringSearch(query ...string) *SubstringSearch {
	s := &SubstringSearch{}
	for _, q := range query {
		if strings.TrimSpace(q) == "" {
			continue
		}
		s.query = append(s.query, q)
		s.terms = append(s.terms, foldRunes(q))
	}
	return s
}

func (s *SubstringSearch) Name() string { return SubstringSearchName }

func (s *SubstringSearch) Info() map[string]any {
	query := make([]any, len(s.query))
	for i, q := range s.query {
		query[i] = q
	}
	return map[string]any{SignalNameKey: SubstringSearchName, "query": query}
}

// Compute returns the matches in rune offsets, ordered by start then end.
// Matches of one term do not overlap; matches of different terms may.
func (s *SubstringSearch) Compute(text string) []schema.Span {
	folded := foldRunes(text)
	var out []schema.Span
	for _, term := range s.terms {
		for i := 0; i+len(term) <= len(folded); {
			if slices.Equal(folded[i:i+len(term)], term) {
				out = append(out, schema.Span{Start: i, End: i + len(term)})
				i += len(term)
				continue
			}
			i++
		}
	}
	slices.SortFunc(out, func(a, b schema.Span) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})
	return slices.Compact(out)
}

// foldRunes lower-cases rune by rune so offsets match the original text.
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
