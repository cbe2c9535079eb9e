// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"errors"
	"fmt"

	"github.com/lilacml/lilac-view/internal/schema"
)

// ErrNoText is returned when the value to render is missing or not a string.
var ErrNoText = errors.New("no text value")

// SpanSetsOf collects the span values merged under a text value, grouped by
// their field path. Set names are serialized wildcard paths, the same keys
// InferAllValueInfos uses.
func SpanSetsOf(text *schema.ValueNode) SpanSets {
	sets := SpanSets{}
	for _, n := range schema.ListValueNodes(text) {
		if n.Kind != schema.KindSpan {
			continue
		}
		name := schema.Serialize(n.Path)
		sets[name] = append(sets[name], n)
	}
	return sets
}

// Document is a text value taken through every display pass.
type Document struct {
	Path       schema.Path   `json:"path"`
	Text       string        `json:"text"`
	Merged     []MergedSpan  `json:"merged"`
	Render     []RenderSpan  `json:"render"`
	Snippet    []SnippetSpan `json:"snippet"`
	SomeHidden bool          `json:"some_hidden"`
}

// RenderOptions tune RenderDocument.
type RenderOptions struct {
	Hovered  map[string]bool
	Expanded bool
	Config   SnippetConfig
}

// RenderDocument renders the string value at path in row: its spans are
// merged, decorated from the schema and snippeted. Wildcard segments select
// the first string value among the list items, and the document's Path is
// that value's concrete location.
func RenderDocument(root *schema.Field, row *schema.ValueNode, path schema.Path, opts RenderOptions) (*Document, error) {
	var (
		node *schema.ValueNode
		text string
	)
	for _, n := range schema.ValuesAtPath(row, path) {
		if s, ok := n.StringValue(); ok {
			node, text = n, s
			break
		}
	}
	if node == nil {
		return nil, fmt.Errorf("%w at %q", ErrNoText, schema.Serialize(path))
	}

	merged := MergeSpans(text, SpanSetsOf(node))
	render := GetRenderSpans(merged, InferAllValueInfos(root), opts.Hovered, opts.Config)
	snippet, hidden := SnippetRenderSpans(render, opts.Expanded, opts.Config)
	return &Document{
		Path:       node.Location,
		Text:       text,
		Merged:     merged,
		Render:     render,
		Snippet:    snippet,
		SomeHidden: hidden,
	}, nil
}

// TextPaths lists the string fields that have span fields below them, the
// fields worth rendering. Fields inside lists keep their wildcard segments;
// RenderDocument accepts them.
func TextPaths(root *schema.Field) []schema.Path {
	var out []schema.Path
	seen := map[string]bool{}
	for _, f := range schema.FieldsByDtype(root, schema.DtypeStringSpan) {
		for p := f.Parent; p != nil; p = p.Parent {
			if p.Dtype != schema.DtypeString {
				continue
			}
			key := schema.Serialize(p.Path)
			if !seen[key] {
				seen[key] = true
				out = append(out, p.Path)
			}
			break
		}
	}
	return out
}
