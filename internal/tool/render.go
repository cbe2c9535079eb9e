// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lilacml/lilac-view/internal/schema"
	"github.com/lilacml/lilac-view/internal/spans"
)

// MetadataRenderDocument describes the render_document tool.
var MetadataRenderDocument = &mcp.Tool{
	Name: "render_document",
	Description: "Render one text field of a dataset row with its signal spans. The text is cut " +
		"into fragments at every span boundary; each fragment lists the spans covering it and " +
		"whether it is worth showing (a concept or similarity score above the threshold, or any " +
		"other annotation). The snippet keeps the interesting fragments with some surrounding " +
		"context and collapses the rest into ellipses.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"dataset", "row_id"},
		"properties": map[string]interface{}{
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Dataset namespace. Defaults to the configured namespace.",
			},
			"dataset": map[string]interface{}{
				"type":        "string",
				"description": "Dataset name.",
			},
			"row_id": map[string]interface{}{
				"type":        "string",
				"description": "Value of the row's __rowid__ field.",
			},
			"field": map[string]interface{}{
				"type":        "string",
				"description": "Dot-separated path of the text field; a * segment selects the first list item holding text. Defaults to the first text field carrying spans.",
			},
			"expanded": map[string]interface{}{
				"type":        "boolean",
				"description": "Return the whole document instead of a snippet.",
			},
			"hovered": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Span locations to mark as hovered, as listed in fragment paths.",
			},
		},
	},
}

// InputRenderDocument is the input for the RenderDocument tool.
type InputRenderDocument struct {
	Namespace string   `json:"namespace"`
	Dataset   string   `json:"dataset"`
	RowID     string   `json:"row_id"`
	Field     string   `json:"field"`
	Expanded  bool     `json:"expanded"`
	Hovered   []string `json:"hovered"`
}

// Fragment is one merged span of the rendered text.
type Fragment struct {
	Text      string   `json:"text"`
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Paths     []string `json:"paths"`
	Shown     bool     `json:"shown"`
	Color     string   `json:"color"`
	Bold      bool     `json:"bold"`
	Highlight bool     `json:"highlight"`
	Hovered   bool     `json:"hovered"`
	Values    []Value  `json:"values"`
}

// Value is a named value attached to a fragment.
type Value struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// OutputRenderDocument is the output for the RenderDocument tool.
type OutputRenderDocument struct {
	Field      string              `json:"field"`
	Text       string              `json:"text"`
	Fragments  []Fragment          `json:"fragments"`
	Snippet    []spans.SnippetSpan `json:"snippet"`
	SomeHidden bool                `json:"some_hidden"`
}

func (h *Handlers) RenderDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputRenderDocument) (*mcp.CallToolResult, OutputRenderDocument, error) {
	if input.Dataset == "" || input.RowID == "" {
		return nil, OutputRenderDocument{}, fmt.Errorf("dataset and row_id are required")
	}
	ns := h.namespace(input.Namespace)
	root, row, err := h.loader.LoadRow(ctx, ns, input.Dataset, input.RowID)
	if err != nil {
		return nil, OutputRenderDocument{}, err
	}
	if row == nil {
		return nil, OutputRenderDocument{}, fmt.Errorf("row %q not found in %s/%s", input.RowID, ns, input.Dataset)
	}

	path, err := resolveField(root, input.Field)
	if err != nil {
		return nil, OutputRenderDocument{}, err
	}

	hovered := make(map[string]bool, len(input.Hovered))
	for _, p := range input.Hovered {
		hovered[p] = true
	}
	doc, err := spans.RenderDocument(root, row, path, spans.RenderOptions{
		Hovered:  hovered,
		Expanded: input.Expanded,
		Config:   h.cfg.Snippet,
	})
	if err != nil {
		return nil, OutputRenderDocument{}, err
	}
	h.logger.Debug("rendered document",
		zap.String("dataset", ns+"/"+input.Dataset),
		zap.String("row_id", input.RowID),
		zap.Int("fragments", len(doc.Merged)))

	return nil, toOutput(doc), nil
}

// resolveField parses field, or picks the first text field with spans.
func resolveField(root *schema.Field, field string) (schema.Path, error) {
	if field != "" {
		return schema.Deserialize(field), nil
	}
	paths := spans.TextPaths(root)
	if len(paths) == 0 {
		return nil, fmt.Errorf("field is required: the schema has no text field with spans")
	}
	return paths[0], nil
}

func toOutput(doc *spans.Document) OutputRenderDocument {
	out := OutputRenderDocument{
		Field:      schema.Serialize(doc.Path),
		Text:       doc.Text,
		Fragments:  make([]Fragment, 0, len(doc.Render)),
		Snippet:    doc.Snippet,
		SomeHidden: doc.SomeHidden,
	}
	for i, r := range doc.Render {
		m := doc.Merged[i]
		f := Fragment{
			Text:      m.Text,
			Start:     m.Span.Start,
			End:       m.Span.End,
			Paths:     r.Paths,
			Shown:     r.IsShownSnippet,
			Color:     r.BackgroundColor,
			Bold:      r.IsBlackBolded,
			Highlight: r.IsHighlightBolded,
			Hovered:   r.IsHovered,
			Values:    make([]Value, 0, len(r.NamedValues)),
		}
		for _, nv := range r.NamedValues {
			f.Values = append(f.Values, Value{
				Name:  nv.Info.Name,
				Type:  string(nv.Info.Type),
				Path:  schema.Serialize(nv.SpecificPath),
				Value: nv.Value,
			})
		}
		out.Fragments = append(out.Fragments, f)
	}
	return out
}
