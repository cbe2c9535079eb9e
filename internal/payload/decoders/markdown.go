// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"context"
	"fmt"
	"strings"

	"github.com/lilacml/lilac-view/internal/payload"
	"github.com/lilacml/lilac-view/internal/schema"
)

// Field names of the rows produced by MarkdownDecoder.
const (
	SectionField = "section"
	TextField    = "text"
)

// MarkdownDecoder turns a Markdown or plain text document into rows, one per
// section. Sections are split on headings (lines starting with '#'); text
// before the first heading is the "preamble" section. Each row carries a row
// id derived from the source ID.
type MarkdownDecoder struct{}

// NewMarkdownDecoder creates a new MarkdownDecoder.
func NewMarkdownDecoder() *MarkdownDecoder {
	return &MarkdownDecoder{}
}

func (d *MarkdownDecoder) Name() string {
	return "markdown"
}

// CanHandle returns true for the "markdown", "md" and "txt" hints, or content
// that begins with or contains a Markdown heading.
func (d *MarkdownDecoder) CanHandle(source payload.Source) bool {
	switch strings.ToLower(source.Format) {
	case "markdown", "md", "txt", "text":
		return true
	}
	content := strings.TrimSpace(string(source.Content))
	return strings.HasPrefix(content, "#") || strings.Contains(content, "\n#")
}

func (d *MarkdownDecoder) Decode(_ context.Context, source payload.Source) ([]any, error) {
	lines := strings.Split(string(source.Content), "\n")

	rows := []any{}
	var currentHeading string
	var currentLines []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(currentLines, "\n"))
		if text == "" {
			return
		}
		section := currentHeading
		if section == "" {
			section = "preamble"
		}
		rows = append(rows, map[string]any{
			schema.RowIDKey: fmt.Sprintf("%s#%d", source.ID, len(rows)),
			SectionField:    section,
			TextField:       text,
		})
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			flush()
			currentHeading = strings.TrimSpace(strings.TrimLeft(line, "#"))
			currentLines = nil
		} else {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	return rows, nil
}

// MarkdownSchema is the raw schema of the rows MarkdownDecoder produces.
func MarkdownSchema() *schema.RawField {
	return &schema.RawField{
		Fields: map[string]*schema.RawField{
			schema.RowIDKey: {Dtype: string(schema.DtypeString)},
			SectionField:    {Dtype: string(schema.DtypeString)},
			TextField:       {Dtype: string(schema.DtypeString)},
		},
	}
}
