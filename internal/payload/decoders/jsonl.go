// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/lilacml/lilac-view/internal/payload"
)

// JSONLDecoder decodes line-delimited JSON, one document per non-blank line.
// This is the shape select_rows exports use for rows.
type JSONLDecoder struct{}

func NewJSONLDecoder() *JSONLDecoder {
	return &JSONLDecoder{}
}

func (d *JSONLDecoder) Name() string {
	return "jsonl"
}

// CanHandle accepts the "jsonl" and "ndjson" hints, or content made of at
// least two lines that each hold a JSON object.
func (d *JSONLDecoder) CanHandle(source payload.Source) bool {
	switch strings.ToLower(source.Format) {
	case "jsonl", "ndjson":
		return true
	}
	lines := nonBlankLines(string(source.Content))
	if len(lines) < 2 {
		return false
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			return false
		}
	}
	return true
}

func (d *JSONLDecoder) Decode(ctx context.Context, source payload.Source) ([]any, error) {
	docs := []any{}
	for i, line := range strings.Split(string(source.Content), "\n") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc any
		if err := yaml.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
