// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/lilacml/lilac-view/internal/payload"
)

// YAMLDecoder decodes YAML and JSON payloads. Every document of a multi
// document stream is decoded; a top-level list contributes its elements as
// separate documents, so a file holding an array of rows yields the rows.
type YAMLDecoder struct{}

func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

func (d *YAMLDecoder) Name() string {
	return "yaml"
}

func (d *YAMLDecoder) CanHandle(source payload.Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	}
	content := strings.TrimSpace(string(source.Content))
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") || strings.HasPrefix(content, "---") {
		return true
	}
	// Plain YAML: key: value on the first line.
	if len(content) > 0 && strings.Contains(strings.SplitN(content, "\n", 2)[0], ":") {
		// Leave headings to the markdown decoder.
		return !strings.HasPrefix(content, "#")
	}
	return false
}

func (d *YAMLDecoder) Decode(ctx context.Context, source payload.Source) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(source.Content))
	docs := []any{}
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML/JSON document %d: %w", n, err)
		}
		switch v := doc.(type) {
		case nil:
			// Empty document between separators.
		case []any:
			docs = append(docs, v...)
		default:
			docs = append(docs, v)
		}
	}
}
