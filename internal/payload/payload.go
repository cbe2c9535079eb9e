// SPDX-License-Identifier: Apache-2.0

// Package payload decodes raw schema and row payloads into generic values
// that the schema package can build trees from.
package payload

import "context"

// Source describes one raw payload.
type Source struct {
	// Content is the raw payload bytes.
	Content []byte
	// Format is an optional hint such as "jsonl" or "yaml", usually the file
	// extension.
	Format string
	ID     string
}

// Decoder turns a Source into a list of documents. A document is whatever the
// payload holds at the top level: an object for a schema, one object per row.
type Decoder interface {
	CanHandle(source Source) bool
	Decode(ctx context.Context, source Source) ([]any, error)
	Name() string
}
