// SPDX-License-Identifier: Apache-2.0

// Package decoders holds the payload decoders and the default pipeline.
package decoders

import "github.com/lilacml/lilac-view/internal/payload"

// NewDefaultPipeline returns a pipeline with every decoder, most specific first.
func NewDefaultPipeline() *payload.Pipeline {
	return payload.NewPipeline(NewJSONLDecoder(), NewYAMLDecoder(), NewMarkdownDecoder())
}
