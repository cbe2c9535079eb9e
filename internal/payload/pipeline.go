// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"context"
	"fmt"
)

type Pipeline struct {
	decoders []Decoder
}

// NewPipeline creates a Pipeline trying decoders in the given order.
func NewPipeline(decoders ...Decoder) *Pipeline {
	return &Pipeline{decoders: decoders}
}

// Result is the output of a successful decode.
type Result struct {
	Docs        []any
	DecoderUsed string
	DocCount    int
}

func (p *Pipeline) Decode(ctx context.Context, source Source) ([]any, error) {
	result, err := p.DecodeWithMeta(ctx, source)
	if err != nil {
		return nil, err
	}
	return result.Docs, nil
}

func (p *Pipeline) DecodeWithMeta(ctx context.Context, source Source) (Result, error) {
	decoder, err := p.selectDecoder(source)
	if err != nil {
		return Result{}, err
	}

	docs, err := decoder.Decode(ctx, source)
	if err != nil {
		return Result{}, fmt.Errorf("decoder %q failed on %q: %w", decoder.Name(), source.ID, err)
	}
	if docs == nil {
		docs = []any{}
	}
	return Result{
		Docs:        docs,
		DecoderUsed: decoder.Name(),
		DocCount:    len(docs),
	}, nil
}

// selectDecoder returns the first registered decoder that can handle the source.
func (p *Pipeline) selectDecoder(source Source) (Decoder, error) {
	for _, decoder := range p.decoders {
		if decoder.CanHandle(source) {
			return decoder, nil
		}
	}
	return nil, fmt.Errorf("unsupported payload format: no decoder found for source %q (format hint: %q)", source.ID, source.Format)
}

// RegisteredDecoders returns the names of all registered decoders.
func (p *Pipeline) RegisteredDecoders() []string {
	names := make([]string, len(p.decoders))
	for i, decoder := range p.decoders {
		names[i] = decoder.Name()
	}
	return names
}
