// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/lilacml/lilac-view/internal/schema"
)

// ValueType classifies a value hanging off a span for display.
type ValueType string

const (
	ValueConceptScore       ValueType = "concept_score"
	ValueLabel              ValueType = "label"
	ValueSemanticSimilarity ValueType = "semantic_similarity"
	ValueKeyword            ValueType = "keyword"
	ValueMetadata           ValueType = "metadata"
	ValueLeafSpan           ValueType = "leaf_span"
)

// Signal names that map to a dedicated ValueType.
const (
	conceptScoreSignal       = "concept_score"
	semanticSimilaritySignal = "semantic_similarity"
	substringSearchSignal    = "substring_search"
)

// IsScore reports whether values of this type are scores compared against a
// threshold.
func (t ValueType) IsScore() bool {
	return t == ValueConceptScore || t == ValueSemanticSimilarity
}

// SpanValueInfo describes one value reachable from the spans of a span field.
// Path is the value's field path and SpanPath the span field's path; Path
// always extends SpanPath.
type SpanValueInfo struct {
	Path     schema.Path     `json:"path"`
	SpanPath schema.Path     `json:"span_path"`
	Name     string          `json:"name"`
	Type     ValueType       `json:"type"`
	Dtype    schema.DataType `json:"dtype"`
	Signal   map[string]any  `json:"signal,omitempty"`
}

// InferValueInfos derives the value infos of the string_span field at
// spanPath. A span field without children yields a single leaf_span info.
// It returns nil when spanPath does not name a string_span field.
func InferValueInfos(root *schema.Field, spanPath schema.Path) []SpanValueInfo {
	spanField := schema.GetField(root, spanPath)
	if spanField == nil || spanField.Dtype != schema.DtypeStringSpan {
		return nil
	}

	var infos []SpanValueInfo
	for _, f := range schema.ChildFields(spanField) {
		if f == spanField || f.Dtype == "" || schema.IsContainer(f.Dtype) {
			continue
		}
		infos = append(infos, SpanValueInfo{
			Path:     f.Path,
			SpanPath: spanField.Path,
			Name:     valueName(f),
			Type:     valueType(f),
			Dtype:    f.Dtype,
			Signal:   schema.SignalInfo(f),
		})
	}
	if len(infos) == 0 {
		infos = append(infos, SpanValueInfo{
			Path:     spanField.Path,
			SpanPath: spanField.Path,
			Name:     valueName(spanField),
			Type:     ValueLeafSpan,
			Dtype:    spanField.Dtype,
			Signal:   schema.SignalInfo(spanField),
		})
	}
	return infos
}

// InferAllValueInfos returns the value infos of every string_span field in
// the schema keyed by serialized span path, the key MergeSpans callers use for
// set names.
func InferAllValueInfos(root *schema.Field) map[string][]SpanValueInfo {
	out := map[string][]SpanValueInfo{}
	for _, f := range schema.FieldsByDtype(root, schema.DtypeStringSpan) {
		out[schema.Serialize(f.Path)] = InferValueInfos(root, f.Path)
	}
	return out
}

func valueType(f *schema.Field) ValueType {
	switch schema.SignalName(f) {
	case conceptScoreSignal:
		if schema.IsFloat(f.Dtype) {
			return ValueConceptScore
		}
	case semanticSimilaritySignal:
		if schema.IsFloat(f.Dtype) {
			return ValueSemanticSimilarity
		}
	case substringSearchSignal:
		return ValueKeyword
	}
	if schema.IsLabelField(f) {
		return ValueLabel
	}
	return ValueMetadata
}

func valueName(f *schema.Field) string {
	if label := schema.Label(f); label != "" {
		return label
	}
	if name := schema.SignalName(f); name != "" {
		return name
	}
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[len(f.Path)-1]
}

// NamedValue is a value found on an original span, paired with its info.
type NamedValue struct {
	Value        any           `json:"value"`
	Info         SpanValueInfo `json:"info"`
	SpecificPath schema.Path   `json:"specific_path"`
}

// RenderSpan is a merged span decorated for display.
type RenderSpan struct {
	Paths         []string                       `json:"paths"`
	OriginalSpans map[string][]*schema.ValueNode `json:"-"`

	BackgroundColor   string `json:"background_color"`
	IsBlackBolded     bool   `json:"is_black_bolded"`
	IsHighlightBolded bool   `json:"is_highlight_bolded"`

	IsShownSnippet bool `json:"is_shown_snippet"`
	// SnippetScore is the highest float value on the span, or -Inf.
	SnippetScore float64 `json:"-"`
	SnippetText  string  `json:"snippet_text"`

	// NamedValues holds values from spans first seen in this fragment, so
	// metadata is shown once per original span.
	NamedValues  []NamedValue `json:"named_values"`
	IsHovered    bool         `json:"is_hovered"`
	IsFirstHover bool         `json:"is_first_hover"`
}

// GetRenderSpans decorates merged spans with the values described by infos,
// keyed by set name. hovered holds the serialized span paths under the
// pointer.
func GetRenderSpans(merged []MergedSpan, infos map[string][]SpanValueInfo, hovered map[string]bool, cfg SnippetConfig) []RenderSpan {
	out := make([]RenderSpan, 0, len(merged))
	for _, m := range merged {
		newPaths := make(map[string]bool, len(m.NewPaths))
		for _, p := range m.NewPaths {
			newPaths[p] = true
		}

		var (
			named, firstNamed []NamedValue
			shown             bool
			maxScore          = math.Inf(-1)
		)
		for _, setName := range slices.Sorted(maps.Keys(m.OriginalSpans)) {
			setInfos := infos[setName]
			if len(setInfos) == 0 {
				continue
			}
			for _, original := range m.OriginalSpans[setName] {
				for _, info := range setInfos {
					rel := info.Path[min(len(info.SpanPath), len(info.Path)):]
					for _, node := range schema.ValuesAtPath(original, rel) {
						if node.Value == nil && node.Span == nil {
							continue
						}
						if schema.IsFloat(info.Dtype) {
							if f, ok := node.FloatValue(); ok {
								maxScore = math.Max(maxScore, f)
							}
						}

						nv := NamedValue{Value: node.Value, Info: info, SpecificPath: node.Location}
						if newPaths[spanPath(original)] {
							firstNamed = append(firstNamed, nv)
						}
						named = append(named, nv)

						if info.Type.IsScore() {
							if f, ok := node.FloatValue(); ok && f > cfg.ScoreThreshold {
								shown = true
							}
						} else {
							shown = true
						}
					}
				}
			}
		}

		var labeled, leafSpan, keyword, textMetadata bool
		for _, nv := range named {
			switch nv.Info.Type {
			case ValueLabel:
				labeled = true
			case ValueLeafSpan:
				leafSpan = true
			case ValueKeyword:
				keyword = true
			case ValueMetadata:
				if !schema.IsNumeric(nv.Info.Dtype) {
					textMetadata = true
				}
			}
		}

		isHovered, isFirstHover := false, false
		for _, p := range m.Paths {
			if hovered[p] {
				isHovered = true
				if newPaths[p] {
					isFirstHover = true
				}
			}
		}

		if firstNamed == nil {
			firstNamed = []NamedValue{}
		}
		out = append(out, RenderSpan{
			Paths:             m.Paths,
			OriginalSpans:     m.OriginalSpans,
			BackgroundColor:   ColorFromScore(maxScore),
			IsBlackBolded:     keyword || textMetadata || leafSpan,
			IsHighlightBolded: labeled,
			IsShownSnippet:    shown,
			SnippetScore:      maxScore,
			SnippetText:       m.Text,
			NamedValues:       firstNamed,
			IsHovered:         isHovered,
			IsFirstHover:      isFirstHover,
		})
	}
	return out
}

// ColorFromScore maps a score in [0, 1] to a translucent highlight colour.
// Scores that are not finite or not positive get no colour.
func ColorFromScore(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) || score <= 0 {
		return "transparent"
	}
	alpha := math.Min(score, 1)
	return fmt.Sprintf("rgba(255, 160, 0, %.2f)", alpha)
}
