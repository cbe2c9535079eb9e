// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strconv"
)

// Kind discriminates the payload a ValueNode carries.
type Kind int

const (
	KindStruct Kind = iota
	KindScalar
	KindList
	KindSpan
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindSpan:
		return "span"
	}
	return "unknown"
}

// Span is a half-open character interval [Start, End) into a source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ValueNode is a node of the value tree built from one row.
//
// Children holds struct members and, after the annotations merge, derived
// values attached to any node, so a scalar or span node may have children.
// Items holds list elements in order; every element shares the wildcard Path
// of its list, and Location carries the concrete index.
type ValueNode struct {
	Path Path `json:"path"`
	// Location is Path with wildcards replaced by list indices.
	Location Path `json:"location"`
	// Field describes the node. Nil when the schema has no field at Path.
	Field *Field `json:"-"`

	Kind  Kind  `json:"kind"`
	Value any   `json:"value,omitempty"`
	Span  *Span `json:"span,omitempty"`

	Children map[string]*ValueNode `json:"children,omitempty"`
	Items    []*ValueNode          `json:"items,omitempty"`
}

// DeserializeRow builds the value tree of a row against a schema and merges
// the annotations subtree into the source values. The returned root has an
// empty path, no value and Field set to schema.
func DeserializeRow(raw any, schema *Field) (*ValueNode, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrInvalidRow, raw)
	}
	b := newValueBuilder(schema)
	root := b.build(m, Path{}, Path{})

	if annotations, ok := root.Children[AnnotationsKey]; ok {
		delete(root.Children, AnnotationsKey)
		mergeValueChildren(root, annotations)
	}
	root.Kind = KindStruct
	root.Value = nil
	root.Span = nil
	root.Field = schema
	return root, nil
}

// DeserializeRows deserializes a page of rows. It fails on the first invalid
// row.
func DeserializeRows(raws []any, schema *Field) ([]*ValueNode, error) {
	rows := make([]*ValueNode, 0, len(raws))
	for i, raw := range raws {
		row, err := DeserializeRow(raw, schema)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeserializeValue builds the value subtree for raw rooted at field. No
// annotations merge is applied.
func DeserializeValue(raw any, field *Field) *ValueNode {
	path := Path{}
	if field != nil {
		path = field.Path
	}
	return newValueBuilder(field).build(raw, path, path)
}

type valueBuilder struct {
	fields map[string]*Field
}

func newValueBuilder(root *Field) *valueBuilder {
	b := &valueBuilder{fields: map[string]*Field{}}
	if root == nil {
		return b
	}
	b.fields[Serialize(root.Path)] = root
	for _, f := range ChildFields(root) {
		key := Serialize(f.Path)
		if _, ok := b.fields[key]; !ok {
			b.fields[key] = f
		}
	}
	return b
}

func (b *valueBuilder) build(raw any, path, loc Path) *ValueNode {
	n := &ValueNode{Path: path, Location: loc, Field: b.fields[Serialize(path)]}

	if list, ok := raw.([]any); ok {
		n.Kind = KindList
		n.Items = make([]*ValueNode, len(list))
		for i, item := range list {
			n.Items[i] = b.build(item, path.Child(Wildcard), loc.Child(strconv.Itoa(i)))
		}
		return n
	}

	m, ok := asMap(raw)
	if !ok {
		n.Kind = KindScalar
		n.Value = raw
		return n
	}

	n.Span = parseSpan(m[EntityKey])
	n.Value = m[ValueKey]
	inline := false
	if n.Span == nil && n.Field != nil && n.Field.Dtype == DtypeStringSpan {
		// Bare {start, end} values, either inline or under the value key.
		if span := parseSpan(n.Value); span != nil {
			n.Span, n.Value = span, nil
		} else if span := parseSpan(m); span != nil {
			n.Span = span
			inline = true
		}
	}

	for key, child := range m {
		if key == EntityKey || key == ValueKey {
			continue
		}
		if inline && (key == "start" || key == "end") {
			continue
		}
		if n.Children == nil {
			n.Children = make(map[string]*ValueNode, len(m))
		}
		n.Children[key] = b.build(child, path.Child(key), loc.Child(key))
	}
	n.Kind = payloadKind(n)
	return n
}

func payloadKind(n *ValueNode) Kind {
	switch {
	case n.Span != nil:
		return KindSpan
	case n.Value != nil:
		return KindScalar
	}
	return KindStruct
}

func parseSpan(v any) *Span {
	m, ok := asMap(v)
	if !ok {
		return nil
	}
	start, ok := asInt(m["start"])
	if !ok {
		return nil
	}
	end, ok := asInt(m["end"])
	if !ok {
		return nil
	}
	return &Span{Start: start, End: end}
}

// mergeValueChildren deep-merges src's children into dst. Payloads already on
// dst win. Lists merge element by element.
func mergeValueChildren(dst, src *ValueNode) {
	for key, s := range src.Children {
		if dst.Children == nil {
			dst.Children = make(map[string]*ValueNode, len(src.Children))
		}
		d, ok := dst.Children[key]
		if !ok {
			dst.Children[key] = s
			continue
		}
		mergeValue(d, s)
	}
}

func mergeValue(dst, src *ValueNode) {
	if dst.Kind == KindList && src.Kind == KindList {
		for i, item := range src.Items {
			if i < len(dst.Items) {
				mergeValue(dst.Items[i], item)
			} else {
				dst.Items = append(dst.Items, item)
			}
		}
	}
	if dst.Kind != KindList {
		if dst.Value == nil {
			dst.Value = src.Value
		}
		if dst.Span == nil {
			dst.Span = src.Span
		}
		dst.Kind = payloadKind(dst)
	}
	mergeValueChildren(dst, src)
}

// SpanValue returns the span carried by the node, or nil.
func (n *ValueNode) SpanValue() *Span {
	if n == nil {
		return nil
	}
	return n.Span
}

// Dtype returns the dtype of the node's field, or "" when unknown.
func (n *ValueNode) Dtype() DataType {
	if n == nil || n.Field == nil {
		return ""
	}
	return n.Field.Dtype
}

func (n *ValueNode) StringValue() (string, bool) {
	if n == nil {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

func (n *ValueNode) FloatValue() (float64, bool) {
	if n == nil {
		return 0, false
	}
	return asFloat(n.Value)
}

// Child returns the named child, or nil.
func (n *ValueNode) Child(name string) *ValueNode {
	if n == nil {
		return nil
	}
	return n.Children[name]
}

// ValueAtPath descends from n by child name, or by list index for list nodes.
// It returns nil when a segment is missing.
func ValueAtPath(n *ValueNode, path Path) *ValueNode {
	for _, seg := range path {
		if n == nil {
			return nil
		}
		if child, ok := n.Children[seg]; ok {
			n = child
			continue
		}
		if n.Kind != KindList {
			return nil
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(n.Items) {
			return nil
		}
		n = n.Items[i]
	}
	return n
}

// ValuesAtPath is ValueAtPath with wildcard segments expanded over the items
// of list nodes. Matches are returned in item order.
func ValuesAtPath(n *ValueNode, path Path) []*ValueNode {
	if n == nil {
		return nil
	}
	if len(path) == 0 {
		return []*ValueNode{n}
	}
	if path[0] == Wildcard && n.Kind == KindList {
		var out []*ValueNode
		for _, item := range n.Items {
			out = append(out, ValuesAtPath(item, path[1:])...)
		}
		return out
	}
	return ValuesAtPath(ValueAtPath(n, path[:1]), path[1:])
}
