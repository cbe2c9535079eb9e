// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"maps"
	"slices"
)

// Lookups below scan the flattened tree. Trees are document sized, so a
// linear scan per call is acceptable and no index is kept.

// ChildFields lists f and every field below it in pre-order. Struct children
// come in name order, then the repeated child. The root (empty path) is
// excluded.
func ChildFields(f *Field) []*Field {
	if f == nil {
		return nil
	}
	var out []*Field
	collectFields(f, &out)
	return out
}

func collectFields(f *Field, out *[]*Field) {
	if len(f.Path) > 0 {
		*out = append(*out, f)
	}
	for _, name := range slices.Sorted(maps.Keys(f.Fields)) {
		collectFields(f.Fields[name], out)
	}
	if f.RepeatedField != nil {
		collectFields(f.RepeatedField, out)
	}
}

// Petals returns the fields that carry values: those with a non-container
// dtype. A source field keeps being a petal after derived children are merged
// into it.
func Petals(f *Field) []*Field {
	var out []*Field
	for _, child := range ChildFields(f) {
		if child.Dtype != "" && !IsContainer(child.Dtype) {
			out = append(out, child)
		}
	}
	return out
}

// FieldsByDtype returns the fields below f with the given dtype.
func FieldsByDtype(f *Field, dtype DataType) []*Field {
	var out []*Field
	for _, child := range ChildFields(f) {
		if child.Dtype == dtype {
			out = append(out, child)
		}
	}
	return out
}

// GetField returns the first field whose path matches path, or nil.
// Annotation fields are found at their original path.
func GetField(root *Field, path Path) *Field {
	for _, f := range ChildFields(root) {
		if IsMatching(f.Path, path) {
			return f
		}
	}
	return nil
}

// ListValueNodes lists every node below root in pre-order, root excluded.
func ListValueNodes(root *ValueNode) []*ValueNode {
	if root == nil {
		return nil
	}
	var out []*ValueNode
	collectValues(root, &out)
	return out
}

func collectValues(n *ValueNode, out *[]*ValueNode) {
	for _, key := range slices.Sorted(maps.Keys(n.Children)) {
		child := n.Children[key]
		*out = append(*out, child)
		collectValues(child, out)
	}
	for _, item := range n.Items {
		*out = append(*out, item)
		collectValues(item, out)
	}
}

// GetValue returns the first value node matching path, or nil.
func GetValue(row *ValueNode, path Path) *ValueNode {
	for _, n := range ListValueNodes(row) {
		if IsMatching(n.Path, path) {
			return n
		}
	}
	return nil
}

// GetValueNodes returns every value node matching path.
func GetValueNodes(row *ValueNode, path Path) []*ValueNode {
	var out []*ValueNode
	for _, n := range ListValueNodes(row) {
		if IsMatching(n.Path, path) {
			out = append(out, n)
		}
	}
	return out
}

// RowLabels returns the labels of every labeled value in the row.
func RowLabels(row *ValueNode) []string {
	var labels []string
	for _, n := range ListValueNodes(row) {
		if n.Field != nil && n.Field.Label != "" {
			labels = append(labels, n.Field.Label)
		}
	}
	return labels
}
