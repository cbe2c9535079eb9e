// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// Field is a node of the schema tree. A field is a struct (Fields), a list
// (RepeatedField) or a leaf (Dtype). After the annotations merge a leaf may
// also hold derived children in Fields.
type Field struct {
	// Path is absolute from the schema root. Fields merged in from the
	// annotations subtree keep their original path, which starts with
	// AnnotationsKey.
	Path Path `json:"path"`
	// Parent is a non-owning back reference used for upward provenance
	// lookups only.
	Parent *Field `json:"-"`

	Dtype         DataType          `json:"dtype,omitempty"`
	Fields        map[string]*Field `json:"fields,omitempty"`
	RepeatedField *Field            `json:"repeated_field,omitempty"`

	Signal      map[string]any `json:"signal,omitempty"`
	Map         map[string]any `json:"map,omitempty"`
	Cluster     map[string]any `json:"cluster,omitempty"`
	Label       string         `json:"label,omitempty"`
	DerivedFrom Path           `json:"derived_from,omitempty"`
}

// DeserializeSchema converts a raw schema into a field tree rooted at the
// empty path and merges the annotations subtree into the source fields.
func DeserializeSchema(raw *RawField) (*Field, error) {
	if raw == nil || raw.Fields == nil {
		return &Field{Path: Path{}, Fields: map[string]*Field{}}, nil
	}
	root, err := deserializeField(raw, Path{})
	if err != nil {
		return nil, err
	}

	if annotations, ok := root.Fields[AnnotationsKey]; ok {
		delete(root.Fields, AnnotationsKey)
		mergeFieldChildren(root, annotations)
	}
	return root, nil
}

func deserializeField(raw *RawField, path Path) (*Field, error) {
	isRoot := len(path) == 0
	if raw.Fields != nil && raw.RepeatedField != nil {
		return nil, &SchemaError{Path: path, Reason: "field has both fields and repeated_field"}
	}
	if raw.RepeatedField != nil && raw.Dtype != "" && !IsContainer(DataType(raw.Dtype)) {
		return nil, &SchemaError{Path: path, Reason: fmt.Sprintf("field has dtype %s and repeated_field", raw.Dtype)}
	}
	if !isRoot && raw.Dtype == "" && raw.Fields == nil && raw.RepeatedField == nil {
		return nil, &SchemaError{Path: path, Reason: "leaf field has no dtype"}
	}

	f := &Field{
		Path:    path,
		Dtype:   DataType(raw.Dtype),
		Signal:  raw.Signal,
		Map:     raw.Map,
		Cluster: raw.Cluster,
		Label:   raw.Label,
	}
	if raw.DerivedFrom != nil {
		f.DerivedFrom = Path(raw.DerivedFrom)
	}

	if raw.Fields != nil {
		f.Fields = make(map[string]*Field, len(raw.Fields))
		for name, rawChild := range raw.Fields {
			if rawChild == nil {
				return nil, &SchemaError{Path: path.Child(name), Reason: "field is null"}
			}
			child, err := deserializeField(rawChild, path.Child(name))
			if err != nil {
				return nil, err
			}
			child.Parent = f
			f.Fields[name] = child
		}
	}
	if raw.RepeatedField != nil {
		child, err := deserializeField(raw.RepeatedField, path.Child(Wildcard))
		if err != nil {
			return nil, err
		}
		child.Parent = f
		f.RepeatedField = child
	}
	return f, nil
}

// mergeFieldChildren deep-merges the children of src into dst. Values already
// present on dst win; missing ones are taken from src. Nodes moved into a
// child slot of dst are re-parented to dst but keep their original Path.
func mergeFieldChildren(dst, src *Field) {
	if src.Fields != nil {
		if dst.Fields == nil {
			dst.Fields = make(map[string]*Field, len(src.Fields))
		}
		for name, s := range src.Fields {
			d, ok := dst.Fields[name]
			if !ok {
				s.Parent = dst
				dst.Fields[name] = s
				continue
			}
			mergeField(d, s)
		}
	}
	if src.RepeatedField != nil {
		if dst.RepeatedField == nil {
			src.RepeatedField.Parent = dst
			dst.RepeatedField = src.RepeatedField
		} else {
			mergeField(dst.RepeatedField, src.RepeatedField)
		}
	}
}

func mergeField(dst, src *Field) {
	if dst.Dtype == "" {
		dst.Dtype = src.Dtype
	}
	if dst.Signal == nil {
		dst.Signal = src.Signal
	}
	if dst.Map == nil {
		dst.Map = src.Map
	}
	if dst.Cluster == nil {
		dst.Cluster = src.Cluster
	}
	if dst.Label == "" {
		dst.Label = src.Label
	}
	if dst.DerivedFrom == nil {
		dst.DerivedFrom = src.DerivedFrom
	}
	mergeFieldChildren(dst, src)
}

// VisiblePath is the path under which the field is displayed after the
// annotations merge: Path without a leading AnnotationsKey segment.
func (f *Field) VisiblePath() Path {
	if len(f.Path) > 0 && f.Path[0] == AnnotationsKey {
		return append(Path{}, f.Path[1:]...)
	}
	return f.Path
}

// IsLeaf reports whether the field has a value dtype and no children.
func (f *Field) IsLeaf() bool {
	return f.Dtype != "" && !IsContainer(f.Dtype) && len(f.Fields) == 0 && f.RepeatedField == nil
}

// SignalInfo returns the signal that produced the field or one of its
// ancestors, or nil.
func SignalInfo(f *Field) map[string]any {
	for ; f != nil; f = f.Parent {
		if f.Signal != nil {
			return f.Signal
		}
	}
	return nil
}

// SignalName returns the signal_name of SignalInfo, or "".
func SignalName(f *Field) string {
	name, _ := SignalInfo(f)["signal_name"].(string)
	return name
}

// MapInfo returns the map that produced the field or one of its ancestors.
func MapInfo(f *Field) map[string]any {
	for ; f != nil; f = f.Parent {
		if f.Map != nil {
			return f.Map
		}
	}
	return nil
}

// ClusterInfo returns the clustering that produced the field or one of its
// ancestors.
func ClusterInfo(f *Field) map[string]any {
	for ; f != nil; f = f.Parent {
		if f.Cluster != nil {
			return f.Cluster
		}
	}
	return nil
}

// Label returns the label name that produced the field, or "".
func Label(f *Field) string {
	for ; f != nil; f = f.Parent {
		if f.Label != "" {
			return f.Label
		}
	}
	return ""
}

func IsSignalField(f *Field) bool  { return SignalInfo(f) != nil }
func IsMapField(f *Field) bool     { return MapInfo(f) != nil }
func IsClusterField(f *Field) bool { return ClusterInfo(f) != nil }
func IsLabelField(f *Field) bool   { return Label(f) != "" }

func IsSignalRoot(f *Field) bool  { return f != nil && f.Signal != nil }
func IsMapRoot(f *Field) bool     { return f != nil && f.Map != nil }
func IsClusterRoot(f *Field) bool { return f != nil && f.Cluster != nil }
func IsLabelRoot(f *Field) bool   { return f != nil && f.Label != "" }

// IsEmbeddingField reports whether f sits under a signal root and has an
// embedding leaf below it.
func IsEmbeddingField(f *Field) bool {
	if f == nil || !hasSignalAncestor(f) {
		return false
	}
	for _, child := range ChildFields(f) {
		if child.Dtype == DtypeEmbedding {
			return true
		}
	}
	return false
}

func hasSignalAncestor(f *Field) bool {
	for p := f.Parent; p != nil; p = p.Parent {
		if p.Signal != nil {
			return true
		}
	}
	return false
}

// ListFieldParents returns the fields addressed by every proper prefix of
// f.Path, from the top down. Prefixes with no field are skipped.
func ListFieldParents(f *Field, root *Field) []*Field {
	var parents []*Field
	for i := 1; i < len(f.Path); i++ {
		if parent := GetField(root, f.Path[:i]); parent != nil {
			parents = append(parents, parent)
		}
	}
	return parents
}

// SchemaLabels returns the label names present in the schema, excluding
// deleted labels.
func SchemaLabels(root *Field) []string {
	var labels []string
	for _, f := range ChildFields(root) {
		if f.Label != "" && f.Label != DeletedLabelKey {
			labels = append(labels, f.Label)
		}
	}
	return labels
}
