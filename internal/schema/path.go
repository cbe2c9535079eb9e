// SPDX-License-Identifier: Apache-2.0

package schema

import "strings"

// Wildcard stands for any index of a repeated field.
const Wildcard = "*"

const pathDelimiter = "."

// Path addresses a node in a schema or value tree. The empty path is the root.
type Path []string

// Serialize joins the segments of a path with the path delimiter.
func Serialize(p Path) string {
	return strings.Join(p, pathDelimiter)
}

// Deserialize splits a serialized path. The empty string is the root path.
func Deserialize(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, pathDelimiter))
}

func (p Path) String() string {
	return Serialize(p)
}

// Child returns a new path with seg appended. The receiver is not modified.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Parent returns the path without its last segment. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// IsEqual reports literal, segment-by-segment equality.
func IsEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsMatching reports whether two paths address the same node, treating a
// wildcard on either side as matching any segment.
func IsMatching(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !segmentMatches(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Includes reports whether descendant starts with ancestor (wildcard aware).
// Every path includes itself and the root includes everything.
func Includes(ancestor, descendant Path) bool {
	if len(ancestor) > len(descendant) {
		return false
	}
	return IsMatching(ancestor, descendant[:len(ancestor)])
}

func segmentMatches(a, b string) bool {
	return a == b || a == Wildcard || b == Wildcard
}
