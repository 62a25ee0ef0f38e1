// Package entitypath implements EntityPath: a hierarchical '/' path
// identifying a logical object in the data stream (spec §3).
package entitypath

import "strings"

// Path is an ordered sequence of parts under a root '/'. The zero value is
// the root path.
type Path struct {
	parts []string
}

// Parse splits s on '/', dropping empty segments so that "/a/b", "a/b" and
// "a//b/" all parse to the same Path.
func Parse(s string) Path {
	raw := strings.Split(s, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return Path{parts: parts}
}

// Root is the empty path "/".
func Root() Path { return Path{} }

// String renders the path in canonical "/a/b/c" form ("/" for the root).
func (p Path) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Len returns the number of path parts.
func (p Path) Len() int { return len(p.parts) }

// Part returns the i-th path part.
func (p Path) Part(i int) string { return p.parts[i] }

// Equal reports value equality between two paths.
func (p Path) Equal(other Path) bool {
	if len(p.parts) != len(other.parts) {
		return false
	}
	for i := range p.parts {
		if p.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// StartsWith reports whether p is prefix-equal to other, i.e. other is an
// ancestor of (or equal to) p.
func (p Path) StartsWith(other Path) bool {
	if len(other.parts) > len(p.parts) {
		return false
	}
	for i := range other.parts {
		if p.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// CommonAncestorOf returns the longest path that is a prefix of both a and
// b.
func CommonAncestorOf(a, b Path) Path {
	n := min(len(a.parts), len(b.parts))
	i := 0
	for i < n && a.parts[i] == b.parts[i] {
		i++
	}
	parts := make([]string, i)
	copy(parts, a.parts[:i])
	return Path{parts: parts}
}

// IncrementalWalk yields every ancestor path from the common ancestor of
// from and to, down to to itself, one path part at a time. It is the
// primitive external hierarchical caches (e.g. a blueprint tree) use to
// incrementally invalidate only the branches that changed between two
// paths, rather than recomputing the whole tree.
func IncrementalWalk(from, to Path) func(yield func(Path) bool) {
	return func(yield func(Path) bool) {
		anchor := CommonAncestorOf(from, to)
		for depth := anchor.Len(); depth <= to.Len(); depth++ {
			parts := make([]string, depth)
			copy(parts, to.parts[:depth])
			if !yield((Path{parts: parts})) {
				return
			}
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
