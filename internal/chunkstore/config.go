// Package chunkstore owns all chunks for one store id and maintains the
// secondary indexes that make latest-at and range resolution cheap (spec
// §3 "ChunkStore", §4.2).
package chunkstore

import "chunkstore/internal/component"

// Kind distinguishes the two roles a store can play; both share identical
// insert/query/gc semantics, the distinction exists purely for callers
// that want to address "the recording" vs. "the blueprint" by convention.
type Kind int

const (
	Recording Kind = iota
	Blueprint
)

func (k Kind) String() string {
	if k == Blueprint {
		return "blueprint"
	}
	return "recording"
}

// Config is the immutable configuration a store is created with. The zero
// value is a usable, permissive configuration; New fills in any
// zero-valued field that needs a concrete default.
type Config struct {
	// TypeRegistry seeds the logical type recorded for each ComponentType
	// up front. Entries are advisory documentation for callers; the store
	// independently enforces that any descriptor's ComponentType stays
	// stable across chunks once observed (spec §6, §7 TypeMismatch).
	TypeRegistry map[component.Type]string

	// CompactionMaxRows and CompactionMaxBytes gate on-insert compaction
	// of a newly inserted chunk with its immediate predecessor for the
	// same entity (spec §4.2, open question resolved conservatively: only
	// the immediate predecessor chunk is ever considered, never an
	// arbitrary earlier one). Compaction is disabled when both are zero;
	// when only one is zero, that dimension is not limited.
	CompactionMaxRows  int
	CompactionMaxBytes int64
}

func (c Config) withDefaults() Config {
	if c.TypeRegistry == nil {
		c.TypeRegistry = map[component.Type]string{}
	}
	return c
}
