// Package chunk defines Chunk: an immutable columnar batch of rows for
// exactly one entity, and the Builder that validates and produces one.
package chunk

import (
	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

// InstanceKey is the element type of a clustering (instance key) column. A
// clustering column's cells must be sorted, unique, and non-null within
// each row.
type InstanceKey uint64

// Cell is one row's value for a component column: a (possibly empty) list
// of instances, or nil if the row is null for that component.
type Cell []any

// TimeColumn is the dense per-row time values for one timeline, plus the
// precomputed closed range covering them.
type TimeColumn struct {
	Values []timeline.TimeInt
	Range  timeline.Range
}

// ListColumn is the dense per-row cells for one component.
type ListColumn struct {
	Rows []Cell
}

// Chunk is an immutable columnar batch of rows for exactly one entity. It
// is constructed exclusively via Builder.Build and never mutated
// afterwards; package chunkstore owns indexing and querying it.
type Chunk struct {
	id         rowid.ChunkID
	entityPath entitypath.Path

	rowIDs []rowid.RowID

	timelines  map[timeline.Timeline]TimeColumn
	components map[component.Descriptor]ListColumn

	// componentRanges[tl][desc] is the closed range of tl-values across
	// the rows where desc is non-null -- finer than timelines[tl].Range,
	// required for correct latest-at over sparse columns.
	componentRanges map[timeline.Timeline]map[component.Descriptor]timeline.Range

	clusteringComponent    component.Descriptor
	hasClusteringComponent bool

	sizeBytes int64
}

// ID returns the chunk's identity.
func (c *Chunk) ID() rowid.ChunkID { return c.id }

// EntityPath returns the single entity this chunk belongs to.
func (c *Chunk) EntityPath() entitypath.Path { return c.entityPath }

// Len returns the row count N.
func (c *Chunk) Len() int { return len(c.rowIDs) }

// IsStatic reports whether this chunk carries no timeline columns.
func (c *Chunk) IsStatic() bool { return len(c.timelines) == 0 }

// RowIDs returns the dense, strictly increasing row id column.
func (c *Chunk) RowIDs() []rowid.RowID { return c.rowIDs }

// RowIDAt returns the row id at row index i.
func (c *Chunk) RowIDAt(i int) rowid.RowID { return c.rowIDs[i] }

// MinRowID returns the smallest row id in the chunk -- the key the store
// indexes chunks by in chunk_ids_per_min_row_id.
func (c *Chunk) MinRowID() rowid.RowID { return c.rowIDs[0] }

// MaxRowID returns the largest row id in the chunk.
func (c *Chunk) MaxRowID() rowid.RowID { return c.rowIDs[len(c.rowIDs)-1] }

// Timelines returns the set of timelines this chunk carries data on.
func (c *Chunk) Timelines() []timeline.Timeline {
	out := make([]timeline.Timeline, 0, len(c.timelines))
	for tl := range c.timelines {
		out = append(out, tl)
	}
	return out
}

// TimeColumnFor returns the dense time values for tl, and whether tl is
// present on this chunk.
func (c *Chunk) TimeColumnFor(tl timeline.Timeline) (TimeColumn, bool) {
	col, ok := c.timelines[tl]
	return col, ok
}

// BestRowAtOrBefore returns the index of the row with the greatest
// (time, RowId) among rows on tl where d is non-null and time <= at (spec
// §4.3 latest-at, per-chunk candidate selection).
func (c *Chunk) BestRowAtOrBefore(tl timeline.Timeline, d component.Descriptor, at timeline.TimeInt) (idx int, ok bool) {
	tc, tlOK := c.timelines[tl]
	col, dOK := c.components[d]
	if !tlOK || !dOK {
		return 0, false
	}
	best := -1
	for i, cell := range col.Rows {
		if cell == nil || tc.Values[i] > at {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if tc.Values[i] > tc.Values[best] || (tc.Values[i] == tc.Values[best] && c.rowIDs[i].Compare(c.rowIDs[best]) > 0) {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// TimeValueAt returns the tl-value of row i. It panics if tl is absent;
// callers only reach it after confirming tl via TimeColumnFor or a prior
// per-timeline index lookup.
func (c *Chunk) TimeValueAt(tl timeline.Timeline, i int) timeline.TimeInt {
	return c.timelines[tl].Values[i]
}

// Components returns the set of component descriptors this chunk carries.
func (c *Chunk) Components() []component.Descriptor {
	out := make([]component.Descriptor, 0, len(c.components))
	for d := range c.components {
		out = append(out, d)
	}
	return out
}

// Component returns the dense cell column for d, and whether d is present.
func (c *Chunk) Component(d component.Descriptor) (ListColumn, bool) {
	col, ok := c.components[d]
	return col, ok
}

// ComponentTimeRange returns the closed [min,max] range of tl-values at
// which d is non-null -- the finer-grained range required by latest-at
// over sparse columns. ok is false if d has no non-null rows on tl.
func (c *Chunk) ComponentTimeRange(tl timeline.Timeline, d component.Descriptor) (r timeline.Range, ok bool) {
	byDesc, ok := c.componentRanges[tl]
	if !ok {
		return timeline.Range{}, false
	}
	r, ok = byDesc[d]
	return r, ok
}

// RowsInRange returns, in native RowId order, the indices of rows on tl
// where d is non-null and the tl-value falls within r (spec §4.4).
func (c *Chunk) RowsInRange(tl timeline.Timeline, d component.Descriptor, r timeline.Range) []int {
	tc, tlOK := c.timelines[tl]
	col, dOK := c.components[d]
	if !tlOK || !dOK {
		return nil
	}
	var out []int
	for i, cell := range col.Rows {
		if cell != nil && r.Contains(tc.Values[i]) {
			out = append(out, i)
		}
	}
	return out
}

// ClusteringComponent returns the descriptor registered as this chunk's
// clustering (instance key) column, if any.
func (c *Chunk) ClusteringComponent() (component.Descriptor, bool) {
	return c.clusteringComponent, c.hasClusteringComponent
}

// LastNonNullRowIndex returns the index of the last row where d is
// non-null. ok is false if d is absent or null on every row.
func (c *Chunk) LastNonNullRowIndex(d component.Descriptor) (idx int, ok bool) {
	col, present := c.components[d]
	if !present {
		return 0, false
	}
	for i := len(col.Rows) - 1; i >= 0; i-- {
		if col.Rows[i] != nil {
			return i, true
		}
	}
	return 0, false
}

// MaxRowIDForComponent returns the largest row id among the rows where d is
// non-null. ok is false if d is absent or null on every row. Used by the
// store's static last-writer-wins tie-break (spec §4.2).
func (c *Chunk) MaxRowIDForComponent(d component.Descriptor) (id rowid.RowID, ok bool) {
	idx, ok := c.LastNonNullRowIndex(d)
	if !ok {
		return rowid.RowID{}, false
	}
	return c.rowIDs[idx], true
}

// TotalSizeBytes returns the chunk's cached heap size estimate.
func (c *Chunk) TotalSizeBytes() int64 { return c.sizeBytes }
