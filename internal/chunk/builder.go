package chunk

import (
	"sort"

	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

const rowIDSizeBytes = 16
const timeValueSizeBytes = 8
const cellElementSizeBytes = 8

// Builder accumulates rows for one entity and validates them into an
// immutable Chunk on Build. Rows may be appended one at a time (AppendRow)
// or as whole aligned columns (WithComponentBatches); the two styles may
// be mixed freely before Build is called.
type Builder struct {
	entityPath entitypath.Path

	clusteringComponent    component.Descriptor
	hasClusteringComponent bool

	rowIDs     []rowid.RowID
	timeValues map[timeline.Timeline][]timeline.TimeInt
	cells      map[component.Descriptor][]Cell
}

// NewBuilder returns an empty builder for entityPath.
func NewBuilder(entityPath entitypath.Path) *Builder {
	return &Builder{
		entityPath: entityPath,
		timeValues: make(map[timeline.Timeline][]timeline.TimeInt),
		cells:      make(map[component.Descriptor][]Cell),
	}
}

// SetClusteringComponent registers d as the instance-key column; Build
// rejects the chunk unless every row has a sorted, duplicate-free,
// non-null cell for d.
func (b *Builder) SetClusteringComponent(d component.Descriptor) *Builder {
	b.clusteringComponent = d
	b.hasClusteringComponent = true
	return b
}

// AppendRow appends one row. times and cells may omit any timeline or
// descriptor not present for this row; other rows built so far are
// back-filled with null/zero for columns the new row doesn't mention, and
// vice versa. Appending a row is O(1) plus O(columns) for the back-fill.
func (b *Builder) AppendRow(id rowid.RowID, times map[timeline.Timeline]timeline.TimeInt, cells map[component.Descriptor]Cell) *Builder {
	n := len(b.rowIDs)
	b.rowIDs = append(b.rowIDs, id)

	for tl, v := range times {
		col, ok := b.timeValues[tl]
		if !ok {
			col = make([]timeline.TimeInt, n)
			for i := range col {
				col[i] = timeline.Min
			}
		}
		b.timeValues[tl] = append(col, v)
	}
	// Back-fill timelines not mentioned by this row with a copy of the
	// previous logical value isn't correct for a dense column; instead pad
	// with the smallest representable sentinel so a missing timeline entry
	// reads as "before everything" rather than silently shifting other rows.
	for tl, col := range b.timeValues {
		if len(col) == n {
			b.timeValues[tl] = append(col, timeline.Min)
		}
	}

	for d, c := range cells {
		col, ok := b.cells[d]
		if !ok {
			col = make([]Cell, n)
		}
		b.cells[d] = append(col, c)
	}
	for d, col := range b.cells {
		if len(col) == n {
			b.cells[d] = append(col, nil)
		}
	}

	return b
}

// WithComponentBatches installs whole, already-aligned columns in one call.
// rowIDs, and every slice in times and components, must share the same
// length; Build validates this. Existing rows added via AppendRow are
// preserved and extended.
func (b *Builder) WithComponentBatches(rowIDs []rowid.RowID, times map[timeline.Timeline][]timeline.TimeInt, components map[component.Descriptor][]Cell) *Builder {
	b.rowIDs = append(b.rowIDs, rowIDs...)
	for tl, vals := range times {
		b.timeValues[tl] = append(b.timeValues[tl], vals...)
	}
	for d, vals := range components {
		b.cells[d] = append(b.cells[d], vals...)
	}
	return b
}

// Build validates the accumulated rows and returns the resulting Chunk.
// Validation order follows spec §4.1: row id ordering, column alignment,
// then clustering-component sort/null checks.
func (b *Builder) Build() (*Chunk, error) {
	n := len(b.rowIDs)
	if n == 0 {
		return nil, ErrEmptyChunk
	}

	for i := 1; i < n; i++ {
		if b.rowIDs[i].Compare(b.rowIDs[i-1]) <= 0 {
			return nil, &RowIDsNotIncreasingError{Index: i, Prev: b.rowIDs[i-1], Got: b.rowIDs[i]}
		}
	}

	timelines := make(map[timeline.Timeline]TimeColumn, len(b.timeValues))
	for tl, vals := range b.timeValues {
		if len(vals) != n {
			return nil, &UnalignedColumnsError{Column: tl.String(), Got: len(vals), Want: n}
		}
		timelines[tl] = TimeColumn{Values: vals, Range: timeRangeOf(vals)}
	}

	components := make(map[component.Descriptor]ListColumn, len(b.cells))
	for d, col := range b.cells {
		if len(col) != n {
			return nil, &UnalignedColumnsError{Column: d.String(), Got: len(col), Want: n}
		}
		components[d] = ListColumn{Rows: col}
	}

	if b.hasClusteringComponent {
		if err := validateClustering(b.clusteringComponent, components[b.clusteringComponent]); err != nil {
			return nil, err
		}
	}

	componentRanges := make(map[timeline.Timeline]map[component.Descriptor]timeline.Range, len(timelines))
	for tl, tc := range timelines {
		byDesc := make(map[component.Descriptor]timeline.Range, len(components))
		for d, col := range components {
			if r, ok := nonNullRange(tc.Values, col.Rows); ok {
				byDesc[d] = r
			}
		}
		componentRanges[tl] = byDesc
	}

	c := &Chunk{
		id:                     rowid.NewChunkID(),
		entityPath:             b.entityPath,
		rowIDs:                 b.rowIDs,
		timelines:              timelines,
		components:             components,
		componentRanges:        componentRanges,
		clusteringComponent:    b.clusteringComponent,
		hasClusteringComponent: b.hasClusteringComponent,
	}
	c.sizeBytes = estimateSizeBytes(c)
	return c, nil
}

func timeRangeOf(vals []timeline.TimeInt) timeline.Range {
	r := timeline.NewRange(vals[0], vals[0])
	for _, v := range vals[1:] {
		r = r.Union(timeline.NewRange(v, v))
	}
	return r
}

func nonNullRange(times []timeline.TimeInt, cells []Cell) (timeline.Range, bool) {
	found := false
	var r timeline.Range
	for i, c := range cells {
		if c == nil {
			continue
		}
		if !found {
			r = timeline.NewRange(times[i], times[i])
			found = true
			continue
		}
		r = r.Union(timeline.NewRange(times[i], times[i]))
	}
	return r, found
}

func validateClustering(d component.Descriptor, col ListColumn) error {
	for _, cell := range col.Rows {
		if cell == nil {
			return &SparseClusteringComponentError{Descriptor: d}
		}
		keys := make([]InstanceKey, 0, len(cell))
		for _, v := range cell {
			ik, ok := v.(InstanceKey)
			if !ok {
				return &InvalidClusteringComponentError{Descriptor: d}
			}
			keys = append(keys, ik)
		}
		if !sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }) {
			return &InvalidClusteringComponentError{Descriptor: d}
		}
		for i := 1; i < len(keys); i++ {
			if keys[i] == keys[i-1] {
				return &InvalidClusteringComponentError{Descriptor: d}
			}
		}
	}
	return nil
}

func estimateSizeBytes(c *Chunk) int64 {
	n := int64(c.Len())
	size := n * rowIDSizeBytes
	for _, tc := range c.timelines {
		size += int64(len(tc.Values)) * timeValueSizeBytes
	}
	for _, col := range c.components {
		for _, cell := range col.Rows {
			size += int64(len(cell)) * cellElementSizeBytes
		}
	}
	return size
}
