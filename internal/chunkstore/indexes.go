package chunkstore

import (
	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/ordermap"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

// entityKey is the map key form of an EntityPath: Path itself holds a
// slice and so isn't comparable, but its canonical string form is.
type entityKey = string

func keyOfEntity(p entitypath.Path) entityKey { return p.String() }

// chunkIDSet is an unordered set of chunk ids, used as the value type for
// per_start_time/per_end_time buckets that can legitimately hold more than
// one chunk at the same time value.
type chunkIDSet map[rowid.ChunkID]struct{}

func (s chunkIDSet) ids() []rowid.ChunkID {
	out := make([]rowid.ChunkID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// chunkIDsPerTime holds the two ordered views the spec requires be kept
// together: per_start_time drives range queries, per_end_time drives
// latest-at and GC protection (spec §3, §4.2-§4.4).
type chunkIDsPerTime struct {
	perStartTime *ordermap.Map[timeline.TimeInt, chunkIDSet]
	perEndTime   *ordermap.Map[timeline.TimeInt, chunkIDSet]
}

func newChunkIDsPerTime() *chunkIDsPerTime {
	less := func(a, b timeline.TimeInt) bool { return a < b }
	return &chunkIDsPerTime{
		perStartTime: ordermap.New[timeline.TimeInt, chunkIDSet](less),
		perEndTime:   ordermap.New[timeline.TimeInt, chunkIDSet](less),
	}
}

func (c *chunkIDsPerTime) insert(start, end timeline.TimeInt, id rowid.ChunkID) {
	insertInto(c.perStartTime, start, id)
	insertInto(c.perEndTime, end, id)
}

func insertInto(m *ordermap.Map[timeline.TimeInt, chunkIDSet], t timeline.TimeInt, id rowid.ChunkID) {
	set, ok := m.Get(t)
	if !ok {
		set = make(chunkIDSet, 1)
		m.Set(t, set)
	}
	set[id] = struct{}{}
}

func (c *chunkIDsPerTime) remove(start, end timeline.TimeInt, id rowid.ChunkID) {
	removeFrom(c.perStartTime, start, id)
	removeFrom(c.perEndTime, end, id)
}

func removeFrom(m *ordermap.Map[timeline.TimeInt, chunkIDSet], t timeline.TimeInt, id rowid.ChunkID) {
	set, ok := m.Get(t)
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		m.Delete(t)
	}
}

func (c *chunkIDsPerTime) empty() bool {
	return c.perStartTime.Len() == 0 && c.perEndTime.Len() == 0
}

// columnKey identifies a column's type-stability slot, ignoring the
// descriptor's own ComponentType so that divergent ComponentTypes for the
// same (archetype, field) surface as a TypeMismatch rather than silently
// indexing as unrelated columns.
type columnKey struct {
	Archetype, Field string
}

func keyOfColumn(d component.Descriptor) columnKey {
	return columnKey{Archetype: d.ArchetypeName, Field: d.FieldName}
}

// indexes bundles every secondary index the store maintains (spec §3).
type indexes struct {
	chunksPerChunkID    map[rowid.ChunkID]*chunk.Chunk
	chunkIDsPerMinRowID *ordermap.Map[rowid.RowID, []rowid.ChunkID]

	// rowIDOwner tracks every row id ever inserted, across all rows of
	// every chunk (not just each chunk's minimum), so ReusedRowId is
	// caught precisely per invariant I5 rather than only on min-row-id
	// collisions.
	rowIDOwner map[rowid.RowID]rowid.ChunkID

	temporalChunkIDsPerEntity map[entityKey]map[timeline.Timeline]map[component.Descriptor]*chunkIDsPerTime
	staticChunkIDsPerEntity   map[entityKey]map[component.Descriptor]rowid.ChunkID

	columnTypes map[columnKey]component.Type
}

func newIndexes() *indexes {
	return &indexes{
		chunksPerChunkID:          make(map[rowid.ChunkID]*chunk.Chunk),
		chunkIDsPerMinRowID:       ordermap.New[rowid.RowID, []rowid.ChunkID](func(a, b rowid.RowID) bool { return a.Less(b) }),
		rowIDOwner:                make(map[rowid.RowID]rowid.ChunkID),
		temporalChunkIDsPerEntity: make(map[entityKey]map[timeline.Timeline]map[component.Descriptor]*chunkIDsPerTime),
		staticChunkIDsPerEntity:   make(map[entityKey]map[component.Descriptor]rowid.ChunkID),
		columnTypes:               make(map[columnKey]component.Type),
	}
}

func (ix *indexes) temporalBucket(entity entityKey, tl timeline.Timeline, d component.Descriptor) *chunkIDsPerTime {
	byTimeline, ok := ix.temporalChunkIDsPerEntity[entity]
	if !ok {
		byTimeline = make(map[timeline.Timeline]map[component.Descriptor]*chunkIDsPerTime)
		ix.temporalChunkIDsPerEntity[entity] = byTimeline
	}
	byDescriptor, ok := byTimeline[tl]
	if !ok {
		byDescriptor = make(map[component.Descriptor]*chunkIDsPerTime)
		byTimeline[tl] = byDescriptor
	}
	bucket, ok := byDescriptor[d]
	if !ok {
		bucket = newChunkIDsPerTime()
		byDescriptor[d] = bucket
	}
	return bucket
}
