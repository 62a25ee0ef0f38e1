package chunkstore

import (
	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/eventbus"
	"chunkstore/internal/rowid"
)

// InsertChunk validates c against the store's invariants and, on success,
// registers it under every secondary index, updates stats, and emits one
// Addition event (plus, when on-insert compaction merges c with its
// predecessor, one Deletion for each of the two and one Addition for the
// merged chunk). Failure never mutates the store (spec §4.2, §7).
func (s *Store) InsertChunk(c *chunk.Chunk) ([]eventbus.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReusedRowIDs(c); err != nil {
		return nil, err
	}
	if err := s.checkTypes(c); err != nil {
		return nil, err
	}

	events := []eventbus.Event{s.insertLocked(c)}

	if s.config.CompactionMaxRows > 0 || s.config.CompactionMaxBytes > 0 {
		events = append(events, s.tryCompactLocked(c)...)
	}

	return events, nil
}

func (s *Store) checkReusedRowIDs(c *chunk.Chunk) error {
	for _, id := range c.RowIDs() {
		if _, exists := s.ix.rowIDOwner[id]; exists {
			return &ReusedRowIDError{RowID: id}
		}
	}
	return nil
}

func (s *Store) checkTypes(c *chunk.Chunk) error {
	for _, d := range c.Components() {
		if d.ComponentType == "" {
			continue
		}
		key := keyOfColumn(d)
		if existing, ok := s.ix.columnTypes[key]; ok && existing != d.ComponentType {
			return &TypeMismatchError{Descriptor: d, Expected: existing, Actual: d.ComponentType}
		}
	}
	return nil
}

// insertLocked performs the unconditional side of insert_chunk: it assumes
// validation already passed and never fails.
func (s *Store) insertLocked(c *chunk.Chunk) eventbus.Event {
	s.insertID.Add(1)

	s.ix.chunksPerChunkID[c.ID()] = c
	minID := c.MinRowID()
	ids, _ := s.ix.chunkIDsPerMinRowID.Get(minID)
	s.ix.chunkIDsPerMinRowID.Set(minID, append(ids, c.ID()))
	for _, id := range c.RowIDs() {
		s.ix.rowIDOwner[id] = c.ID()
	}
	for _, d := range c.Components() {
		if d.ComponentType != "" {
			s.ix.columnTypes[keyOfColumn(d)] = d.ComponentType
		}
	}

	entity := keyOfEntity(c.EntityPath())
	if c.IsStatic() {
		s.insertStaticLocked(entity, c)
	} else {
		s.insertTemporalLocked(entity, c)
	}

	delta := PartitionStats{ChunkCount: 1, RowCount: int64(c.Len()), HeapBytes: c.TotalSizeBytes()}
	if c.IsStatic() {
		s.stats.Static = s.stats.Static.add(delta)
	} else {
		s.stats.Temporal = s.stats.Temporal.add(delta)
	}

	ev := eventbus.Event{
		StoreID:    s.id,
		Generation: s.Generation(),
		EventID:    s.nextEventID(),
		Diff:       eventbus.Diff{Kind: eventbus.Addition, Chunk: c},
	}
	s.bus.Publish(ev)
	return ev
}

// insertStaticLocked implements the static last-writer-wins-by-RowId rule:
// the new chunk becomes the winner for a descriptor only if its max row id
// for that descriptor exceeds the incumbent's (spec §4.2 step 3).
func (s *Store) insertStaticLocked(entity entityKey, c *chunk.Chunk) {
	byDesc, ok := s.ix.staticChunkIDsPerEntity[entity]
	if !ok {
		byDesc = make(map[component.Descriptor]rowid.ChunkID)
		s.ix.staticChunkIDsPerEntity[entity] = byDesc
	}

	for _, d := range c.Components() {
		newMax, ok := c.MaxRowIDForComponent(d)
		if !ok {
			continue
		}
		incumbentID, exists := byDesc[d]
		if !exists {
			byDesc[d] = c.ID()
			continue
		}
		incumbent := s.ix.chunksPerChunkID[incumbentID]
		incumbentMax, incumbentOK := incumbent.MaxRowIDForComponent(d)
		if !incumbentOK || newMax.Compare(incumbentMax) > 0 {
			byDesc[d] = c.ID()
		}
	}
}

// insertTemporalLocked registers c under per_start_time/per_end_time for
// every (timeline, descriptor) pair where c has non-null data (spec §4.2
// step 4).
func (s *Store) insertTemporalLocked(entity entityKey, c *chunk.Chunk) {
	for _, tl := range c.Timelines() {
		for _, d := range c.Components() {
			r, ok := c.ComponentTimeRange(tl, d)
			if !ok {
				continue
			}
			s.ix.temporalBucket(entity, tl, d).insert(r.Min, r.Max, c.ID())
		}
	}
}
