package chunkstore

import (
	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/eventbus"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

// tryCompactLocked implements the conservative on-insert compaction policy
// chosen for the open question in spec §9: only the entity's immediate
// temporal predecessor (by MinRowID/MaxRowID adjacency) is ever considered,
// and only when both chunks fit under the configured row/byte ceilings and
// carry the same set of timelines. Compaction never changes query results:
// the merged chunk carries exactly the union of rows, in RowId order.
func (s *Store) tryCompactLocked(c *chunk.Chunk) []eventbus.Event {
	if c.IsStatic() {
		return nil
	}

	entity := keyOfEntity(c.EntityPath())
	pred := s.findImmediatePredecessorLocked(entity, c)
	if pred == nil {
		return nil
	}
	predTimelines := pred.Timelines()
	if len(predTimelines) != len(c.Timelines()) {
		return nil
	}
	for _, tl := range predTimelines {
		if _, ok := c.TimeColumnFor(tl); !ok {
			return nil
		}
	}

	mergedRows := pred.Len() + c.Len()
	if s.config.CompactionMaxRows > 0 && mergedRows > s.config.CompactionMaxRows {
		return nil
	}
	mergedBytes := pred.TotalSizeBytes() + c.TotalSizeBytes()
	if s.config.CompactionMaxBytes > 0 && mergedBytes > s.config.CompactionMaxBytes {
		return nil
	}

	merged, err := mergeChunks(pred, c)
	if err != nil {
		s.logger.Warn("compaction: merge failed, leaving chunks unmerged", "error", err)
		return nil
	}

	delPred := s.removeChunkLocked(pred)
	delC := s.removeChunkLocked(c)
	addMerged := s.insertLocked(merged)

	return []eventbus.Event{delPred, delC, addMerged}
}

// findImmediatePredecessorLocked returns the entity's other temporal chunk
// whose MaxRowID is the largest one still less than c.MinRowID, or nil if
// none exists.
func (s *Store) findImmediatePredecessorLocked(entity entityKey, c *chunk.Chunk) *chunk.Chunk {
	var best *chunk.Chunk
	byTimeline := s.ix.temporalChunkIDsPerEntity[entity]
	seen := make(map[rowid.ChunkID]bool)
	for _, byDescriptor := range byTimeline {
		for _, bucket := range byDescriptor {
			bucket.perStartTime.Ascend(func(_ timeline.TimeInt, ids chunkIDSet) bool {
				for id := range ids {
					if seen[id] || id == c.ID() {
						continue
					}
					seen[id] = true
					cand := s.ix.chunksPerChunkID[id]
					if cand == nil || cand.IsStatic() {
						continue
					}
					if cand.MaxRowID().Compare(c.MinRowID()) >= 0 {
						continue
					}
					if best == nil || cand.MaxRowID().Compare(best.MaxRowID()) > 0 {
						best = cand
					}
				}
				return true
			})
		}
	}
	return best
}

// removeChunkLocked surgically removes c from every secondary index (the
// GC sweep operation, also reused by compaction) and emits its Deletion
// event.
func (s *Store) removeChunkLocked(c *chunk.Chunk) eventbus.Event {
	entity := keyOfEntity(c.EntityPath())

	if c.IsStatic() {
		if byDesc, ok := s.ix.staticChunkIDsPerEntity[entity]; ok {
			for d, id := range byDesc {
				if id == c.ID() {
					delete(byDesc, d)
				}
			}
			if len(byDesc) == 0 {
				delete(s.ix.staticChunkIDsPerEntity, entity)
			}
		}
	} else {
		for _, tl := range c.Timelines() {
			byDescriptor := s.ix.temporalChunkIDsPerEntity[entity][tl]
			for _, d := range c.Components() {
				r, ok := c.ComponentTimeRange(tl, d)
				if !ok {
					continue
				}
				bucket := byDescriptor[d]
				if bucket == nil {
					continue
				}
				bucket.remove(r.Min, r.Max, c.ID())
				if bucket.empty() {
					delete(byDescriptor, d)
				}
			}
			if len(byDescriptor) == 0 {
				delete(s.ix.temporalChunkIDsPerEntity[entity], tl)
			}
		}
		if len(s.ix.temporalChunkIDsPerEntity[entity]) == 0 {
			delete(s.ix.temporalChunkIDsPerEntity, entity)
		}
	}

	for _, id := range c.RowIDs() {
		delete(s.ix.rowIDOwner, id)
	}
	minID := c.MinRowID()
	if ids, ok := s.ix.chunkIDsPerMinRowID.Get(minID); ok {
		kept := ids[:0]
		for _, id := range ids {
			if id != c.ID() {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			s.ix.chunkIDsPerMinRowID.Delete(minID)
		} else {
			s.ix.chunkIDsPerMinRowID.Set(minID, kept)
		}
	}
	delete(s.ix.chunksPerChunkID, c.ID())

	delta := PartitionStats{ChunkCount: 1, RowCount: int64(c.Len()), HeapBytes: c.TotalSizeBytes()}
	if c.IsStatic() {
		s.stats.Static = s.stats.Static.sub(delta)
	} else {
		s.stats.Temporal = s.stats.Temporal.sub(delta)
	}

	ev := eventbus.Event{
		StoreID:    s.id,
		Generation: s.Generation(),
		EventID:    s.nextEventID(),
		Diff:       eventbus.Diff{Kind: eventbus.Deletion, Chunk: c},
	}
	s.bus.Publish(ev)
	return ev
}

// mergeChunks concatenates a's rows followed by b's rows into one new
// chunk. Both must belong to the same entity and a's rows must all
// precede b's in RowId order.
func mergeChunks(a, b *chunk.Chunk) (*chunk.Chunk, error) {
	rowIDs := append(append([]rowid.RowID{}, a.RowIDs()...), b.RowIDs()...)

	timelines := make(map[timeline.Timeline][]timeline.TimeInt)
	tlSet := map[timeline.Timeline]bool{}
	for _, tl := range a.Timelines() {
		tlSet[tl] = true
	}
	for _, tl := range b.Timelines() {
		tlSet[tl] = true
	}
	for tl := range tlSet {
		col := make([]timeline.TimeInt, 0, len(rowIDs))
		col = append(col, columnValuesOrMin(a, tl)...)
		col = append(col, columnValuesOrMin(b, tl)...)
		timelines[tl] = col
	}

	components := make(map[component.Descriptor][]chunk.Cell)
	dSet := map[component.Descriptor]bool{}
	for _, d := range a.Components() {
		dSet[d] = true
	}
	for _, d := range b.Components() {
		dSet[d] = true
	}
	for d := range dSet {
		col := make([]chunk.Cell, 0, len(rowIDs))
		col = append(col, cellsOrNil(a, d)...)
		col = append(col, cellsOrNil(b, d)...)
		components[d] = col
	}

	builder := chunk.NewBuilder(a.EntityPath()).WithComponentBatches(rowIDs, timelines, components)
	if d, ok := a.ClusteringComponent(); ok {
		builder.SetClusteringComponent(d)
	} else if d, ok := b.ClusteringComponent(); ok {
		builder.SetClusteringComponent(d)
	}
	return builder.Build()
}

func columnValuesOrMin(c *chunk.Chunk, tl timeline.Timeline) []timeline.TimeInt {
	if tc, ok := c.TimeColumnFor(tl); ok {
		return tc.Values
	}
	out := make([]timeline.TimeInt, c.Len())
	for i := range out {
		out[i] = timeline.Min
	}
	return out
}

func cellsOrNil(c *chunk.Chunk, d component.Descriptor) []chunk.Cell {
	if col, ok := c.Component(d); ok {
		return col.Rows
	}
	return make([]chunk.Cell, c.Len())
}
