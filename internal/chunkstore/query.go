package chunkstore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

// latestAtKey identifies a LatestAt request precisely enough to share its
// resolution across concurrent identical callers via latestAtGroup.
type latestAtKey struct {
	entity     entityKey
	tl         timeline.Timeline
	at         timeline.TimeInt
	descriptor component.Descriptor
}

type latestAtOutcome struct {
	result LatestAtResult
	found  bool
}

// LatestAtResult is the single winning row latest_at resolved for one
// descriptor, plus the chunk and row index it came from so a caller can
// pull out the actual cell without a second lookup.
type LatestAtResult struct {
	DataTime timeline.TimeInt
	RowID    rowid.RowID
	Chunk    *chunk.Chunk
	RowIndex int
}

// LatestAt resolves, for each of descriptors, the single row visible at
// (tl, at) on entityPath: the static chunk's last write if one covers the
// descriptor, else the temporal row with the greatest (DataTime, RowId) at
// or before at (spec §4.3). Descriptors with no visible data are absent
// from the result. The per-descriptor resolutions are independent and run
// concurrently via errgroup.
func (s *Store) LatestAt(ctx context.Context, tl timeline.Timeline, at timeline.TimeInt, entityPath entitypath.Path, descriptors []component.Descriptor) (map[component.Descriptor]LatestAtResult, error) {
	s.queryID.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity := keyOfEntity(entityPath)

	results := make([]LatestAtResult, len(descriptors))
	found := make([]bool, len(descriptors))

	g, _ := errgroup.WithContext(ctx)
	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			key := latestAtKey{entity: entity, tl: tl, at: at, descriptor: d}
			outcome, _, _ := s.latestAtGroup.Do(key, func() (latestAtOutcome, error) {
				result, ok := s.latestAtOneLocked(entity, tl, at, d)
				return latestAtOutcome{result: result, found: ok}, nil
			})
			results[i], found[i] = outcome.result, outcome.found
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[component.Descriptor]LatestAtResult, len(descriptors))
	for i, d := range descriptors {
		if found[i] {
			out[d] = results[i]
		}
	}
	return out, nil
}

// latestAtOneLocked implements spec §4.3 for a single descriptor. A static
// write always shadows every temporal one. Among temporal chunks, it scans
// per_end_time in descending order. Buckets keyed by end > at are always
// visited, since their chunks may still hold rows at or before at. A bucket
// keyed by end <= at guarantees every row in every chunk it holds for
// (tl, d) has DataTime <= at, since end is that chunk's maximum DataTime
// for (tl, d). Among those buckets the scan stops once the best candidate
// found so far has a DataTime strictly greater than the bucket's key,
// because no chunk in that or a smaller bucket can hold a row exceeding
// its own end time.
func (s *Store) latestAtOneLocked(entity entityKey, tl timeline.Timeline, at timeline.TimeInt, d component.Descriptor) (LatestAtResult, bool) {
	if staticID, ok := s.ix.staticChunkIDsPerEntity[entity][d]; ok {
		c := s.ix.chunksPerChunkID[staticID]
		if idx, ok := c.LastNonNullRowIndex(d); ok {
			return LatestAtResult{DataTime: timeline.Static, RowID: c.RowIDAt(idx), Chunk: c, RowIndex: idx}, true
		}
	}

	byDescriptor := s.ix.temporalChunkIDsPerEntity[entity][tl]
	if byDescriptor == nil {
		return LatestAtResult{}, false
	}
	bucket := byDescriptor[d]
	if bucket == nil {
		return LatestAtResult{}, false
	}

	var (
		best   LatestAtResult
		haveIt bool
	)
	bucket.perEndTime.Descend(func(key timeline.TimeInt, ids chunkIDSet) bool {
		if key <= at && haveIt && best.DataTime > key {
			return false
		}
		for id := range ids {
			c := s.ix.chunksPerChunkID[id]
			if c == nil {
				continue
			}
			idx, ok := c.BestRowAtOrBefore(tl, d, at)
			if !ok {
				continue
			}
			cand := LatestAtResult{DataTime: c.TimeValueAt(tl, idx), RowID: c.RowIDAt(idx), Chunk: c, RowIndex: idx}
			if !haveIt || betterLatestAt(cand, best) {
				best, haveIt = cand, true
			}
		}
		return true
	})
	return best, haveIt
}

// betterLatestAt reports whether a beats b under the (DataTime, RowId)
// lexicographic tie-break latest-at uses to pick a winner.
func betterLatestAt(a, b LatestAtResult) bool {
	if a.DataTime != b.DataTime {
		return a.DataTime > b.DataTime
	}
	return a.RowID.Compare(b.RowID) > 0
}

// RangeResult is one row yielded by Range: the chunk and row index it came
// from, in the order Range guarantees (spec §4.4).
type RangeResult struct {
	DataTime timeline.TimeInt
	RowID    rowid.RowID
	Chunk    *chunk.Chunk
	RowIndex int
}

// Range streams every row of entityPath on tl, for any of descriptors,
// whose DataTime falls within r, plus every static row for those
// descriptors (spec §4.4: static rows are always included in range
// results, since a static write has no temporal extent to fall outside
// of). Rows are yielded chunk by chunk; within a chunk, in native RowId
// order. The returned function is a range-over-func iterator: iteration
// stops early if yield returns false.
func (s *Store) Range(tl timeline.Timeline, r timeline.Range, entityPath entitypath.Path, descriptors []component.Descriptor) func(yield func(RangeResult) bool) {
	return func(yield func(RangeResult) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		entity := keyOfEntity(entityPath)

		for _, d := range descriptors {
			if staticID, ok := s.ix.staticChunkIDsPerEntity[entity][d]; ok {
				c := s.ix.chunksPerChunkID[staticID]
				if idx, ok := c.LastNonNullRowIndex(d); ok {
					if !yield(RangeResult{DataTime: timeline.Static, RowID: c.RowIDAt(idx), Chunk: c, RowIndex: idx}) {
						return
					}
				}
			}
		}

		byDescriptor := s.ix.temporalChunkIDsPerEntity[entity][tl]
		if byDescriptor == nil {
			return
		}
		for _, d := range descriptors {
			bucket := byDescriptor[d]
			if bucket == nil {
				continue
			}
			seen := make(map[rowid.ChunkID]bool)
			cont := true
			bucket.perStartTime.Ascend(func(_ timeline.TimeInt, ids chunkIDSet) bool {
				for id := range ids {
					if seen[id] {
						continue
					}
					seen[id] = true
					c := s.ix.chunksPerChunkID[id]
					if c == nil {
						continue
					}
					for _, idx := range c.RowsInRange(tl, d, r) {
						if !yield(RangeResult{DataTime: c.TimeValueAt(tl, idx), RowID: c.RowIDAt(idx), Chunk: c, RowIndex: idx}) {
							cont = false
							return false
						}
					}
				}
				return cont
			})
			if !cont {
				return
			}
		}
	}
}

// AllComponents returns every descriptor entityPath carries any data for,
// static or temporal, on tl (spec §4.5).
func (s *Store) AllComponents(tl timeline.Timeline, entityPath entitypath.Path) []component.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity := keyOfEntity(entityPath)
	seen := make(map[component.Descriptor]bool)
	for d := range s.ix.staticChunkIDsPerEntity[entity] {
		seen[d] = true
	}
	for d := range s.ix.temporalChunkIDsPerEntity[entity][tl] {
		seen[d] = true
	}
	out := make([]component.Descriptor, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	return out
}

// EntityMinTime returns the smallest DataTime ever recorded for
// entityPath on tl, across every descriptor, and whether any temporal
// data exists at all (spec §4.5). Static-only entities report ok=false.
func (s *Store) EntityMinTime(tl timeline.Timeline, entityPath entitypath.Path) (t timeline.TimeInt, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity := keyOfEntity(entityPath)
	byDescriptor := s.ix.temporalChunkIDsPerEntity[entity][tl]
	if byDescriptor == nil {
		return timeline.TimeInt(0), false
	}
	first := true
	for _, bucket := range byDescriptor {
		if key, _, minOK := bucket.perStartTime.Min(); minOK {
			if first || key < t {
				t, first = key, false
			}
		}
	}
	return t, !first
}
