package chunkstore

import (
	"fmt"
	"math"
	"sort"
	"time"

	"chunkstore/internal/chunk"
	"chunkstore/internal/component"
	"chunkstore/internal/eventbus"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

// GarbageCollectionTarget selects how aggressively GC should run.
type GarbageCollectionTarget struct {
	everything bool
	fraction   float64
}

// DropAtLeastFraction targets dropping at least the given fraction (in
// [0,1]) of the store's current temporal heap size.
func DropAtLeastFraction(fraction float64) GarbageCollectionTarget {
	return GarbageCollectionTarget{fraction: fraction}
}

// Everything targets dropping every unprotected temporal chunk.
func Everything() GarbageCollectionTarget { return GarbageCollectionTarget{everything: true} }

func (t GarbageCollectionTarget) String() string {
	if t.everything {
		return "Everything"
	}
	return fmt.Sprintf("DropAtLeast(%.3f%%)", t.fraction*100)
}

// GarbageCollectionOptions configures one GC pass (spec §4.6).
type GarbageCollectionOptions struct {
	Target GarbageCollectionTarget

	// TimeBudget bounds how long the pass may run; zero means unbounded.
	// At most a quarter of it is spent marking, leaving the rest for the
	// sweep.
	TimeBudget time.Duration

	// ProtectLatest preserves, per (entity, timeline, descriptor), the
	// union of the chunk(s) under the descriptor's largest per_start_time
	// key and largest per_end_time key, up to this many distinct chunks. It only guarantees
	// that a latest-at query at +inf is unaffected; arbitrary
	// point-in-time latest-at results may still change.
	ProtectLatest int

	// DontProtectComponents and DontProtectTimelines exclude matching
	// descriptors/timelines from ProtectLatest's protection, letting a
	// caller force-collect specific columns even at protect_latest > 0.
	DontProtectComponents []component.Descriptor
	DontProtectTimelines  []timeline.Timeline

	// GCTimeless, if set, allows static chunks to be collected under
	// either target. The original store never collects static data at all;
	// this is an opt-in extension for callers that explicitly want to
	// drop timeless state (e.g. wiping a blueprint).
	GCTimeless bool
}

// GarbageCollect runs one GC pass and returns the Deletion events it
// produced plus the before/after stats delta (spec §4.6, property P10).
// Static chunks are never collected unless GCTimeless is set.
func (s *Store) GarbageCollect(opts GarbageCollectionOptions) ([]eventbus.Event, Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gcID.Add(1)
	before := s.statsLocked()

	protected := s.findProtectedChunkIDsLocked(opts)

	var bytesToDrop float64
	if opts.Target.everything {
		bytesToDrop = math.Inf(1)
	} else {
		bytesToDrop = float64(s.stats.Temporal.HeapBytes) * clamp01(opts.Target.fraction)
	}

	events := s.sweepLocked(opts, bytesToDrop, protected)

	after := s.statsLocked()
	return events, before.Sub(after)
}

func (s *Store) statsLocked() Stats {
	st := s.stats
	st.EventCount = int64(s.eventID.Load())
	return st
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// findProtectedChunkIDsLocked computes, per (entity, timeline, descriptor)
// bucket not excluded by DontProtect*, the union of the chunk ids holding
// the bucket's latest per_start_time and per_end_time key, truncated to
// ProtectLatest chunks (spec §4.6).
func (s *Store) findProtectedChunkIDsLocked(opts GarbageCollectionOptions) map[rowid.ChunkID]bool {
	protected := make(map[rowid.ChunkID]bool)
	if opts.ProtectLatest <= 0 {
		return protected
	}

	excludedTimelines := make(map[timeline.Timeline]bool, len(opts.DontProtectTimelines))
	for _, tl := range opts.DontProtectTimelines {
		excludedTimelines[tl] = true
	}
	excludedComponents := make(map[component.Descriptor]bool, len(opts.DontProtectComponents))
	for _, d := range opts.DontProtectComponents {
		excludedComponents[d] = true
	}

	for _, byTimeline := range s.ix.temporalChunkIDsPerEntity {
		for tl, byDescriptor := range byTimeline {
			if excludedTimelines[tl] {
				continue
			}
			for d, bucket := range byDescriptor {
				if excludedComponents[d] {
					continue
				}
				ids := map[rowid.ChunkID]bool{}
				if _, val, ok := bucket.perStartTime.Max(); ok {
					for id := range val {
						ids[id] = true
					}
				}
				if _, val, ok := bucket.perEndTime.Max(); ok {
					for id := range val {
						ids[id] = true
					}
				}
				for id := range truncateChunkIDs(ids, opts.ProtectLatest) {
					protected[id] = true
				}
			}
		}
	}
	return protected
}

// truncateChunkIDs returns at most n ids from ids, in a deterministic
// (ascending ChunkID) order so ProtectLatest is reproducible across runs.
func truncateChunkIDs(ids map[rowid.ChunkID]bool, n int) map[rowid.ChunkID]bool {
	if len(ids) <= n {
		return ids
	}
	list := make([]rowid.ChunkID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Compare(list[j]) < 0 })
	out := make(map[rowid.ChunkID]bool, n)
	for _, id := range list[len(list)-n:] {
		out[id] = true
	}
	return out
}

// sweepLocked marks chunks for removal in ascending min-RowId order --
// the same order the original store uses, which drops data fairly across
// entities and timelines regardless of wall-clock skew -- and removes
// them via removeChunkLocked, the same surgical index removal compaction
// uses. Dangling chunk ids (present in chunk_ids_per_min_row_id but not
// in chunks_per_chunk_id, which should never happen) are cleaned up
// defensively and are exempt from the time budget.
func (s *Store) sweepLocked(opts GarbageCollectionOptions, bytesToDrop float64, protected map[rowid.ChunkID]bool) []eventbus.Event {
	var events []eventbus.Event
	start := time.Now()
	markBudget := opts.TimeBudget / 4

	var toRemove []*chunk.Chunk
	var danglingKeys []rowid.RowID

	s.ix.chunkIDsPerMinRowID.Ascend(func(minID rowid.RowID, ids []rowid.ChunkID) bool {
		anyDangling := false
		for _, id := range ids {
			if protected[id] {
				continue
			}
			c, ok := s.ix.chunksPerChunkID[id]
			if !ok {
				anyDangling = true
				continue
			}
			if c.IsStatic() && !opts.GCTimeless {
				continue
			}
			toRemove = append(toRemove, c)
			bytesToDrop -= float64(c.TotalSizeBytes())
		}
		if anyDangling {
			danglingKeys = append(danglingKeys, minID)
		}
		if opts.TimeBudget > 0 && time.Since(start) >= markBudget {
			return false
		}
		return bytesToDrop > 0
	})

	// Dangling entries (a min-RowId bucket referencing a chunk id with no
	// backing Chunk) should never occur; clean them up defensively,
	// exempt from the time budget, same as the original.
	for _, minID := range danglingKeys {
		ids, ok := s.ix.chunkIDsPerMinRowID.Get(minID)
		if !ok {
			continue
		}
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := s.ix.chunksPerChunkID[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			s.ix.chunkIDsPerMinRowID.Delete(minID)
		} else {
			s.ix.chunkIDsPerMinRowID.Set(minID, kept)
		}
	}

	for _, c := range toRemove {
		events = append(events, s.removeChunkLocked(c))
		if opts.TimeBudget > 0 && time.Since(start) >= opts.TimeBudget {
			break
		}
	}

	return events
}
