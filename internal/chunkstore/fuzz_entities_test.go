package chunkstore

import (
	"context"
	"testing"

	petname "github.com/dustinkirkland/golang-petname"

	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/timeline"
)

// TestLatestAtAcrossManyEntitiesIsIndependent inserts one temporal chunk
// per entity under a batch of distinct, human-readable fixture names and
// checks that LatestAt for one entity never leaks another's data -- the
// entity-keyed indexes must not collide just because insertion order or
// RowId ranges overlap across entities.
func TestLatestAtAcrossManyEntitiesIsIndependent(t *testing.T) {
	s := newTestStore()

	const n = 12
	entities := make([]entitypath.Path, n)
	for i := 0; i < n; i++ {
		entities[i] = entitypath.Parse("world/" + petname.Generate(2, "-"))
	}

	for i, e := range entities {
		c := buildTemporalChunk(t, e, []int64{1, 2}, []int{i*10 + 1, i*10 + 2})
		if _, err := s.InsertChunk(c); err != nil {
			t.Fatalf("insert entity %d: %v", i, err)
		}
	}

	for i, e := range entities {
		res, err := s.LatestAt(context.Background(), tlFrame, timeline.FromNanos(2), e, []component.Descriptor{posDesc})
		if err != nil {
			t.Fatalf("LatestAt entity %d: %v", i, err)
		}
		r, ok := res[posDesc]
		if !ok {
			t.Fatalf("entity %d: expected a result", i)
		}
		cell, _ := r.Chunk.Component(posDesc)
		want := i*10 + 2
		if got := cell.Rows[r.RowIndex][0]; got != want {
			t.Fatalf("entity %d: value = %v, want %d", i, got, want)
		}
	}
}
