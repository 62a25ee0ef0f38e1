package chunk

import (
	"errors"
	"testing"

	"chunkstore/internal/component"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/rowid"
	"chunkstore/internal/timeline"
)

var frameNr = timeline.New("frame_nr", timeline.Sequence)

func TestBuildRejectsEmptyChunk(t *testing.T) {
	_, err := NewBuilder(entitypath.Parse("a")).Build()
	if !errors.Is(err, ErrEmptyChunk) {
		t.Fatalf("err = %v, want ErrEmptyChunk", err)
	}
}

func TestBuildRejectsNonIncreasingRowIDs(t *testing.T) {
	r1 := rowid.NextRowID()
	r2 := rowid.NextRowID()
	b := NewBuilder(entitypath.Parse("a")).
		AppendRow(r2, map[timeline.Timeline]timeline.TimeInt{frameNr: 1}, nil).
		AppendRow(r1, map[timeline.Timeline]timeline.TimeInt{frameNr: 2}, nil)
	_, err := b.Build()
	var target *RowIDsNotIncreasingError
	if !errors.As(err, &target) {
		t.Fatalf("err = %v, want RowIDsNotIncreasingError", err)
	}
}

func TestBuildStaticChunkHasNoTimelines(t *testing.T) {
	point := component.NewField("Point")
	c, err := NewBuilder(entitypath.Parse("a")).
		AppendRow(rowid.NextRowID(), nil, map[component.Descriptor]Cell{point: {1.0, 2.0}}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !c.IsStatic() {
		t.Fatal("expected static chunk")
	}
}

func TestBuildComputesComponentTimeRange(t *testing.T) {
	point := component.NewField("MyPoint")
	idx := component.NewField("MyIndex")
	r1, r2, r3 := rowid.NextRowID(), rowid.NextRowID(), rowid.NextRowID()

	b := NewBuilder(entitypath.Parse("a")).
		AppendRow(r1, map[timeline.Timeline]timeline.TimeInt{frameNr: 1}, map[component.Descriptor]Cell{point: {"p1"}}).
		AppendRow(r2, map[timeline.Timeline]timeline.TimeInt{frameNr: 2}, map[component.Descriptor]Cell{point: {"p2"}}).
		AppendRow(r3, map[timeline.Timeline]timeline.TimeInt{frameNr: 3}, map[component.Descriptor]Cell{point: {"p3"}, idx: {InstanceKey(3)}})

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pr, ok := c.ComponentTimeRange(frameNr, point)
	if !ok || pr.Min != 1 || pr.Max != 3 {
		t.Fatalf("point range = %v, ok=%v", pr, ok)
	}
	ir, ok := c.ComponentTimeRange(frameNr, idx)
	if !ok || ir.Min != 3 || ir.Max != 3 {
		t.Fatalf("index range = %v, ok=%v, want [3,3]", ir, ok)
	}
}

func TestBuildRejectsSparseClusteringComponent(t *testing.T) {
	idx := component.NewField("InstanceKey")
	point := component.NewField("Point")
	b := NewBuilder(entitypath.Parse("a")).
		SetClusteringComponent(idx).
		AppendRow(rowid.NextRowID(), map[timeline.Timeline]timeline.TimeInt{frameNr: 1}, map[component.Descriptor]Cell{
			idx: {InstanceKey(0)}, point: {1.0},
		}).
		AppendRow(rowid.NextRowID(), map[timeline.Timeline]timeline.TimeInt{frameNr: 2}, map[component.Descriptor]Cell{
			point: {2.0},
		})
	_, err := b.Build()
	if !errors.Is(err, ErrSparseClusteringComponent) {
		t.Fatalf("err = %v, want ErrSparseClusteringComponent", err)
	}
}

func TestBuildRejectsUnsortedClusteringComponent(t *testing.T) {
	idx := component.NewField("InstanceKey")
	b := NewBuilder(entitypath.Parse("a")).
		SetClusteringComponent(idx).
		AppendRow(rowid.NextRowID(), map[timeline.Timeline]timeline.TimeInt{frameNr: 1}, map[component.Descriptor]Cell{
			idx: {InstanceKey(2), InstanceKey(1)},
		})
	_, err := b.Build()
	if !errors.Is(err, ErrInvalidClusteringComponent) {
		t.Fatalf("err = %v, want ErrInvalidClusteringComponent", err)
	}
}

func TestBuildRejectsDuplicateClusteringKeys(t *testing.T) {
	idx := component.NewField("InstanceKey")
	b := NewBuilder(entitypath.Parse("a")).
		SetClusteringComponent(idx).
		AppendRow(rowid.NextRowID(), map[timeline.Timeline]timeline.TimeInt{frameNr: 1}, map[component.Descriptor]Cell{
			idx: {InstanceKey(1), InstanceKey(1)},
		})
	_, err := b.Build()
	if !errors.Is(err, ErrInvalidClusteringComponent) {
		t.Fatalf("err = %v, want ErrInvalidClusteringComponent", err)
	}
}

func TestWithComponentBatchesAlignment(t *testing.T) {
	point := component.NewField("Point")
	ids := []rowid.RowID{rowid.NextRowID(), rowid.NextRowID()}
	b := NewBuilder(entitypath.Parse("a")).WithComponentBatches(
		ids,
		map[timeline.Timeline][]timeline.TimeInt{frameNr: {1, 2}},
		map[component.Descriptor][]Cell{point: {{1.0}}},
	)
	_, err := b.Build()
	var target *UnalignedColumnsError
	if !errors.As(err, &target) {
		t.Fatalf("err = %v, want UnalignedColumnsError", err)
	}
}
