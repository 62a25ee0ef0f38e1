package chunkstore

// PartitionStats is a set of running counters for one partition (static or
// temporal) of the store.
type PartitionStats struct {
	ChunkCount int64
	RowCount   int64
	HeapBytes  int64
}

func (p PartitionStats) add(c PartitionStats) PartitionStats {
	return PartitionStats{
		ChunkCount: p.ChunkCount + c.ChunkCount,
		RowCount:   p.RowCount + c.RowCount,
		HeapBytes:  p.HeapBytes + c.HeapBytes,
	}
}

func (p PartitionStats) sub(c PartitionStats) PartitionStats {
	return PartitionStats{
		ChunkCount: p.ChunkCount - c.ChunkCount,
		RowCount:   p.RowCount - c.RowCount,
		HeapBytes:  p.HeapBytes - c.HeapBytes,
	}
}

// Stats is a point-in-time snapshot of the store's running counters,
// partitioned into static and temporal as spec §3 requires, plus the
// cumulative event count.
type Stats struct {
	Static     PartitionStats
	Temporal   PartitionStats
	EventCount int64
}

// Delta is the signed difference of two Stats snapshots, used to report
// what a GC pass removed (spec §4.6, property P10).
type Delta struct {
	Static   PartitionStats
	Temporal PartitionStats
}

// Sub returns s-other as a Delta, e.g. statsBefore.Sub(statsAfter) after a
// GC pass removes chunks.
func (s Stats) Sub(other Stats) Delta {
	return Delta{
		Static:   s.Static.sub(other.Static),
		Temporal: s.Temporal.sub(other.Temporal),
	}
}
