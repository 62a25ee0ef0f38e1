package chunk

import (
	"errors"
	"fmt"

	"chunkstore/internal/component"
	"chunkstore/internal/rowid"
)

// Sentinel errors returned (wrapped) by Builder.Build. Callers should use
// errors.Is against these rather than matching error strings.
var (
	ErrInvalidClusteringComponent = errors.New("chunk: clustering component is unsorted or contains duplicates")
	ErrSparseClusteringComponent  = errors.New("chunk: clustering component has a null row")
	ErrUnalignedColumns           = errors.New("chunk: columns do not share the row count")
	ErrEmptyChunk                 = errors.New("chunk: zero rows")
	ErrRowIDsNotIncreasing        = errors.New("chunk: row ids are not strictly increasing")
)

// InvalidClusteringComponentError reports which descriptor violated the
// sort/uniqueness requirement for a clustering column.
type InvalidClusteringComponentError struct {
	Descriptor component.Descriptor
}

func (e *InvalidClusteringComponentError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidClusteringComponent, e.Descriptor)
}

func (e *InvalidClusteringComponentError) Unwrap() error { return ErrInvalidClusteringComponent }

// SparseClusteringComponentError reports which descriptor had a null row
// where the clustering column requires a value on every row.
type SparseClusteringComponentError struct {
	Descriptor component.Descriptor
}

func (e *SparseClusteringComponentError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSparseClusteringComponent, e.Descriptor)
}

func (e *SparseClusteringComponentError) Unwrap() error { return ErrSparseClusteringComponent }

// UnalignedColumnsError reports the descriptor (or timeline) whose column
// length disagreed with the chunk's row count.
type UnalignedColumnsError struct {
	Column string
	Got    int
	Want   int
}

func (e *UnalignedColumnsError) Error() string {
	return fmt.Sprintf("%v: %s has %d rows, want %d", ErrUnalignedColumns, e.Column, e.Got, e.Want)
}

func (e *UnalignedColumnsError) Unwrap() error { return ErrUnalignedColumns }

// RowIDsNotIncreasingError identifies the first offending row.
type RowIDsNotIncreasingError struct {
	Index int
	Prev  rowid.RowID
	Got   rowid.RowID
}

func (e *RowIDsNotIncreasingError) Error() string {
	return fmt.Sprintf("%v: row %d (%s) does not follow %s", ErrRowIDsNotIncreasing, e.Index, e.Got, e.Prev)
}

func (e *RowIDsNotIncreasingError) Unwrap() error { return ErrRowIDsNotIncreasing }
