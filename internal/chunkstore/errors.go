package chunkstore

import (
	"errors"
	"fmt"

	"chunkstore/internal/component"
	"chunkstore/internal/rowid"
)

// ErrReusedRowID is the sentinel wrapped by ReusedRowIDError; use
// errors.Is(err, ErrReusedRowID) to test for it without caring which row.
var ErrReusedRowID = errors.New("chunkstore: row id already present in the store")

// ErrTypeMismatch is the sentinel wrapped by TypeMismatchError.
var ErrTypeMismatch = errors.New("chunkstore: component type mismatch with a previously inserted chunk")

// ReusedRowIDError reports that an inserted chunk contained a row id that
// some other chunk already owns (spec invariant I5).
type ReusedRowIDError struct {
	RowID rowid.RowID
}

func (e *ReusedRowIDError) Error() string {
	return fmt.Sprintf("%v: %s", ErrReusedRowID, e.RowID)
}

func (e *ReusedRowIDError) Unwrap() error { return ErrReusedRowID }

// TypeMismatchError reports that a chunk declared a ComponentType for a
// (archetype, field) column that disagrees with the type recorded by an
// earlier chunk.
type TypeMismatchError struct {
	Descriptor component.Descriptor
	Expected   component.Type
	Actual     component.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%v: %s: expected %s, got %s", ErrTypeMismatch, e.Descriptor, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
