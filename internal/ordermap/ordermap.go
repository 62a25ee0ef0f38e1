// Package ordermap wraps github.com/google/btree into a small ordered
// map keyed by any type with a caller-supplied ordering. The chunk store
// uses it everywhere the spec calls for a map ordered by key: per_start_time
// / per_end_time (ordered by TimeInt) and chunk_ids_per_min_row_id (ordered
// by RowId).
package ordermap

import "github.com/google/btree"

const degree = 32

// Map is an ordered map from K to V backed by a B-tree.
type Map[K any, V any] struct {
	less func(a, b K) bool
	tree *btree.BTreeG[entry[K, V]]
}

type entry[K any, V any] struct {
	key K
	val V
}

// New returns an empty ordered map using less to order keys.
func New[K any, V any](less func(a, b K) bool) *Map[K, V] {
	m := &Map[K, V]{less: less}
	m.tree = btree.NewG(degree, func(a, b entry[K, V]) bool {
		return less(a.key, b.key)
	})
	return m
}

// Set installs or replaces the value at key.
func (m *Map[K, V]) Set(key K, val V) {
	m.tree.ReplaceOrInsert(entry[K, V]{key: key, val: val})
}

// Get returns the value at key, if present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	e, ok := m.tree.Get(entry[K, V]{key: key})
	return e.val, ok
}

// Delete removes key, reporting whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.tree.Delete(entry[K, V]{key: key})
	return ok
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int { return m.tree.Len() }

// Min returns the smallest key and its value.
func (m *Map[K, V]) Min() (key K, val V, ok bool) {
	e, ok := m.tree.Min()
	return e.key, e.val, ok
}

// Max returns the largest key and its value.
func (m *Map[K, V]) Max() (key K, val V, ok bool) {
	e, ok := m.tree.Max()
	return e.key, e.val, ok
}

// Ascend visits every (key, value) pair in ascending key order until fn
// returns false.
func (m *Map[K, V]) Ascend(fn func(key K, val V) bool) {
	m.tree.Ascend(func(e entry[K, V]) bool { return fn(e.key, e.val) })
}

// AscendRange visits (key, value) pairs with greaterOrEqual <= key <
// lessThan, in ascending order.
func (m *Map[K, V]) AscendRange(greaterOrEqual, lessThan K, fn func(key K, val V) bool) {
	m.tree.AscendRange(entry[K, V]{key: greaterOrEqual}, entry[K, V]{key: lessThan}, func(e entry[K, V]) bool {
		return fn(e.key, e.val)
	})
}

// Descend visits every (key, value) pair in descending key order until fn
// returns false.
func (m *Map[K, V]) Descend(fn func(key K, val V) bool) {
	m.tree.Descend(func(e entry[K, V]) bool { return fn(e.key, e.val) })
}

// DescendLessOrEqual visits (key, value) pairs with key <= pivot, in
// descending order, until fn returns false.
func (m *Map[K, V]) DescendLessOrEqual(pivot K, fn func(key K, val V) bool) {
	m.tree.DescendLessOrEqual(entry[K, V]{key: pivot}, func(e entry[K, V]) bool {
		return fn(e.key, e.val)
	})
}
