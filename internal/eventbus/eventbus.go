// Package eventbus implements the chunk store's synchronous event stream:
// every insert or GC sweep emits Addition/Deletion diffs to registered
// subscribers (spec §4.7). The subscriber registry (id-tagged callbacks
// behind a mutex, removable via the returned unsubscribe closure) follows
// the same shape as a cluster broadcast fan-out, adapted here to dispatch
// in-process rather than over the wire.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"chunkstore/internal/chunk"
	"chunkstore/internal/entitypath"
	"chunkstore/internal/logging"
)

// DiffKind distinguishes an Addition from a Deletion.
type DiffKind int

const (
	Addition DiffKind = iota
	Deletion
)

func (k DiffKind) String() string {
	if k == Addition {
		return "addition"
	}
	return "deletion"
}

// Diff describes one chunk entering or leaving the store.
type Diff struct {
	Kind  DiffKind
	Chunk *chunk.Chunk
}

// Generation is the coarse cache-invalidation key external subscribers
// compare against: (insert_id, gc_id) as of the event.
type Generation struct {
	InsertID uint64
	GCID     uint64
}

// Event is one entry in the store's strictly-increasing event stream.
type Event struct {
	StoreID    uuid.UUID
	Generation Generation
	EventID    uint64
	Diff       Diff
}

type subscriber struct {
	id     uint64
	filter *entitypath.Glob
	fn     func(Event)
}

// Bus dispatches Events synchronously to subscribers registered via
// Subscribe. A subscriber that panics is isolated: panics are recovered and
// logged, never propagated to the writer that triggered the event (spec
// §4.7, §7). Callbacks run inline, so a blocking subscriber blocks Publish.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64
}

// New returns an empty bus. logger may be nil (discarded).
func New(logger *slog.Logger) *Bus {
	return &Bus{logger: logging.Default(logger).With("component", "eventbus")}
}

// Subscribe registers fn to be called for every future event whose chunk's
// entity path matches filter. A nil filter matches everything. Returns a
// function that removes the subscription; safe to call more than once.
func (b *Bus) Subscribe(filter *entitypath.Glob, fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, filter: filter, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every matching subscriber in registration order.
// Delivery is synchronous; a subscriber panic is recovered and logged so
// that one misbehaving subscriber cannot fail the insert or GC call that
// produced the event.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	entity := ev.Diff.Chunk.EntityPath()
	for _, s := range subs {
		if s.filter != nil && !s.filter.Match(entity) {
			continue
		}
		b.dispatchOne(s, ev)
	}
}

func (b *Bus) dispatchOne(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked", "subscriber_id", s.id, "event_id", ev.EventID, "recovered", r)
		}
	}()
	s.fn(ev)
}
