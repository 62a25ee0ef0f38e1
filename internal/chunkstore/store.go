package chunkstore

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"chunkstore/internal/entitypath"
	"chunkstore/internal/eventbus"
	"chunkstore/internal/logging"
	"chunkstore/internal/querycoalesce"
)

// Store owns every chunk inserted under one store id and the secondary
// indexes that make latest-at and range resolution cheap. It is a
// single-writer, many-reader structure: mutations take mu for writing,
// queries take it for reading (spec §5).
type Store struct {
	id     uuid.UUID
	kind   Kind
	config Config
	logger *slog.Logger

	mu  sync.RWMutex
	ix  *indexes
	bus *eventbus.Bus

	// latestAtGroup coalesces concurrent LatestAt calls that land on the
	// exact same (timeline, time, entity, descriptor): a burst of readers
	// hitting a hot latest-at during a busy polling loop shares one
	// bucket walk instead of each re-walking the same buckets for an
	// identical answer. Each caller still takes the read lock itself.
	latestAtGroup querycoalesce.Group[latestAtKey, latestAtOutcome]

	stats Stats

	insertID atomic.Uint64
	queryID  atomic.Uint64
	gcID     atomic.Uint64
	eventID  atomic.Uint64
}

// New creates an empty store. logger may be nil (discarded).
func New(id uuid.UUID, kind Kind, config Config, logger *slog.Logger) *Store {
	logger = logging.Default(logger).With("component", "chunkstore", "store_id", id, "kind", kind)
	return &Store{
		id:     id,
		kind:   kind,
		config: config.withDefaults(),
		logger: logger,
		ix:     newIndexes(),
		bus:    eventbus.New(logger),
	}
}

// ID returns the store's identity.
func (s *Store) ID() uuid.UUID { return s.id }

// Kind returns whether this store plays the Recording or Blueprint role.
func (s *Store) Kind() Kind { return s.kind }

// Generation returns (insert_id, gc_id), a coarse cache-invalidation key
// external subscribers can sample without taking the read lock (spec §5,
// §9).
func (s *Store) Generation() eventbus.Generation {
	return eventbus.Generation{InsertID: s.insertID.Load(), GCID: s.gcID.Load()}
}

// Stats returns a snapshot of the running counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.EventCount = int64(s.eventID.Load())
	return st
}

// Subscribe registers fn to receive every future ChunkStoreEvent whose
// chunk's entity path matches filter (nil matches everything). Returns an
// idempotent unsubscribe function.
func (s *Store) Subscribe(filter *entitypath.Glob, fn func(eventbus.Event)) func() {
	return s.bus.Subscribe(filter, fn)
}

func (s *Store) nextEventID() uint64 { return s.eventID.Add(1) - 1 }
