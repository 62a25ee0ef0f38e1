// Package rowid implements the 128-bit time-ordered identifiers used
// throughout the store: RowID (uniquely identifies a row across the whole
// store) and ChunkID (uniquely identifies a chunk). Both share the same
// layout -- an 8-byte big-endian wall-clock nanosecond prefix followed by an
// 8-byte big-endian monotonic counter -- so that byte-order comparison is
// also time order.
package rowid

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// idEncoding is base32hex (RFC 4648) lowercase without padding. The alphabet
// 0-9a-v preserves lexicographic sort order, so string comparison of the
// encoded form agrees with byte comparison of the underlying id.
var idEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

const idLen = 16
const encodedLen = 26 // ceil(128 bits / 5 bits-per-char)

// ID is the shared 128-bit representation behind RowID and ChunkID.
type ID [idLen]byte

func newID(nanos, counter uint64) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:8], nanos)
	binary.BigEndian.PutUint64(id[8:], counter)
	return id
}

// Nanos returns the wall-clock nanosecond prefix the id was minted with.
func (id ID) Nanos() uint64 { return binary.BigEndian.Uint64(id[:8]) }

// Counter returns the monotonic counter component of the id.
func (id ID) Counter() uint64 { return binary.BigEndian.Uint64(id[8:]) }

// Time returns the wall-clock time the id was minted at.
func (id ID) Time() time.Time { return time.Unix(0, int64(id.Nanos())) }

// Compare returns -1, 0 or 1 as id is less than, equal to, or greater than
// other. Comparison is by the full 128-bit value, which is equivalent to
// (Nanos, Counter) lexicographic order.
func (id ID) Compare(other ID) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String returns the 26-character lowercase base32hex representation.
func (id ID) String() string {
	return strings.ToLower(idEncoding.EncodeToString(id[:]))
}

// parse decodes a 26-character base32hex string into an ID.
func parse(value string) (ID, error) {
	if len(value) != encodedLen {
		return ID{}, fmt.Errorf("rowid: invalid id length %d (want %d)", len(value), encodedLen)
	}
	decoded, err := idEncoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		return ID{}, fmt.Errorf("rowid: invalid id %q: %w", value, err)
	}
	var id ID
	copy(id[:], decoded)
	return id, nil
}

// generator mints strictly-increasing IDs within a process. It backs both
// the RowID and ChunkID generators below; each keeps an independent
// sequence so that row ids and chunk ids never collide by construction even
// though they share a layout.
type generator struct {
	mu      sync.Mutex
	lastNs  uint64
	counter uint64
}

// next returns an id strictly greater than every id previously returned by
// next on this generator. Ids from random share the wall-clock prefix but
// not the counter, so next is not ordered against them within one
// nanosecond.
func (g *generator) next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ns := uint64(time.Now().UnixNano())
	if ns <= g.lastNs {
		ns = g.lastNs
		g.counter++
	} else {
		g.lastNs = ns
		g.counter = 0
	}
	return newID(ns, g.counter)
}

// random returns a fresh id whose wall-clock prefix is >= every prefix this
// generator has previously issued, but whose counter is randomized rather
// than sequential. Used when ordering against previously-issued ids matters
// less than avoiding a shared mutable counter (e.g. synthesizing ids for
// tests or for data replayed out of band).
func (g *generator) random() ID {
	g.mu.Lock()
	ns := uint64(time.Now().UnixNano())
	if ns < g.lastNs {
		ns = g.lastNs
	} else {
		g.lastNs = ns
	}
	g.mu.Unlock()

	return newID(ns, rand.Uint64())
}
