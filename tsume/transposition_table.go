package tsume

import (
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tsume/shogi"
)

const (
	// TTExact: the path is the shortest mate (OR node) or the longest
	// resistance (AND node).
	TTExact = 0x01
	// TTLower: no mate within depth plies.
	TTLower = 0x02
	// TTUpper: the path mates, but a shorter mate may exist.
	TTUpper = 0x03
)

// entrySize is a rough per-entry cost including map overhead and a short
// path; it only sizes the table.
const entrySize = 96

// minEntries keeps small machines and tiny fractions usable.
const minEntries = 1 << 16

type TableEntry struct {
	path  []shogi.Move
	depth int16
	flag  uint8
}

func (t TableEntry) valid() bool {
	return t.flag != 0
}

// hashMove is the first move of the stored path, if any.
func (t TableEntry) hashMove() (shogi.Move, bool) {
	if len(t.path) == 0 {
		return shogi.Move{}, false
	}
	return t.path[0], true
}

// TranspositionTable maps position keys to search results. It belongs to a
// single solve and is not safe for concurrent use.
type TranspositionTable struct {
	table      map[uint64]TableEntry
	maxEntries int
	created    atomic.Uint64
	lookups    atomic.Uint64
	hits       atomic.Uint64
	clears     atomic.Uint64
}

func (t *TranspositionTable) lookup(key uint64) TableEntry {
	t.lookups.Add(1)
	e, ok := t.table[key]
	if !ok {
		return TableEntry{}
	}
	t.hits.Add(1)
	return e
}

func (t *TranspositionTable) store(key uint64, e TableEntry) {
	if len(t.table) >= t.maxEntries {
		if _, ok := t.table[key]; !ok {
			log.Debug().Int("entries", len(t.table)).Msg("transposition-table-full-clearing")
			clear(t.table)
			t.clears.Add(1)
		}
	}
	t.table[key] = e
	t.created.Add(1)
}

// Reset empties the table and sizes it to a fraction of system memory.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desired := int(fractionOfMemory * float64(totalMem) / entrySize)
	t.maxEntries = max(desired, minEntries)
	if t.table == nil {
		t.table = make(map[uint64]TableEntry)
	} else {
		clear(t.table)
	}
	log.Debug().Int("max-entries", t.maxEntries).
		Int("estimated-total-memory-bytes", t.maxEntries*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.clears.Store(0)
}

// Len is the number of entries currently held.
func (t *TranspositionTable) Len() int {
	return len(t.table)
}

// exactPaths calls fn for every exact entry.
func (t *TranspositionTable) exactPaths(fn func(key uint64, path []shogi.Move)) {
	for k, e := range t.table {
		if e.flag == TTExact {
			fn(k, e.path)
		}
	}
}
