package tsume

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tsume/shogi"
)

func TestTTableEntry(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	// Assure minimum size
	tt.Reset(0)
	is.Equal(tt.maxEntries, minEntries)

	path := []shogi.Move{shogi.NewDrop(shogi.Gold, shogi.NewCoord(1, 4))}
	tt.store(9409641586937047728, TableEntry{path: path, depth: 3, flag: TTExact})

	te := tt.lookup(9409641586937047728)
	is.True(te.valid())
	is.Equal(te.depth, int16(3))
	is.Equal(te.flag, uint8(TTExact))
	m, ok := te.hashMove()
	is.True(ok)
	is.Equal(m, path[0])

	te = tt.lookup(9409641586937047728 + 1)
	is.Equal(te.valid(), false)
	is.Equal(tt.lookups.Load(), uint64(2))
	is.Equal(tt.hits.Load(), uint64(1))
	is.Equal(tt.created.Load(), uint64(1))

	// no-mate entries carry no hash move
	tt.store(1, TableEntry{depth: 5, flag: TTLower})
	_, ok = tt.lookup(1).hashMove()
	is.True(!ok)

	tt.Reset(0)
	is.Equal(tt.Len(), 0)
	is.Equal(tt.lookups.Load(), uint64(0))
}

func TestTTableClearsWhenFull(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(0)
	tt.maxEntries = 2
	tt.store(1, TableEntry{flag: TTLower})
	tt.store(2, TableEntry{flag: TTLower})
	// overwriting an existing key never clears
	tt.store(2, TableEntry{flag: TTLower, depth: 3})
	is.Equal(tt.clears.Load(), uint64(0))
	is.Equal(tt.Len(), 2)

	tt.store(3, TableEntry{flag: TTLower})
	is.Equal(tt.clears.Load(), uint64(1))
	is.Equal(tt.Len(), 1)
	is.True(tt.lookup(3).valid())
	is.True(!tt.lookup(1).valid())
}

func TestExactPaths(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(0)
	tt.store(1, TableEntry{flag: TTLower})
	tt.store(2, TableEntry{flag: TTExact, path: []shogi.Move{}})
	tt.store(3, TableEntry{flag: TTUpper, path: []shogi.Move{shogi.NewDrop(shogi.Pawn, 10)}})
	var keys []uint64
	tt.exactPaths(func(k uint64, _ []shogi.Move) { keys = append(keys, k) })
	is.Equal(keys, []uint64{2})
}
