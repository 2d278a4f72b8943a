package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/domino14/tsume/shogi"
)

const bignum = 1<<63 - 2

// maxHandCount is one more than the most pieces of any kind a reserve can
// hold (18 pawns).
const maxHandCount = 19

// Zobrist generates position keys for mate puzzles.
// https://en.wikipedia.org/wiki/Zobrist_hashing
// The reserve is hashed by count, like a rack, so holding two pieces of one
// kind never cancels out to holding none.
type Zobrist struct {
	attackerTurn uint64

	posTable  [shogi.NumSquares][shogi.NumPieceCodes]uint64
	handTable [shogi.NumHandKinds][maxHandCount]uint64
}

type source interface {
	Uint64n(n uint64) uint64
}

type globalSource struct{}

func (globalSource) Uint64n(n uint64) uint64 { return frand.Uint64n(n) }

// New returns a Zobrist whose keys are fully determined by seed.
func New(seed uint64) *Zobrist {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], ^seed)
	z := &Zobrist{}
	z.initialize(frand.NewCustom(key[:], 1024, 12))
	return z
}

// NewRandom returns a Zobrist with keys drawn from the system CSPRNG.
func NewRandom() *Zobrist {
	z := &Zobrist{}
	z.initialize(globalSource{})
	return z
}

func (z *Zobrist) initialize(rng source) {
	for i := 0; i < shogi.NumSquares; i++ {
		for j := 0; j < shogi.NumPieceCodes; j++ {
			z.posTable[i][j] = rng.Uint64n(bignum) + 1
		}
	}
	for i := 0; i < shogi.NumHandKinds; i++ {
		for j := 0; j < maxHandCount; j++ {
			z.handTable[i][j] = rng.Uint64n(bignum) + 1
		}
	}
	z.attackerTurn = rng.Uint64n(bignum) + 1
}

// Hash computes the key of p from scratch.
func (z *Zobrist) Hash(p *shogi.Position) uint64 {
	key := uint64(0)
	for sq := shogi.Coord(0); sq < shogi.NumSquares; sq++ {
		pc := p.At(sq)
		if pc.IsEmpty() {
			continue
		}
		key ^= z.posTable[sq][pc]
	}
	r := p.Reserve()
	for k := shogi.Pawn; k <= shogi.Rook; k++ {
		key ^= z.handTable[k][r[k]]
	}
	if p.SideToMove() == shogi.Attacker {
		key ^= z.attackerTurn
	}
	return key
}

// AddMove returns the key after mover plays m. handBefore is the mover's
// reserve count of the affected kind before the move; only attacker drops
// and attacker captures change the reserve.
func (z *Zobrist) AddMove(key uint64, m shogi.Move, mover shogi.Side, handBefore int) uint64 {
	if m.IsDrop() {
		key ^= z.handTable[m.Piece][handBefore]
		key ^= z.handTable[m.Piece][handBefore-1]
		key ^= z.posTable[m.To][shogi.NewPiece(m.Piece, mover)]
	} else {
		key ^= z.posTable[m.From][shogi.NewPiece(m.Piece, mover)]
		if m.IsCapture() {
			key ^= z.posTable[m.To][shogi.NewPiece(m.Captured, mover.Opponent())]
			if mover == shogi.Attacker {
				k := m.Captured.Demote()
				key ^= z.handTable[k][handBefore]
				key ^= z.handTable[k][handBefore+1]
			}
		}
		key ^= z.posTable[m.To][shogi.NewPiece(m.Result(), mover)]
	}
	// The side to move always alternates.
	key ^= z.attackerTurn
	return key
}
