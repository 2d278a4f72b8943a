// Package movegen generates tsume-legal moves. The attacker may only play
// moves that give check; the defender may only play moves that leave its
// king unattacked. Moves are returned best-first when ordering is on.
package movegen

import (
	"sort"

	"github.com/domino14/tsume/shogi"
)

// Ordering weights. They only affect the order moves are tried in.
const (
	CaptureBonus   = 20
	PromotionBonus = 8
	CheckBonus     = 30
)

// Generator builds move lists. It keeps scratch space for scores, so one
// Generator must not be shared between goroutines.
type Generator struct {
	ordering bool
	scores   []int
}

func NewGenerator() *Generator {
	return &Generator{ordering: true}
}

// SetMoveOrdering turns best-first ordering on or off. With ordering off
// moves come out in generation order.
func (g *Generator) SetMoveOrdering(o bool) {
	g.ordering = o
}

// GenLegal appends the tsume-legal moves for the side to move to buf and
// returns the extended slice.
func (g *Generator) GenLegal(p *shogi.Position, buf []shogi.Move) []shogi.Move {
	if p.SideToMove() == shogi.Attacker {
		return g.GenChecks(p, buf)
	}
	return g.GenEvasions(p, buf)
}

// GenChecks appends every attacker move that checks the defender king
// without leaving an attacker king attacked.
func (g *Generator) GenChecks(p *shogi.Position, buf []shogi.Move) []shogi.Move {
	if p.SideToMove() != shogi.Attacker {
		return buf
	}
	start := len(buf)
	buf = genBoardMoves(p, shogi.Attacker, buf)
	buf = genDrops(p, buf)
	return g.filter(p, buf, start, func() bool {
		return p.InCheck(shogi.Defender) && !p.InCheck(shogi.Attacker)
	})
}

// GenEvasions appends every defender move after which the defender king is
// not attacked. Blocks and captures of a checker fall out of this, and under
// double check only king moves survive.
func (g *Generator) GenEvasions(p *shogi.Position, buf []shogi.Move) []shogi.Move {
	if p.SideToMove() != shogi.Defender {
		return buf
	}
	start := len(buf)
	buf = genBoardMoves(p, shogi.Defender, buf)
	return g.filter(p, buf, start, func() bool {
		return !p.InCheck(shogi.Defender)
	})
}

// filter plays each candidate in buf[start:], keeps it if ok holds in the
// resulting position, and scores the survivors.
func (g *Generator) filter(p *shogi.Position, buf []shogi.Move, start int, ok func() bool) []shogi.Move {
	g.scores = g.scores[:0]
	mover := p.SideToMove()
	w := start
	for i := start; i < len(buf); i++ {
		m := buf[i]
		p.Play(m)
		if ok() {
			buf[w] = m
			w++
			if g.ordering {
				g.scores = append(g.scores, score(p, m, mover))
			}
		}
		p.Unplay()
	}
	buf = buf[:w]
	if g.ordering {
		sort.Stable(byScore{buf[start:], g.scores})
	}
	return buf
}

// score is computed with m already played.
func score(p *shogi.Position, m shogi.Move, mover shogi.Side) int {
	s := 0
	if m.IsCapture() {
		s += CaptureBonus + m.Captured.Value() - m.Piece.Value()
	}
	if m.Promote {
		s += PromotionBonus
	}
	if k := p.KingSquare(mover.Opponent()); k != shogi.NoCoord && p.AttacksFrom(m.To, k) {
		s += CheckBonus
	}
	return s
}

type byScore struct {
	moves  []shogi.Move
	scores []int
}

func (b byScore) Len() int           { return len(b.moves) }
func (b byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b byScore) Swap(i, j int) {
	b.moves[i], b.moves[j] = b.moves[j], b.moves[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}

// MoveToFront moves m to the front of moves, shifting the moves before it
// back by one. It reports whether m was found.
func MoveToFront(moves []shogi.Move, m shogi.Move) bool {
	for i := range moves {
		if moves[i] == m {
			copy(moves[1:i+1], moves[:i])
			moves[0] = m
			return true
		}
	}
	return false
}
