package tsume

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/tsume/movegen"
	"github.com/domino14/tsume/shogi"
)

// LegalMoves replays prefix from root and returns the moves available at the
// position reached: checks when the attacker is to move, evasions when the
// defender is. A pawn drop that mates is not a legal move and is left out.
// root is not modified.
func LegalMoves(root *shogi.Position, prefix []shogi.Move) ([]shogi.Move, error) {
	pos, err := Replay(root, prefix)
	if err != nil {
		return nil, err
	}
	return legalHere(movegen.NewGenerator(), pos), nil
}

// Replay returns a copy of root with prefix played, checking each move.
func Replay(root *shogi.Position, prefix []shogi.Move) (*shogi.Position, error) {
	pos := root.Copy()
	gen := movegen.NewGenerator()
	for i, m := range prefix {
		if !lo.Contains(legalHere(gen, pos), m) {
			return nil, fmt.Errorf("%w: ply %d %s", shogi.ErrIllegalMove, i, m)
		}
		pos.Play(m)
	}
	return pos, nil
}

func legalHere(gen *movegen.Generator, pos *shogi.Position) []shogi.Move {
	moves := gen.GenLegal(pos, nil)
	if pos.SideToMove() != shogi.Attacker {
		return moves
	}
	return lo.Reject(moves, func(m shogi.Move, _ int) bool {
		return m.IsPawnDrop() && pawnDropMates(gen, pos, m)
	})
}

func pawnDropMates(gen *movegen.Generator, pos *shogi.Position, m shogi.Move) bool {
	pos.Play(m)
	defer pos.Unplay()
	return len(gen.GenEvasions(pos, nil)) == 0
}

// ParseLine resolves the USI moves in usis one after another from root,
// checking each against the position it is played in.
func ParseLine(root *shogi.Position, usis []string) ([]shogi.Move, error) {
	pos := root.Copy()
	gen := movegen.NewGenerator()
	line := make([]shogi.Move, 0, len(usis))
	for i, s := range usis {
		m, err := pos.ParseMove(s)
		if err != nil {
			return nil, err
		}
		if !lo.Contains(legalHere(gen, pos), m) {
			return nil, fmt.Errorf("%w: ply %d %s", shogi.ErrIllegalMove, i, m)
		}
		pos.Play(m)
		line = append(line, m)
	}
	return line, nil
}
