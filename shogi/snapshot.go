package shogi

import "fmt"

// Snapshot is a board as handed over by a board editor: a 9x9 grid of
// optional pieces (indexed [row][col]) plus the attacker's reserve. The
// attacker is always to move.
type Snapshot struct {
	Grid    [BoardDim][BoardDim]Piece
	Reserve map[PieceKind]int
}

// NewPosition validates a snapshot and builds a Position from it.
func NewPosition(snap Snapshot) (*Position, error) {
	p := newEmptyPosition()
	var onBoard [NumHandKinds]int
	for r := 0; r < BoardDim; r++ {
		for c := 0; c < BoardDim; c++ {
			pc := snap.Grid[r][c]
			if pc.IsEmpty() {
				continue
			}
			if !pc.Kind().Valid() {
				return nil, fmt.Errorf("%w: bad piece code %d at %s", ErrBadSFEN, pc, NewCoord(r, c))
			}
			sq := NewCoord(r, c)
			s := pc.Side()
			if pc.Kind() == King {
				if p.kings[s] != NoCoord {
					if s == Defender {
						return nil, ErrMultipleDefenderKings
					}
					return nil, ErrMultipleAttackerKings
				}
				p.kings[s] = sq
			} else {
				onBoard[pc.Kind().Demote()]++
			}
			p.board[sq] = pc
			p.addToList(s, sq)
		}
	}
	if p.kings[Defender] == NoCoord {
		return nil, ErrNoDefenderKing
	}
	for k, n := range snap.Reserve {
		if !k.IsHandKind() {
			return nil, fmt.Errorf("%w: %s cannot be held", ErrBadReserve, k)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count %d for %s", ErrBadReserve, n, k)
		}
		if n+onBoard[k] > int(MaxHeld[k]) {
			return nil, fmt.Errorf("%w: %d %s exceeds the set", ErrBadReserve, n+onBoard[k], k)
		}
		p.reserve[k] = uint8(n)
	}
	p.toMove = Attacker
	return p, nil
}

// Snapshot converts the position back to a board-editor snapshot.
func (p *Position) Snapshot() Snapshot {
	var snap Snapshot
	for sq := Coord(0); sq < NumSquares; sq++ {
		snap.Grid[sq.Row()][sq.Col()] = p.board[sq]
	}
	snap.Reserve = map[PieceKind]int{}
	for k := Pawn; k <= Rook; k++ {
		if p.reserve[k] > 0 {
			snap.Reserve[k] = int(p.reserve[k])
		}
	}
	return snap
}
