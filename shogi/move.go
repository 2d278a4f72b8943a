package shogi

import (
	"fmt"
	"strings"
)

// Move is a board move or a drop. Captured is filled in by whoever creates
// the move (the generator or ParseMove) so that Play can verify it and the
// hasher can account for it without looking at the board.
type Move struct {
	From     Coord // NoCoord for drops
	To       Coord
	Piece    PieceKind // kind before moving, or the dropped kind
	Promote  bool
	Captured PieceKind // NoKind if nothing is captured
}

// NewDrop returns a drop of kind k onto to.
func NewDrop(k PieceKind, to Coord) Move {
	return Move{From: NoCoord, To: to, Piece: k}
}

func (m Move) IsDrop() bool {
	return m.From == NoCoord
}

func (m Move) IsCapture() bool {
	return m.Captured != NoKind
}

// IsPawnDrop reports whether m drops an unpromoted pawn. A mate delivered
// this way is illegal (uchifuzume).
func (m Move) IsPawnDrop() bool {
	return m.IsDrop() && m.Piece == Pawn
}

// Result is the kind that stands on the destination after the move.
func (m Move) Result() PieceKind {
	if m.Promote {
		return m.Piece.Promote()
	}
	return m.Piece
}

// String returns USI notation: "7g7f", "8h2b+", "S*5b".
func (m Move) String() string {
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", m.Piece, m.To)
	}
	if m.Promote {
		return m.From.String() + m.To.String() + "+"
	}
	return m.From.String() + m.To.String()
}

// KIF returns a Japanese move description such as "２三銀打" or "１三桂成(25)".
// A move by mover that could have promoted but did not is marked 不成.
func (m Move) KIF(mover Side) string {
	var sb strings.Builder
	sb.WriteString(m.To.KIF())
	sb.WriteString(m.Piece.JapaneseName())
	switch {
	case m.IsDrop():
		sb.WriteString("打")
	case m.Promote:
		sb.WriteString("成")
	case m.Piece.CanPromote() && (PromotionZone(m.From, mover) || PromotionZone(m.To, mover)):
		sb.WriteString("不成")
	}
	if !m.IsDrop() {
		fmt.Fprintf(&sb, "(%d%d)", m.From.File(), m.From.Rank())
	}
	return sb.String()
}

// ParseMove parses a USI move and resolves it against the position: the
// moving piece and any capture are read from the board. It does not check
// legality beyond the origin holding a piece of the side to move.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[1] == '*' {
		k, ok := handKindFromLetter(s[0])
		if !ok {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}
		to, err := ParseCoord(s[2:])
		if err != nil {
			return Move{}, err
		}
		return NewDrop(k, to), nil
	}
	if len(s) != 4 && !(len(s) == 5 && s[4] == '+') {
		return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	from, err := ParseCoord(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseCoord(s[2:4])
	if err != nil {
		return Move{}, err
	}
	pc := p.board[from]
	if pc.IsEmpty() || pc.Side() != p.toMove {
		return Move{}, fmt.Errorf("%w: no %s piece on %s", ErrIllegalMove, p.toMove, from)
	}
	m := Move{From: from, To: to, Piece: pc.Kind(), Promote: len(s) == 5}
	if m.Promote && !m.Piece.CanPromote() {
		return Move{}, fmt.Errorf("%w: %s cannot promote", ErrIllegalMove, m.Piece)
	}
	if target := p.board[to]; !target.IsEmpty() {
		if target.Side() == p.toMove {
			return Move{}, fmt.Errorf("%w: %s is occupied by a friendly piece", ErrIllegalMove, to)
		}
		m.Captured = target.Kind()
	}
	return m, nil
}

func handKindFromLetter(c byte) (PieceKind, bool) {
	switch c {
	case 'P', 'p':
		return Pawn, true
	case 'L', 'l':
		return Lance, true
	case 'N', 'n':
		return Knight, true
	case 'S', 's':
		return Silver, true
	case 'G', 'g':
		return Gold, true
	case 'B', 'b':
		return Bishop, true
	case 'R', 'r':
		return Rook, true
	}
	return NoKind, false
}
