package shogi

import "fmt"

const (
	BoardDim   = 9
	NumSquares = BoardDim * BoardDim
)

// Coord is a board square, stored as row*9+col. Row 0 is rank "a" (the
// defender's back rank) and col 0 is file 9, matching SFEN order.
type Coord int8

// NoCoord is the origin of a drop.
const NoCoord Coord = -1

// NewCoord builds a Coord from a row and column in [0,8].
func NewCoord(row, col int) Coord {
	return Coord(row*BoardDim + col)
}

// CoordFromFileRank builds a Coord from shogi file and rank, both in [1,9].
func CoordFromFileRank(file, rank int) Coord {
	return NewCoord(rank-1, BoardDim-file)
}

func (c Coord) Row() int { return int(c) / BoardDim }
func (c Coord) Col() int { return int(c) % BoardDim }

// File is the shogi file number, 1..9, counted from the right.
func (c Coord) File() int { return BoardDim - c.Col() }

// Rank is the shogi rank number, 1..9, counted from the top.
func (c Coord) Rank() int { return c.Row() + 1 }

func (c Coord) Valid() bool {
	return c >= 0 && c < NumSquares
}

// Offset returns the square dr rows and dc cols away, and false if it falls
// off the board.
func (c Coord) Offset(dr, dc int) (Coord, bool) {
	r, col := c.Row()+dr, c.Col()+dc
	if r < 0 || r >= BoardDim || col < 0 || col >= BoardDim {
		return NoCoord, false
	}
	return NewCoord(r, col), true
}

// String returns the USI square name, e.g. "7g".
func (c Coord) String() string {
	if !c.Valid() {
		return "--"
	}
	return fmt.Sprintf("%d%c", c.File(), 'a'+c.Row())
}

var fwDigits = [...]string{"０", "１", "２", "３", "４", "５", "６", "７", "８", "９"}
var rankKanji = [...]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// KIF returns the square in KIF notation, e.g. "７七".
func (c Coord) KIF() string {
	if !c.Valid() {
		return ""
	}
	return fwDigits[c.File()] + rankKanji[c.Rank()]
}

// ParseCoord parses a USI square such as "5e".
func ParseCoord(s string) (Coord, error) {
	if len(s) != 2 {
		return NoCoord, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	file := int(s[0] - '0')
	rank := int(s[1]-'a') + 1
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return NoCoord, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return CoordFromFileRank(file, rank), nil
}

// PromotionZone reports whether c lies in the three furthest ranks for side s.
func PromotionZone(c Coord, s Side) bool {
	if s == Attacker {
		return c.Row() <= 2
	}
	return c.Row() >= BoardDim-3
}

// RowsToLastRank is how many rows a piece of side s at c can still advance.
func RowsToLastRank(c Coord, s Side) int {
	if s == Attacker {
		return c.Row()
	}
	return BoardDim - 1 - c.Row()
}
