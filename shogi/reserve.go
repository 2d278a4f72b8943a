package shogi

import (
	"strconv"
	"strings"
)

// MaxHeld is the most pieces of each hand kind that exist in a full set.
var MaxHeld = [NumHandKinds]uint8{
	Pawn:   18,
	Lance:  4,
	Knight: 4,
	Silver: 4,
	Gold:   4,
	Bishop: 2,
	Rook:   2,
}

// Reserve holds the attacker's captured pieces, indexed by base kind.
type Reserve [NumHandKinds]uint8

func (r Reserve) Count(k PieceKind) int {
	if !k.IsHandKind() {
		return 0
	}
	return int(r[k])
}

// Total is the number of pieces in the reserve.
func (r Reserve) Total() int {
	t := 0
	for k := Pawn; k <= Rook; k++ {
		t += int(r[k])
	}
	return t
}

// sfenOrder is the conventional order of hand pieces in SFEN.
var sfenOrder = [...]PieceKind{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// SFEN returns the hand portion of an SFEN string for the attacker, or "-"
// when empty.
func (r Reserve) SFEN() string {
	var sb strings.Builder
	for _, k := range sfenOrder {
		n := r[k]
		if n == 0 {
			continue
		}
		if n > 1 {
			sb.WriteString(strconv.Itoa(int(n)))
		}
		sb.WriteString(k.String())
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// String is a human-readable listing, e.g. "S2 P1".
func (r Reserve) String() string {
	parts := []string{}
	for _, k := range sfenOrder {
		if r[k] > 0 {
			parts = append(parts, k.String()+strconv.Itoa(int(r[k])))
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
