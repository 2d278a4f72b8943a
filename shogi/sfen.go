package shogi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var letterKinds = map[byte]PieceKind{
	'P': Pawn, 'L': Lance, 'N': Knight, 'S': Silver,
	'G': Gold, 'B': Bishop, 'R': Rook, 'K': King,
}

// ParseSFEN reads an SFEN position into a Snapshot. Uppercase pieces belong
// to the attacker. Pieces in the defender's hand are dropped, since the
// defender never drops in this solver.
func ParseSFEN(sfen string) (Snapshot, error) {
	var snap Snapshot
	snap.Reserve = map[PieceKind]int{}
	fields := strings.Fields(sfen)
	if len(fields) > 0 && fields[0] == "sfen" {
		fields = fields[1:]
	}
	if len(fields) < 1 {
		return snap, fmt.Errorf("%w: empty", ErrBadSFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != BoardDim {
		return snap, fmt.Errorf("%w: expected %d ranks, got %d", ErrBadSFEN, BoardDim, len(rows))
	}
	for r, row := range rows {
		col := 0
		promoted := false
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch >= '1' && ch <= '9':
				if promoted {
					return snap, fmt.Errorf("%w: dangling '+' in rank %d", ErrBadSFEN, r+1)
				}
				col += int(ch - '0')
			case ch == '+':
				promoted = true
			default:
				upper := ch
				side := Attacker
				if ch >= 'a' && ch <= 'z' {
					upper = ch - ('a' - 'A')
					side = Defender
				}
				k, ok := letterKinds[upper]
				if !ok {
					return snap, fmt.Errorf("%w: unknown piece %q", ErrBadSFEN, ch)
				}
				if promoted {
					if !k.CanPromote() {
						return snap, fmt.Errorf("%w: %s cannot be promoted", ErrBadSFEN, k)
					}
					k = k.Promote()
					promoted = false
				}
				if col >= BoardDim {
					return snap, fmt.Errorf("%w: rank %d is too long", ErrBadSFEN, r+1)
				}
				snap.Grid[r][col] = NewPiece(k, side)
				col++
			}
		}
		if col != BoardDim {
			return snap, fmt.Errorf("%w: rank %d has %d files", ErrBadSFEN, r+1, col)
		}
	}
	if len(fields) > 1 && fields[1] != "b" {
		if fields[1] == "w" {
			return snap, ErrDefenderToMove
		}
		return snap, fmt.Errorf("%w: bad side %q", ErrBadSFEN, fields[1])
	}
	if len(fields) > 2 && fields[2] != "-" {
		hand := fields[2]
		count := 0
		for i := 0; i < len(hand); i++ {
			ch := hand[i]
			if ch >= '0' && ch <= '9' {
				count = count*10 + int(ch-'0')
				continue
			}
			n := count
			if n == 0 {
				n = 1
			}
			count = 0
			k, ok := handKindFromLetter(ch)
			if !ok {
				return snap, fmt.Errorf("%w: unknown hand piece %q", ErrBadSFEN, ch)
			}
			if ch >= 'a' && ch <= 'z' {
				log.Debug().Str("kind", k.String()).Int("count", n).Msg("ignoring-defender-hand")
				continue
			}
			snap.Reserve[k] += n
		}
		if count != 0 {
			return snap, fmt.Errorf("%w: trailing count in hand %q", ErrBadSFEN, hand)
		}
	}
	return snap, nil
}

// PositionFromSFEN parses and validates an SFEN position.
func PositionFromSFEN(sfen string) (*Position, error) {
	snap, err := ParseSFEN(sfen)
	if err != nil {
		return nil, err
	}
	return NewPosition(snap)
}

// SFEN renders the position. The move number is the ply count plus one.
func (p *Position) SFEN() string {
	var sb strings.Builder
	for r := 0; r < BoardDim; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < BoardDim; c++ {
			pc := p.board[NewCoord(r, c)]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}
	side := "b"
	if p.toMove == Defender {
		side = "w"
	}
	fmt.Fprintf(&sb, " %s %s %d", side, p.reserve.SFEN(), p.Ply()+1)
	return sb.String()
}
