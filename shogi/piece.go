// Package shogi contains the position model used by the mate solver: board
// squares, piece kinds, the attacker's reserve, moves, and a Position that
// supports strict make/unmake.
package shogi

// Side is one of the two players in a mate puzzle. The attacker always moves
// first and must give check with every move.
type Side uint8

const (
	Attacker Side = iota
	Defender
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

// After returns the side to move n plies after s.
func (s Side) After(n int) Side {
	if n%2 == 1 {
		return s.Opponent()
	}
	return s
}

func (s Side) String() string {
	if s == Attacker {
		return "attacker"
	}
	return "defender"
}

// PieceKind is a piece type without an owner. Promoted kinds are exactly
// PromotionOffset above their base kind; gold and king never promote.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King
	ProPawn
	ProLance
	ProKnight
	ProSilver
	_ // promoted gold doesn't exist
	Horse
	Dragon
)

const (
	PromotionOffset = 8
	NumKinds        = 16
	// NumHandKinds covers Pawn through Rook, the only kinds that can sit in
	// a reserve. Index 0 is unused.
	NumHandKinds = 8
)

var kindLetters = [NumKinds]string{
	"", "P", "L", "N", "S", "G", "B", "R", "K", "+P", "+L", "+N", "+S", "", "+B", "+R",
}

var kindNamesJP = [NumKinds]string{
	"", "歩", "香", "桂", "銀", "金", "角", "飛", "玉", "と", "成香", "成桂", "成銀", "", "馬", "龍",
}

// Valid reports whether k names a real piece kind.
func (k PieceKind) Valid() bool {
	return k > NoKind && k < NumKinds && kindLetters[k] != ""
}

// CanPromote reports whether k has a promoted form.
func (k PieceKind) CanPromote() bool {
	return k >= Pawn && k <= Rook && k != Gold
}

// IsPromoted reports whether k is a promoted kind.
func (k PieceKind) IsPromoted() bool {
	return k > King && k.Valid()
}

// Promote returns the promoted variant of k. It panics if k cannot promote.
func (k PieceKind) Promote() PieceKind {
	if !k.CanPromote() {
		panic("shogi: promoting a kind that cannot promote: " + k.String())
	}
	return k + PromotionOffset
}

// Demote returns the base kind of k; base kinds are returned unchanged.
func (k PieceKind) Demote() PieceKind {
	if k.IsPromoted() {
		return k - PromotionOffset
	}
	return k
}

// IsHandKind reports whether k can be held in a reserve and dropped.
func (k PieceKind) IsHandKind() bool {
	return k >= Pawn && k <= Rook
}

// String returns the USI-style letter for k ("P", "+R", ...).
func (k PieceKind) String() string {
	if k >= NumKinds {
		return "?"
	}
	return kindLetters[k]
}

// JapaneseName returns the kanji name used in KIF notation.
func (k PieceKind) JapaneseName() string {
	if k >= NumKinds {
		return "?"
	}
	return kindNamesJP[k]
}

// Value is a rough material value used only for move ordering.
func (k PieceKind) Value() int {
	switch k {
	case Pawn:
		return 1
	case Lance:
		return 3
	case Knight:
		return 4
	case Silver:
		return 5
	case Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return 6
	case Bishop:
		return 8
	case Rook:
		return 10
	case Horse:
		return 11
	case Dragon:
		return 13
	case King:
		return 15
	}
	return 0
}

// Piece is an owned piece kind as it sits on a board square. The zero value
// is an empty square.
type Piece uint8

const (
	NoPiece     Piece = 0
	defenderBit       = 0x10
	kindMask          = 0x0f
	// NumPieceCodes bounds every Piece value, for table sizing.
	NumPieceCodes = 32
)

// NewPiece creates an owned piece.
func NewPiece(k PieceKind, s Side) Piece {
	p := Piece(k)
	if s == Defender {
		p |= defenderBit
	}
	return p
}

func (p Piece) Kind() PieceKind {
	return PieceKind(p & kindMask)
}

// Side returns the owner. It is meaningless for NoPiece.
func (p Piece) Side() Side {
	if p&defenderBit != 0 {
		return Defender
	}
	return Attacker
}

func (p Piece) IsEmpty() bool {
	return p == NoPiece
}

// String returns the SFEN letter: uppercase for the attacker, lowercase for
// the defender.
func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	s := p.Kind().String()
	if p.Side() == Defender {
		b := []byte(s)
		for i := range b {
			if b[i] >= 'A' && b[i] <= 'Z' {
				b[i] += 'a' - 'A'
			}
		}
		return string(b)
	}
	return s
}
