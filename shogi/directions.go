package shogi

// Dir8 lists the eight unit directions from the attacker's point of view;
// the attacker moves toward row 0. Index i rotated by 180 degrees is 7-i.
var Dir8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// KnightJumps are the two knight offsets from the attacker's point of view.
var KnightJumps = [2][2]int{{-2, -1}, {-2, 1}}

const (
	dirFwdLeft = 1 << iota
	dirFwd
	dirFwdRight
	dirLeft
	dirRight
	dirBackLeft
	dirBack
	dirBackRight
)

const (
	diagonals  = dirFwdLeft | dirFwdRight | dirBackLeft | dirBackRight
	orthogonal = dirFwd | dirLeft | dirRight | dirBack
	goldSteps  = dirFwdLeft | dirFwd | dirFwdRight | dirLeft | dirRight | dirBack
)

var stepMasks = [NumKinds]uint8{
	Pawn:      dirFwd,
	Silver:    dirFwdLeft | dirFwd | dirFwdRight | dirBackLeft | dirBackRight,
	Gold:      goldSteps,
	King:      diagonals | orthogonal,
	ProPawn:   goldSteps,
	ProLance:  goldSteps,
	ProKnight: goldSteps,
	ProSilver: goldSteps,
	Horse:     orthogonal,
	Dragon:    diagonals,
}

var slideMasks = [NumKinds]uint8{
	Lance:  dirFwd,
	Bishop: diagonals,
	Rook:   orthogonal,
	Horse:  diagonals,
	Dragon: orthogonal,
}

// Steps is the bitmask over Dir8 of single-square moves for k.
func (k PieceKind) Steps() uint8 { return stepMasks[k&kindMask] }

// Slides is the bitmask over Dir8 of ray moves for k.
func (k PieceKind) Slides() uint8 { return slideMasks[k&kindMask] }

// OrientDir converts a Dir8 index between the attacker's frame and side s's
// frame. The conversion is its own inverse.
func OrientDir(i int, s Side) int {
	if s == Defender {
		return 7 - i
	}
	return i
}

// Oriented returns the absolute (row, col) delta of relative direction d for
// side s.
func Oriented(d [2]int, s Side) (int, int) {
	if s == Defender {
		return -d[0], -d[1]
	}
	return d[0], d[1]
}
