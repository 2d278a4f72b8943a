package shogi

import "errors"

var (
	ErrNoDefenderKing        = errors.New("position has no defender king")
	ErrMultipleDefenderKings = errors.New("position has more than one defender king")
	ErrMultipleAttackerKings = errors.New("position has more than one attacker king")
	ErrDefenderToMove        = errors.New("the attacker must be on move at the start of a puzzle")
	ErrBadReserve            = errors.New("invalid reserve")
	ErrBadSFEN               = errors.New("malformed sfen")
	ErrBadSquare             = errors.New("malformed square")
	ErrBadMove               = errors.New("malformed move")
	ErrIllegalMove           = errors.New("illegal move")
)
