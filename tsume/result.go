package tsume

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/domino14/tsume/shogi"
)

type Outcome int

const (
	NoMate Outcome = iota
	Mate
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Mate:
		return "mate"
	case NoMate:
		return "no-mate"
	case TimedOut:
		return "timed-out"
	}
	return "unknown"
}

// Step is one move of a solution as handed to a result display.
type Step struct {
	Ply      int             `yaml:"ply"`
	From     shogi.Coord     `yaml:"-"` // NoCoord for drops
	To       shogi.Coord     `yaml:"-"`
	Piece    shogi.PieceKind `yaml:"-"` // kind standing on To afterwards
	Promoted bool            `yaml:"promoted"`
	USI      string          `yaml:"usi"`
	KIF      string          `yaml:"kif"`
}

func (s Step) IsDrop() bool {
	return s.From == shogi.NoCoord
}

func stepsFor(moves []shogi.Move) []Step {
	return lo.Map(moves, func(m shogi.Move, i int) Step {
		return Step{
			Ply:      i,
			From:     m.From,
			To:       m.To,
			Piece:    m.Result(),
			Promoted: m.Promote,
			USI:      m.String(),
			KIF:      m.KIF(shogi.Attacker.After(i)),
		}
	})
}

// Result is the outcome of one Solve call.
type Result struct {
	Outcome Outcome
	Moves   []shogi.Move
	Steps   []Step
	// Depth is the mate length for Mate, and otherwise the deepest search
	// bound that completed.
	Depth   int
	Nodes   uint64
	Elapsed time.Duration

	// Continuations maps a position key to a proven line from that
	// position. It must be treated as read-only.
	Continuations map[uint64][]shogi.Move
	// Hasher produced the keys of Continuations.
	Hasher shogi.Hasher
}

// Continuation returns the known line from the position with the given key.
func (r *Result) Continuation(key uint64) ([]shogi.Move, bool) {
	c, ok := r.Continuations[key]
	return c, ok
}

// MoveStrings returns the solution in USI notation.
func (r *Result) MoveStrings() []string {
	return lo.Map(r.Moves, func(m shogi.Move, _ int) string { return m.String() })
}

func (r *Result) String() string {
	switch r.Outcome {
	case Mate:
		return fmt.Sprintf("mate in %d: %s (%d nodes, %s)", len(r.Moves),
			strings.Join(r.MoveStrings(), " "), r.Nodes, r.Elapsed.Round(time.Millisecond))
	case TimedOut:
		return fmt.Sprintf("timed out after completing depth %d (%d nodes, %s)",
			r.Depth, r.Nodes, r.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("no mate within %d plies (%d nodes, %s)",
		r.Depth, r.Nodes, r.Elapsed.Round(time.Millisecond))
}
