// Package tsume solves shogi mate puzzles: it finds the shortest sequence
// of checks that mates the defender against any defence, or proves there is
// none within a ply ceiling.
package tsume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/movegen"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/zobrist"
)

const (
	DefaultMaxPlies           = 29
	DefaultTTFractionOfMemory = 0.1
)

var (
	ErrNotInitialized = errors.New("solver is not initialized")
	ErrInvalidLine    = errors.New("solution line failed verification")
)

// Solver searches a single root position. A Solver is not safe for
// concurrent use; make one per goroutine.
type Solver struct {
	gen     *movegen.Generator
	zobrist *zobrist.Zobrist
	seed    uint64
	seeded  bool

	root *shogi.Position
	pos  *shogi.Position

	transpositionTableOptim bool
	iterativeDeepeningOptim bool
	ttFraction              float64
	ttable                  *TranspositionTable

	maxPlies           int
	checkpointInterval uint64
	nodeLimit          uint64
	progress           ProgressFunc
	logStream          io.Writer

	// one reusable move buffer per ply
	plies        [][]shogi.Move
	currentDepth int
	nodes        atomic.Uint64
	tstart       time.Time
}

// Init sets up the solver for pos. The solver works on its own copy, so the
// caller may keep using pos.
func (s *Solver) Init(pos *shogi.Position) error {
	if pos.SideToMove() != shogi.Attacker {
		return shogi.ErrDefenderToMove
	}
	if pos.KingSquare(shogi.Defender) == shogi.NoCoord {
		return shogi.ErrNoDefenderKing
	}
	s.root = pos.Copy()
	s.gen = movegen.NewGenerator()
	s.transpositionTableOptim = true
	s.iterativeDeepeningOptim = true
	s.ttFraction = DefaultTTFractionOfMemory
	s.ttable = &TranspositionTable{}
	s.maxPlies = DefaultMaxPlies
	s.checkpointInterval = DefaultCheckpointInterval
	return nil
}

// ApplyConfig reads the search settings from cfg.
func (s *Solver) ApplyConfig(cfg *config.Config) {
	s.SetMaxPlies(cfg.GetInt(config.ConfigMaxPlies))
	s.SetCheckpointInterval(cfg.GetUint64(config.ConfigCheckpointInterval))
	s.SetNodeLimit(cfg.GetUint64(config.ConfigNodeLimit))
	if f := cfg.GetFloat64(config.ConfigTTFractionOfMemory); f > 0 {
		s.ttFraction = f
	}
	if seed := cfg.GetUint64(config.ConfigZobristSeed); seed != 0 {
		s.SetZobristSeed(seed)
	}
}

// SetMaxPlies sets the ply ceiling. Mates are always an odd number of plies,
// so an even ceiling is lowered by one.
func (s *Solver) SetMaxPlies(p int) {
	if p < 1 {
		p = 1
	}
	if p%2 == 0 {
		p--
	}
	s.maxPlies = p
}

func (s *Solver) MaxPlies() int {
	return s.maxPlies
}

func (s *Solver) SetCheckpointInterval(n uint64) {
	if n == 0 {
		n = DefaultCheckpointInterval
	}
	s.checkpointInterval = n
}

// SetNodeLimit stops the search after n node visits; 0 means no limit.
// Hitting the limit reports a timeout.
func (s *Solver) SetNodeLimit(n uint64) {
	s.nodeLimit = n
}

func (s *Solver) SetProgressFunc(f ProgressFunc) {
	s.progress = f
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetMoveOrdering(o bool) {
	s.gen.SetMoveOrdering(o)
}

// SetZobrist makes the solver hash with z instead of a fresh table.
func (s *Solver) SetZobrist(z *zobrist.Zobrist) {
	s.zobrist = z
}

// SetZobristSeed makes every solve build its hash keys from seed.
func (s *Solver) SetZobristSeed(seed uint64) {
	s.seed = seed
	s.seeded = true
}

// SetLogStream makes the solver write a YAML record of each iteration to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Nodes is the number of nodes visited so far in the current or last solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Solver) hasher() *zobrist.Zobrist {
	switch {
	case s.zobrist != nil:
		return s.zobrist
	case s.seeded:
		return zobrist.New(s.seed)
	}
	return zobrist.NewRandom()
}

// Solve runs the search. Cancellation of ctx, or reaching the node limit,
// is reported as a TimedOut result rather than an error.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	if s.root == nil {
		return nil, ErrNotInitialized
	}
	s.tstart = time.Now()
	s.nodes.Store(0)
	s.currentDepth = 0
	z := s.hasher()
	res := &Result{Hasher: z}
	if s.transpositionTableOptim {
		s.ttable.Reset(s.ttFraction)
	}

	if ctx.Err() != nil {
		res.Outcome = TimedOut
		s.finish(res)
		return res, nil
	}

	s.pos = s.root.Copy()
	s.pos.SetHasher(z)
	s.plies = make([][]shogi.Move, s.maxPlies+2)

	log.Debug().Int("max-plies", s.maxPlies).
		Bool("iterative-deepening", s.iterativeDeepeningOptim).
		Bool("transposition-table", s.transpositionTableOptim).
		Str("sfen", s.root.SFEN()).
		Msg("tsume-solve-config")

	start := 1
	if !s.iterativeDeepeningOptim {
		start = s.maxPlies
	}
	var line []shogi.Move
	completed := 0
	timedOut := false
	for d := start; d <= s.maxPlies; d += 2 {
		s.currentDepth = d
		log.Debug().Int("plies", d).Msg("deepening-iteratively")
		var err error
		line, err = s.orNode(ctx, 0, d, 0)
		if err != nil {
			if !stopped(err) {
				return nil, err
			}
			log.Debug().Err(err).Int("plies", d).Msg("search-interrupted")
			timedOut = true
			line = nil
			break
		}
		completed = d
		s.logIteration(d, line)
		if line != nil {
			break
		}
	}

	switch {
	case timedOut:
		res.Outcome = TimedOut
		res.Depth = completed
	case line != nil:
		if err := s.verify(line); err != nil {
			return nil, err
		}
		res.Outcome = Mate
		res.Moves = line
		res.Steps = stepsFor(line)
		res.Depth = len(line)
	default:
		res.Outcome = NoMate
		res.Depth = s.maxPlies
	}
	res.Continuations = s.continuations(z, line)
	s.finish(res)
	return res, nil
}

func (s *Solver) finish(res *Result) {
	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(s.tstart)
	var tt *TranspositionTable
	if s.transpositionTableOptim {
		tt = s.ttable
	}
	observeSolve(res, tt)
	log.Info().
		Str("outcome", res.Outcome.String()).
		Int("depth", res.Depth).
		Strs("moves", res.MoveStrings()).
		Uint64("nodes", res.Nodes).
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-clears", s.ttable.clears.Load()).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("solve-returning")
}

// verify replays line from the root. Every move must be tsume-legal and the
// defender must have no reply at the end.
func (s *Solver) verify(line []shogi.Move) error {
	pos := s.root.Copy()
	for i, m := range line {
		if !lo.Contains(legalHere(s.gen, pos), m) {
			return fmt.Errorf("%w: ply %d %s is not legal", ErrInvalidLine, i, m)
		}
		pos.Play(m)
	}
	if pos.SideToMove() != shogi.Defender {
		return fmt.Errorf("%w: ends with the attacker to move", ErrInvalidLine)
	}
	if n := len(s.gen.GenEvasions(pos, nil)); n != 0 {
		return fmt.Errorf("%w: defender still has %d replies", ErrInvalidLine, n)
	}
	return nil
}

// continuations collects the exact lines in the table plus every suffix of
// the solution, keyed by the position they start from.
func (s *Solver) continuations(z *zobrist.Zobrist, line []shogi.Move) map[uint64][]shogi.Move {
	conts := make(map[uint64][]shogi.Move)
	if s.transpositionTableOptim {
		s.ttable.exactPaths(func(key uint64, path []shogi.Move) {
			conts[key] = path
		})
	}
	if line == nil {
		return conts
	}
	pos := s.root.Copy()
	pos.SetHasher(z)
	for i, m := range line {
		conts[pos.Key()] = line[i:]
		pos.Play(m)
	}
	conts[pos.Key()] = line[len(line):]
	return conts
}
