package tsume

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/zobrist"
)

const (
	mateIn1 = "4k4/9/4G4/9/9/9/9/9/9 b G 1"
	// S*2b K1b 2e1c+
	mateIn3 = "8k/9/6G2/9/7N1/9/9/9/9 b S 1"
	// P*1b would mate at once, but mating with a pawn drop is illegal.
	pawnDropMate = "7nk/9/6S2/7N1/9/9/9/9/9 b P 1"
	noMate       = "4k4/9/9/9/9/9/9/9/9 b P 1"
	// The bishop on 3c already gives check, and the silvers box the king in.
	// Several first moves mate, such as S*2b 1a1b 3d2c+.
	inCheckMate3 = "8k/9/6B2/6SS1/9/9/9/9/9 b S 1"
	// B*3c 3a2b 2c2b+ 2a2b S*1b is one of several lines; nothing shorter mates.
	mateIn5 = "6sgk/9/7PP/9/9/9/9/9/9 b BS 1"
	// A capture frees the last slot of the attacker's piece list and a
	// later drop takes it. There is no mate.
	captureThenDrop = "9/9/3k5/9/5N3/9/9/9/9 b 2S 1"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func loadPos(t *testing.T, sfen string) *shogi.Position {
	pos, err := shogi.PositionFromSFEN(sfen)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func setUpSolver(t *testing.T, sfen string) *Solver {
	s := &Solver{}
	if err := s.Init(loadPos(t, sfen)); err != nil {
		t.Fatal(err)
	}
	s.SetZobristSeed(1)
	s.ttFraction = 0
	return s
}

func solve(t *testing.T, s *Solver) *Result {
	res, err := s.Solve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestMateInOne(t *testing.T) {
	is := is.New(t)
	res := solve(t, setUpSolver(t, mateIn1))
	is.Equal(res.Outcome, Mate)
	is.Equal(res.MoveStrings(), []string{"G*5b"})
	is.Equal(res.Depth, 1)
	is.Equal(len(res.Steps), 1)
	is.True(res.Steps[0].IsDrop())
	is.Equal(res.Steps[0].Piece, shogi.Gold)
	is.Equal(res.Steps[0].KIF, "５二金打")
}

func TestMateInThree(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	res := solve(t, s)
	is.Equal(res.Outcome, Mate)
	is.Equal(len(res.Moves), 3)
	is.Equal(res.Depth, 3)
	// a short mate is found well inside a small node budget
	is.True(res.Nodes < 10000)
	for i, st := range res.Steps {
		is.Equal(st.Ply, i)
		is.Equal(st.USI, res.Moves[i].String())
	}
}

func TestLengthIndependentOfOptions(t *testing.T) {
	is := is.New(t)
	for _, tc := range []struct {
		sfen string
		want int
	}{
		{mateIn1, 1},
		{mateIn3, 3},
	} {
		for _, tt := range []bool{true, false} {
			for _, id := range []bool{true, false} {
				for _, ordering := range []bool{true, false} {
					s := setUpSolver(t, tc.sfen)
					s.SetMaxPlies(7)
					s.SetTranspositionTableOptim(tt)
					s.SetIterativeDeepening(id)
					s.SetMoveOrdering(ordering)
					res := solve(t, s)
					is.Equal(res.Outcome, Mate)
					is.Equal(len(res.Moves), tc.want)
				}
			}
		}
	}
}

func TestPawnDropMateExcluded(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, pawnDropMate)
	s.SetMaxPlies(1)
	res := solve(t, s)
	is.Equal(res.Outcome, NoMate)
	is.Equal(res.Depth, 1)
	is.Equal(len(res.Moves), 0)

	s = setUpSolver(t, pawnDropMate)
	s.SetMaxPlies(5)
	res = solve(t, s)
	is.True(res.Outcome == Mate || res.Outcome == NoMate)
	if res.Outcome == Mate {
		is.True(len(res.Moves) >= 3)
		is.Equal(len(res.Moves)%2, 1)
		is.True(!res.Moves[len(res.Moves)-1].IsPawnDrop())
	}
}

func TestNoMate(t *testing.T) {
	is := is.New(t)
	for _, tt := range []bool{true, false} {
		s := setUpSolver(t, noMate)
		s.SetMaxPlies(7)
		s.SetTranspositionTableOptim(tt)
		res := solve(t, s)
		is.Equal(res.Outcome, NoMate)
		is.Equal(res.Depth, 7)
		is.Equal(len(res.Moves), 0)
	}
}

// requireMatingLine checks that line is legal from sfen at every ply and
// ends with the defender out of moves.
func requireMatingLine(t *testing.T, sfen string, line []shogi.Move) {
	t.Helper()
	is := is.New(t)
	root := loadPos(t, sfen)
	for i := range line {
		moves, err := LegalMoves(root, line[:i])
		is.NoErr(err)
		if !lo.Contains(moves, line[i]) {
			t.Fatalf("ply %d: %s is not legal", i, line[i])
		}
	}
	moves, err := LegalMoves(root, line)
	is.NoErr(err)
	is.Equal(len(moves), 0)
}

func TestMateWithDefenderAlreadyInCheck(t *testing.T) {
	is := is.New(t)
	is.True(loadPos(t, inCheckMate3).InCheck(shogi.Defender))
	s := setUpSolver(t, inCheckMate3)
	s.SetMaxPlies(7)
	res := solve(t, s)
	is.Equal(res.Outcome, Mate)
	is.Equal(len(res.Moves), 3)
	is.Equal(res.Depth, 3)
	is.True(res.Nodes < 2000)
	requireMatingLine(t, inCheckMate3, res.Moves)
}

func TestMateInFive(t *testing.T) {
	is := is.New(t)
	for _, tt := range []bool{true, false} {
		for _, id := range []bool{true, false} {
			s := setUpSolver(t, mateIn5)
			s.SetMaxPlies(7)
			s.SetTranspositionTableOptim(tt)
			s.SetIterativeDeepening(id)
			res := solve(t, s)
			is.Equal(res.Outcome, Mate)
			is.Equal(len(res.Moves), 5)
			is.Equal(res.Depth, 5)
			requireMatingLine(t, mateIn5, res.Moves)
		}
	}

	// nothing mates in three
	s := setUpSolver(t, mateIn5)
	s.SetMaxPlies(3)
	res := solve(t, s)
	is.Equal(res.Outcome, NoMate)
	is.Equal(res.Depth, 3)
}

func TestNoMateAfterCaptureAndDrop(t *testing.T) {
	is := is.New(t)
	for _, tt := range []bool{true, false} {
		s := setUpSolver(t, captureThenDrop)
		s.SetMaxPlies(7)
		s.SetTranspositionTableOptim(tt)
		res := solve(t, s)
		is.Equal(res.Outcome, NoMate)
		is.Equal(res.Depth, 7)
		is.Equal(len(res.Moves), 0)
	}
}

func TestAlreadyCancelled(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Solve(ctx)
	is.NoErr(err)
	is.Equal(res.Outcome, TimedOut)
	is.Equal(res.Depth, 0)
	is.Equal(len(res.Moves), 0)
}

func TestCancelAtCheckpoint(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	s.SetCheckpointInterval(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.SetProgressFunc(func(Progress) { cancel() })
	res, err := s.Solve(ctx)
	is.NoErr(err)
	is.Equal(res.Outcome, TimedOut)
	is.Equal(res.Depth, 0)
	// the search stops at the next checkpoint
	is.Equal(res.Nodes, uint64(2))
}

func TestNodeLimit(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	s.SetNodeLimit(2)
	res := solve(t, s)
	is.Equal(res.Outcome, TimedOut)
	is.Equal(res.Depth, 0)

	// a depth that completed is reported
	s = setUpSolver(t, mateIn3)
	s.SetMaxPlies(5)
	first := solve(t, s)
	s = setUpSolver(t, mateIn3)
	s.SetNodeLimit(first.Nodes - 1)
	res = solve(t, s)
	is.Equal(res.Outcome, TimedOut)
	is.Equal(res.Depth, 1)
}

func TestProgressReports(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	s.SetCheckpointInterval(2)
	var reports []Progress
	s.SetProgressFunc(func(p Progress) { reports = append(reports, p) })
	res := solve(t, s)
	is.Equal(res.Outcome, Mate)
	is.True(len(reports) > 0)
	for i, p := range reports {
		is.Equal(p.Nodes, uint64(2*(i+1)))
		is.Equal(p.Depth%2, 1)
	}
}

func TestReplayIsMate(t *testing.T) {
	is := is.New(t)
	root := loadPos(t, mateIn3)
	res := solve(t, setUpSolver(t, mateIn3))
	is.Equal(res.Outcome, Mate)
	for i := range res.Moves {
		moves, err := LegalMoves(root, res.Moves[:i])
		is.NoErr(err)
		is.True(len(moves) > 0)
		is.True(lo.Contains(moves, res.Moves[i]))
	}
	moves, err := LegalMoves(root, res.Moves)
	is.NoErr(err)
	is.Equal(len(moves), 0)
	// root itself is untouched
	is.Equal(root.SFEN(), mateIn3)
}

func TestLegalMovesDropsPawnMate(t *testing.T) {
	is := is.New(t)
	root := loadPos(t, pawnDropMate)
	moves, err := LegalMoves(root, nil)
	is.NoErr(err)
	is.True(!lo.Contains(lo.Map(moves, func(m shogi.Move, _ int) string { return m.String() }), "P*1b"))
	is.True(len(moves) > 0)
}

func TestLegalMovesRejectsIllegalPrefix(t *testing.T) {
	is := is.New(t)
	root := loadPos(t, mateIn3)
	bad := shogi.NewDrop(shogi.Silver, shogi.NewCoord(8, 0))
	_, err := LegalMoves(root, []shogi.Move{bad})
	is.True(errors.Is(err, shogi.ErrIllegalMove))
}

func TestParseLine(t *testing.T) {
	is := is.New(t)
	root := loadPos(t, mateIn3)
	line, err := ParseLine(root, []string{"S*2b", "1a1b", "2e1c+"})
	is.NoErr(err)
	is.Equal(len(line), 3)
	is.Equal(line[2].Promote, true)
	moves, err := LegalMoves(root, line)
	is.NoErr(err)
	is.Equal(len(moves), 0)

	_, err = ParseLine(root, []string{"S*2b", "1a2b"})
	is.True(errors.Is(err, shogi.ErrIllegalMove))
	_, err = ParseLine(root, []string{"S2b"})
	is.True(errors.Is(err, shogi.ErrBadMove))
	is.Equal(root.SFEN(), mateIn3)
}

func TestContinuations(t *testing.T) {
	is := is.New(t)
	res := solve(t, setUpSolver(t, mateIn3))
	is.Equal(res.Outcome, Mate)

	pos := loadPos(t, mateIn3)
	pos.SetHasher(res.Hasher)
	for i, m := range res.Moves {
		cont, ok := res.Continuation(pos.Key())
		is.True(ok)
		is.Equal(len(cont), len(res.Moves)-i)
		pos.Play(m)
	}
	cont, ok := res.Continuation(pos.Key())
	is.True(ok)
	is.Equal(len(cont), 0)
}

func TestSearchLog(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn3)
	var buf bytes.Buffer
	s.SetLogStream(&buf)
	res := solve(t, s)

	var entries []IterationLog
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &entries))
	is.Equal(len(entries), 2)
	is.Equal(entries[0].Depth, 1)
	is.True(!entries[0].Mate)
	is.Equal(entries[1].Depth, 3)
	is.True(entries[1].Mate)
	is.Equal(entries[1].PV, res.MoveStrings())
}

func TestSeededSolvesAgree(t *testing.T) {
	is := is.New(t)
	a := solve(t, setUpSolver(t, mateIn3))
	s := setUpSolver(t, mateIn3)
	s.SetZobrist(zobrist.New(1))
	b := solve(t, s)
	is.Equal(a.Moves, b.Moves)
	is.Equal(a.Nodes, b.Nodes)
}

func TestInitErrors(t *testing.T) {
	is := is.New(t)
	pos := loadPos(t, mateIn1)
	m, err := pos.ParseMove("G*5b")
	is.NoErr(err)
	pos.Play(m)
	s := &Solver{}
	is.Equal(s.Init(pos), shogi.ErrDefenderToMove)

	_, err = (&Solver{}).Solve(context.Background())
	is.Equal(err, ErrNotInitialized)
}

func TestSolverDoesNotTouchCallerPosition(t *testing.T) {
	is := is.New(t)
	pos := loadPos(t, mateIn3)
	s := &Solver{}
	is.NoErr(s.Init(pos))
	pos.Play(shogi.NewDrop(shogi.Silver, shogi.NewCoord(1, 7)))
	res := solve(t, s)
	is.Equal(res.Outcome, Mate)
	is.Equal(len(res.Moves), 3)
}

func TestSetMaxPliesForcedOdd(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, mateIn1)
	s.SetMaxPlies(28)
	is.Equal(s.MaxPlies(), 27)
	s.SetMaxPlies(0)
	is.Equal(s.MaxPlies(), 1)
}

func TestApplyConfig(t *testing.T) {
	is := is.New(t)
	cfg := &config.Config{}
	is.NoErr(cfg.Load([]string{"--max-plies=10", "--node-limit=77", "--zobrist-seed=5"}))
	s := setUpSolver(t, mateIn1)
	s.ApplyConfig(cfg)
	is.Equal(s.MaxPlies(), 9)
	is.Equal(s.nodeLimit, uint64(77))
	is.True(s.seeded)
	is.Equal(s.seed, uint64(5))
	is.Equal(s.checkpointInterval, uint64(DefaultCheckpointInterval))
}
