package puzzles

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tsume/cache"
	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/tsume"
)

const collectionYAML = `
name: smoke
puzzles:
  - id: gold-drop
    sfen: 4k4/9/4G4/9/9/9/9/9/9 b G 1
    mate: 1
  - id: silver-knight
    sfen: 8k/9/6G2/9/7N1/9/9/9/9 b S 1
    mate: 3
  - sfen: 4k4/9/4G4/9/9/9/9/9/9 b G 1
    mate: 1
  - id: lone-pawn
    sfen: 4k4/9/9/9/9/9/9/9/9 b P 1
    mate: 0
  - id: miscounted
    sfen: 8k/9/6G2/9/7N1/9/9/9/9 b S 1
    mate: 5
  - id: broken
    sfen: 4k4/9/9 b - 1
    mate: 1
`

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig(t *testing.T, args ...string) *config.Config {
	cfg := &config.Config{}
	args = append([]string{"--max-plies=5", "--threads=2", "--zobrist-seed=1"}, args...)
	if err := cfg.Load(args); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	is := is.New(t)
	col, err := Load(strings.NewReader(collectionYAML))
	is.NoErr(err)
	is.Equal(col.Name, "smoke")
	is.Equal(len(col.Puzzles), 6)
	is.Equal(col.Puzzles[0].ID, "gold-drop")
	// missing ids are numbered from 1
	is.Equal(col.Puzzles[2].ID, "3")
	is.Equal(col.Puzzles[1].Mate, 3)

	_, err = Load(strings.NewReader("puzzles: []\n"))
	is.True(errors.Is(err, ErrEmptyCollection))
	_, err = Load(strings.NewReader("puzzles: [[["))
	is.True(err != nil)
}

func TestLoadFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	is.NoErr(os.WriteFile(path, []byte(collectionYAML), 0o644))
	col, err := LoadFile(path)
	is.NoErr(err)
	is.Equal(len(col.Puzzles), 6)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestSolveAll(t *testing.T) {
	is := is.New(t)
	col, err := Load(strings.NewReader(collectionYAML))
	is.NoErr(err)
	sum, err := SolveAll(context.Background(), testConfig(t), col)
	is.NoErr(err)

	is.Equal(sum.Total, 6)
	is.Equal(sum.OK, 4)
	is.Equal(sum.Wrong, 1)
	is.Equal(sum.Errors, 1)
	is.Equal(sum.TimedOut, 0)

	byID := map[string]Report{}
	for _, r := range sum.Reports {
		byID[r.ID] = r
	}
	is.Equal(byID["gold-drop"].Moves, []string{"G*5b"})
	is.True(!byID["gold-drop"].Cached)
	is.True(byID["3"].Cached)
	is.Equal(byID["3"].Moves, []string{"G*5b"})
	is.Equal(byID["silver-knight"].Found, 3)
	is.Equal(byID["lone-pawn"].Outcome, tsume.NoMate.String())
	is.True(byID["lone-pawn"].OK)
	is.True(!byID["miscounted"].OK)
	is.True(byID["miscounted"].Cached)
	is.Equal(byID["broken"].Outcome, "error")
	is.True(byID["broken"].Error != "")
	// reports keep collection order
	is.Equal(sum.Reports[5].ID, "broken")
}

func TestSolveAllCancelled(t *testing.T) {
	is := is.New(t)
	col, err := Load(strings.NewReader(collectionYAML))
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := SolveAll(ctx, testConfig(t), col)
	is.NoErr(err)
	is.Equal(sum.TimedOut, 5)
	is.Equal(sum.Errors, 1)
	is.Equal(sum.OK, 0)
}

func TestSolveCached(t *testing.T) {
	is := is.New(t)
	c := cache.New()
	cfg := testConfig(t)
	a, err := SolveCached(context.Background(), c, cfg, "4k4/9/4G4/9/9/9/9/9/9 b G 1")
	is.NoErr(err)
	b, err := SolveCached(context.Background(), c, cfg, "4k4/9/4G4/9/9/9/9/9/9 b G 1")
	is.NoErr(err)
	is.True(a == b)
	is.Equal(c.Hits(), uint64(1))

	// a different ceiling is a different solve
	_, err = SolveCached(context.Background(), c, testConfig(t, "--max-plies=3"), "4k4/9/4G4/9/9/9/9/9/9 b G 1")
	is.NoErr(err)
	is.Equal(c.Len(), 2)
}

func TestSolveCachedDropsTimeout(t *testing.T) {
	is := is.New(t)
	c := cache.New()
	cfg := testConfig(t)
	const sfen = "4k4/9/4G4/9/9/9/9/9/9 b G 1"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stale, err := SolveCached(ctx, c, cfg, sfen)
	is.NoErr(err)
	is.Equal(stale.Outcome, tsume.TimedOut)
	is.Equal(c.Len(), 0)

	fresh, err := SolveCached(context.Background(), c, cfg, sfen)
	is.NoErr(err)
	is.Equal(fresh.Outcome, tsume.Mate)
	// a late cleanup for the timed-out solve leaves the new result alone
	is.True(!c.Forget(solveKey(cfg, sfen), stale))
	again, err := SolveCached(context.Background(), c, cfg, sfen)
	is.NoErr(err)
	is.True(again == fresh)
}

func TestWriteReport(t *testing.T) {
	is := is.New(t)
	col, err := Load(strings.NewReader(collectionYAML))
	is.NoErr(err)
	col.Puzzles = col.Puzzles[:2]
	sum, err := SolveAll(context.Background(), testConfig(t), col)
	is.NoErr(err)

	var buf bytes.Buffer
	is.NoErr(WriteReport(&buf, sum))
	var back Summary
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &back))
	is.Equal(back.Total, 2)
	is.Equal(back.OK, 2)
	is.Equal(back.Reports[1].Moves, sum.Reports[1].Moves)
	is.True(strings.Contains(buf.String(), "name: smoke"))
}
