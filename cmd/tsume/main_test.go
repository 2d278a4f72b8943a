package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tsume/kif"
	"github.com/domino14/tsume/puzzles"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

const mateIn3 = "8k/9/6G2/9/7N1/9/9/9/9 b S 1"

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseLine(t *testing.T) {
	is := is.New(t)
	root, err := shogi.PositionFromSFEN(mateIn3)
	is.NoErr(err)

	line, err := parseLine(root, "S*2b 1a1b")
	is.NoErr(err)
	is.Equal(len(line), 2)
	is.Equal(line[1].Piece, shogi.King)

	line, err = parseLine(root, "")
	is.NoErr(err)
	is.Equal(len(line), 0)

	// legal on the board, but gives no check
	_, err = parseLine(root, "2e1c")
	is.True(errors.Is(err, shogi.ErrIllegalMove))
	_, err = parseLine(root, "S*2b zz")
	is.True(errors.Is(err, shogi.ErrBadMove))
}

func TestSolveCommand(t *testing.T) {
	is := is.New(t)
	logPath := filepath.Join(t.TempDir(), "search.yaml")
	out, err := run(t, "solve", "--max-plies=5", "--zobrist-seed=3", "--log", logPath, mateIn3)
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "mate in 3"))
	is.True(strings.Contains(out, "  1. S*2b"))

	dat, err := os.ReadFile(logPath)
	is.NoErr(err)
	var entries []tsume.IterationLog
	is.NoErr(yaml.Unmarshal(dat, &entries))
	is.Equal(len(entries), 2)

	_, err = run(t, "solve", "4k4/9/9")
	is.True(errors.Is(err, shogi.ErrBadSFEN))
}

func TestMovesCommand(t *testing.T) {
	is := is.New(t)
	out, err := run(t, "moves", "--line", "S*2b", mateIn3)
	is.NoErr(err)
	is.True(strings.Contains(out, "1a1b"))

	out, err = run(t, "moves", mateIn3)
	is.NoErr(err)
	is.True(strings.Contains(out, "S*2b"))
}

func TestBatchCommand(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	colPath := filepath.Join(dir, "c.yaml")
	is.NoErr(os.WriteFile(colPath, []byte(`
name: cli
puzzles:
  - id: one
    sfen: 4k4/9/4G4/9/9/9/9/9/9 b G 1
    mate: 1
  - id: three
    sfen: 8k/9/6G2/9/7N1/9/9/9/9 b S 1
    mate: 3
`), 0o644))
	outPath := filepath.Join(dir, "report.yaml")
	_, err := run(t, "batch", "--max-plies=5", "--threads=2", "--out", outPath, colPath)
	is.NoErr(err)

	dat, err := os.ReadFile(outPath)
	is.NoErr(err)
	var sum puzzles.Summary
	is.NoErr(yaml.Unmarshal(dat, &sum))
	is.Equal(sum.Name, "cli")
	is.Equal(sum.OK, 2)

	_, err = run(t, "batch", filepath.Join(dir, "missing.yaml"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestKIFRoundTrip(t *testing.T) {
	is := is.New(t)
	kifPath := filepath.Join(t.TempDir(), "mate.kif")
	_, err := run(t, "solve", "--max-plies=5", "--zobrist-seed=3",
		"--kif", kifPath, "--kif-encoding", "sjis", mateIn3)
	is.NoErr(err)

	// the record ends in mate, so there is nothing left to play
	out, err := run(t, "moves", "--kif", kifPath, mateIn3)
	is.NoErr(err)
	is.Equal(out, "")

	_, err = run(t, "solve", "--kif-encoding", "ebcdic", mateIn3)
	is.True(errors.Is(err, kif.ErrUnknownEncoding))
}
