package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tsume/cache"
	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/puzzles"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

func (sc *ShellController) loaded() error {
	if sc.root == nil {
		return errNoPuzzle
	}
	return nil
}

// current replays the browsing line from the root.
func (sc *ShellController) current() (*shogi.Position, error) {
	if err := sc.loaded(); err != nil {
		return nil, err
	}
	return tsume.Replay(sc.root, sc.line)
}

func (sc *ShellController) setRoot(sfen string) error {
	pos, err := shogi.PositionFromSFEN(sfen)
	if err != nil {
		return err
	}
	sc.root = pos
	sc.rootSFEN = pos.SFEN()
	sc.line = nil
	sc.listed = nil
	sc.solution = nil
	sc.solvedAt = nil
	return nil
}

// load takes an SFEN, or a puzzle from a collection file with
// `load -file coll.yaml -id name`.
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if path, ok := cmd.options["file"]; ok {
		col, err := puzzles.LoadFile(path)
		if err != nil {
			return nil, err
		}
		id := cmd.options["id"]
		if id == "" && len(cmd.args) > 0 {
			id = cmd.args[0]
		}
		p, ok := lo.Find(col.Puzzles, func(p puzzles.Puzzle) bool { return id == "" || p.ID == id })
		if !ok {
			return nil, fmt.Errorf("no puzzle %q in %s", id, path)
		}
		if err := sc.setRoot(p.SFEN); err != nil {
			return nil, err
		}
		log.Debug().Str("id", p.ID).Str("sfen", p.SFEN).Msg("loaded-puzzle")
		return sc.show(cmd)
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: load <sfen> | load -file <collection.yaml> [-id <id>]")
	}
	if err := sc.setRoot(strings.Join(cmd.args, " ")); err != nil {
		return nil, err
	}
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	pos, err := sc.current()
	if err != nil {
		return nil, err
	}
	return msg(pos.ToDisplayText()), nil
}

// solve searches from the current position, which must have the attacker to
// move. Options -plies and -timeout override the config for this solve.
func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	pos, err := sc.current()
	if err != nil {
		return nil, err
	}
	if pos.SideToMove() != shogi.Attacker {
		return nil, errors.New("the attacker must be on move to solve")
	}
	cfg := sc.config
	if len(cmd.options) > 0 {
		cfg = scratchConfig(sc.config)
	}
	if v, ok := cmd.options["plies"]; ok {
		plies, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.Set(config.ConfigMaxPlies, plies)
	}
	if v, ok := cmd.options["timeout"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, err
		}
		cfg.Set(config.ConfigTimeout, d)
	}
	if cache.GlobalObjectCache == nil {
		cache.CreateGlobalObjectCache()
	}
	res, err := puzzles.SolveCached(context.Background(), cache.GlobalObjectCache, cfg, pos.SFEN())
	if err != nil {
		return nil, err
	}
	sc.solution = res
	sc.solvedAt = pos
	return msg(res.String()), nil
}

// scratchConfig copies the settings of cfg so that one command can change
// them without touching the shell's config.
func scratchConfig(cfg *config.Config) *config.Config {
	c := config.DefaultConfig()
	for k, v := range cfg.AllSettings() {
		c.Set(k, v)
	}
	return c
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if err := sc.loaded(); err != nil {
		return nil, err
	}
	moves, err := tsume.LegalMoves(sc.root, sc.line)
	if err != nil {
		return nil, err
	}
	sc.listed = moves
	if len(moves) == 0 {
		if len(sc.line)%2 == 1 {
			return msg("No replies: mate."), nil
		}
		return msg("No checks available."), nil
	}
	mover := sc.root.SideToMove().After(len(sc.line))
	var sb strings.Builder
	for i, m := range moves {
		fmt.Fprintf(&sb, "%3d: %-8s %s\n", i+1, m.String(), m.KIF(mover))
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// play appends a move to the browsing line: either USI notation or #n from
// the last `moves` listing.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <move> | play #<n>")
	}
	pos, err := sc.current()
	if err != nil {
		return nil, err
	}
	legal, err := tsume.LegalMoves(sc.root, sc.line)
	if err != nil {
		return nil, err
	}
	var m shogi.Move
	if arg := cmd.args[0]; strings.HasPrefix(arg, "#") {
		idx, err := strconv.Atoi(arg[1:])
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(sc.listed) {
			return nil, errors.New("move outside range")
		}
		m = sc.listed[idx-1]
	} else {
		m, err = pos.ParseMove(arg)
		if err != nil {
			return nil, err
		}
	}
	if !lo.Contains(legal, m) {
		return nil, fmt.Errorf("%w: %s", shogi.ErrIllegalMove, m)
	}
	sc.line = append(sc.line, m)
	sc.listed = nil
	return sc.show(cmd)
}

func (sc *ShellController) back(cmd *shellcmd) (*Response, error) {
	if err := sc.loaded(); err != nil {
		return nil, err
	}
	if len(sc.line) == 0 {
		return nil, errors.New("already at the start")
	}
	sc.line = sc.line[:len(sc.line)-1]
	sc.listed = nil
	return sc.show(cmd)
}

func (sc *ShellController) reset(cmd *shellcmd) (*Response, error) {
	if err := sc.loaded(); err != nil {
		return nil, err
	}
	sc.line = nil
	sc.listed = nil
	return sc.show(cmd)
}

// continuation looks the current position up in the last solution.
func (sc *ShellController) continuation() ([]shogi.Move, error) {
	if sc.solution == nil {
		return nil, errNoSolution
	}
	pos, err := sc.current()
	if err != nil {
		return nil, err
	}
	pos.SetHasher(sc.solution.Hasher)
	cont, ok := sc.solution.Continuation(pos.Key())
	if !ok {
		return nil, errors.New("this position is not part of the known solution")
	}
	return cont, nil
}

func (sc *ShellController) cont(cmd *shellcmd) (*Response, error) {
	cont, err := sc.continuation()
	if err != nil {
		return nil, err
	}
	if len(cont) == 0 {
		return msg("Mate."), nil
	}
	return msg(strings.Join(lo.Map(cont, func(m shogi.Move, _ int) string { return m.String() }), " ")), nil
}

// next plays the first move of the known continuation.
func (sc *ShellController) next(cmd *shellcmd) (*Response, error) {
	cont, err := sc.continuation()
	if err != nil {
		return nil, err
	}
	if len(cont) == 0 {
		return nil, errors.New("no moves left: mate")
	}
	sc.line = append(sc.line, cont[0])
	sc.listed = nil
	return sc.show(cmd)
}

func (sc *ShellController) path(cmd *shellcmd) (*Response, error) {
	if err := sc.loaded(); err != nil {
		return nil, err
	}
	if len(sc.line) == 0 {
		return msg("(start position) " + sc.rootSFEN), nil
	}
	var sb strings.Builder
	for i, m := range sc.line {
		fmt.Fprintf(&sb, "%3d. %-8s %s\n", i+1, m.String(), m.KIF(sc.root.SideToMove().After(i)))
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
