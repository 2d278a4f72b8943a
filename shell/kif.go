package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tsume/kif"
	"github.com/domino14/tsume/tsume"
)

// kif writes the last solution as a KIF record (`kif <path> [-enc sjis]`),
// or with -read replays a record's moves from the start position.
func (sc *ShellController) kif(cmd *shellcmd) (*Response, error) {
	if path, ok := cmd.options["read"]; ok {
		if err := sc.loaded(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		line, err := kif.ReadMoves(sc.root, f)
		if err != nil {
			return nil, err
		}
		sc.line = line
		sc.listed = nil
		return sc.path(cmd)
	}

	if len(cmd.args) != 1 {
		return nil, errors.New("usage: kif <path> [-enc utf8|sjis] | kif -read <path>")
	}
	if sc.solution == nil {
		return nil, errNoSolution
	}
	if sc.solution.Outcome != tsume.Mate {
		return nil, kif.ErrNotMate
	}
	enc, err := kif.ParseEncoding(cmd.options["enc"])
	if err != nil {
		return nil, err
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := kif.Write(f, sc.solvedAt, sc.solution, enc); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	log.Debug().Str("path", cmd.args[0]).Str("encoding", enc.String()).Msg("wrote-kif")
	return msg(fmt.Sprintf("Wrote %d moves to %s", len(sc.solution.Moves), cmd.args[0])), nil
}
