// Package puzzles loads collections of mate puzzles and solves them in
// batches.
package puzzles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tsume/cache"
	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

var ErrEmptyCollection = errors.New("collection has no puzzles")

// Puzzle is one entry of a collection. Mate is the expected solution length
// in plies; 0 means the position is expected to have no mate within the
// configured ceiling.
type Puzzle struct {
	ID   string `yaml:"id"`
	SFEN string `yaml:"sfen"`
	Mate int    `yaml:"mate"`
}

type Collection struct {
	Name    string   `yaml:"name,omitempty"`
	Puzzles []Puzzle `yaml:"puzzles"`
}

// Report is the outcome for a single puzzle.
type Report struct {
	ID        string   `yaml:"id"`
	SFEN      string   `yaml:"sfen"`
	Outcome   string   `yaml:"outcome"`
	Expected  int      `yaml:"expected"`
	Found     int      `yaml:"found"`
	Moves     []string `yaml:"moves,omitempty"`
	Nodes     uint64   `yaml:"nodes"`
	ElapsedMs int64    `yaml:"elapsed_ms"`
	Cached    bool     `yaml:"cached,omitempty"`
	OK        bool     `yaml:"ok"`
	Error     string   `yaml:"error,omitempty"`
}

type Summary struct {
	Name     string   `yaml:"name,omitempty"`
	Total    int      `yaml:"total"`
	OK       int      `yaml:"ok"`
	Wrong    int      `yaml:"wrong"`
	TimedOut int      `yaml:"timed_out"`
	Errors   int      `yaml:"errors"`
	Nodes    uint64   `yaml:"nodes"`
	Reports  []Report `yaml:"reports"`
}

// Load reads a YAML collection. Puzzles without an id are numbered by their
// position in the file.
func Load(r io.Reader) (*Collection, error) {
	col := &Collection{}
	if err := yaml.NewDecoder(r).Decode(col); err != nil {
		return nil, fmt.Errorf("decoding puzzle collection: %w", err)
	}
	if len(col.Puzzles) == 0 {
		return nil, ErrEmptyCollection
	}
	for i := range col.Puzzles {
		if col.Puzzles[i].ID == "" {
			col.Puzzles[i].ID = strconv.Itoa(i + 1)
		}
	}
	return col, nil
}

func LoadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// solveKey names a cached solve. The result depends on the ceiling as well
// as the position.
func solveKey(cfg *config.Config, sfen string) string {
	return fmt.Sprintf("%s|%d|%d", sfen, cfg.GetInt(config.ConfigMaxPlies), cfg.GetUint64(config.ConfigNodeLimit))
}

// SolveOne solves a single position with its own solver, honoring the
// configured timeout.
func SolveOne(ctx context.Context, cfg *config.Config, sfen string) (*tsume.Result, error) {
	pos, err := shogi.PositionFromSFEN(sfen)
	if err != nil {
		return nil, err
	}
	s := &tsume.Solver{}
	if err := s.Init(pos); err != nil {
		return nil, err
	}
	s.ApplyConfig(cfg)
	if d := cfg.GetDuration(config.ConfigTimeout); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return s.Solve(ctx)
}

// SolveCached is SolveOne through c, so repeated positions are searched once.
// A solve that timed out is handed to everyone waiting on it but is not kept.
func SolveCached(ctx context.Context, c *cache.Cache, cfg *config.Config, sfen string) (*tsume.Result, error) {
	key := solveKey(cfg, sfen)
	obj, err := c.Get(cfg, key, func(cfg *config.Config, _ string) (any, error) {
		return SolveOne(ctx, cfg, sfen)
	})
	if err != nil {
		return nil, err
	}
	res := obj.(*tsume.Result)
	if res.Outcome == tsume.TimedOut {
		c.Forget(key, res)
	}
	return res, nil
}

func report(p Puzzle, res *tsume.Result, err error) Report {
	r := Report{ID: p.ID, SFEN: p.SFEN, Expected: p.Mate}
	if err != nil {
		r.Outcome = "error"
		r.Error = err.Error()
		return r
	}
	r.Outcome = res.Outcome.String()
	r.Found = len(res.Moves)
	r.Moves = res.MoveStrings()
	r.Nodes = res.Nodes
	r.ElapsedMs = res.Elapsed.Milliseconds()
	switch res.Outcome {
	case tsume.Mate:
		r.OK = r.Found == p.Mate
	case tsume.NoMate:
		r.OK = p.Mate == 0
	}
	return r
}

// SolveAll solves every puzzle in col, at most threads at a time. A puzzle
// that fails to load is reported, it doesn't stop the batch. Positions that
// appear more than once are solved once.
func SolveAll(ctx context.Context, cfg *config.Config, col *Collection) (*Summary, error) {
	threads := cfg.GetInt(config.ConfigThreads)
	if threads < 1 {
		threads = 1
	}
	results := cache.New()
	reports := make([]Report, len(col.Puzzles))
	sfens := lo.Map(col.Puzzles, func(p Puzzle, _ int) string { return p.SFEN })

	log.Info().Int("puzzles", len(col.Puzzles)).Int("threads", threads).Msg("solving-collection")
	ts := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, p := range col.Puzzles {
		i, p := i, p
		g.Go(func() error {
			res, err := SolveCached(gctx, results, cfg, p.SFEN)
			reports[i] = report(p, res, err)
			reports[i].Cached = lo.IndexOf(sfens, p.SFEN) != i
			log.Debug().Str("id", p.ID).Str("outcome", reports[i].Outcome).
				Int("found", reports[i].Found).Msg("puzzle-done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{
		Name:     col.Name,
		Total:    len(reports),
		OK:       lo.CountBy(reports, func(r Report) bool { return r.OK }),
		TimedOut: lo.CountBy(reports, func(r Report) bool { return r.Outcome == tsume.TimedOut.String() }),
		Errors:   lo.CountBy(reports, func(r Report) bool { return r.Error != "" }),
		Nodes: lo.SumBy(lo.Filter(reports, func(r Report, _ int) bool { return !r.Cached }),
			func(r Report) uint64 { return r.Nodes }),
		Reports: reports,
	}
	sum.Wrong = sum.Total - sum.OK - sum.TimedOut - sum.Errors
	log.Info().Int("ok", sum.OK).Int("wrong", sum.Wrong).Int("timed-out", sum.TimedOut).
		Int("errors", sum.Errors).Dur("elapsed", time.Since(ts)).Msg("collection-solved")
	return sum, nil
}

// WriteReport writes the summary as YAML.
func WriteReport(w io.Writer, sum *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sum); err != nil {
		return err
	}
	return enc.Close()
}
