package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/tsume/config"
	"github.com/domino14/tsume/kif"
	"github.com/domino14/tsume/puzzles"
	"github.com/domino14/tsume/shell"
	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

const progressLogInterval = 2 * time.Second

// parseLine reads space-separated USI moves played from root.
func parseLine(root *shogi.Position, line string) ([]shogi.Move, error) {
	return tsume.ParseLine(root, strings.Fields(line))
}

func interruptible(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	if d := cfg.GetDuration(config.ConfigTimeout); d > 0 {
		tctx, cancel := context.WithTimeout(ctx, d)
		return tctx, func() {
			cancel()
			stop()
		}
	}
	return ctx, stop
}

func newSolveCmd(cfg *config.Config) *cobra.Command {
	var logPath, kifPath, kifEncoding string
	var noTT, noID, noOrdering bool

	cmd := &cobra.Command{
		Use:   "solve <sfen>",
		Short: "Find the shortest mate from a position",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := shogi.PositionFromSFEN(strings.Join(args, " "))
			if err != nil {
				return err
			}
			enc, err := kif.ParseEncoding(kifEncoding)
			if err != nil {
				return err
			}
			s := &tsume.Solver{}
			if err := s.Init(pos); err != nil {
				return err
			}
			s.ApplyConfig(cfg)
			s.SetTranspositionTableOptim(!noTT)
			s.SetIterativeDeepening(!noID)
			s.SetMoveOrdering(!noOrdering)

			lastLog := time.Now()
			s.SetProgressFunc(func(p tsume.Progress) {
				if time.Since(lastLog) < progressLogInterval {
					return
				}
				lastLog = time.Now()
				log.Info().Uint64("nodes", p.Nodes).Int("depth", p.Depth).
					Dur("elapsed", p.Elapsed).Msg("solve-progress")
			})
			if logPath != "" {
				f, err := os.Create(logPath)
				if err != nil {
					return err
				}
				defer f.Close()
				s.SetLogStream(f)
			}

			ctx, cancel := interruptible(cmd.Context(), cfg)
			defer cancel()
			res, err := s.Solve(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.String())
			for _, st := range res.Steps {
				fmt.Fprintf(out, "%3d. %-8s %s\n", st.Ply+1, st.USI, st.KIF)
			}
			if kifPath != "" && res.Outcome == tsume.Mate {
				return writeKIF(kifPath, pos, res, enc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "", "write a YAML search log to this file")
	cmd.Flags().StringVar(&kifPath, "kif", "", "write the mating line to this file as a KIF record")
	cmd.Flags().StringVar(&kifEncoding, "kif-encoding", "utf8", "encoding of the KIF record: utf8 or sjis")
	cmd.Flags().BoolVar(&noTT, "disable-tt", false, "search without the transposition table")
	cmd.Flags().BoolVar(&noID, "disable-id", false, "search once at the ceiling instead of deepening")
	cmd.Flags().BoolVar(&noOrdering, "disable-ordering", false, "don't sort moves")
	return cmd
}

func writeKIF(path string, root *shogi.Position, res *tsume.Result, enc kif.Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kif.Write(f, root, res, enc); err != nil {
		f.Close()
		return err
	}
	log.Info().Str("path", path).Str("encoding", enc.String()).Msg("wrote-kif")
	return f.Close()
}

func readKIFLine(root *shogi.Position, path string) ([]shogi.Move, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return kif.ReadMoves(root, f)
}

func newMovesCmd(cfg *config.Config) *cobra.Command {
	var line, kifPath string

	cmd := &cobra.Command{
		Use:   "moves <sfen>",
		Short: "List the tsume-legal moves after a line of play",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := shogi.PositionFromSFEN(strings.Join(args, " "))
			if err != nil {
				return err
			}
			var prefix []shogi.Move
			if kifPath != "" {
				prefix, err = readKIFLine(root, kifPath)
			} else {
				prefix, err = parseLine(root, line)
			}
			if err != nil {
				return err
			}
			moves, err := tsume.LegalMoves(root, prefix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			mover := root.SideToMove().After(len(prefix))
			for _, m := range moves {
				fmt.Fprintf(out, "%-8s %s\n", m.String(), m.KIF(mover))
			}
			log.Debug().Int("count", len(moves)).Int("ply", len(prefix)).Msg("listed-moves")
			return nil
		},
	}
	cmd.Flags().StringVar(&line, "line", "", `moves played from the position, e.g. "S*2b 1a1b"`)
	cmd.Flags().StringVar(&kifPath, "kif", "", "read the moves played from a KIF record instead")
	return cmd
}

func newBatchCmd(cfg *config.Config) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "batch <collection.yaml>",
		Short: "Solve a YAML collection of puzzles and report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := puzzles.LoadFile(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			sum, err := puzzles.SolveAll(ctx, cfg, col)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return puzzles.WriteReport(out, sum)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write the YAML report here instead of stdout")
	return cmd
}

func newShellCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse puzzles and solutions interactively",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			idleConnsClosed := make(chan struct{})
			sig := make(chan os.Signal, 1)
			go func() {
				signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
				<-sig
				log.Info().Msg("got quit signal...")
				close(idleConnsClosed)
			}()

			sc := shell.NewShellController(cfg)
			go sc.Loop(sig)
			<-idleConnsClosed
			log.Info().Msg("shell shutting down")
		},
	}
}
