package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/tsume/config"
)

var (
	GitVersion string
)

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Info().Str("addr", addr).Msg("serving-metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics-server")
		}
	}()
}

// newRootCmd builds the command tree. Persistent flags are the config keys;
// the environment (TSUME_*) fills in whatever isn't given on the command
// line.
func newRootCmd() *cobra.Command {
	cfg := &config.Config{}
	var profile *os.File

	rootCmd := &cobra.Command{
		Use:           "tsume",
		Short:         "A tsume-shogi mate solver",
		Long:          `tsume finds the shortest forced mate in shogi checkmate puzzles, where every attacking move must give check.`,
		Version:       GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.BindFlags(cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			setupLogging(cfg)
			log.Debug().Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")
			if addr := cfg.GetString(config.ConfigMetricsAddr); addr != "" {
				serveMetrics(addr)
			}
			if path := cfg.GetString(config.ConfigCPUProfile); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				profile = f
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if profile != nil {
				pprof.StopCPUProfile()
				profile.Close()
				log.Info().Str("path", profile.Name()).Msg("wrote-cpu-profile")
			}
		},
	}
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newSolveCmd(cfg),
		newMovesCmd(cfg),
		newBatchCmd(cfg),
		newShellCmd(cfg),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
