package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigMaxPlies           = "max-plies"
	ConfigCheckpointInterval = "checkpoint-interval"
	ConfigTTFractionOfMemory = "tt-fraction-of-memory"
	ConfigZobristSeed        = "zobrist-seed"
	ConfigNodeLimit          = "node-limit"
	ConfigTimeout            = "timeout"
	ConfigThreads            = "threads"
	ConfigDebug              = "debug"
	ConfigMetricsAddr        = "metrics-addr"
	ConfigCPUProfile         = "cpu-profile"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only the defaults and whatever the
// environment overrides.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigMaxPlies, 29)
	c.SetDefault(ConfigCheckpointInterval, 5000)
	c.SetDefault(ConfigTTFractionOfMemory, 0.1)
	c.SetDefault(ConfigZobristSeed, 0)
	c.SetDefault(ConfigNodeLimit, 0)
	c.SetDefault(ConfigTimeout, time.Duration(0))
	c.SetDefault(ConfigThreads, runtime.NumCPU())
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigMetricsAddr, "")
	c.SetDefault(ConfigCPUProfile, "")

	c.SetEnvPrefix("tsume")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
}

// AddFlags declares every setting on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.Int(ConfigMaxPlies, 29, "longest mate to search for, in plies")
	fs.Uint64(ConfigCheckpointInterval, 5000, "node visits between cancellation checks and progress reports")
	fs.Float64(ConfigTTFractionOfMemory, 0.1, "fraction of system memory the transposition table may use")
	fs.Uint64(ConfigZobristSeed, 0, "seed for the position hash keys; 0 picks random keys")
	fs.Uint64(ConfigNodeLimit, 0, "give up after this many node visits; 0 means no limit")
	fs.Duration(ConfigTimeout, 0, "give up after this long; 0 means no timeout")
	fs.Int(ConfigThreads, runtime.NumCPU(), "puzzles solved at once in batch mode")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigMetricsAddr, "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
}

// BindFlags makes the values in fs visible through c. Flags that were not
// set on the command line keep the viper precedence (env, then default).
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	c.setDefaults()
	return c.BindPFlags(fs)
}

// Load parses command-line style args into the config.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("tsume", pflag.ContinueOnError)
	AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.BindFlags(fs)
}

// SanitizedSettings returns the settings suitable for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
