package config

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(ConfigMaxPlies), 29)
	is.Equal(cfg.GetUint64(ConfigCheckpointInterval), uint64(5000))
	is.Equal(cfg.GetFloat64(ConfigTTFractionOfMemory), 0.1)
	is.Equal(cfg.GetDuration(ConfigTimeout), time.Duration(0))
	is.True(cfg.GetInt(ConfigThreads) >= 1)
	is.True(!cfg.GetBool(ConfigDebug))
}

func TestFlagsOverride(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--max-plies", "9", "--timeout", "3s", "--debug", "--zobrist-seed=42"}))
	is.Equal(cfg.GetInt(ConfigMaxPlies), 9)
	is.Equal(cfg.GetDuration(ConfigTimeout), 3*time.Second)
	is.True(cfg.GetBool(ConfigDebug))
	is.Equal(cfg.GetUint64(ConfigZobristSeed), uint64(42))
}

func TestEnvOverride(t *testing.T) {
	is := is.New(t)
	t.Setenv("TSUME_NODE_LIMIT", "12345")
	t.Setenv("TSUME_MAX_PLIES", "15")
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetUint64(ConfigNodeLimit), uint64(12345))
	is.Equal(cfg.GetInt(ConfigMaxPlies), 15)

	// a flag that was given beats the environment
	cfg = &Config{}
	is.NoErr(cfg.Load([]string{"--max-plies=7"}))
	is.Equal(cfg.GetInt(ConfigMaxPlies), 7)
}

func TestBadFlag(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.True(cfg.Load([]string{"--no-such-flag"}) != nil)
}

func TestDefaultConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(ConfigMaxPlies), 29)
	is.Equal(cfg.GetString(ConfigMetricsAddr), "")
	is.True(len(cfg.SanitizedSettings()) > 0)
}
