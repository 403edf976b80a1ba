package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/internal/randutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultTrials, cfg.Trials)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Nil(t, cfg.Seed)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	src := `
trials       = 20000
range_trials = 10000
seed         = 42
workers      = 2
log_level    = "debug"

server {
  address = ":9090"
}

preset "tight" {
  range = "QQ+,AKs"
}

preset "BTN" {
  range = "22+"
}
`
	path := filepath.Join(t.TempDir(), "pokerequity.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20000, cfg.Trials)
	assert.Equal(t, 10000, cfg.RangeTrials)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ":9090", cfg.Server.Address)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	tight, ok := cfg.Preset("TIGHT")
	require.True(t, ok)
	assert.Equal(t, "QQ+,AKs", tight)

	btn, ok := cfg.Preset("btn")
	require.True(t, ok)
	assert.Equal(t, "22+", btn)

	utg, ok := cfg.Preset("UTG")
	require.True(t, ok)
	builtin, _ := analysis.Preset("UTG")
	assert.Equal(t, builtin, utg)

	names := cfg.PresetNames()
	assert.Len(t, names, len(analysis.PresetNames())+1)
	assert.Equal(t, "TIGHT", names[len(names)-1])
}

func TestSamplingOptions(t *testing.T) {
	t.Parallel()

	src := `
workers = 2

sampling {
  pair_cap        = 4
  combos_per_pair = 1
  min_runouts     = 50
}
`
	cfg, err := Parse([]byte(src), "sampling.hcl")
	require.NoError(t, err)
	assert.Equal(t, Sampling{PairCap: 4, CombosPerPair: 1, MinRunouts: 50}, *cfg.Sampling)

	sim := analysis.NewSimulator(randutil.New(1), cfg.SimulatorOptions()...)
	result, err := sim.SimulateRangeVsRange(context.Background(), "QQ+", "JJ,TT,99", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 4, result.PairsSampled)
	assert.Equal(t, 4, result.CombosSampled)
	assert.Equal(t, 4*50, result.Trials)

	assert.Len(t, Default().SimulatorOptions(), 3)
}

func TestParseAppliesDefaultsToZeroFields(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`trials = 1000`), "inline.hcl")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Trials)
	assert.Equal(t, DefaultRangeTrials, cfg.RangeTrials)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"syntax":        `trials = `,
		"wrong type":    `trials = "many"`,
		"negative":      `trials = -5`,
		"bad level":     `log_level = "loud"`,
		"bad preset":    "preset \"x\" {\n  range = \"ZZ\"\n}\n",
		"duplicate":     "preset \"x\" {\n  range = \"AA\"\n}\npreset \"X\" {\n  range = \"KK\"\n}\n",
		"unknown field": `colour = "blue"`,
		"missing range": "preset \"x\" {\n}\n",
		"bad sampling":  "sampling {\n  pair_cap = -1\n}\n",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}
