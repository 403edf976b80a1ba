package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lox/pokerequity/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() analysis.EquityResult {
	return analysis.EquityResult{
		EquityA:       62.5,
		EquityB:       37.5,
		WinsA:         600,
		WinsB:         350,
		Ties:          50,
		Trials:        1000,
		HandsA:        4,
		HandsB:        3,
		PairsSampled:  12,
		CombosSampled: 5,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("AEDT", 11*3600))
	r := New(KindRanges, Input{SideA: "QQ+", SideB: "TT", Board: "Ah Kd 2c", Trials: 1000}, 42, sampleResult(), now)

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.True(t, r.CreatedAt.Equal(now))
	assert.Equal(t, 12, r.Result.PairsSampled)
	assert.Less(t, r.Result.CILower, r.Result.EquityA)
	assert.Greater(t, r.Result.CIUpper, r.Result.EquityA)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := New(KindHands, Input{SideA: "AA", SideB: "KK", Trials: 1000}, 7, analysis.EquityResult{
		EquityA: 81.9, EquityB: 18.1, WinsA: 815, WinsB: 177, Ties: 8, Trials: 1000,
	}, time.Unix(0, 0))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r))

	out := buf.String()
	assert.Contains(t, out, `kind = "hands"`)
	assert.Contains(t, out, "[input]")
	assert.Contains(t, out, `side_a = "AA"`)
	assert.Contains(t, out, "[result]")
	assert.Contains(t, out, "equity_a = 81.9")
	assert.NotContains(t, out, "board")
	assert.NotContains(t, out, "pairs_sampled")

	require.Error(t, Encode(&buf, nil))
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "run.toml")
	r := New(KindRanges, Input{SideA: "QQ+", SideB: "TT", Board: "Ah Kd 2c", Trials: 1000}, 42, sampleResult(), time.Now())

	require.NoError(t, Save(path, r))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.ID, loaded.ID)
	assert.Equal(t, r.Input, loaded.Input)
	assert.Equal(t, r.Result, loaded.Result)
	assert.True(t, r.CreatedAt.Equal(loaded.CreatedAt))
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
