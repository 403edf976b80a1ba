// Package report saves equity results as TOML files.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/internal/fileutil"
)

// Kind names the calculation a report describes.
type Kind string

const (
	KindHands  Kind = "hands"
	KindRanges Kind = "ranges"
)

// Report is one saved calculation.
type Report struct {
	ID        string    `toml:"id"`
	Kind      Kind      `toml:"kind"`
	CreatedAt time.Time `toml:"created_at"`
	Seed      int64     `toml:"seed"`
	Input     Input     `toml:"input"`
	Result    Result    `toml:"result"`
}

// Input records what was asked for.
type Input struct {
	SideA  string `toml:"side_a"`
	SideB  string `toml:"side_b"`
	Board  string `toml:"board,omitempty"`
	Trials int    `toml:"trials"`
}

// Result mirrors analysis.EquityResult.
type Result struct {
	EquityA       float64 `toml:"equity_a"`
	EquityB       float64 `toml:"equity_b"`
	WinsA         int     `toml:"wins_a"`
	WinsB         int     `toml:"wins_b"`
	Ties          int     `toml:"ties"`
	Trials        int     `toml:"trials"`
	HandsA        int     `toml:"hands_a,omitempty"`
	HandsB        int     `toml:"hands_b,omitempty"`
	PairsSampled  int     `toml:"pairs_sampled,omitempty"`
	CombosSampled int     `toml:"combos_sampled,omitempty"`
	CILower       float64 `toml:"ci_lower"`
	CIUpper       float64 `toml:"ci_upper"`
}

// New builds a report stamped with a fresh ID and the given time.
func New(kind Kind, input Input, seed int64, result analysis.EquityResult, now time.Time) *Report {
	lower, upper := result.ConfidenceInterval()
	return &Report{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: now.UTC(),
		Seed:      seed,
		Input:     input,
		Result: Result{
			EquityA:       result.EquityA,
			EquityB:       result.EquityB,
			WinsA:         result.WinsA,
			WinsB:         result.WinsB,
			Ties:          result.Ties,
			Trials:        result.Trials,
			HandsA:        result.HandsA,
			HandsB:        result.HandsB,
			PairsSampled:  result.PairsSampled,
			CombosSampled: result.CombosSampled,
			CILower:       lower,
			CIUpper:       upper,
		},
	}
}

// Encode writes the report as TOML.
func Encode(w io.Writer, r *Report) error {
	if r == nil {
		return fmt.Errorf("report: nil report")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(r)
}

// Save writes the report to path atomically.
func Save(path string, r *Report) error {
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, r)
	}); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var r Report
	md, err := toml.Decode(string(data), &r)
	if err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("report: unknown keys in %s: %v", path, undecoded)
	}
	return &r, nil
}
