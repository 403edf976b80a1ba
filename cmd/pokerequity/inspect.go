package main

import (
	"fmt"
	"strings"

	"github.com/lox/pokerequity/analysis"
)

// ParseCmd shows what a notation expands to.
type ParseCmd struct {
	Notation string `arg:"" help:"Hand or range notation, e.g. \"A5s+,KQo,22+\""`
}

func (c *ParseCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	rng, err := analysis.ParseRange(c.Notation)
	if err != nil {
		return err
	}
	return renderNotation(e.out, c.Notation, rng)
}

// GridCmd draws ranges on the starting hand chart.
type GridCmd struct {
	RangeA string `arg:"" name:"range-a" help:"Range or position name to highlight"`
	RangeB string `arg:"" optional:"" name:"range-b" help:"Optional second range or position to compare"`
}

func (c *GridCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	a, err := parseRangeOrPreset(c.RangeA, e.cfg.Preset)
	if err != nil {
		return err
	}
	var b *analysis.Range
	if c.RangeB != "" {
		if b, err = parseRangeOrPreset(c.RangeB, e.cfg.Preset); err != nil {
			return err
		}
	}
	return renderGrid(e.out, a, b)
}

// parseRangeOrPreset accepts a position name in place of a range.
func parseRangeOrPreset(text string, presets func(string) (string, bool)) (*analysis.Range, error) {
	if notation, ok := presets(text); ok {
		return analysis.ParseRange(notation)
	}
	rng, err := analysis.ParseRange(text)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a position nor a range: %w", strings.TrimSpace(text), err)
	}
	return rng, nil
}

// PresetsCmd lists the position presets.
type PresetsCmd struct{}

func (c *PresetsCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	return renderPresets(e.out, e.cfg.PresetNames(), e.cfg.Preset)
}
