package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/cmd/pokerequity/shared"
	"github.com/lox/pokerequity/internal/report"
)

// HandsCmd compares two starting hands.
type HandsCmd struct {
	HandA  string `arg:"" name:"hand-a" help:"First hand: AA, AKs, T9o or concrete cards like AsKh"`
	HandB  string `arg:"" name:"hand-b" help:"Second hand"`
	Trials int    `short:"i" help:"Number of Monte Carlo trials (default from config)"`
	Seed   *int64 `help:"Random seed for reproducible results"`
}

func (c *HandsCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	ctx, stop := shared.SetupSignalHandler(e.logger)
	defer stop()

	seed := e.seed(c.Seed)
	trials := firstPositive(c.Trials, e.cfg.Trials)
	e.logger.Debug().
		Str("hand_a", c.HandA).
		Str("hand_b", c.HandB).
		Int("trials", trials).
		Int64("seed", seed).
		Msg("Simulating hands")

	start := time.Now()
	result, err := g.simulate(ctx, "Simulating", func(ctx context.Context, progress analysis.ProgressFunc) (analysis.EquityResult, error) {
		return e.simulator(seed, progress).SimulateHandVsHand(ctx, c.HandA, c.HandB, trials)
	})
	if err != nil {
		return err
	}

	err = renderEquity(e.out, equityView{
		LabelA:  c.HandA,
		LabelB:  c.HandB,
		Result:  result,
		Seed:    seed,
		Elapsed: time.Since(start),
	})
	if err != nil {
		return err
	}
	return g.save(e, report.KindHands, report.Input{
		SideA:  c.HandA,
		SideB:  c.HandB,
		Trials: trials,
	}, seed, result)
}

// RangesCmd compares two ranges. Either side may come from a position preset
// instead of a positional argument.
type RangesCmd struct {
	RangeA    string `arg:"" optional:"" name:"range-a" help:"First range, e.g. \"QQ+,AKs\""`
	RangeB    string `arg:"" optional:"" name:"range-b" help:"Second range"`
	Board     string `short:"b" help:"Board cards, e.g. \"Ah Kd 2c\""`
	Trials    int    `short:"i" help:"Target number of trials (default from config)"`
	Seed      *int64 `help:"Random seed for reproducible results"`
	PositionA string `name:"position-a" help:"Use this position's preset as the first range"`
	PositionB string `name:"position-b" help:"Use this position's preset as the second range"`
}

// sides fills each side from its position flag or else from the next
// positional argument.
func (c *RangesCmd) sides(presets func(string) (string, bool)) (a, b string, err error) {
	var args []string
	for _, s := range []string{c.RangeA, c.RangeB} {
		if s != "" {
			args = append(args, s)
		}
	}

	resolve := func(position string) (string, error) {
		if position != "" {
			r, ok := presets(position)
			if !ok {
				return "", fmt.Errorf("%w: %q", errUnknownPosition, position)
			}
			return r, nil
		}
		if len(args) == 0 {
			return "", fmt.Errorf("%w: expected a range or a position", analysis.ErrEmptyRange)
		}
		r := args[0]
		args = args[1:]
		return r, nil
	}

	if a, err = resolve(c.PositionA); err != nil {
		return "", "", err
	}
	if b, err = resolve(c.PositionB); err != nil {
		return "", "", err
	}
	if len(args) > 0 {
		return "", "", fmt.Errorf("unexpected argument %q", args[0])
	}
	return a, b, nil
}

func label(position, notation string) string {
	if position != "" {
		return position
	}
	return notation
}

func (c *RangesCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	rangeA, rangeB, err := c.sides(e.cfg.Preset)
	if err != nil {
		return err
	}
	board, err := analysis.ParseBoard(c.Board)
	if err != nil {
		return err
	}

	ctx, stop := shared.SetupSignalHandler(e.logger)
	defer stop()

	seed := e.seed(c.Seed)
	trials := firstPositive(c.Trials, e.cfg.RangeTrials)
	e.logger.Debug().
		Str("range_a", rangeA).
		Str("range_b", rangeB).
		Str("board", board.String()).
		Int("trials", trials).
		Int64("seed", seed).
		Msg("Simulating ranges")

	start := time.Now()
	result, err := g.simulate(ctx, "Simulating", func(ctx context.Context, progress analysis.ProgressFunc) (analysis.EquityResult, error) {
		return e.simulator(seed, progress).SimulateRangeVsRange(ctx, rangeA, rangeB, c.Board, trials)
	})
	if err != nil {
		return err
	}

	err = renderEquity(e.out, equityView{
		LabelA:  label(c.PositionA, rangeA),
		LabelB:  label(c.PositionB, rangeB),
		Board:   board,
		Result:  result,
		Seed:    seed,
		Elapsed: time.Since(start),
		Ranges:  true,
	})
	if err != nil {
		return err
	}
	return g.save(e, report.KindRanges, report.Input{
		SideA:  rangeA,
		SideB:  rangeB,
		Board:  board.String(),
		Trials: trials,
	}, seed, result)
}

// simulate runs sim, behind a progress bar on stderr when asked for.
func (g *Globals) simulate(ctx context.Context, label string, sim simulation) (analysis.EquityResult, error) {
	if g.Progress {
		return withProgress(ctx, os.Stderr, label, sim)
	}
	return sim(ctx, nil)
}
