package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/cmd/pokerequity/shared"
	"github.com/lox/pokerequity/internal/config"
	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/internal/report"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"pokerequity.hcl" type:"path" help:"Path to HCL configuration file"`
	Debug    bool   `help:"Enable debug logging"`
	NoColor  bool   `name:"no-color" env:"NO_COLOR" help:"Disable colored output"`
	Progress bool   `short:"p" help:"Show a progress bar while simulating"`
	Save     string `type:"path" help:"Also write the result to this TOML report file"`

	out io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Hands   HandsCmd         `cmd:"" help:"Equity of one starting hand against another"`
	Ranges  RangesCmd        `cmd:"" help:"Equity of one range against another, optionally on a board"`
	Parse   ParseCmd         `cmd:"" help:"Show the hands and combos a hand or range expands to"`
	Grid    GridCmd          `cmd:"" help:"Draw one or two ranges on the 13x13 starting hand chart"`
	Presets PresetsCmd       `cmd:"" help:"List position range presets"`
	Serve   ServeCmd         `cmd:"" help:"Serve the equity API over HTTP and WebSocket"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerequity"),
		kong.Description("Monte Carlo equity for heads-up poker hands and ranges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input, 130 for interruption and 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, analysis.ErrInvalidNotation),
		errors.Is(err, analysis.ErrInvalidRangeToken),
		errors.Is(err, analysis.ErrEmptyRange),
		errors.Is(err, analysis.ErrInvalidBoard),
		errors.Is(err, analysis.ErrNoValidCombinations),
		errors.Is(err, errUnknownPosition):
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

var errUnknownPosition = errors.New("unknown position")

// env is what a command needs after global flags are applied.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
	level  zerolog.Level
}

func (g *Globals) setup() (*env, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", g.Config, err)
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if g.Debug {
		level = zerolog.DebugLevel
	}

	out := g.out
	if out == nil {
		out = os.Stdout
	}
	return &env{
		cfg:    cfg,
		logger: shared.SetupLogger(level, g.NoColor),
		out:    out,
		level:  level,
	}, nil
}

// seed picks the flag, then the config file, then the clock.
func (e *env) seed(flag *int64) int64 {
	if flag != nil {
		return *flag
	}
	return randutil.Resolve(e.cfg.Seed)
}

func (e *env) simulator(seed int64, progress analysis.ProgressFunc) *analysis.Simulator {
	opts := append([]analysis.Option{analysis.WithLogger(e.logger)}, e.cfg.SimulatorOptions()...)
	if progress != nil {
		opts = append(opts, analysis.WithProgress(progress))
	}
	return analysis.NewSimulator(randutil.New(seed), opts...)
}

// save writes a report when --save was given.
func (g *Globals) save(e *env, kind report.Kind, input report.Input, seed int64, result analysis.EquityResult) error {
	if g.Save == "" {
		return nil
	}
	if err := report.Save(g.Save, report.New(kind, input, seed, result, time.Now())); err != nil {
		return err
	}
	e.logger.Info().Str("path", g.Save).Msg("Saved report")
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
