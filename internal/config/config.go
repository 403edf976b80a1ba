// Package config loads the pokerequity HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokerequity/analysis"
	"github.com/rs/zerolog"
)

// Defaults applied when the file or a field is missing.
const (
	DefaultTrials      = 50000
	DefaultRangeTrials = 50000
	DefaultAddress     = "localhost:8080"
	DefaultLogLevel    = "info"
)

// Config is the complete configuration.
type Config struct {
	Trials      int            `hcl:"trials,optional"`
	RangeTrials int            `hcl:"range_trials,optional"`
	Seed        *int64         `hcl:"seed,optional"`
	Workers     int            `hcl:"workers,optional"`
	LogLevel    string         `hcl:"log_level,optional"`
	Sampling    *Sampling      `hcl:"sampling,block"`
	Server      *ServerConfig  `hcl:"server,block"`
	Presets     []PresetConfig `hcl:"preset,block"`
}

// Sampling tunes how range-vs-range runs pick hand pairs and combos. Zero
// fields keep the engine defaults.
type Sampling struct {
	PairCap       int `hcl:"pair_cap,optional"`
	CombosPerPair int `hcl:"combos_per_pair,optional"`
	MinRunouts    int `hcl:"min_runouts,optional"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address string `hcl:"address,optional"`
}

// PresetConfig adds or overrides a named range.
type PresetConfig struct {
	Name  string `hcl:"name,label"`
	Range string `hcl:"range"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes configuration from HCL source.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trials == 0 {
		c.Trials = DefaultTrials
	}
	if c.RangeTrials == 0 {
		c.RangeTrials = DefaultRangeTrials
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Sampling == nil {
		c.Sampling = &Sampling{}
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
}

// Validate checks trial counts, the log level and every preset range.
func (c *Config) Validate() error {
	if c.Trials < 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.RangeTrials < 0 {
		return fmt.Errorf("range_trials must be positive, got %d", c.RangeTrials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if s := c.Sampling; s != nil && (s.PairCap < 0 || s.CombosPerPair < 0 || s.MinRunouts < 0) {
		return fmt.Errorf("sampling values must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		name := strings.ToUpper(p.Name)
		if seen[name] {
			return fmt.Errorf("preset %s defined twice", p.Name)
		}
		seen[name] = true
		if _, err := analysis.ParseRange(p.Range); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	return nil
}

// SimulatorOptions returns the engine options set in the file.
func (c *Config) SimulatorOptions() []analysis.Option {
	var opts []analysis.Option
	if c.Workers > 0 {
		opts = append(opts, analysis.WithWorkers(c.Workers))
	}
	if s := c.Sampling; s != nil {
		opts = append(opts,
			analysis.WithPairCap(s.PairCap),
			analysis.WithCombosPerPair(s.CombosPerPair),
			analysis.WithMinRunouts(s.MinRunouts),
		)
	}
	return opts
}

// Level returns the configured zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Preset resolves a position name against configured presets first and the
// built-in ones second.
func (c *Config) Preset(name string) (string, bool) {
	for _, p := range c.Presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.Range, true
		}
	}
	return analysis.Preset(name)
}

// PresetNames returns the built-in positions followed by any extra presets
// defined in the file.
func (c *Config) PresetNames() []string {
	names := analysis.PresetNames()
	for _, p := range c.Presets {
		if _, builtin := analysis.Preset(p.Name); !builtin {
			names = append(names, strings.ToUpper(p.Name))
		}
	}
	return names
}
