// Package config collects pricing run settings from defaults, an optional
// YAML (or JSON) file and command-line flags, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/contactkeval/quantmc/internal/option"
	"github.com/contactkeval/quantmc/internal/pricing"
	"github.com/contactkeval/quantmc/internal/rng"
)

// Config is the full set of run settings.
type Config struct {
	Rate   float64 `yaml:"rate"`   // annual risk-free rate
	Vol    float64 `yaml:"vol"`    // annualized volatility
	Spot   float64 `yaml:"spot"`   // initial underlying price
	Strike float64 `yaml:"strike"` // strike price
	TTM    float64 `yaml:"ttm"`    // time to maturity in years
	Right  string  `yaml:"right"`  // call, put or both
	Style  string  `yaml:"style"`  // european or american

	NPaths  int    `yaml:"npaths"`  // simulated paths
	NSteps  int    `yaml:"nsteps"`  // time steps
	Seed    string `yaml:"seed"`    // empty = derived from the clock
	Workers int    `yaml:"workers"` // <= 1 simulates serially

	Ticker    string `yaml:"ticker"`     // fetch spot from market data when set
	APIKey    string `yaml:"api_key"`    // market data API key
	ReportDir string `yaml:"report_dir"` // output directory for report files
	DumpPaths int    `yaml:"dump_paths"` // paths written to paths.csv, 0 = none
	Verbosity int    `yaml:"verbosity"`  // 0=errors,1=info,2=debug,3=trace

	ConfigPath string `yaml:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Rate:      0.05,
		Vol:       0.20,
		Spot:      100,
		Strike:    110,
		TTM:       1.0,
		Right:     "both",
		Style:     "european",
		NPaths:    100000,
		NSteps:    240,
		Workers:   1,
		Verbosity: 1,
	}
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.Rate, "rate", c.Rate, "annual risk-free rate")
	fs.Float64Var(&c.Vol, "vol", c.Vol, "annualized volatility")
	fs.Float64Var(&c.Spot, "spot", c.Spot, "initial underlying price")
	fs.Float64Var(&c.Strike, "strike", c.Strike, "strike price")
	fs.Float64Var(&c.TTM, "ttm", c.TTM, "time to maturity in years")
	fs.StringVar(&c.Right, "right", c.Right, "option right: call, put or both")
	fs.StringVar(&c.Style, "style", c.Style, "exercise style: european or american")
	fs.IntVar(&c.NPaths, "npaths", c.NPaths, "number of simulated paths")
	fs.IntVar(&c.NSteps, "nsteps", c.NSteps, "number of time steps")
	fs.StringVar(&c.Seed, "seed", c.Seed, "random seed (empty = derived from the clock)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel simulation workers (<= 1 = serial)")
	fs.StringVar(&c.Ticker, "ticker", c.Ticker, "fetch spot as the previous close of this ticker")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "market data API key (default $MASSIVE_API_KEY)")
	fs.StringVar(&c.ReportDir, "report-dir", c.ReportDir, "write prices.json (and paths.csv) to this directory")
	fs.IntVar(&c.DumpPaths, "paths", c.DumpPaths, "number of full paths to write to paths.csv")
	fs.IntVar(&c.Verbosity, "verbosity", c.Verbosity, "0=errors, 1=info, 2=debug, 3=trace")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "path to YAML or JSON config")
}

// Parse builds a Config from command-line arguments. When -config names a
// file, the file is applied over the defaults and flags given explicitly on
// the command line are applied over the file.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	cfg := Default()
	fs := newFlagSet(name, cfg, output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ConfigPath != "" {
		fileCfg, err := Load(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		fileCfg.ConfigPath = cfg.ConfigPath
		if err := newFlagSet(name, fileCfg, output).Parse(args); err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MASSIVE_API_KEY")
	}
	return cfg, nil
}

func newFlagSet(name string, cfg *Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	cfg.bind(fs)
	return fs
}

// Load reads a YAML or JSON file over the defaults. Fields missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings before any simulation work. Errors wrap
// pricing.ErrConfiguration.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"rate", c.Rate}, {"vol", c.Vol}, {"spot", c.Spot}, {"strike", c.Strike}, {"ttm", c.TTM},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s %v is not finite", pricing.ErrConfiguration, f.name, f.v)
		}
	}

	switch {
	case c.Vol < 0:
		return fmt.Errorf("%w: vol %v is negative", pricing.ErrConfiguration, c.Vol)
	case c.TTM <= 0:
		return fmt.Errorf("%w: ttm %v must be positive", pricing.ErrConfiguration, c.TTM)
	case c.NPaths < 1:
		return fmt.Errorf("%w: npaths %d must be at least 1", pricing.ErrConfiguration, c.NPaths)
	case c.NSteps < 1:
		return fmt.Errorf("%w: nsteps %d must be at least 1", pricing.ErrConfiguration, c.NSteps)
	case c.DumpPaths < 0:
		return fmt.Errorf("%w: paths %d is negative", pricing.ErrConfiguration, c.DumpPaths)
	case c.DumpPaths > 0 && c.ReportDir == "":
		return fmt.Errorf("%w: paths requires report-dir", pricing.ErrConfiguration)
	}

	if _, err := c.Rights(); err != nil {
		return err
	}
	if _, err := c.ExerciseStyle(); err != nil {
		return err
	}
	if c.Seed != "" {
		if _, err := rng.ParseSeed(c.Seed); err != nil {
			return fmt.Errorf("%w: %w", pricing.ErrConfiguration, err)
		}
	}
	return nil
}

// Rights resolves the right selector. "both" (or empty) prices calls and puts.
func (c *Config) Rights() ([]option.Right, error) {
	if s := strings.ToLower(strings.TrimSpace(c.Right)); s == "" || s == "both" {
		return []option.Right{option.Call, option.Put}, nil
	}
	r, err := option.ParseRight(c.Right)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pricing.ErrConfiguration, err)
	}
	return []option.Right{r}, nil
}

// ExerciseStyle resolves the style selector.
func (c *Config) ExerciseStyle() (option.Style, error) {
	s, err := option.ParseStyle(c.Style)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pricing.ErrConfiguration, err)
	}
	return s, nil
}

// RunSeed returns the configured seed, or a clock-derived one when none is set.
func (c *Config) RunSeed() (uint64, error) {
	if c.Seed == "" {
		return rng.NewSeed(), nil
	}
	seed, err := rng.ParseSeed(c.Seed)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pricing.ErrConfiguration, err)
	}
	return seed, nil
}
