package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

const (
	DefaultA        = 2.0
	DefaultD0       = 1.0
	DefaultSteps    = 1000
	DefaultDigits   = 80
	DefaultLimit    = 100.0
	DefaultWindow   = 1000
	DefaultProgress = 10000
)

type Config struct {
	A         float64       `yaml:"a,omitempty" toml:"a,omitempty"`
	D0        float64       `yaml:"d0,omitempty" toml:"d0,omitempty"`
	Steps     int64         `yaml:"steps,omitempty" toml:"steps,omitempty"`
	Precision string        `yaml:"precision,omitempty" toml:"precision,omitempty"`
	Digits    int           `yaml:"digits,omitempty" toml:"digits,omitempty"`
	Rounding  string        `yaml:"rounding,omitempty" toml:"rounding,omitempty"`
	Limit     float64       `yaml:"limit,omitempty" toml:"limit,omitempty"`
	Angles    bool          `yaml:"angles,omitempty" toml:"angles,omitempty"`
	Window    int           `yaml:"window,omitempty" toml:"window,omitempty"`
	Progress  int64         `yaml:"progress,omitempty" toml:"progress,omitempty"`
	Compare   CompareConfig `yaml:"compare,omitempty" toml:"compare,omitempty"`
}

// SideConfig overrides the shared settings for one side of a comparison.
type SideConfig struct {
	Precision string `yaml:"precision,omitempty" toml:"precision,omitempty"`
	Digits    int    `yaml:"digits,omitempty" toml:"digits,omitempty"`
	Rounding  string `yaml:"rounding,omitempty" toml:"rounding,omitempty"`
}

type CompareConfig struct {
	A SideConfig `yaml:"a,omitempty" toml:"a,omitempty"`
	B SideConfig `yaml:"b,omitempty" toml:"b,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		A:         DefaultA,
		D0:        DefaultD0,
		Steps:     DefaultSteps,
		Precision: precision.KindStandard.String(),
		Digits:    DefaultDigits,
		Rounding:  pursuit.Continuous.String(),
		Progress:  DefaultProgress,
	}
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Merge returns a copy of c with every non-zero field of o applied.
func (c *Config) Merge(o *Config) *Config {
	out := *c
	if o == nil {
		return &out
	}
	if o.A != 0 {
		out.A = o.A
	}
	if o.D0 != 0 {
		out.D0 = o.D0
	}
	if o.Steps != 0 {
		out.Steps = o.Steps
	}
	if o.Precision != "" {
		out.Precision = o.Precision
	}
	if o.Digits != 0 {
		out.Digits = o.Digits
	}
	if o.Rounding != "" {
		out.Rounding = o.Rounding
	}
	if o.Limit != 0 {
		out.Limit = o.Limit
	}
	if o.Angles {
		out.Angles = true
	}
	if o.Window != 0 {
		out.Window = o.Window
	}
	if o.Progress != 0 {
		out.Progress = o.Progress
	}
	out.Compare.A = out.Compare.A.merge(o.Compare.A)
	out.Compare.B = out.Compare.B.merge(o.Compare.B)
	return &out
}

func (s SideConfig) merge(o SideConfig) SideConfig {
	if o.Precision != "" {
		s.Precision = o.Precision
	}
	if o.Digits != 0 {
		s.Digits = o.Digits
	}
	if o.Rounding != "" {
		s.Rounding = o.Rounding
	}
	return s
}

// ToSim resolves names into a validated sim.Config.
func (c *Config) ToSim() (sim.Config, error) {
	return c.side(SideConfig{})
}

// Sides returns the two configurations of a comparison.
func (c *Config) Sides() (a, b sim.Config, err error) {
	if a, err = c.side(c.Compare.A); err != nil {
		return a, b, fmt.Errorf("side A: %w", err)
	}
	if b, err = c.side(c.Compare.B); err != nil {
		return a, b, fmt.Errorf("side B: %w", err)
	}
	return a, b, nil
}

func (c *Config) side(o SideConfig) (sim.Config, error) {
	s := SideConfig{Precision: c.Precision, Digits: c.Digits, Rounding: c.Rounding}.merge(o)

	kind, err := precision.ParseKind(s.Precision)
	if err != nil {
		return sim.Config{}, fmt.Errorf("%w: %w", pursuit.ErrInvalidConfiguration, err)
	}
	mode := precision.StandardMode()
	if kind == precision.KindHigh {
		mode = precision.HighMode(s.Digits)
	}
	rounding, err := pursuit.ParsePolicy(s.Rounding)
	if err != nil {
		return sim.Config{}, err
	}

	out := sim.Config{
		A:         c.A,
		D0:        c.D0,
		Steps:     c.Steps,
		Precision: mode,
		Rounding:  rounding,
		Limit:     c.Limit,
		Angles:    c.Angles,
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}
