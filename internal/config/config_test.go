package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	sc, err := cfg.ToSim()
	if err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if sc.A != 2 || sc.D0 != 1 {
		t.Errorf("expected a=2 d0=1, got %v", sc)
	}
	if sc.Precision.Kind != precision.KindStandard {
		t.Errorf("expected standard precision, got %s", sc.Precision)
	}
	if sc.Rounding != pursuit.Continuous {
		t.Errorf("expected continuous rounding, got %s", sc.Rounding)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "a: 1.5\nsteps: 42\nprecision: high\ndigits: 60\nrounding: quantized\nlimit: 10\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := cfg.ToSim()
	if err != nil {
		t.Fatal(err)
	}
	if sc.A != 1.5 || sc.Steps != 42 || sc.Limit != 10 {
		t.Errorf("unexpected config %v", sc)
	}
	if sc.Precision != precision.HighMode(60) {
		t.Errorf("expected high(60), got %s", sc.Precision)
	}
	if sc.Rounding != pursuit.Quantized {
		t.Errorf("expected quantized, got %s", sc.Rounding)
	}
	if sc.D0 != DefaultD0 {
		t.Errorf("expected default d0, got %v", sc.D0)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmp.toml")
	data := `a = 1.25
steps = 100

[compare.a]
precision = "standard"

[compare.b]
precision = "high"
digits = 50
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	a, b, err := cfg.Sides()
	if err != nil {
		t.Fatal(err)
	}
	if a.A != 1.25 || b.A != 1.25 {
		t.Errorf("shared a not applied: %v / %v", a.A, b.A)
	}
	if a.Precision.Kind != precision.KindStandard || b.Precision != precision.HighMode(50) {
		t.Errorf("sides: %s / %s", a.Precision, b.Precision)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		path := filepath.Join(t.TempDir(), "cfg"+ext)
		want := GetPreset("float-vs-hp")
		if err := Save(path, want); err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if got.A != want.A || got.Limit != want.Limit || got.Compare != want.Compare {
			t.Errorf("%s: got %+v, want %+v", ext, got, want)
		}
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"a too small", func(c *Config) { c.A = 1 }},
		{"d0 too small", func(c *Config) { c.D0 = 0.5 }},
		{"unknown precision", func(c *Config) { c.Precision = "quad" }},
		{"zero digits", func(c *Config) { c.Precision = "high"; c.Digits = 0 }},
		{"unknown rounding", func(c *Config) { c.Rounding = "floor" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mod(cfg)
		if _, err := cfg.ToSim(); !errors.Is(err, pursuit.ErrInvalidConfiguration) {
			t.Errorf("%s: got %v, want ErrInvalidConfiguration", tt.name, err)
		}
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	out := base.Merge(&Config{A: 3, Angles: true, Compare: CompareConfig{B: SideConfig{Digits: 30}}})

	if out.A != 3 || !out.Angles || out.Compare.B.Digits != 30 {
		t.Errorf("override not applied: %+v", out)
	}
	if out.Steps != DefaultSteps || base.A != DefaultA {
		t.Error("merge must keep unset fields and leave the receiver alone")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if _, _, err := cfg.Sides(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("slow-growth")
	cfg.A = 9
	if Presets["slow-growth"].A == 9 {
		t.Error("preset was modified through the returned copy")
	}
}
