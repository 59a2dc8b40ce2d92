package config

import "sort"

var Presets = map[string]*Config{
	"original-hp": {
		A: 2, D0: 1, Steps: 10_000_000, Precision: "high", Digits: 80,
		Rounding: "quantized", Limit: 100, Angles: true, Progress: 10000,
	},
	"modified-hp": {
		A: 2, D0: 1, Steps: 10_000_000, Precision: "high", Digits: 80,
		Rounding: "continuous", Limit: 100, Angles: true, Progress: 10000,
	},
	"original-vs-modified": {
		A: 2, D0: 1, Steps: 10_000_000, Precision: "high", Digits: 80,
		Limit: 100, Angles: true, Progress: 10000,
		Compare: CompareConfig{
			A: SideConfig{Rounding: "quantized"},
			B: SideConfig{Rounding: "continuous"},
		},
	},
	"float-vs-hp": {
		A: 2, D0: 1, Steps: 10_000_000, Digits: 80,
		Rounding: "continuous", Limit: 100, Angles: true, Progress: 10000,
		Compare: CompareConfig{
			A: SideConfig{Precision: "standard"},
			B: SideConfig{Precision: "high"},
		},
	},
	"slow-growth": {
		A: 1.01, D0: 1, Steps: 2_000_000, Precision: "standard",
		Rounding: "continuous", Limit: 100, Window: 1000, Progress: 100000,
	},
	"long-run": {
		A: 1.5, D0: 1, Steps: 1_000_000_000, Precision: "standard",
		Rounding: "continuous", Window: 1000, Progress: 10_000_000,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
