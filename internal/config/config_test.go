package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Potential != "harmonic" {
		t.Errorf("expected potential harmonic, got %s", cfg.Potential)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"odd init state", func(c *Config) { c.InitState = []float64{1, 2, 3} }},
		{"unknown potential", func(c *Config) { c.Potential = "mystery" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("orbit")
	if cfg == nil {
		t.Fatal("expected orbit preset")
	}
	if cfg.Potential != "gravity" {
		t.Errorf("expected gravity potential, got %s", cfg.Potential)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("orbit preset should validate: %v", err)
	}

	// mutating the returned config must not corrupt the preset table
	cfg.InitState[0] = 99
	if Presets["orbit"].InitState[0] == 99 {
		t.Error("preset table aliased by GetPreset result")
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunk.yaml")

	cfg := GetPreset("thermal")
	cfg.Seed = 42
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Potential != cfg.Potential || loaded.Gamma != cfg.Gamma || loaded.Seed != 42 {
		t.Errorf("roundtrip mismatch: %+v vs %+v", loaded, cfg)
	}
	if len(loaded.InitState) != len(cfg.InitState) {
		t.Errorf("init state lost in roundtrip: %v", loaded.InitState)
	}
}
