package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt      = 0.01
	DefaultSteps   = 1000
	DefaultEpsilon = 1e-6
	DefaultMass    = 1.0
	DefaultSpring  = 1.0
)

// MassConfig is one gravitating source for the gravity potential.
type MassConfig struct {
	Pos  []float64 `yaml:"pos"`
	Mass float64   `yaml:"mass"`
}

// Config selects the potential, the gauge/thermo parameters, and the run
// shape for a trunk simulation.
type Config struct {
	Potential string  `yaml:"potential"` // harmonic | gravity | doublewell
	Dt        float64 `yaml:"dt"`
	Steps     int     `yaml:"steps"`
	Seed      int64   `yaml:"seed"`
	Epsilon   float64 `yaml:"epsilon"`
	Numeric   bool    `yaml:"numeric"` // force central-difference gradients

	Omega float64 `yaml:"omega"` // rotation gauge rate; 0 = identity gauge
	AxisI int     `yaml:"axis_i"`
	AxisJ int     `yaml:"axis_j"`

	Gamma       float64 `yaml:"gamma"`
	Temperature float64 `yaml:"temperature"`
	Mass        float64 `yaml:"mass"`
	Sigma       float64 `yaml:"sigma"` // manual noise amplitude override

	Spring float64      `yaml:"spring"` // harmonic stiffness
	Masses []MassConfig `yaml:"masses"` // gravity sources

	InitState []float64 `yaml:"init_state"` // position ‖ velocity
}

func DefaultConfig() *Config {
	return &Config{
		Potential: "harmonic",
		Dt:        DefaultDt,
		Steps:     DefaultSteps,
		Epsilon:   DefaultEpsilon,
		AxisI:     0,
		AxisJ:     1,
		Mass:      DefaultMass,
		Spring:    DefaultSpring,
		InitState: []float64{1.0, 0.0, 0.0, 0.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if len(c.InitState)%2 != 0 {
		return fmt.Errorf("init_state must have even length, got %d", len(c.InitState))
	}
	switch c.Potential {
	case "harmonic", "gravity", "doublewell":
	default:
		return fmt.Errorf("unknown potential %q", c.Potential)
	}
	return nil
}

// GetInitState returns a copy of the initial position‖velocity vector.
func (c *Config) GetInitState() []float64 {
	if len(c.InitState) > 0 {
		return append([]float64(nil), c.InitState...)
	}
	return []float64{1.0, 0.0, 0.0, 0.0}
}
