package config

var Presets = map[string]*Config{
	// Circular orbit around a unit point mass at the origin: r=1, |v|=1.
	"orbit": {
		Potential: "gravity", Dt: 0.005, Steps: 2000, Epsilon: DefaultEpsilon,
		AxisI: 0, AxisJ: 1, Mass: 1.0,
		Masses:    []MassConfig{{Pos: []float64{0, 0}, Mass: 1.0}},
		InitState: []float64{1.0, 0.0, 0.0, 1.0},
	},
	"well": {
		Potential: "harmonic", Dt: 0.01, Steps: 2000, Epsilon: DefaultEpsilon,
		AxisI: 0, AxisJ: 1, Mass: 1.0, Spring: 1.0,
		InitState: []float64{1.0, 0.0, 0.0, 0.0},
	},
	"coriolis": {
		Potential: "harmonic", Dt: 0.01, Steps: 2000, Epsilon: DefaultEpsilon,
		Omega: 0.5, AxisI: 0, AxisJ: 1, Mass: 1.0, Spring: 1.0,
		InitState: []float64{1.0, 0.0, 0.0, 1.0},
	},
	"thermal": {
		Potential: "harmonic", Dt: 0.01, Steps: 5000, Epsilon: DefaultEpsilon,
		AxisI: 0, AxisJ: 1, Gamma: 1.0, Temperature: 0.5, Mass: 1.0, Spring: 1.0,
		InitState: []float64{0.0, 0.0, 0.0, 0.0},
	},
	"bistable": {
		Potential: "doublewell", Dt: 0.005, Steps: 4000, Epsilon: DefaultEpsilon,
		AxisI: 0, AxisJ: 1, Gamma: 0.2, Temperature: 0.3, Mass: 1.0,
		InitState: []float64{1.1, 0.0, 0.0, 0.0},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.InitState = append([]float64(nil), cfg.InitState...)
	c.Masses = append([]MassConfig(nil), cfg.Masses...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
