package engine

import (
	"log/slog"

	"github.com/trunklab/trunksim/internal/layers"
	"github.com/trunklab/trunksim/internal/trunk"
)

// Builder assembles an engine from flat physics parameters, the convenience
// path over the canonical layer-based New. Zero values mean "absent": no
// field function, no rotation, no dissipation, no injection.
type Builder struct {
	potential     trunk.PotentialFunc
	field         trunk.FieldFunc
	rotational    trunk.CallbackFunc
	injection     trunk.InjectionFunc
	extraForces   []trunk.ForceLayer
	hasCoriolis   bool
	omega         float64
	axisI, axisJ  int
	gamma         float64
	temperature   float64
	mass          float64
	sigmaOverride float64
	dt            float64
	epsilon       float64
	seed          int64
	log           *slog.Logger
}

func NewBuilder(potential trunk.PotentialFunc) *Builder {
	return &Builder{
		potential: potential,
		mass:      1.0,
		dt:        DefaultDt,
		epsilon:   DefaultEpsilon,
		seed:      defaultSeed,
	}
}

// Field supplies the analytic gradient g(x) = -∇V(x); without it the
// gradient layer falls back to central differences.
func (b *Builder) Field(f trunk.FieldFunc) *Builder {
	b.field = f
	return b
}

// Rotational wraps a legacy f(x, v) callback as a non-conservative force.
func (b *Builder) Rotational(cb trunk.CallbackFunc) *Builder {
	b.rotational = cb
	return b
}

// Coriolis enables the rotation gauge at angular rate omega in the (i, j)
// plane, which switches the engine to the Strang scheme.
func (b *Builder) Coriolis(omega float64, i, j int) *Builder {
	b.hasCoriolis = true
	b.omega = omega
	b.axisI, b.axisJ = i, j
	return b
}

func (b *Builder) Gamma(gamma float64) *Builder {
	b.gamma = gamma
	return b
}

func (b *Builder) Temperature(t float64) *Builder {
	b.temperature = t
	return b
}

func (b *Builder) Mass(m float64) *Builder {
	b.mass = m
	return b
}

// NoiseSigma pins the noise amplitude directly (manual mode), bypassing the
// fluctuation-dissipation relation.
func (b *Builder) NoiseSigma(sigma float64) *Builder {
	b.sigmaOverride = sigma
	return b
}

func (b *Builder) Injection(fn trunk.InjectionFunc) *Builder {
	b.injection = fn
	return b
}

// AddForce appends an extra pre-built force layer.
func (b *Builder) AddForce(layer trunk.ForceLayer) *Builder {
	b.extraForces = append(b.extraForces, layer)
	return b
}

func (b *Builder) Dt(dt float64) *Builder {
	b.dt = dt
	return b
}

func (b *Builder) Epsilon(eps float64) *Builder {
	b.epsilon = eps
	return b
}

func (b *Builder) Seed(seed int64) *Builder {
	b.seed = seed
	return b
}

func (b *Builder) Logger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) Build() *Engine {
	forces := make([]trunk.ForceLayer, 0, 3+len(b.extraForces))
	if b.potential != nil {
		forces = append(forces, layers.NewGradientForce(b.potential, b.field, b.epsilon))
	}
	if b.injection != nil {
		forces = append(forces, layers.NewInjectionForce(b.injection))
	}
	if b.rotational != nil {
		forces = append(forces, layers.NewCallbackForce(b.rotational))
	}
	forces = append(forces, b.extraForces...)

	var gauge trunk.GaugeLayer = layers.NewIdentityGauge()
	if b.hasCoriolis {
		gauge = layers.NewRotationGauge(b.omega, b.axisI, b.axisJ)
	}

	var thermo trunk.ThermoLayer = layers.NewNullThermo()
	if b.gamma > 0 || b.sigmaOverride > 0 || b.temperature > 0 {
		thermo = layers.NewLangevinThermo(b.gamma, b.temperature, b.mass, b.sigmaOverride)
	}

	return New(forces, gauge, thermo,
		WithDt(b.dt),
		WithEpsilon(b.epsilon),
		WithSeed(b.seed),
		WithLogger(b.log))
}
