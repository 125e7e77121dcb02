package trunk

import "math/rand"

// PotentialFunc is a scalar potential V(x).
type PotentialFunc func(x Vector) float64

// FieldFunc is an analytic field g(x) = -∇V(x).
type FieldFunc func(x Vector) Vector

// InjectionFunc is a non-conservative external drive I(x, v, t).
type InjectionFunc func(x, v Vector, t float64) Vector

// CallbackFunc is a generic force callback f(x, v), kept for compatibility
// with rotational-term callbacks.
type CallbackFunc func(x, v Vector) Vector

// NoiseMode tags how a thermostat's noise amplitude was resolved.
type NoiseMode string

const (
	// NoiseManual: σ was set explicitly by the caller.
	NoiseManual NoiseMode = "manual"
	// NoiseFDT: σ derives from the fluctuation-dissipation relation √(2γT/m).
	NoiseFDT NoiseMode = "fdt"
	// NoiseOff: no stochastic term.
	NoiseOff NoiseMode = "off"
)

// ForceLayer contributes an additive force term and, if conservative, a
// scalar potential. Non-conservative layers report a zero potential so the
// conserved-energy expression excludes them.
type ForceLayer interface {
	Force(x, v Vector, t float64) Vector
	Potential(x Vector) float64
	Conservative() bool
}

// GaugeLayer rotates the velocity vector exactly, preserving |v| in the
// rotated subspace and leaving other components unchanged.
type GaugeLayer interface {
	// Rotate applies the exact rotation accumulated over dt.
	Rotate(v Vector, dt float64) Vector
	// Skew reports whether the infinitesimal generator is skew-symmetric,
	// the structural property that guarantees norm preservation.
	Skew() bool
	// Active reports whether the gauge performs a non-trivial rotation;
	// the engine picks its splitting scheme from this at construction.
	Active() bool
}

// ThermoLayer is the combined dissipation + fluctuation term, integrated in
// closed form over a sub-interval.
type ThermoLayer interface {
	Gamma() float64
	Sigma() float64
	Mode() NoiseMode
	Temperature() float64
	Mass() float64
	// OUStep propagates v by the exact Ornstein-Uhlenbeck solution over h.
	OUStep(v Vector, h float64, rng *rand.Rand) Vector
	// CheckFDT reports whether σ is thermodynamically consistent with γ and T.
	CheckFDT() bool
}
