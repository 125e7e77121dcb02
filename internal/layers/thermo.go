package layers

import (
	"math"
	"math/rand"

	"github.com/trunklab/trunksim/internal/trunk"
)

// fdtTolerance bounds |σ - √(2γT/m)| for the fluctuation-dissipation check.
const fdtTolerance = 1e-12

// LangevinThermo is the dissipation + fluctuation layer. The noise amplitude
// resolves in order: explicit override (manual), fluctuation-dissipation
// relation √(2γT/m) when T > 0 and γ > 0 (fdt), otherwise zero (off).
type LangevinThermo struct {
	gamma         float64
	temperature   float64
	mass          float64
	sigmaOverride float64
	modeOverride  trunk.NoiseMode
}

// NewLangevinThermo builds a thermostat. temperature <= 0 means no thermal
// coupling; mass <= 0 defaults to 1; sigmaOverride > 0 pins σ directly.
func NewLangevinThermo(gamma, temperature, mass, sigmaOverride float64) *LangevinThermo {
	if mass <= 0 {
		mass = 1.0
	}
	return &LangevinThermo{
		gamma:         gamma,
		temperature:   temperature,
		mass:          mass,
		sigmaOverride: sigmaOverride,
	}
}

func (l *LangevinThermo) Gamma() float64 { return l.gamma }

func (l *LangevinThermo) Sigma() float64 {
	if l.sigmaOverride > 0 {
		return l.sigmaOverride
	}
	if l.temperature > 0 && l.gamma > 0 {
		return math.Sqrt(2.0 * l.gamma * l.temperature / l.mass)
	}
	return 0
}

func (l *LangevinThermo) Mode() trunk.NoiseMode {
	if l.modeOverride != "" {
		return l.modeOverride
	}
	if l.sigmaOverride > 0 {
		return trunk.NoiseManual
	}
	if l.temperature > 0 && l.gamma > 0 {
		return trunk.NoiseFDT
	}
	return trunk.NoiseOff
}

// ForceMode pins the reported noise mode regardless of how σ was resolved,
// so a manually pinned σ can still be held to the FDT constraint.
func (l *LangevinThermo) ForceMode(mode trunk.NoiseMode) { l.modeOverride = mode }

func (l *LangevinThermo) Temperature() float64 { return l.temperature }

func (l *LangevinThermo) Mass() float64 { return l.mass }

// OUStep is the exact solution of dv = -γv dt + σ dW over interval h:
// exponential decay plus one Gaussian draw per dimension with amplitude
// σ√((1-e^{-2γh})/(2γ)). The γ→0 amplitude is the analytic limit σ√h, not
// the 0/0 of the general formula. Unconditionally stable for any h.
func (l *LangevinThermo) OUStep(v trunk.Vector, h float64, rng *rand.Rand) trunk.Vector {
	sigma := l.Sigma()

	decay := 1.0
	if l.gamma > 0 {
		decay = math.Exp(-l.gamma * h)
	}
	next := v.Scale(decay)

	if sigma > 0 {
		var amp float64
		if l.gamma > 0 {
			amp = sigma * math.Sqrt((1.0-math.Exp(-2.0*l.gamma*h))/(2.0*l.gamma))
		} else {
			amp = sigma * math.Sqrt(h)
		}
		for i := range next {
			next[i] += amp * rng.NormFloat64()
		}
	}

	return next
}

func (l *LangevinThermo) CheckFDT() bool {
	switch l.Mode() {
	case trunk.NoiseManual, trunk.NoiseOff:
		return true
	}
	expected := math.Sqrt(2.0 * l.gamma * l.temperature / l.mass)
	return math.Abs(l.Sigma()-expected) < fdtTolerance
}

// NullThermo is the strictly conservative limit: no dissipation, no noise.
// The consistency checker swaps it in for energy-drift verification.
type NullThermo struct{}

func NewNullThermo() *NullThermo { return &NullThermo{} }

func (n *NullThermo) Gamma() float64        { return 0 }
func (n *NullThermo) Sigma() float64        { return 0 }
func (n *NullThermo) Mode() trunk.NoiseMode { return trunk.NoiseOff }
func (n *NullThermo) Temperature() float64  { return 0 }
func (n *NullThermo) Mass() float64         { return 1.0 }
func (n *NullThermo) CheckFDT() bool        { return true }

func (n *NullThermo) OUStep(v trunk.Vector, h float64, rng *rand.Rand) trunk.Vector {
	return v
}
