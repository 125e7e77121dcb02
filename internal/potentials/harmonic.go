// Package potentials provides ready-made scalar potentials and their
// analytic fields for feeding the trunk engine's gradient layer.
package potentials

import "github.com/trunklab/trunksim/internal/trunk"

// Harmonic is the isotropic spring potential V(x) = ½k|x - c|².
type Harmonic struct {
	K      float64
	Center trunk.Vector
}

func NewHarmonic(k float64) *Harmonic {
	return &Harmonic{K: k}
}

func (h *Harmonic) Potential(x trunk.Vector) float64 {
	sum := 0.0
	for i, xi := range x {
		d := xi - h.center(i)
		sum += d * d
	}
	return 0.5 * h.K * sum
}

// Field is the analytic gradient force -k(x - c).
func (h *Harmonic) Field(x trunk.Vector) trunk.Vector {
	f := make(trunk.Vector, len(x))
	for i, xi := range x {
		f[i] = -h.K * (xi - h.center(i))
	}
	return f
}

func (h *Harmonic) center(i int) float64 {
	if i < len(h.Center) {
		return h.Center[i]
	}
	return 0
}
