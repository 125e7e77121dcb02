package potentials

import (
	"math"

	"github.com/trunklab/trunksim/internal/trunk"
)

const (
	DefaultG         = 1.0
	DefaultSoftening = 1e-6
)

// PointMass is one gravitating source.
type PointMass struct {
	Pos  trunk.Vector
	Mass float64
}

// Gravity sums Newtonian point-mass potentials,
// V(x) = -G Σ mᵢ/|x - xᵢ|, with the separation clamped below Softening for
// numerical stability near a source.
type Gravity struct {
	Masses    []PointMass
	G         float64
	Softening float64
}

func NewGravity(masses []PointMass) *Gravity {
	return &Gravity{
		Masses:    masses,
		G:         DefaultG,
		Softening: DefaultSoftening,
	}
}

func (g *Gravity) Potential(x trunk.Vector) float64 {
	total := 0.0
	for _, m := range g.Masses {
		r := separation(x, m.Pos)
		if r < g.Softening {
			r = g.Softening
		}
		total += -g.G * m.Mass / r
	}
	return total
}

// Field is the analytic gravitational force per unit mass,
// g(x) = -G Σ mᵢ (x - xᵢ)/|x - xᵢ|³.
func (g *Gravity) Field(x trunk.Vector) trunk.Vector {
	f := make(trunk.Vector, len(x))
	for _, m := range g.Masses {
		r := separation(x, m.Pos)
		if r < g.Softening {
			r = g.Softening
		}
		r3 := r * r * r
		for i := range x {
			f[i] += -g.G * m.Mass * (x[i] - pos(m.Pos, i)) / r3
		}
	}
	return f
}

func separation(x, center trunk.Vector) float64 {
	sum := 0.0
	for i := range x {
		d := x[i] - pos(center, i)
		sum += d * d
	}
	return math.Sqrt(sum)
}

func pos(center trunk.Vector, i int) float64 {
	if i < len(center) {
		return center[i]
	}
	return 0
}
