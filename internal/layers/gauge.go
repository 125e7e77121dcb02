package layers

import (
	"math"

	"github.com/trunklab/trunksim/internal/trunk"
)

// RotationGauge rotates the velocity in the 2-D plane spanned by axes
// (I, J) at angular rate Omega. Rotate applies the exact 2x2 rotation for
// θ = ω·dt, the closed-form solution of dv/dt = ωJv, so speed in that plane
// is preserved to machine precision for any dt.
type RotationGauge struct {
	Omega float64
	I, J  int
}

func NewRotationGauge(omega float64, i, j int) *RotationGauge {
	return &RotationGauge{Omega: omega, I: i, J: j}
}

func (g *RotationGauge) Rotate(v trunk.Vector, dt float64) trunk.Vector {
	theta := g.Omega * dt
	c, s := math.Cos(theta), math.Sin(theta)
	rotated := v.Clone()
	vi, vj := v[g.I], v[g.J]
	rotated[g.I] = c*vi - s*vj
	rotated[g.J] = s*vi + c*vj
	return rotated
}

// Skew is structurally true: the generator J has J[i][j] = -1, J[j][i] = 1,
// so J^T = -J by construction.
func (g *RotationGauge) Skew() bool { return true }

func (g *RotationGauge) Active() bool { return true }

// IdentityGauge is the no-rotation gauge; the engine falls back to the
// semi-implicit scheme when it is configured.
type IdentityGauge struct{}

func NewIdentityGauge() *IdentityGauge { return &IdentityGauge{} }

func (g *IdentityGauge) Rotate(v trunk.Vector, dt float64) trunk.Vector { return v }

func (g *IdentityGauge) Skew() bool { return true }

func (g *IdentityGauge) Active() bool { return false }
