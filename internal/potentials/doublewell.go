package potentials

import "github.com/trunklab/trunksim/internal/trunk"

// DoubleWell is the radial bistable potential V(x) = A(|x|² - B)², with
// minima on the sphere |x| = √B.
type DoubleWell struct {
	A, B float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{A: 1.0, B: 1.0}
}

func (d *DoubleWell) Potential(x trunk.Vector) float64 {
	r2 := x.Dot(x)
	diff := r2 - d.B
	return d.A * diff * diff
}

// Field is -∇V = -4A(|x|² - B)·x.
func (d *DoubleWell) Field(x trunk.Vector) trunk.Vector {
	r2 := x.Dot(x)
	scale := -4.0 * d.A * (r2 - d.B)
	return x.Scale(scale)
}
