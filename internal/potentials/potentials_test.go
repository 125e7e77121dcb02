package potentials

import (
	"math"
	"testing"

	"github.com/trunklab/trunksim/internal/trunk"
)

func TestHarmonic(t *testing.T) {
	h := NewHarmonic(2.0)
	x := trunk.Vector{1.0, -1.0}

	if math.Abs(h.Potential(x)-2.0) > 1e-12 {
		t.Errorf("expected V=2, got %f", h.Potential(x))
	}

	f := h.Field(x)
	if math.Abs(f[0]+2.0) > 1e-12 || math.Abs(f[1]-2.0) > 1e-12 {
		t.Errorf("expected field (-2, 2), got %v", f)
	}
}

func TestHarmonicOffCenter(t *testing.T) {
	h := &Harmonic{K: 1.0, Center: trunk.Vector{1.0, 0}}
	x := trunk.Vector{1.0, 0}

	if h.Potential(x) != 0 {
		t.Errorf("expected zero potential at center, got %f", h.Potential(x))
	}
	f := h.Field(x)
	if f[0] != 0 || f[1] != 0 {
		t.Errorf("expected zero field at center, got %v", f)
	}
}

func TestGravityPointMass(t *testing.T) {
	g := NewGravity([]PointMass{{Pos: trunk.Vector{0, 0}, Mass: 1.0}})
	x := trunk.Vector{2.0, 0}

	if math.Abs(g.Potential(x)+0.5) > 1e-12 {
		t.Errorf("expected V=-0.5 at r=2, got %f", g.Potential(x))
	}

	f := g.Field(x)
	if math.Abs(f[0]+0.25) > 1e-12 {
		t.Errorf("expected radial force -1/4 at r=2, got %v", f)
	}
	if math.Abs(f[1]) > 1e-15 {
		t.Errorf("expected no tangential force, got %v", f)
	}
}

func TestGravityMultipleSources(t *testing.T) {
	g := NewGravity([]PointMass{
		{Pos: trunk.Vector{-1, 0}, Mass: 1.0},
		{Pos: trunk.Vector{1, 0}, Mass: 1.0},
	})

	// midpoint: potentials add, fields cancel
	x := trunk.Vector{0, 0}
	if math.Abs(g.Potential(x)+2.0) > 1e-12 {
		t.Errorf("expected V=-2 at midpoint, got %f", g.Potential(x))
	}
	f := g.Field(x)
	if math.Abs(f[0]) > 1e-12 || math.Abs(f[1]) > 1e-12 {
		t.Errorf("expected cancelling field at midpoint, got %v", f)
	}
}

func TestGravitySofteningClampsNearSource(t *testing.T) {
	g := NewGravity([]PointMass{{Pos: trunk.Vector{0, 0}, Mass: 1.0}})

	v := g.Potential(trunk.Vector{0, 0})
	if math.IsInf(v, 0) || math.IsNaN(v) {
		t.Errorf("expected softened potential at the source, got %f", v)
	}
	if math.Abs(v+1.0/DefaultSoftening) > 1e-3 {
		t.Errorf("expected clamp at -1/softening, got %f", v)
	}
}

func TestDoubleWell(t *testing.T) {
	d := NewDoubleWell()

	// minima on |x| = sqrt(B)
	min := trunk.Vector{1.0, 0}
	if math.Abs(d.Potential(min)) > 1e-12 {
		t.Errorf("expected zero potential at the well minimum, got %f", d.Potential(min))
	}
	f := d.Field(min)
	if math.Abs(f[0]) > 1e-12 {
		t.Errorf("expected zero field at the well minimum, got %v", f)
	}

	// barrier at the origin
	if math.Abs(d.Potential(trunk.Vector{0, 0})-d.A*d.B*d.B) > 1e-12 {
		t.Errorf("wrong barrier height: %f", d.Potential(trunk.Vector{0, 0}))
	}
}

// The analytic fields must agree with a central difference of their own
// potentials; this ties the potentials package to the gradient-layer
// contract.
func TestFieldsMatchNumericGradient(t *testing.T) {
	cases := []struct {
		name      string
		potential func(trunk.Vector) float64
		field     func(trunk.Vector) trunk.Vector
		at        trunk.Vector
	}{
		{"harmonic", NewHarmonic(1.5).Potential, NewHarmonic(1.5).Field, trunk.Vector{0.5, -0.7}},
		{"gravity", NewGravity([]PointMass{{Pos: trunk.Vector{0, 0}, Mass: 2.0}}).Potential,
			NewGravity([]PointMass{{Pos: trunk.Vector{0, 0}, Mass: 2.0}}).Field, trunk.Vector{1.5, 0.5}},
		{"doublewell", NewDoubleWell().Potential, NewDoubleWell().Field, trunk.Vector{0.8, 0.2}},
	}

	eps := 1e-6
	for _, tc := range cases {
		analytic := tc.field(tc.at)
		for i := range tc.at {
			plus := tc.at.Clone()
			plus[i] += eps
			minus := tc.at.Clone()
			minus[i] -= eps
			numeric := -(tc.potential(plus) - tc.potential(minus)) / (2 * eps)
			if math.Abs(numeric-analytic[i]) > 1e-5 {
				t.Errorf("%s axis %d: numeric %f vs analytic %f", tc.name, i, numeric, analytic[i])
			}
		}
	}
}
