package layers

import "github.com/trunklab/trunksim/internal/trunk"

// DefaultEpsilon is the finite-difference step for numeric gradients.
const DefaultEpsilon = 1e-6

// GradientForce is the conservative term -∇V(x). With an analytic field
// function the gradient is exact; otherwise a central difference with step
// Epsilon is used, two potential evaluations per axis.
type GradientForce struct {
	PotentialFunc trunk.PotentialFunc
	FieldFunc     trunk.FieldFunc
	Epsilon       float64
}

// NewGradientForce builds a gradient force layer. field may be nil, in which
// case the gradient is differenced numerically; epsilon <= 0 selects
// DefaultEpsilon.
func NewGradientForce(potential trunk.PotentialFunc, field trunk.FieldFunc, epsilon float64) *GradientForce {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &GradientForce{
		PotentialFunc: potential,
		FieldFunc:     field,
		Epsilon:       epsilon,
	}
}

func (g *GradientForce) Force(x, v trunk.Vector, t float64) trunk.Vector {
	if g.FieldFunc != nil {
		return g.FieldFunc(x)
	}
	grad := make(trunk.Vector, len(x))
	probe := x.Clone()
	for i := range x {
		probe[i] = x[i] + g.Epsilon
		plus := g.PotentialFunc(probe)
		probe[i] = x[i] - g.Epsilon
		minus := g.PotentialFunc(probe)
		probe[i] = x[i]
		grad[i] = -(plus - minus) / (2.0 * g.Epsilon)
	}
	return grad
}

func (g *GradientForce) Potential(x trunk.Vector) float64 {
	return g.PotentialFunc(x)
}

func (g *GradientForce) Conservative() bool { return true }

// InjectionForce is a non-conservative external drive I(x, v, t). It carries
// no potential, so it is excluded from the conserved-energy expression.
type InjectionForce struct {
	Func trunk.InjectionFunc
}

func NewInjectionForce(fn trunk.InjectionFunc) *InjectionForce {
	return &InjectionForce{Func: fn}
}

func (f *InjectionForce) Force(x, v trunk.Vector, t float64) trunk.Vector {
	return f.Func(x, v, t)
}

func (f *InjectionForce) Potential(x trunk.Vector) float64 { return 0 }

func (f *InjectionForce) Conservative() bool { return false }

// CallbackForce wraps a generic f(x, v) callback as a force layer. Kept for
// compatibility with rotational-term callbacks on the semi-implicit path.
type CallbackForce struct {
	Callback trunk.CallbackFunc
}

func NewCallbackForce(cb trunk.CallbackFunc) *CallbackForce {
	return &CallbackForce{Callback: cb}
}

func (f *CallbackForce) Force(x, v trunk.Vector, t float64) trunk.Vector {
	return f.Callback(x, v)
}

func (f *CallbackForce) Potential(x trunk.Vector) float64 { return 0 }

func (f *CallbackForce) Conservative() bool { return false }
