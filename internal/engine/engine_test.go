package engine

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/trunklab/trunksim/internal/layers"
	"github.com/trunklab/trunksim/internal/potentials"
	"github.com/trunklab/trunksim/internal/trunk"
)

func orbitEngine(opts ...Option) (*Engine, *trunk.State) {
	grav := potentials.NewGravity([]potentials.PointMass{{Pos: trunk.Vector{0, 0}, Mass: 1.0}})
	grad := layers.NewGradientForce(grav.Potential, grav.Field, 0)
	eng := New([]trunk.ForceLayer{grad}, nil, nil, opts...)
	// circular orbit: r=1, |v|=1 for G=M=1
	return eng, trunk.NewState(trunk.Vector{1, 0, 0, 1})
}

func TestAdvanceRejectsOddVector(t *testing.T) {
	g := NewWithT(t)
	eng, _ := orbitEngine()

	_, err := eng.Advance(trunk.NewState(trunk.Vector{1, 2, 3}))

	g.Expect(err).To(MatchError(trunk.ErrOddStateVector))
	g.Expect(eng.Time()).To(BeZero(), "failed advance must not move the clock")
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	g := NewWithT(t)
	eng, state := orbitEngine()
	state.Energy = -0.5

	next, err := eng.Advance(state)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(state.Vector).To(Equal(trunk.Vector{1, 0, 0, 1}))
	g.Expect(state.Energy).To(Equal(-0.5))
	g.Expect(next).ToNot(BeIdenticalTo(state))
	g.Expect(next.Vector).ToNot(Equal(state.Vector))
}

func TestAdvanceWritesDiagnostics(t *testing.T) {
	g := NewWithT(t)
	eng, state := orbitEngine()

	next, err := eng.Advance(state)

	g.Expect(err).ToNot(HaveOccurred())
	rec, ok := next.Extension(ExtensionKey)
	g.Expect(ok).To(BeTrue())

	diag := rec.(Diagnostics)
	g.Expect(diag.TotalEnergy).To(Equal(diag.KineticEnergy + diag.PotentialEnergy))
	g.Expect(diag.TotalEnergy).To(Equal(next.Energy))
	g.Expect(diag.Time).To(BeNumerically("~", eng.Dt(), 1e-15))
	g.Expect(diag.Field).To(HaveLen(2))
	g.Expect(diag.Scheme).To(Equal("semi-implicit-euler"))
}

func TestEulerConservationCircularOrbit(t *testing.T) {
	g := NewWithT(t)
	eng, state := orbitEngine(WithDt(0.005))

	traj, _, err := eng.Run(state, 1000)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(traj.Energies[0]).To(BeNumerically("~", -0.5, 1e-9))
	g.Expect(traj.FinalDrift()).To(BeNumerically("<", 1e-2))
}

// With a zero-rate rotation gauge the Strang path is classical velocity
// Verlet; its energy error on a circular orbit stays bounded and small.
func TestStrangConservationCircularOrbit(t *testing.T) {
	g := NewWithT(t)
	grav := potentials.NewGravity([]potentials.PointMass{{Pos: trunk.Vector{0, 0}, Mass: 1.0}})
	grad := layers.NewGradientForce(grav.Potential, grav.Field, 0)
	eng := New([]trunk.ForceLayer{grad}, layers.NewRotationGauge(0, 0, 1), nil, WithDt(0.01))
	state := trunk.NewState(trunk.Vector{1, 0, 0, 1})

	g.Expect(eng.Scheme()).To(Equal("strang"))

	traj, _, err := eng.Run(state, 1000)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(traj.FinalDrift()).To(BeNumerically("<", 1e-3))
}

// Rotation gauge alone: the exact rotation preserves speed to machine
// precision for arbitrary dt, with no discretization error to accumulate.
func TestStrangSpeedInvariantUnderPureRotation(t *testing.T) {
	g := NewWithT(t)
	zero := func(x trunk.Vector) float64 { return 0 }
	noForce := layers.NewGradientForce(zero, func(x trunk.Vector) trunk.Vector {
		return trunk.Zeros(len(x))
	}, 0)
	eng := New([]trunk.ForceLayer{noForce}, layers.NewRotationGauge(1.3, 0, 1), nil, WithDt(0.1))

	state := trunk.NewState(trunk.Vector{0, 0, 0.6, -0.8})
	speed := 1.0

	cur := state
	var err error
	for i := 0; i < 10000; i++ {
		cur, err = eng.Advance(cur)
		g.Expect(err).ToNot(HaveOccurred())
	}

	_, v := cur.Split()
	g.Expect(v.Norm()).To(BeNumerically("~", speed, 1e-12))
}

func TestAdvanceDimensionMismatchFailsAtomically(t *testing.T) {
	g := NewWithT(t)
	bad := layers.NewInjectionForce(func(x, v trunk.Vector, tm float64) trunk.Vector {
		return trunk.Vector{1, 2, 3} // wrong dimension on purpose
	})
	eng := New([]trunk.ForceLayer{bad}, nil, nil)

	state := trunk.NewState(trunk.Vector{0, 0, 1, 1})
	_, err := eng.Advance(state)

	g.Expect(err).To(MatchError(trunk.ErrDimensionMismatch))
	g.Expect(eng.Time()).To(BeZero())
	g.Expect(state.Vector).To(Equal(trunk.Vector{0, 0, 1, 1}))
}

func TestSameSeedSameTrajectory(t *testing.T) {
	g := NewWithT(t)

	build := func() (*Engine, *trunk.State) {
		h := potentials.NewHarmonic(1.0)
		return NewBuilder(h.Potential).
				Field(h.Field).
				Gamma(0.5).
				Temperature(0.3).
				Dt(0.01).
				Seed(1234).
				Build(),
			trunk.NewState(trunk.Vector{1, 0, 0, 0})
	}

	engA, stateA := build()
	engB, stateB := build()

	_, finalA, errA := engA.Run(stateA, 200)
	_, finalB, errB := engB.Run(stateB, 200)

	g.Expect(errA).ToNot(HaveOccurred())
	g.Expect(errB).ToNot(HaveOccurred())
	g.Expect(finalA.Vector).To(Equal(finalB.Vector))
}

// Velocity variance under the thermostat relaxes to T/m (equipartition).
func TestThermalEquipartition(t *testing.T) {
	g := NewWithT(t)
	h := potentials.NewHarmonic(1.0)
	eng := NewBuilder(h.Potential).
		Field(h.Field).
		Gamma(1.0).
		Temperature(0.5).
		Dt(0.05).
		Seed(99).
		Build()

	state := trunk.NewState(trunk.Vector{0, 0, 0, 0})
	cur := state
	var err error

	// burn-in
	for i := 0; i < 1000; i++ {
		cur, err = eng.Advance(cur)
		g.Expect(err).ToNot(HaveOccurred())
	}

	sumSq, samples := 0.0, 0
	for i := 0; i < 20000; i++ {
		cur, err = eng.Advance(cur)
		g.Expect(err).ToNot(HaveOccurred())
		_, v := cur.Split()
		for _, vi := range v {
			sumSq += vi * vi
			samples++
		}
	}

	variance := sumSq / float64(samples)
	g.Expect(variance).To(BeNumerically("~", 0.5, 0.1))
}

// Injection power must account for every non-conservative layer, not just
// injection layers.
func TestInjectionPowerGeneralized(t *testing.T) {
	g := NewWithT(t)
	zero := func(x trunk.Vector) float64 { return 0 }
	noForce := layers.NewGradientForce(zero, func(x trunk.Vector) trunk.Vector {
		return trunk.Zeros(len(x))
	}, 0)
	custom := layers.NewCallbackForce(func(x, v trunk.Vector) trunk.Vector {
		return trunk.Vector{1.0, 0} // constant drive along axis 0
	})
	eng := New([]trunk.ForceLayer{noForce, custom}, nil, nil, WithDt(0.01))

	next, err := eng.Advance(trunk.NewState(trunk.Vector{0, 0, 2, 0}))

	g.Expect(err).ToNot(HaveOccurred())
	rec, _ := next.Extension(ExtensionKey)
	diag := rec.(Diagnostics)
	_, v := next.Split()
	g.Expect(diag.InjectionPower).To(BeNumerically("~", v[0], 1e-12))
	g.Expect(diag.InjectionPower).To(BeNumerically(">", 0))
}

func TestResetZeroesTimeOnly(t *testing.T) {
	g := NewWithT(t)
	eng, state := orbitEngine()

	next, err := eng.Advance(state)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(eng.Time()).To(BeNumerically(">", 0))

	eng.Reset()
	g.Expect(eng.Time()).To(BeZero())
	g.Expect(next.Energy).ToNot(BeZero(), "reset must not touch states")
}

func TestCloneWithIndependence(t *testing.T) {
	g := NewWithT(t)
	h := potentials.NewHarmonic(1.0)
	eng := NewBuilder(h.Potential).
		Field(h.Field).
		Injection(func(x, v trunk.Vector, tm float64) trunk.Vector {
			return trunk.Zeros(len(x))
		}).
		Gamma(0.5).
		Temperature(0.3).
		Dt(0.01).
		Build()

	clone := eng.CloneWith(Overrides{
		Thermo:           layers.NewNullThermo(),
		ConservativeOnly: true,
	})

	g.Expect(clone.Forces()).To(HaveLen(1), "non-conservative layers dropped")
	g.Expect(clone.Thermo().Gamma()).To(BeZero())
	g.Expect(eng.Forces()).To(HaveLen(2), "original layers untouched")
	g.Expect(eng.Thermo().Gamma()).To(Equal(0.5))

	_, _, err := clone.Run(trunk.NewState(trunk.Vector{1, 0, 0, 0}), 100)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(eng.Time()).To(BeZero(), "clone run must not advance the original clock")
}

func TestBuilderSchemeSelection(t *testing.T) {
	g := NewWithT(t)
	h := potentials.NewHarmonic(1.0)

	plain := NewBuilder(h.Potential).Field(h.Field).Build()
	g.Expect(plain.Scheme()).To(Equal("semi-implicit-euler"))

	rotating := NewBuilder(h.Potential).Field(h.Field).Coriolis(0.5, 0, 1).Build()
	g.Expect(rotating.Scheme()).To(Equal("strang"))

	manual := NewBuilder(h.Potential).NoiseSigma(0.2).Build()
	g.Expect(manual.Thermo().Mode()).To(Equal(trunk.NoiseManual))
}

func TestEnergyMatchesHamiltonianDefinition(t *testing.T) {
	g := NewWithT(t)
	h := potentials.NewHarmonic(2.0)
	grad := layers.NewGradientForce(h.Potential, h.Field, 0)
	eng := New([]trunk.ForceLayer{grad}, nil, nil)

	state := trunk.NewState(trunk.Vector{1, 0, 0, 2})
	energy, err := eng.Energy(state)

	g.Expect(err).ToNot(HaveOccurred())
	// V = 0.5*2*1 = 1, K = 0.5*1*4 = 2
	g.Expect(energy).To(BeNumerically("~", 3.0, 1e-12))
}
