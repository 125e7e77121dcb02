package engine

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/trunklab/trunksim/internal/layers"
	"github.com/trunklab/trunksim/internal/trunk"
)

const (
	DefaultDt      = 0.01
	DefaultEpsilon = 1e-6
	defaultSeed    = 1
)

// ExtensionKey is the state extension the engine writes its per-step
// diagnostics under.
const ExtensionKey = "potential_field"

// Diagnostics is the record stored under ExtensionKey after every advance.
type Diagnostics struct {
	Potential        float64      `json:"potential"`
	Field            trunk.Vector `json:"field"`
	Force            trunk.Vector `json:"force"`
	KineticEnergy    float64      `json:"kinetic_energy"`
	PotentialEnergy  float64      `json:"potential_energy"`
	TotalEnergy      float64      `json:"total_energy"`
	Time             float64      `json:"time"`
	Gamma            float64      `json:"gamma"`
	DissipationPower float64      `json:"dissipation_power"`
	InjectionPower   float64      `json:"injection_power"`
	Scheme           string       `json:"scheme"`
}

// Engine advances a state under the composed force law
// ẍ = -∇V(x) + ωJv - γv + σξ + I(x,v,t). The splitting scheme is fixed at
// construction: a symmetric Strang step when the gauge is active, a
// semi-implicit Euler step otherwise. Not safe for concurrent use: the RNG
// stream and the elapsed-time counter advance statefully per call.
type Engine struct {
	forces  []trunk.ForceLayer
	gauge   trunk.GaugeLayer
	thermo  trunk.ThermoLayer
	dt      float64
	epsilon float64
	seed    int64
	rng     *rand.Rand
	strang  bool
	time    float64
	log     *slog.Logger
}

type Option func(*Engine)

func WithDt(dt float64) Option {
	return func(e *Engine) {
		if dt > 0 {
			e.dt = dt
		}
	}
}

func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New is the canonical layer-based constructor. A nil gauge defaults to the
// identity gauge, a nil thermo to the null thermostat.
func New(forces []trunk.ForceLayer, gauge trunk.GaugeLayer, thermo trunk.ThermoLayer, opts ...Option) *Engine {
	if gauge == nil {
		gauge = layers.NewIdentityGauge()
	}
	if thermo == nil {
		thermo = layers.NewNullThermo()
	}
	e := &Engine{
		forces:  append([]trunk.ForceLayer(nil), forces...),
		gauge:   gauge,
		thermo:  thermo,
		dt:      DefaultDt,
		epsilon: DefaultEpsilon,
		seed:    defaultSeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	e.strang = gauge.Active()
	return e
}

func (e *Engine) Dt() float64               { return e.dt }
func (e *Engine) Epsilon() float64          { return e.epsilon }
func (e *Engine) Time() float64             { return e.time }
func (e *Engine) Gauge() trunk.GaugeLayer   { return e.gauge }
func (e *Engine) Thermo() trunk.ThermoLayer { return e.thermo }

func (e *Engine) Forces() []trunk.ForceLayer {
	return append([]trunk.ForceLayer(nil), e.forces...)
}

// Scheme names the splitting scheme the engine was constructed with.
func (e *Engine) Scheme() string {
	if e.strang {
		return "strang"
	}
	return "semi-implicit-euler"
}

// Reset zeroes elapsed simulation time. Layer objects are untouched.
func (e *Engine) Reset() { e.time = 0 }

// Advance integrates one step of length dt and returns a new state; the
// input state is never mutated. It fails before any numeric work on an
// odd-length state vector, and atomically on a layer dimension mismatch.
func (e *Engine) Advance(s *trunk.State) (*trunk.State, error) {
	dim, err := s.Dim()
	if err != nil {
		return nil, err
	}

	next := s.Clone()
	x, v := next.Split()

	var xNew, vNew trunk.Vector
	if e.strang {
		xNew, vNew, err = e.strangStep(x, v)
	} else {
		xNew, vNew, err = e.eulerStep(x, v)
	}
	if err != nil {
		return nil, err
	}

	e.time += e.dt

	potential, kinetic, field, force, injectionPower, err := e.diagnose(xNew, vNew)
	if err != nil {
		return nil, err
	}

	gamma := e.thermo.Gamma()
	speedSq := vNew.Dot(vNew)

	copy(next.Vector[:dim], xNew)
	copy(next.Vector[dim:], vNew)
	next.Energy = kinetic + potential
	next.SetExtension(ExtensionKey, Diagnostics{
		Potential:        potential,
		Field:            field,
		Force:            force,
		KineticEnergy:    kinetic,
		PotentialEnergy:  potential,
		TotalEnergy:      kinetic + potential,
		Time:             e.time,
		Gamma:            gamma,
		DissipationPower: -gamma * speedSq,
		InjectionPower:   injectionPower,
		Scheme:           e.Scheme(),
	})

	if e.log != nil {
		e.log.Debug("advance",
			"t", e.time,
			"potential", potential,
			"energy", next.Energy,
			"gamma", gamma,
			"dissipation_power", -gamma*speedSq)
	}

	return next, nil
}

// strangStep is the symmetric seven-stage splitting over [t, t+dt):
// thermo half, half drift, midpoint force, half kick, exact rotation over
// the full dt, half kick with the same force, half drift, thermo half.
// Reusing the midpoint force in both kicks is what makes the scheme
// second-order. With null thermo and identity gauge it reduces to classical
// velocity Verlet.
func (e *Engine) strangStep(x, v trunk.Vector) (trunk.Vector, trunk.Vector, error) {
	h := e.dt / 2.0

	v = e.thermo.OUStep(v, h, e.rng)
	xHalf := x.Add(v.Scale(h))

	force, err := e.totalForce(xHalf, v, e.time+h)
	if err != nil {
		return nil, nil, err
	}
	kick := force.Scale(h)

	vMinus := v.Add(kick)
	vRot := e.gauge.Rotate(vMinus, e.dt)
	vNew := vRot.Add(kick)

	xNew := xHalf.Add(vNew.Scale(h))
	vNew = e.thermo.OUStep(vNew, h, e.rng)

	return xNew, vNew, nil
}

// eulerStep is the semi-implicit update with the dissipative/stochastic part
// applied through the exact O-U propagator over the full dt.
func (e *Engine) eulerStep(x, v trunk.Vector) (trunk.Vector, trunk.Vector, error) {
	accel, err := e.totalForce(x, v, e.time)
	if err != nil {
		return nil, nil, err
	}
	vNew := e.thermo.OUStep(v.Add(accel.Scale(e.dt)), e.dt, e.rng)
	xNew := x.Add(vNew.Scale(e.dt))
	return xNew, vNew, nil
}

func (e *Engine) totalForce(x, v trunk.Vector, t float64) (trunk.Vector, error) {
	total := make(trunk.Vector, len(x))
	for i, layer := range e.forces {
		f := layer.Force(x, v, t)
		if len(f) != len(x) {
			return nil, fmt.Errorf("%w: force layer %d returned dim %d, state dim %d",
				trunk.ErrDimensionMismatch, i, len(f), len(x))
		}
		for j := range total {
			total[j] += f[j]
		}
	}
	return total, nil
}

// diagnose recomputes the post-step energy bookkeeping: total potential,
// kinetic energy ½m|v|², the conservative field vector, the recombined
// force, and injection power summed over every non-conservative layer (not
// just injection layers, so custom drives are accounted for too).
func (e *Engine) diagnose(x, v trunk.Vector) (potential, kinetic float64, field, force trunk.Vector, injectionPower float64, err error) {
	field = make(trunk.Vector, len(x))
	force = make(trunk.Vector, len(x))

	for i, layer := range e.forces {
		f := layer.Force(x, v, e.time)
		if len(f) != len(x) {
			return 0, 0, nil, nil, 0, fmt.Errorf("%w: force layer %d returned dim %d, state dim %d",
				trunk.ErrDimensionMismatch, i, len(f), len(x))
		}
		potential += layer.Potential(x)
		for j := range f {
			force[j] += f[j]
		}
		if layer.Conservative() {
			for j := range f {
				field[j] += f[j]
			}
		} else {
			injectionPower += v.Dot(f)
		}
	}

	kinetic = 0.5 * e.thermo.Mass() * v.Dot(v)
	return potential, kinetic, field, force, injectionPower, nil
}

// Energy evaluates K + V for a state without advancing anything.
func (e *Engine) Energy(s *trunk.State) (float64, error) {
	if _, err := s.Dim(); err != nil {
		return 0, err
	}
	x, v := s.Split()
	potential := 0.0
	for _, layer := range e.forces {
		potential += layer.Potential(x)
	}
	return 0.5*e.thermo.Mass()*v.Dot(v) + potential, nil
}

// Overrides selects substitutions for CloneWith.
type Overrides struct {
	// Thermo replaces the thermostat when non-nil.
	Thermo trunk.ThermoLayer
	// ConservativeOnly drops every non-conservative force layer.
	ConservativeOnly bool
	// Seed reseeds the clone's RNG when non-zero; either way the clone owns
	// an independent stream, never aliasing the original's.
	Seed int64
}

// CloneWith builds an independent engine sharing this engine's configuration
// and elapsed time, with the given overrides applied. The consistency
// checker uses it to obtain a disposable conservative twin.
func (e *Engine) CloneWith(o Overrides) *Engine {
	forces := make([]trunk.ForceLayer, 0, len(e.forces))
	for _, layer := range e.forces {
		if o.ConservativeOnly && !layer.Conservative() {
			continue
		}
		forces = append(forces, layer)
	}

	thermo := e.thermo
	if o.Thermo != nil {
		thermo = o.Thermo
	}
	seed := e.seed
	if o.Seed != 0 {
		seed = o.Seed
	}

	clone := &Engine{
		forces:  forces,
		gauge:   e.gauge,
		thermo:  thermo,
		dt:      e.dt,
		epsilon: e.epsilon,
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		strang:  e.strang,
		time:    e.time,
		log:     e.log,
	}
	return clone
}

// Trajectory collects the samples of a multi-step run.
type Trajectory struct {
	Times    []float64
	States   []trunk.Vector
	Energies []float64
}

// FinalDrift is max|E_t - E_0| / |E_0| over the trajectory, or the absolute
// drift when the initial energy is numerically zero.
func (tr *Trajectory) FinalDrift() float64 {
	if len(tr.Energies) == 0 {
		return 0
	}
	e0 := tr.Energies[0]
	maxDrift := 0.0
	for _, e := range tr.Energies {
		maxDrift = math.Max(maxDrift, math.Abs(e-e0))
	}
	if math.Abs(e0) > 1e-12 {
		return maxDrift / math.Abs(e0)
	}
	return maxDrift
}

// Run advances steps times from s, sampling time, state vector and energy at
// every step (initial state included). Returns the trajectory and the final
// state; s is not mutated.
func (e *Engine) Run(s *trunk.State, steps int) (*Trajectory, *trunk.State, error) {
	energy, err := e.Energy(s)
	if err != nil {
		return nil, nil, err
	}

	traj := &Trajectory{
		Times:    make([]float64, 0, steps+1),
		States:   make([]trunk.Vector, 0, steps+1),
		Energies: make([]float64, 0, steps+1),
	}
	traj.Times = append(traj.Times, e.time)
	traj.States = append(traj.States, s.Vector.Clone())
	traj.Energies = append(traj.Energies, energy)

	cur := s
	for i := 0; i < steps; i++ {
		cur, err = e.Advance(cur)
		if err != nil {
			return traj, nil, err
		}
		traj.Times = append(traj.Times, e.time)
		traj.States = append(traj.States, cur.Vector.Clone())
		traj.Energies = append(traj.Energies, cur.Energy)
	}

	return traj, cur, nil
}
