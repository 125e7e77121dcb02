// Package check verifies the physical invariants of a configured trunk
// engine: gauge skew-symmetry, fluctuation-dissipation consistency, layer
// dimension agreement, and long-run energy conservation in the conservative
// limit. The static checks are cheap; Dimensions and Conservation are
// explicit opt-ins.
package check

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/trunklab/trunksim/internal/engine"
	"github.com/trunklab/trunksim/internal/layers"
	"github.com/trunklab/trunksim/internal/trunk"
)

// driftTolerance bounds the relative energy drift for Conservation.
const driftTolerance = 0.01

// DefaultConservationSteps is the Conservation step count used by RunAll.
const DefaultConservationSteps = 500

// Result reports one check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

func (r Result) String() string {
	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	return fmt.Sprintf("%-16s %s  %s", r.Name, status, r.Detail)
}

// Skew verifies the gauge generator is skew-symmetric. A failure means the
// gauge may inject or remove energy.
func Skew(gauge trunk.GaugeLayer) Result {
	ok := gauge.Skew()
	detail := "J^T = -J (energy-preserving)"
	if !ok {
		detail = "WARNING: gauge may break energy conservation"
	}
	return Result{Name: "skew_symmetry", Pass: ok, Detail: detail}
}

// FDT verifies the thermostat's noise amplitude is thermodynamically
// consistent with its dissipation rate and temperature. Manual and off modes
// carry no constraint.
func FDT(thermo trunk.ThermoLayer) Result {
	ok := thermo.CheckFDT()
	return Result{
		Name: "fdt_consistency",
		Pass: ok,
		Detail: fmt.Sprintf("mode=%s, sigma=%.6f, gamma=%.4f",
			thermo.Mode(), thermo.Sigma(), thermo.Gamma()),
	}
}

// Dimensions evaluates every layer once on a zero state of the declared
// dimension and collects every output-length mismatch, not just the first.
func Dimensions(dim int, forces []trunk.ForceLayer, gauge trunk.GaugeLayer, thermo trunk.ThermoLayer) Result {
	x := trunk.Zeros(dim)
	v := trunk.Zeros(dim)
	rng := rand.New(rand.NewSource(0))

	var errs []string
	for i, layer := range forces {
		f := layer.Force(x, v, 0)
		if len(f) != dim {
			errs = append(errs, fmt.Sprintf("force layer %d: output dim %d != state dim %d", i, len(f), dim))
		}
	}
	if rotated := gauge.Rotate(v, 0.01); len(rotated) != dim {
		errs = append(errs, fmt.Sprintf("gauge layer: output dim %d != state dim %d", len(rotated), dim))
	}
	if kicked := thermo.OUStep(v, 0.01, rng); len(kicked) != dim {
		errs = append(errs, fmt.Sprintf("thermo layer: output dim %d != state dim %d", len(kicked), dim))
	}

	if len(errs) > 0 {
		return Result{Name: "dimensions", Pass: false, Detail: strings.Join(errs, "; ")}
	}
	return Result{Name: "dimensions", Pass: true, Detail: "all layers agree on dim"}
}

// Conservation measures energy drift in the conservative limit: it clones
// the engine with the null thermostat and only the conservative force layers
// kept, runs nSteps advances from a copy of the initial state, and requires
// max|E_t - E_0| / |E_0| below 1%. Neither the engine nor the state is
// mutated; the run happens entirely on disposable clones.
func Conservation(e *engine.Engine, initial *trunk.State, nSteps int) Result {
	clone := e.CloneWith(engine.Overrides{
		Thermo:           layers.NewNullThermo(),
		ConservativeOnly: true,
	})

	traj, _, err := clone.Run(initial.Clone(), nSteps)
	if err != nil {
		return Result{Name: "conservation", Pass: false, Detail: err.Error()}
	}

	drift := traj.FinalDrift()
	return Result{
		Name:   "conservation",
		Pass:   drift < driftTolerance,
		Detail: fmt.Sprintf("max |dE|/E0 = %.2e (n=%d)", drift, nSteps),
	}
}

// RunAll runs the static checks, plus the dynamic ones when an initial state
// is supplied.
func RunAll(e *engine.Engine, initial *trunk.State) []Result {
	results := []Result{
		Skew(e.Gauge()),
		FDT(e.Thermo()),
	}

	if initial != nil {
		dim, err := initial.Dim()
		if err != nil {
			results = append(results, Result{Name: "dimensions", Pass: false, Detail: err.Error()})
			return results
		}
		results = append(results, Dimensions(dim, e.Forces(), e.Gauge(), e.Thermo()))
		results = append(results, Conservation(e, initial, DefaultConservationSteps))
	}

	return results
}

// AllPass reports whether every result passed.
func AllPass(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}
