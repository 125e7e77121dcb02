package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trunklab/trunksim/internal/check"
	"github.com/trunklab/trunksim/internal/config"
	"github.com/trunklab/trunksim/internal/engine"
	"github.com/trunklab/trunksim/internal/potentials"
	"github.com/trunklab/trunksim/internal/storage"
	"github.com/trunklab/trunksim/internal/trunk"
	"github.com/trunklab/trunksim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	potentialName string
	dt            float64
	steps         int
	seed          int64
	epsilon       float64
	numeric       bool
	omega         float64
	axisI, axisJ  int
	gamma         float64
	temperature   float64
	mass          float64
	sigma         float64
	spring        float64
	initState     []float64
	frameRate     int
	checkSteps    int
	outPath       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trunksim",
		Short: "generalized force-law integration engine",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trunksim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the trajectory",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "verify physical invariants of the configured engine",
		RunE:  runChecks,
	}
	addSimFlags(checkCmd)
	checkCmd.Flags().IntVar(&checkSteps, "check-steps", check.DefaultConservationSteps, "conservation check steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's energy trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.json)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the advance hot path",
		RunE:  benchEngine,
	}
	addSimFlags(benchCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frames per second")

	rootCmd.AddCommand(runCmd, checkCmd, listCmd, plotCmd, exportCmd, benchCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name (orbit, well, coriolis, thermal, bistable)")
	cmd.Flags().StringVar(&potentialName, "potential", "harmonic", "potential (harmonic, gravity, doublewell)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "finite-difference step")
	cmd.Flags().BoolVar(&numeric, "numeric", false, "force numeric gradients")
	cmd.Flags().Float64Var(&omega, "omega", 0, "rotation gauge angular rate")
	cmd.Flags().IntVar(&axisI, "axis-i", 0, "rotation plane first axis")
	cmd.Flags().IntVar(&axisJ, "axis-j", 1, "rotation plane second axis")
	cmd.Flags().Float64Var(&gamma, "gamma", 0, "dissipation rate")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "thermostat temperature")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "particle mass")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "manual noise amplitude")
	cmd.Flags().Float64Var(&spring, "spring", config.DefaultSpring, "harmonic stiffness")
	cmd.Flags().Float64SliceVar(&initState, "state", nil, "initial state vector (position then velocity)")
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	// explicit flags override file/preset values
	if cmd.Flags().Changed("potential") {
		cfg.Potential = potentialName
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if cmd.Flags().Changed("numeric") {
		cfg.Numeric = numeric
	}
	if cmd.Flags().Changed("omega") {
		cfg.Omega = omega
	}
	if cmd.Flags().Changed("axis-i") {
		cfg.AxisI = axisI
	}
	if cmd.Flags().Changed("axis-j") {
		cfg.AxisJ = axisJ
	}
	if cmd.Flags().Changed("gamma") {
		cfg.Gamma = gamma
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Temperature = temperature
	}
	if cmd.Flags().Changed("mass") {
		cfg.Mass = mass
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Sigma = sigma
	}
	if cmd.Flags().Changed("spring") {
		cfg.Spring = spring
	}
	if cmd.Flags().Changed("state") {
		cfg.InitState = initState
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine assembles an engine and its initial state from a config.
func buildEngine(cfg *config.Config) (*engine.Engine, *trunk.State, error) {
	var (
		potential trunk.PotentialFunc
		field     trunk.FieldFunc
	)
	switch cfg.Potential {
	case "harmonic":
		h := potentials.NewHarmonic(cfg.Spring)
		potential, field = h.Potential, h.Field
	case "gravity":
		masses := make([]potentials.PointMass, len(cfg.Masses))
		for i, m := range cfg.Masses {
			masses[i] = potentials.PointMass{Pos: m.Pos, Mass: m.Mass}
		}
		if len(masses) == 0 {
			masses = []potentials.PointMass{{Pos: trunk.Vector{0, 0}, Mass: 1.0}}
		}
		g := potentials.NewGravity(masses)
		potential, field = g.Potential, g.Field
	case "doublewell":
		d := potentials.NewDoubleWell()
		potential, field = d.Potential, d.Field
	default:
		return nil, nil, fmt.Errorf("unknown potential %q", cfg.Potential)
	}
	if cfg.Numeric {
		field = nil
	}

	b := engine.NewBuilder(potential).
		Field(field).
		Gamma(cfg.Gamma).
		Temperature(cfg.Temperature).
		Mass(cfg.Mass).
		NoiseSigma(cfg.Sigma).
		Dt(cfg.Dt).
		Epsilon(cfg.Epsilon).
		Seed(cfg.Seed)
	if cfg.Omega != 0 {
		b.Coriolis(cfg.Omega, cfg.AxisI, cfg.AxisJ)
	}
	if verbose {
		b.Logger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	state := trunk.NewState(cfg.GetInitState())
	return b.Build(), state, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	eng, state, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	traj, final, err := eng.Run(state, cfg.Steps)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Potential:   cfg.Potential,
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Scheme:      eng.Scheme(),
		Omega:       cfg.Omega,
		Gamma:       cfg.Gamma,
		Temperature: cfg.Temperature,
	}, traj)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d steps of dt=%g (%s)\n", runID, cfg.Steps, cfg.Dt, eng.Scheme())
	fmt.Printf("final energy %.6f, drift %.2e\n", final.Energy, traj.FinalDrift())
	fmt.Println(viz.EnergyPlot(traj.Energies, 70, 10))
	return nil
}

func runChecks(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	eng, state, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	results := []check.Result{
		check.Skew(eng.Gauge()),
		check.FDT(eng.Thermo()),
	}
	dim, err := state.Dim()
	if err != nil {
		return err
	}
	results = append(results,
		check.Dimensions(dim, eng.Forces(), eng.Gauge(), eng.Thermo()),
		check.Conservation(eng, state, checkSteps))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, viz.PassFail(r.Pass), r.Detail)
	}
	w.Flush()

	if !check.AllPass(results) {
		return fmt.Errorf("%d check(s) failed", countFailed(results))
	}
	return nil
}

func countFailed(results []check.Result) int {
	n := 0
	for _, r := range results {
		if !r.Pass {
			n++
		}
	}
	return n
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOTENTIAL\tSCHEME\tSTEPS\tDT\tDRIFT\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%.2e\t%s\n",
			r.ID, r.Potential, r.Scheme, r.Steps, r.Dt, r.EnergyDrift,
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	traj, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.EnergyPlot(traj.Energies, 70, 12))

	speeds := make([]float64, len(traj.States))
	for i, st := range traj.States {
		half := len(st) / 2
		speeds[i] = st[half:].Norm()
	}
	fmt.Println(viz.SeriesPlot(speeds, "speed |v|", 70, 8))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	out := outPath
	if out == "" {
		out = args[0] + ".json"
	}
	store := storage.New(dataDir)
	if err := store.ExportJSON(args[0], out); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], out)
	return nil
}

func benchEngine(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	eng, state, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	cur := state
	for i := 0; i < cfg.Steps; i++ {
		cur, err = eng.Advance(cur)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("%d steps in %v (%.0f steps/sec)\n",
		cfg.Steps, elapsed, float64(cfg.Steps)/elapsed.Seconds())
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	eng, state, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(eng, state, cfg.Potential, frameRate)
}
