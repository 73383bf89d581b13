package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/massim/internal/analysis"
	"github.com/san-kum/massim/internal/automation"
	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/experiment"
	"github.com/san-kum/massim/internal/export"
	"github.com/san-kum/massim/internal/gui"
	"github.com/san-kum/massim/internal/optim"
	"github.com/san-kum/massim/internal/storage"
	"github.com/san-kum/massim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	dt         float64
	substeps   int
	steps      int
	integrator string
	configFile string
	preset     string
	particles  string
	axis       string
	outPath    string
	fullPlot   bool
	braille    bool
	scale      float64
	fps        int
	runID      string
	// analyze and lyapunov take a single particle
	particle     string
	perturbation float64
	sweepParams  []string
	metricName   string
	trials       int
	spread       float64
	seed         int64
	theme        string
)

var (
	heading = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// main registers the commands and runs the root command, exiting with status
// 1 on error. With no subcommand the interactive scene picker starts.
func main() {
	rootCmd := &cobra.Command{
		Use:          "massim",
		Short:        "point-mass physics simulation",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".massim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	sceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&particles, "particle", "", "comma separated particle indices (default all)")
	plotCmd.Flags().BoolVar(&fullPlot, "full", false, "2x2 layout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal scatter canvas instead")
	exportSVGCmd.Flags().StringVar(&particles, "particle", "", "comma separated particle indices for --braille")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase space analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&particle, "particle", "1", "particle index")
	analyzeCmd.Flags().StringVar(&axis, "axis", "x", "axis (x or y)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [scene]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lyapunov,
	}
	sceneFlags(lyapunovCmd)
	lyapunovCmd.Flags().StringVar(&particle, "particle", "1", "perturbed particle index")
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial x offset")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	playCmd := &cobra.Command{
		Use:   "play [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  playRun,
	}
	playCmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	windowCmd := &cobra.Command{
		Use:   "window [scene]",
		Short: "run a scene in a window, or replay a run with --run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWindow,
	}
	sceneFlags(windowCmd)
	windowCmd.Flags().Float64Var(&scale, "scale", 0, "pixels per unit (default fit)")
	windowCmd.Flags().IntVar(&fps, "fps", 0, "frame rate (default 1/dt)")
	windowCmd.Flags().StringVar(&runID, "run", "", "replay a stored run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "outer step")
	compareCmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "inner steps per outer step")
	compareCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "outer steps")

	sweepCmd := &cobra.Command{
		Use:     "sweep [scene]",
		Short:   "grid search run settings for the lowest metric",
		Example: "  massim sweep double_oscillator --param substeps=10,50,200 --param dt=0.01,0.02",
		Args:    cobra.MaximumNArgs(1),
		RunE:    sweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil,
		fmt.Sprintf("name=v1,v2,... (one of %v), repeatable", optim.ParamNames()))
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")
	sweepCmd.MarkFlagRequired("param")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run a scene repeatedly with perturbed initial velocities",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	sceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.1, "maximum velocity offset per axis")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default from clock)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		analyzeCmd, lyapunovCmd, liveCmd, playCmd, windowCmd, presetsCmd, compareCmd, sweepCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "outer step")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "inner steps per outer step")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "outer steps")
	cmd.Flags().StringVar(&integrator, "integrator", "symplectic", "integrator")
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scene")
}

// loadScene resolves the scene from --config, --preset or the argument, in
// that order, then applies the flags the user set.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case len(args) > 0:
		if cfg, err = experiment.NewRegistry().GetScene(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no scene given (available: %v)", config.ListPresets())
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("substeps") {
		cfg.Substeps = substeps
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s: %d particles, %d steps of %gs x %d substeps\n",
		heading.Render(cfg.Name), exp.Scene().Len(), cfg.Steps, cfg.Dt, cfg.Substeps)

	out, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	id, err := st.Save(storage.RunMetadata{
		Scene:      cfg.Name,
		Dt:         cfg.Dt,
		Substeps:   cfg.Substeps,
		Steps:      cfg.Steps,
		Integrator: out.Integrator,
		Names:      cfg.MassNames(),
		Metrics:    out.Metrics,
	}, out.Result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", out.Elapsed)
	fmt.Printf("run id: %s\n", id)
	fmt.Printf("frames: %d\n", out.Result.Len())
	fmt.Println("\n" + heading.Render("metrics"))
	printMetrics(out.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %.6g\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tPARTICLES\tSTEPS\tDT\tSUBSTEPS\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4gs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Masses),
			run.Steps,
			run.Dt,
			run.Substeps,
			run.Integrator,
		)
	}
	return w.Flush()
}

func loadRun(id string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResult(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, result, nil
}

// sceneLinks returns the springs of a named scene for drawing, or nil when
// the scene cannot be rebuilt.
func sceneLinks(name string, n int) []viz.Link {
	cfg, err := experiment.NewRegistry().GetScene(name)
	if err != nil {
		return nil
	}
	scene, err := cfg.Build()
	if err != nil || scene.Len() != n {
		return nil
	}
	return viz.Links(scene.Forces())
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, err := viz.ParticleList(particles)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", result.Len())

	d := result.Extract()
	if fullPlot {
		out, err := viz.FullPlot(d, idx, viz.PlotOptions{Width: 120, Height: 24})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if idx == nil {
		for i := 0; i < result.Particles(); i++ {
			idx = append(idx, i)
		}
	}
	opts := viz.PlotOptions{Width: 80, Height: 10}
	for _, plot := range []func() (string, error){
		func() (string, error) { return viz.PositionVsTime(d, idx, opts) },
		func() (string, error) { return viz.VelocityVsTime(d, idx, opts) },
		func() (string, error) { return viz.EnergyVsTime(d, opts) },
		func() (string, error) { return viz.Scatter(d, idx, viz.PlotOptions{Width: 60, Height: 20}) },
	} {
		out, err := plot()
		if err != nil {
			return err
		}
		fmt.Println(out)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = args[0] + ".csv"
	}
	if err := storage.ExportCSV(path, result); err != nil {
		return err
	}
	fmt.Printf("exported %d frames to %s\n", result.Len(), path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.EncodeJSON(os.Stdout, *meta, result)
	}
	if err := storage.ExportJSON(outPath, *meta, result); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = args[0] + ".svg"
	}

	d := result.Extract()
	var svg string
	if braille {
		idx, err := viz.ParticleList(particles)
		if err != nil {
			return err
		}
		canvas, _, err := viz.ScatterCanvas(d, idx, 80, 40)
		if err != nil {
			return err
		}
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg, err = export.TrajectoriesToSVG(dynamo.SeparateByParticle(d), sceneLinks(meta.Scene, result.Particles()), 800, 800)
		if err != nil {
			return err
		}
	}
	if err := export.WriteFile(path, svg); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, err := viz.ParticleList(particle)
	if err != nil {
		return err
	}
	if len(idx) != 1 {
		return fmt.Errorf("analyze takes exactly one particle, got %q", particle)
	}
	ax, err := analysis.ParseAxis(axis)
	if err != nil {
		return err
	}

	pos, err := result.PositionsOf(idx[0])
	if err != nil {
		return err
	}
	freq, power := analysis.DominantFrequency(analysis.Component(pos, ax), meta.Dt)

	fmt.Println(heading.Render(fmt.Sprintf("particle %d, %s axis", idx[0], ax)))
	fmt.Printf("dominant frequency: %.6g Hz\n", freq)
	if freq > 0 {
		fmt.Printf("period:             %.6g s\n", 1/freq)
	}
	fmt.Printf("power:              %.6g\n\n", power)

	portrait, err := analysis.PhasePortrait(result, idx[0], ax)
	if err != nil {
		return err
	}
	fmt.Println(heading.Render("phase portrait") + dim.Render(fmt.Sprintf("  %s vs v%s", ax, ax)))
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))

	mean := 0.0
	vals := analysis.Component(pos, ax)
	for _, v := range vals {
		mean += v
	}
	if len(vals) > 0 {
		mean /= float64(len(vals))
	}
	section, err := analysis.Crossings(result, idx[0], ax, mean)
	if err != nil {
		return err
	}
	fmt.Println(heading.Render("crossings") + dim.Render(fmt.Sprintf("  %s = %.4g, %d points", ax, mean, len(section.Points))))
	fmt.Println(analysis.PoincareSectionToASCII(section, 60, 20))
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	idx, err := viz.ParticleList(particle)
	if err != nil {
		return err
	}
	if len(idx) != 1 {
		return fmt.Errorf("lyapunov takes exactly one particle, got %q", particle)
	}

	start := time.Now()
	lambda, err := analysis.LyapunovExponent(cfg.Build, idx[0], perturbation, cfg.Dt, cfg.Substeps, cfg.Steps)
	if err != nil {
		return err
	}
	fmt.Printf("%s: λ = %.6g /s (%v)\n", heading.Render(cfg.Name), lambda, time.Since(start))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if err := viz.SetTheme(theme); err != nil {
		return err
	}
	m, err := viz.NewLiveModel(cfg.Name, cfg.Build, cfg.Dt, cfg.Substeps)
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

func playRun(cmd *cobra.Command, args []string) error {
	if err := viz.SetTheme(theme); err != nil {
		return err
	}
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	d := result.Extract()
	m, err := viz.NewPlaybackModel(meta.Scene, dynamo.SeparateByParticle(d), d.Time, d.Energies,
		sceneLinks(meta.Scene, result.Particles()))
	if err != nil {
		return err
	}
	return viz.RunPlayback(m)
}

func runWindow(cmd *cobra.Command, args []string) error {
	opts := gui.Options{Scale: float32(scale), FPS: int32(fps)}
	if runID != "" {
		meta, result, err := loadRun(runID)
		if err != nil {
			return err
		}
		d := result.Extract()
		opts.Title = fmt.Sprintf("massim :: %s", filepath.Base(meta.ID))
		return gui.Animate(meta.Scene, dynamo.SeparateByParticle(d), d.Time, d.Energies, opts)
	}

	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	return gui.Realtime(cfg.Name, cfg.Build, cfg.Dt, cfg.Substeps, opts)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASSES\tSPRINGS\tGRAVITY\tDT\tSUBSTEPS\tSTEPS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4g\t%d\t%d\n",
			name, len(cfg.Masses), len(cfg.Springs), len(cfg.Groups), cfg.Dt, cfg.Substeps, cfg.Steps)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := experiment.NewRegistry().GetScene(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dt") {
		base.Dt = dt
	}
	if cmd.Flags().Changed("substeps") {
		base.Substeps = substeps
	}
	if cmd.Flags().Changed("steps") {
		base.Steps = steps
	}

	fmt.Printf("comparing %d integrators on %s\n\n", len(args)-1, heading.Render(base.Name))
	outcomes, err := experiment.Compare(context.Background(), experiment.WithIntegrators(base, args[1:]))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tTIME\tENERGY DRIFT\tMOMENTUM DRIFT\tSTABILITY")
	for _, out := range outcomes {
		fmt.Fprintf(w, "%s\t%v\t%.3e\t%.3e\t%.1f%%\n",
			out.Integrator,
			out.Elapsed.Round(time.Microsecond),
			out.Metrics["energy_drift"],
			out.Metrics["momentum_drift"],
			100*out.Metrics["stability"],
		)
	}
	return w.Flush()
}

func parseParam(s string) (optim.Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok {
		return optim.Param{}, fmt.Errorf("invalid --param %q, want name=v1,v2,...", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return optim.Param{}, fmt.Errorf("invalid value in --param %s: %w", name, err)
		}
		values = append(values, v)
	}
	return optim.NewParam(strings.TrimSpace(name), values)
}

func sweep(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	var grid []optim.Param
	for _, s := range sweepParams {
		p, err := parseParam(s)
		if err != nil {
			return err
		}
		grid = append(grid, p)
	}

	fmt.Printf("sweeping %s over %d settings, minimizing %s\n\n",
		heading.Render(base.Name), len(grid), metricName)
	best, trials, err := optim.NewGridSearch(grid...).Search(context.Background(), base, metricName)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(grid)+1)
	for _, p := range grid {
		header = append(header, strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(metricName)), "\t"))
	for _, t := range trials {
		row := make([]string, 0, len(grid)+1)
		for _, p := range grid {
			row = append(row, strconv.FormatFloat(t.Params[p.Name], 'g', 4, 64))
		}
		if t.Err != nil {
			row = append(row, dim.Render(t.Err.Error()))
		} else {
			row = append(row, fmt.Sprintf("%.3e", t.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest:")
	for _, p := range grid {
		fmt.Printf(" %s=%g", p.Name, best.Params[p.Name])
	}
	fmt.Printf(" (%s %.3e)\n", metricName, best.Value)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Println(heading.Render(sc.Name))
	}
	if sc.Description != "" {
		fmt.Println(dim.Render(sc.Description))
	}
	outs, err := automation.RunScenario(context.Background(), sc, experiment.NewRegistry(), st, os.Stdout)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tINTEGRATOR\tTIME\tENERGY DRIFT\tRUN")
	for i, out := range outs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%.3e\t%s\n",
			i+1, out.Name, out.Integrator, out.Elapsed.Round(time.Microsecond),
			out.Metrics["energy_drift"], out.RunID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("%d trials of %s, velocity spread %g\n",
		trials, heading.Render(cfg.Name), spread)
	results, err := automation.RunMonteCarlo(context.Background(), cfg, automation.MonteCarloConfig{
		Perturbation: spread,
		NumTrials:    trials,
		Seed:         seed,
	}, os.Stdout)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	worst := 0.0
	for _, r := range results {
		if d := r.Metrics["energy_drift"]; d > worst {
			worst = d
		}
	}
	fmt.Printf("\nstable: %d  unstable: %d  worst energy drift: %.3e\n", stable, unstable, worst)
	return nil
}
