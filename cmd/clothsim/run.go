package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// loadConfig resolves --config, then --preset, then the defaults, and
// applies the flags the user actually set on top.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "drape"

	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	case preset != "":
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg, name = p, preset
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("wind") {
		cfg.Wind.Mode = windMode
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	c, err := cfg.Build()
	if err != nil {
		return err
	}

	s := sim.New(c)
	for _, m := range metrics.Default(c.Params()) {
		s.AddMetric(m)
	}

	slog.Debug("starting run", "name", name, "points", c.PointCount(),
		"springs", len(c.Springs()), "dt", cfg.Dt, "duration", cfg.Duration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := s.Run(ctx, sim.Config{
		Dt:             cfg.Dt,
		Duration:       cfg.Duration,
		StopWhenAsleep: stopAsleep,
		FrameEvery:     frameEvery,
	})
	if result == nil {
		return err
	}
	if errors.Is(err, context.Canceled) {
		fmt.Println("interrupted, saving partial run")
	} else if err != nil {
		return err
	}
	slog.Debug("run finished", "steps", result.StepsTaken, "elapsed", time.Since(start))

	for _, e := range result.Errors {
		slog.Warn("step failed", "err", e)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	if len(result.Frames) > 0 {
		if err := writeFrames(st.Dir(runID), name, result); err != nil {
			return err
		}
	}

	fmt.Printf("run saved: %s\n", runID)
	fmt.Printf("steps: %d", result.StepsTaken)
	if result.Asleep {
		fmt.Print(" (asleep)")
	}
	fmt.Println()
	if n := result.NotConverged(); n > 0 {
		fmt.Printf("unconverged solves: %d\n", n)
	}

	names := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range names {
		fmt.Fprintf(w, "  %s\t%.6g\n", k, result.Metrics[k])
	}
	return w.Flush()
}

func writeFrames(runDir, name string, result *sim.Result) error {
	dir := filepath.Join(runDir, "frames")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, fr := range result.Frames {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%04d.obj", i)))
		if err != nil {
			return err
		}
		err = export.WriteOBJ(f, name, fr.Vertices, cloth.VertexStride, result.Triangles)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	slog.Debug("frames written", "dir", dir, "count", len(result.Frames))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(cfg, name)
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

func benchCloth(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sizes := []int{8, 16, 24, 32}
	if cmd.Flags().Changed("width") || cmd.Flags().Changed("height") {
		sizes = []int{0}
	}
	if !cmd.Flags().Changed("time") {
		cfg.Duration = 2
	}

	fmt.Printf("benchmarking %.1fs at dt %.4f\n\n", cfg.Duration, cfg.Dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tPOINTS\tSPRINGS\tSTEPS\tTIME\tSTEPS/SEC\tCG AVG\tCG MAX")

	for _, size := range sizes {
		run := cfg.Clone()
		if size > 0 {
			run.Grid.Width, run.Grid.Height = size, size
		}

		c, err := run.Build()
		if err != nil {
			return err
		}

		steps := sim.Steps(sim.Config{Dt: run.Dt, Duration: run.Duration})
		iters, peak := 0, 0
		start := time.Now()
		for i := 0; i < steps; i++ {
			res, err := c.Step(run.Dt)
			if err != nil {
				return err
			}
			iters += res.Iterations
			peak = max(peak, res.Iterations)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%dx%d\t%d\t%d\t%d\t%v\t%.0f\t%.1f\t%d\n",
			run.Grid.Width, run.Grid.Height, c.PointCount(), len(c.Springs()),
			steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds(),
			float64(iters)/float64(max(steps, 1)), peak)
	}

	return w.Flush()
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sweepCount < 1 {
		return fmt.Errorf("sweep needs at least one value, got %d", sweepCount)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	values := analysis.Linspace(sweepFrom, sweepTo, sweepCount)
	slog.Debug("starting sweep", "base", name, "param", sweepParam, "values", len(values), "workers", workers)

	start := time.Now()
	points, err := analysis.ParameterSweep(ctx, cfg, sweepParam, values, workers)
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s on %s (%v)\n\n", sweepParam, name, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tFINAL HEIGHT\tMIN HEIGHT\tSAG\tENERGY\tCONVERGED\tCG AVG")
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\t%.4g\t%.0f%%\t%.1f\n",
			p.Param, p.FinalHeight, p.MinHeight, p.Sag, p.Energy, p.Convergence*100, p.Iterations)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("final mean height")
	fmt.Print(analysis.SweepToASCII(points, 60, 12))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
	}

	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("config written: %s\n", args[0])
	return nil
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("width") && !cmd.Flags().Changed("height") && configFile == "" {
		cfg.Grid.Width, cfg.Grid.Height = 8, 8
	}

	c, err := cfg.Build()
	if err != nil {
		return err
	}

	res, err := c.Step(cfg.Dt)
	if err != nil {
		return err
	}

	a := c.SystemMatrix()
	d := a.Dense()
	n, _ := d.Dims()

	fmt.Printf("%s: %dx%d grid, %d points, %d springs, %d pinned\n",
		name, cfg.Grid.Width, cfg.Grid.Height, c.PointCount(), len(c.Springs()), len(c.PinnedPoints()))
	fmt.Printf("first step: %d iterations, residual %.3g, converged %v\n", res.Iterations, res.Residual, res.Converged)
	fmt.Printf("system matrix: %dx%d, %d blocks (%d off-diagonal)\n", n, n, a.Size(), a.Size()-a.Dim())
	fmt.Printf("symmetric: %v\n", mat.EqualApprox(d, d.T(), 1e-9))
	fmt.Printf("norm (max column sum): %.6g\n", mat.Norm(d, 1))

	if eigen {
		sym := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				sym.SetSym(i, j, (d.At(i, j)+d.At(j, i))/2)
			}
		}
		var es mat.EigenSym
		if !es.Factorize(sym, false) {
			return errors.New("eigen decomposition did not converge")
		}
		vals := es.Values(nil)
		lo, hi := vals[0], vals[len(vals)-1]
		fmt.Printf("eigenvalues: min %.6g max %.6g", lo, hi)
		if lo > 0 {
			fmt.Printf(" condition %.4g", hi/lo)
		}
		fmt.Println()
	}

	if pickDir != "" {
		dir, err := parseVec(pickDir)
		if err != nil {
			return err
		}
		i, err := c.Pick(dir)
		if err != nil {
			return err
		}
		p := c.Position(i)
		fmt.Printf("picked point %d (row %d, col %d) at (%.4f, %.4f, %.4f), %s\n",
			i, i/cfg.Grid.Width, i%cfg.Grid.Width, p.X, p.Y, p.Z, c.State(i))
	}

	return nil
}

func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var xyz [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("bad component %q: %w", part, err)
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
