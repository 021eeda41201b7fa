package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGRID\tDT\tSTEPS\tASLEEP\tUNCONVERGED\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.4f\t%d\t%v\t%d\t%s\n",
			r.ID, r.Name, r.Width, r.Height, r.Dt, r.Steps, r.Asleep, r.NotConverged,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d  dt: %.4f  steps: %d\n\n", meta.Width, meta.Height, meta.Dt, meta.Steps)

	series := []struct {
		caption string
		value   func(sim.Sample) float64
	}{
		{"mean height", func(s sim.Sample) float64 { return s.MeanHeight }},
		{"kinetic energy", func(s sim.Sample) float64 { return s.KineticEnergy }},
		{"cg iterations", func(s sim.Sample) float64 { return float64(s.Iterations) }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if showPhase {
		portrait := analysis.GeneratePhasePortrait(samples)
		if portrait == nil {
			return fmt.Errorf("run %s is too short for a phase plot", meta.ID)
		}
		fmt.Println("phase: mean height (x) vs d/dt (y)")
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	heights := make([]float64, len(samples))
	times := make([]float64, len(samples))
	energies := make([]float64, len(samples))
	for i, s := range samples {
		heights[i] = s.MeanHeight
		times[i] = s.Time
		energies[i] = s.KineticEnergy
	}

	freq, err := analysis.DominantFrequency(heights, meta.Dt)
	if err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(heights)
	if plotData := ps[1 : len(ps)/4+1]; len(plotData) > 1 {
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (mean height)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	rate, err := analysis.DecayRate(times, energies, floor)
	if err != nil {
		fmt.Printf("energy decay: %v\n", err)
		return nil
	}
	fmt.Printf("energy decay rate: %.4f /s\n", rate)
	if hl := analysis.HalfLife(rate); !math.IsInf(hl, 1) {
		fmt.Printf("energy half-life: %.3f s\n", hl)
	} else {
		fmt.Println("energy is not decaying")
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	mesh, err := st.LoadMesh(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		Samples:    samples,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
		Asleep:     meta.Asleep,
		Vertices:   mesh.Vertices,
		Triangles:  mesh.Triangles,
	}
	data := export.NewExportData(meta.Name, meta.Dt, meta.Duration, meta.Width, meta.Height, result)
	return export.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteSeries(os.Stdout, samples)
}

func exportOBJ(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	mesh, err := st.LoadMesh(args[0])
	if err != nil {
		return err
	}
	return export.WriteOBJ(os.Stdout, meta.Name, mesh.Vertices, mesh.Stride, mesh.Triangles)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if svgSeries {
		_, samples, err := loadRun(args[0])
		if err != nil {
			return err
		}
		xs := make([]float64, len(samples))
		ys := make([]float64, len(samples))
		for i, s := range samples {
			xs[i], ys[i] = s.Time, s.MeanHeight
		}
		fmt.Println(export.SeriesToSVG(xs, ys, svgSize, svgSize/2, "#1f4e79"))
		return nil
	}

	mesh, err := st.LoadMesh(args[0])
	if err != nil {
		return err
	}
	pinned, err := finalPins(st, args[0])
	if err != nil {
		return err
	}
	fmt.Println(export.MeshToSVG(mesh.Vertices, mesh.Stride, mesh.Triangles, pinned, svgSize, svgSize, "#1f4e79"))
	return nil
}

// finalPins rebuilds the run's cloth from its saved config and applies the
// releases due by the end of the run.
func finalPins(st *storage.Store, runID string) ([]int, error) {
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	c, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	released := make(map[int]bool)
	for _, r := range cfg.Releases {
		if r.At <= cfg.Duration {
			for _, i := range r.Points {
				released[i] = true
			}
		}
	}
	var pinned []int
	for _, i := range c.PinnedPoints() {
		if !released[i] {
			pinned = append(pinned, i)
		}
	}
	return pinned, nil
}
