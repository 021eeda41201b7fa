package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	dt         float64
	duration   float64
	width      int
	height     int
	windMode   string
	debug      bool
	configFile string
	preset     string

	stopAsleep bool
	frameEvery int

	// plot and analyze
	showPhase bool
	floor     float64

	// export-svg
	svgSeries bool
	svgSize   int

	// sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepCount int
	workers    int

	// inspect
	pickDir string
	eigen   bool

	// montecarlo
	trials    int
	windScale float64
	seed      int64
	saveRuns  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "implicit mass-spring cloth simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addClothFlags(runCmd)
	runCmd.Flags().BoolVar(&stopAsleep, "stop-asleep", false, "stop once the cloth is asleep")
	runCmd.Flags().IntVar(&frameEvery, "frames", 0, "write an OBJ frame every n steps")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addClothFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&showPhase, "phase", false, "also plot height against its rate of change")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and energy decay analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&floor, "floor", 1e-9, "ignore energies below this in the decay fit")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportOBJCmd := &cobra.Command{
		Use:   "export-obj [run_id]",
		Short: "export the final mesh as Wavefront OBJ",
		Args:  cobra.ExactArgs(1),
		RunE:  exportOBJ,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final mesh or the height series as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().BoolVar(&svgSeries, "series", false, "plot mean height over time instead of the mesh")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image width in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.Presets[name].Description)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput by grid size",
		Args:  cobra.NoArgs,
		RunE:  benchCloth,
	}
	addClothFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one parameter over a range in parallel",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	addClothFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "struct_k", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1000, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 100000, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "n", 8, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all cores)")

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file to edit",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "start from preset")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "step once and inspect the system matrix",
		Args:  cobra.NoArgs,
		RunE:  inspect,
	}
	addClothFlags(inspectCmd)
	inspectCmd.Flags().StringVar(&pickDir, "pick", "", "report the point seen along direction x,y,z")
	inspectCmd.Flags().BoolVar(&eigen, "eigen", false, "compute the eigenvalue range (slow on large grids)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRuns, "save", true, "store steps that set save_as")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check stability under random winds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addClothFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 16, "number of trials")
	monteCarloCmd.Flags().Float64Var(&windScale, "wind-scale", 5, "largest wind component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all cores)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd,
		exportJSONCmd, exportCSVCmd, exportOBJCmd, exportSVGCmd,
		presetsCmd, benchCmd, sweepCmd, initConfigCmd, inspectCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addClothFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&width, "width", config.DefaultSize, "points per row")
	cmd.Flags().IntVar(&height, "height", config.DefaultSize, "points per column")
	cmd.Flags().StringVar(&windMode, "wind", "constant", "wind mode (constant, dynamic)")
	cmd.Flags().BoolVar(&debug, "debug", false, "check buffers for NaN after every step")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
