package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if saveRuns {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outcomes, err := automation.RunScenario(ctx, sc, st)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tSTEPS\tASLEEP\tUNCONVERGED\tSAG\tRUN")
	for _, o := range outcomes {
		run := o.RunID
		if run == "" {
			run = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%d\t%.4f\t%s\n",
			o.Step, o.Name, o.Result.StepsTaken, o.Result.Asleep,
			o.Result.NotConverged(), o.Result.Metrics["sag"], run)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("time") {
		cfg.Duration = 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		WindScale: windScale,
		NumTrials: trials,
		Seed:      seed,
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("monte carlo: %s, %d trials, wind up to %.2f\n\n", name, trials, windScale)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tWIND\tSTABLE\tCONVERGED\tFINAL HEIGHT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t(%.2f, %.2f, %.2f)\t%v\t%.0f%%\t%.4f\n",
			r.TrialID, r.Wind[0], r.Wind[1], r.Wind[2], r.Stable, r.Convergence*100, r.FinalHeight)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}
