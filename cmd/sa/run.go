package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	runNames   []string
	printPath  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run solvers from a TOML run file",
	Long: `Runs every run defined in the run file (or only those named with --run)
in natural name order and prints one result line per run.`,
	RunE: runSolvers,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "TOML run file (required)")
	runCmd.Flags().StringSliceVar(&runNames, "run", nil, "Run names to execute (default: all)")
	runCmd.Flags().BoolVar(&printPath, "trajectory", false, "Print the sample path of runs with record = true")

	runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runSolvers(cmd *cobra.Command, args []string) error {
	file, err := LoadRunFile(configPath)
	if err != nil {
		return err
	}

	names := file.Names()
	if len(runNames) > 0 {
		for _, name := range runNames {
			if _, ok := file.Runs[name]; !ok {
				return errors.Errorf("unknown run %q", name)
			}
		}

		names = runNames
	}

	slog.Info("Starting runs", "config", configPath, "runs", len(names))

	for _, name := range names {
		if err := execute(cmd.OutOrStdout(), name, file.Runs[name]); err != nil {
			return err
		}
	}

	return nil
}

func execute(w io.Writer, name string, rc RunConfig) error {
	optimizer, err := rc.Build()
	if err != nil {
		return errors.Wrapf(err, "run %s", name)
	}

	start := time.Now()

	res, err := optimizer.Optimize()
	if err != nil {
		return errors.Wrapf(err, "run %s", name)
	}

	slog.Info("Run complete",
		"run", name,
		"variant", res.Variant,
		"iterations", optimizer.Iterations(),
		"estimate", res.Estimate,
		"elapsed", time.Since(start),
	)

	fmt.Fprintf(w, "%s\t%s\testimate=%.6g\tlast=%.6g\taverage=%.6g\n",
		name, res.Variant, res.Estimate, res.Last, res.Average)

	if printPath && res.Trajectory != nil {
		for k, x := range res.Trajectory {
			fmt.Fprintf(w, "%s\t%d\t%.6g\n", name, k, x)
		}
	}

	return nil
}
