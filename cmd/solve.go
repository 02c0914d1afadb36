package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/weberfit/internal/opt"
	"github.com/cwbudde/weberfit/internal/pointset"
	"github.com/cwbudde/weberfit/internal/store"
	"github.com/cwbudde/weberfit/internal/ui"
	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	solvePointsPath string
	solveSeedIndex  int
	solveRandSeed   int64
	solveUnweighted bool
	solveMethod     string
	solveEpsilon    float64
	solveMaxIters   int
	solveWorkers    int
	solveStopRule   string
	solveTrace      bool
	solveSave       bool
	solveDataDir    string
	solveRedisDSN   string
	solvePlotPath   string
	solveJSON       bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the Weber problem for a point file",
	Long: `Finds the point minimising the sum of weighted distances to the input points
and compares it with the mass center. Without --points the built-in 30-point
article data set is solved.

Point files are CSV (x,y[,weight]), JSON or YAML, chosen by extension.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solvePointsPath, "points", "", "Point file (.csv, .json, .yaml); default is the article data set")
	solveCmd.Flags().IntVar(&solveSeedIndex, "seed-index", 0, "Input point anchoring the initial simplex (-1 = random)")
	solveCmd.Flags().Int64Var(&solveRandSeed, "rand-seed", 42, "Random seed used when --seed-index is -1")
	solveCmd.Flags().BoolVar(&solveUnweighted, "unweighted", false, "Ignore weights (geometric median)")
	solveCmd.Flags().StringVar(&solveMethod, "method", weber.MethodNelderMead, "Optimizer: nelder-mead or mayfly")
	solveCmd.Flags().Float64Var(&solveEpsilon, "epsilon", 1e-10, "Stopping tolerance on simplex movement")
	solveCmd.Flags().IntVar(&solveMaxIters, "max-iters", 5000, "Iteration cap")
	solveCmd.Flags().IntVar(&solveWorkers, "workers", 1, "Concurrent cost evaluations per iteration")
	solveCmd.Flags().StringVar(&solveStopRule, "stop-rule", "positional", "Movement test: positional or ranked")
	solveCmd.Flags().BoolVar(&solveTrace, "trace", false, "Write every iteration to <data-dir>/runs/<id>/trace.jsonl")
	solveCmd.Flags().BoolVar(&solveSave, "save", false, "Persist the run record")
	solveCmd.Flags().StringVar(&solveDataDir, "data-dir", "./data", "Base directory for runs and traces")
	solveCmd.Flags().StringVar(&solveRedisDSN, "redis", "", "Store run records in Redis (redis://host:port/db)")
	solveCmd.Flags().StringVar(&solvePlotPath, "plot", "", "Write an SVG scatter plot of the result")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "Print the run record as JSON")

	rootCmd.AddCommand(solveCmd)
}

// solveConfig merges the config file with the flags the user set explicitly
func solveConfig(cmd *cobra.Command) (weber.Config, error) {
	cfg, err := loadSolverConfig(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed-index") {
		cfg.SeedIndex = solveSeedIndex
	}
	if flags.Changed("rand-seed") {
		cfg.RandSeed = solveRandSeed
	}
	if flags.Changed("unweighted") {
		cfg.Weighted = !solveUnweighted
	}
	if flags.Changed("method") {
		cfg.Method = solveMethod
	}
	if flags.Changed("epsilon") {
		cfg.Settings.Epsilon = solveEpsilon
	}
	if flags.Changed("max-iters") {
		cfg.Settings.MaxIterations = solveMaxIters
	}
	if flags.Changed("workers") {
		cfg.Settings.Workers = solveWorkers
	}
	if flags.Changed("stop-rule") {
		rule, err := opt.ParseStopRule(solveStopRule)
		if err != nil {
			return cfg, err
		}
		cfg.Settings.StopRule = rule
	}
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := solveConfig(cmd)
	if err != nil {
		return err
	}

	points := pointset.Article()
	source := "article"
	if solvePointsPath != "" {
		points, err = pointset.Load(solvePointsPath)
		if err != nil {
			return err
		}
		source = solvePointsPath
	}

	runID := uuid.NewString()
	slog.Info("Starting solve", "run_id", runID, "points", len(points), "source", source, "method", cfg.Method)

	history := weber.NewHistory()
	var path []weber.Point
	observers := []opt.Observer{history.Observer()}

	if solvePlotPath != "" {
		observers = append(observers, func(s opt.Snapshot) {
			path = append(path, bestVertex(s))
		})
	}

	if solveTrace {
		tw, err := store.NewTraceWriter(solveDataDir, runID, false)
		if err != nil {
			return err
		}
		defer tw.Close()
		observers = append(observers, func(s opt.Snapshot) {
			if err := tw.Write(store.EntryFromSnapshot(s, true)); err != nil {
				slog.Warn("Trace write failed", "error", err)
			}
		})
	}
	cfg.Observer = weber.ChainObservers(observers...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := weber.Solve(ctx, points, cfg)
	if err != nil {
		return err
	}

	run, err := store.NewRunRecord(runID, points, cfg, res)
	if err != nil {
		return err
	}

	slog.Info("Solve complete",
		"run_id", runID,
		"elapsed", time.Since(start),
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"monotone", history.Monotone(),
	)

	if solveSave {
		runs, closeStore, err := openStore(solveDataDir, solveRedisDSN)
		if err != nil {
			return err
		}
		defer closeStore()
		if err := runs.SaveRun(runID, run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
	}

	if solvePlotPath != "" {
		if err := writePlot(solvePlotPath, run, path); err != nil {
			return err
		}
	}

	return printRun(cmd.OutOrStdout(), run, res)
}

func bestVertex(s opt.Snapshot) weber.Point {
	best := 0
	for i, c := range s.Costs {
		if c < s.Costs[best] {
			best = i
		}
	}
	return weber.PointFromVector(s.Vertices[best])
}

func writePlot(path string, run *store.RunRecord, trail []weber.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot: %w", err)
	}
	defer f.Close()

	data := ui.PlotData{
		Points:     run.Points,
		Solution:   &run.BestPoint,
		MassCenter: &run.MassCenter,
		Path:       trail,
	}
	if err := ui.ScatterPlot(data, 640, 480).Render(context.Background(), f); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

func printRun(w io.Writer, run *store.RunRecord, res *weber.Result) error {
	if solveJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Fprintf(w, "mass center (%.6f, %.6f), total cost %.6f\n",
		run.MassCenter.X, run.MassCenter.Y, run.MassCenterCost)
	fmt.Fprintf(w, "%s solution (%.6f, %.6f), total cost %.6f\n",
		res.Method, res.Point.X, res.Point.Y, res.Cost)
	if res.Degenerate {
		fmt.Fprintln(w, "degenerate input: solution known without search")
	} else {
		fmt.Fprintf(w, "%d iterations, %d evaluations, seed point %d\n",
			res.Iterations, res.Evaluations, res.SeedIndex)
	}
	fmt.Fprintf(w, "run %s\n", run.RunID)
	return nil
}
