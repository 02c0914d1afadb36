package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/weberfit/internal/pointset"
	"github.com/cwbudde/weberfit/internal/store"
	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/spf13/cobra"
)

// resetSolveFlags restores every solve flag variable after the test
func resetSolveFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		points, dataDir, redis, plot, config string
		trace, save, json                    bool
	}{solvePointsPath, solveDataDir, solveRedisDSN, solvePlotPath, configPath, solveTrace, solveSave, solveJSON}

	solvePointsPath, solveRedisDSN, solvePlotPath, configPath = "", "", "", ""
	solveDataDir = t.TempDir()
	solveTrace, solveSave, solveJSON = false, false, true

	t.Cleanup(func() {
		solvePointsPath, solveDataDir, solveRedisDSN, solvePlotPath, configPath = saved.points, saved.dataDir, saved.redis, saved.plot, saved.config
		solveTrace, solveSave, solveJSON = saved.trace, saved.save, saved.json
	})
}

func runSolveJSON(t *testing.T) *store.RunRecord {
	t.Helper()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runSolve(cmd, nil); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}

	var run store.RunRecord
	if err := json.Unmarshal(buf.Bytes(), &run); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, buf.String())
	}
	return &run
}

func TestRunSolve_Article(t *testing.T) {
	resetSolveFlags(t)

	run := runSolveJSON(t)

	if math.Abs(run.BestCost-250.494) > 0.01 {
		t.Errorf("Expected cost near 250.494, got %f", run.BestCost)
	}
	if math.Abs(run.MassCenterCost-252.157) > 0.01 {
		t.Errorf("Expected mass center cost near 252.157, got %f", run.MassCenterCost)
	}
	if run.Improvement() <= 0 {
		t.Errorf("Expected solution to beat the mass center, improvement %f", run.Improvement())
	}
	if run.Iterations == 0 {
		t.Error("Expected at least one iteration")
	}
}

func TestRunSolve_PointFileSaveTraceAndPlot(t *testing.T) {
	resetSolveFlags(t)

	dir := t.TempDir()
	solvePointsPath = filepath.Join(dir, "line.csv")
	line := []weber.WeightedPoint{
		{X: 0, Y: 0, Weight: 1},
		{X: 1, Y: 0, Weight: 1},
		{X: 5, Y: 0, Weight: 1},
	}
	if err := pointset.Save(solvePointsPath, line); err != nil {
		t.Fatalf("Failed to write points: %v", err)
	}
	solveSave, solveTrace = true, true
	solvePlotPath = filepath.Join(dir, "plot.svg")

	run := runSolveJSON(t)

	if math.Abs(run.BestPoint.X-1) > 1e-3 || math.Abs(run.BestPoint.Y) > 1e-3 {
		t.Errorf("Expected solution near (1,0), got %+v", run.BestPoint)
	}
	if math.Abs(run.BestCost-5) > 1e-3 {
		t.Errorf("Expected cost near 5, got %f", run.BestCost)
	}

	fs, err := store.NewFSStore(solveDataDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	saved, err := fs.LoadRun(run.RunID)
	if err != nil {
		t.Fatalf("Expected saved run, got %v", err)
	}
	if saved.BestCost != run.BestCost {
		t.Errorf("Saved cost %f differs from printed %f", saved.BestCost, run.BestCost)
	}

	tr, err := store.NewTraceReader(solveDataDir, run.RunID)
	if err != nil {
		t.Fatalf("Expected trace file, got %v", err)
	}
	defer tr.Close()
	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != run.Iterations {
		t.Errorf("Expected %d trace entries, got %d", run.Iterations, len(entries))
	}

	svg, err := os.ReadFile(solvePlotPath)
	if err != nil {
		t.Fatalf("Expected plot file, got %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("Expected SVG output, got %.40q", svg)
	}
}

func TestRunSolve_TextOutput(t *testing.T) {
	resetSolveFlags(t)
	solveJSON = false

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runSolve(cmd, nil); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mass center (5.833333, 4.933333)") {
		t.Errorf("Expected mass center line, got:\n%s", out)
	}
	if !strings.Contains(out, "nelder-mead solution") {
		t.Errorf("Expected solution line, got:\n%s", out)
	}
}

func TestRunSolve_Degenerate(t *testing.T) {
	resetSolveFlags(t)

	solvePointsPath = filepath.Join(t.TempDir(), "one.json")
	if err := pointset.Save(solvePointsPath, []weber.WeightedPoint{{X: 3, Y: 4, Weight: 2}}); err != nil {
		t.Fatalf("Failed to write points: %v", err)
	}

	run := runSolveJSON(t)

	if !run.Degenerate {
		t.Error("Expected degenerate run")
	}
	if run.BestPoint != (weber.Point{X: 3, Y: 4}) || run.BestCost != 0 {
		t.Errorf("Expected (3,4) with cost 0, got %+v cost %f", run.BestPoint, run.BestCost)
	}
}

func TestRunSolve_ConfigFile(t *testing.T) {
	resetSolveFlags(t)
	configPath = writeConfig(t, "settings:\n  maxIterations: 2\n")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runSolve(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "converge") {
		t.Errorf("Expected non-convergence error with a 2 iteration cap, got %v", err)
	}
}

func TestRunSolve_MissingPointFile(t *testing.T) {
	resetSolveFlags(t)
	solvePointsPath = filepath.Join(t.TempDir(), "missing.csv")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if err := runSolve(cmd, nil); err == nil {
		t.Error("Expected error for missing point file")
	}
}

func TestSolveConfig_FlagsOverride(t *testing.T) {
	resetSolveFlags(t)

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&solveMaxIters, "max-iters", 5000, "")
	cmd.Flags().StringVar(&solveStopRule, "stop-rule", "positional", "")
	cmd.Flags().BoolVar(&solveUnweighted, "unweighted", false, "")
	if err := cmd.Flags().Parse([]string{"--max-iters", "123", "--stop-rule", "ranked", "--unweighted"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(func() { solveMaxIters, solveStopRule, solveUnweighted = 5000, "positional", false })

	cfg, err := solveConfig(cmd)
	if err != nil {
		t.Fatalf("solveConfig failed: %v", err)
	}
	if cfg.Settings.MaxIterations != 123 {
		t.Errorf("Expected max iterations 123, got %d", cfg.Settings.MaxIterations)
	}
	if cfg.Settings.StopRule.String() != "ranked" {
		t.Errorf("Expected ranked stop rule, got %s", cfg.Settings.StopRule)
	}
	if cfg.Weighted {
		t.Error("Expected --unweighted to clear Weighted")
	}
	// Untouched flags keep config defaults
	if cfg.Settings.Epsilon != 1e-10 {
		t.Errorf("Expected default epsilon, got %g", cfg.Settings.Epsilon)
	}
}
