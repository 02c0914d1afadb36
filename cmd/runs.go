package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/weberfit/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsDataDir   string
	runsRedisDSN  string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved run records",
	Long: `Manage run records saved by "solve --save" and by the job server,
including listing, inspecting and cleaning old runs.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	Long:  `Display all runs with run ID, timestamp, point count, best point, cost and size on disk.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can keep only the newest N runs or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory for run storage")
	runsCmd.PersistentFlags().StringVar(&runsRedisDSN, "redis", "", "Read runs from Redis instead (redis://host:port/db)")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

// openStore returns the Redis store when dsn is set, else the filesystem store
func openStore(dataDir, redisDSN string) (store.Store, func(), error) {
	if redisDSN != "" {
		rs, err := store.NewRedisStore(redisDSN, "")
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}

	fs, err := store.NewFSStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create run store: %w", err)
	}
	return fs, func() {}, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, closeStore, err := openStore(runsDataDir, runsRedisDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tMETHOD\tPOINTS\tBEST POINT\tCOST\tMASS CENTER COST\tSIZE")
	fmt.Fprintln(w, "------\t---------\t------\t------\t----------\t----\t----------------\t----")

	for _, info := range infos {
		sizeStr := "-"
		if runsRedisDSN == "" {
			if size, err := getDirSize(filepath.Join(runsDataDir, "runs", info.RunID)); err == nil {
				sizeStr = formatBytes(size)
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t(%.4f, %.4f)\t%.6f\t%.6f\t%s\n",
			shortID(info.RunID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Method,
			info.Points,
			info.BestPoint.X, info.BestPoint.Y,
			info.BestCost,
			info.MassCenterCost,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, closeStore, err := openStore(runsDataDir, runsRedisDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	run, err := runStore.LoadRun(args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run not found: %s", args[0])
	} else if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s\n", run.RunID)
	fmt.Fprintf(out, "Finished: %s\n\n", run.Timestamp.Format(time.RFC3339))

	s := run.Config.Settings
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Method: %s\n", run.ToInfo().Method)
	fmt.Fprintf(out, "  Weighted: %v\n", run.Config.Weighted)
	fmt.Fprintf(out, "  Seed index: %d\n", run.Config.SeedIndex)
	fmt.Fprintf(out, "  Coefficients: alpha=%g beta=%g gamma=%g delta=%g\n", s.Alpha, s.Beta, s.Gamma, s.Delta)
	fmt.Fprintf(out, "  Epsilon: %g (%s), max iterations %d\n\n", s.Epsilon, s.StopRule, s.MaxIterations)

	fmt.Fprintln(out, "Result:")
	fmt.Fprintf(out, "  Points: %d\n", len(run.Points))
	fmt.Fprintf(out, "  Best point: (%.6f, %.6f)\n", run.BestPoint.X, run.BestPoint.Y)
	fmt.Fprintf(out, "  Best cost: %.6f\n", run.BestCost)
	fmt.Fprintf(out, "  Mass center: (%.6f, %.6f), cost %.6f\n", run.MassCenter.X, run.MassCenter.Y, run.MassCenterCost)
	fmt.Fprintf(out, "  Improvement: %.6f\n", run.Improvement())
	fmt.Fprintf(out, "  Iterations: %d, evaluations: %d\n", run.Iterations, run.Evaluations)
	if run.Degenerate {
		fmt.Fprintln(out, "  Degenerate input")
	}
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, closeStore, err := openStore(runsDataDir, runsRedisDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays)

	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (cost %.6f, %s)\n",
			shortID(info.RunID),
			info.BestCost,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.RunID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.RunID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy; a run matching both rules is listed once
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		// Oldest beyond the newest keepLast
		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
