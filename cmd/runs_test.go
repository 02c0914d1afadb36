package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/weberfit/internal/store"
	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/spf13/cobra"
)

func TestSelectRunsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 0, 7)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}

	ids := runIDs(toDelete)
	if !ids["run1"] || !ids["run4"] {
		t.Errorf("Expected run1 and run4 to be selected, got %v", ids)
	}
}

func TestSelectRunsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 2, 0)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}

	// Oldest two go
	ids := runIDs(toDelete)
	if !ids["run4"] || !ids["run1"] {
		t.Errorf("Expected run4 and run1 to be selected, got %v", ids)
	}
}

func TestSelectRunsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
		{RunID: "run5", Timestamp: now.AddDate(0, 0, -2)},
	}

	// Age selects run1 and run4; keeping 2 also selects run2. No duplicates.
	toDelete := selectRunsForDeletion(infos, 2, 7)

	if len(toDelete) != 3 {
		t.Fatalf("Expected 3 runs to delete, got %d", len(toDelete))
	}
	ids := runIDs(toDelete)
	for _, id := range []string{"run1", "run2", "run4"} {
		if !ids[id] {
			t.Errorf("Expected %s to be selected, got %v", id, ids)
		}
	}
}

func TestSelectRunsForDeletion_NothingToDelete(t *testing.T) {
	infos := []store.RunInfo{{RunID: "run1", Timestamp: time.Now()}}

	if toDelete := selectRunsForDeletion(infos, 5, 7); len(toDelete) != 0 {
		t.Errorf("Expected no runs to delete, got %d", len(toDelete))
	}
}

func runIDs(infos []store.RunInfo) map[string]bool {
	ids := make(map[string]bool, len(infos))
	for _, info := range infos {
		ids[info.RunID] = true
	}
	return ids
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %s", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("shortID truncation = %s", got)
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}

	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

// useRunsDataDir points the runs commands at dir for the duration of the test
func useRunsDataDir(t *testing.T, dir string) {
	t.Helper()
	originalDataDir, originalDSN := runsDataDir, runsRedisDSN
	runsDataDir, runsRedisDSN = dir, ""
	t.Cleanup(func() { runsDataDir, runsRedisDSN = originalDataDir, originalDSN })
}

func saveTestRun(t *testing.T, runStore store.Store, runID string, age time.Duration) {
	t.Helper()

	points := []weber.WeightedPoint{
		{X: 0, Y: 0, Weight: 1},
		{X: 1, Y: 0, Weight: 1},
		{X: 5, Y: 0, Weight: 1},
	}
	res := &weber.Result{
		Point:       weber.Point{X: 1, Y: 0},
		Cost:        5,
		Iterations:  40,
		Evaluations: 90,
		Method:      weber.MethodNelderMead,
	}
	run, err := store.NewRunRecord(runID, points, weber.DefaultConfig(), res)
	if err != nil {
		t.Fatalf("NewRunRecord failed: %v", err)
	}
	run.Timestamp = time.Now().Add(-age)

	if err := runStore.SaveRun(runID, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
}

func TestRunsListCommand_NoRuns(t *testing.T) {
	useRunsDataDir(t, t.TempDir())

	if err := runListRuns(nil, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestRunsListCommand_WithRuns(t *testing.T) {
	tmpDir := t.TempDir()

	runStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	saveTestRun(t, runStore, "test-run-id", 0)

	useRunsDataDir(t, tmpDir)

	if err := runListRuns(nil, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestRunsShowCommand(t *testing.T) {
	tmpDir := t.TempDir()

	runStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	saveTestRun(t, runStore, "show-me", 0)

	useRunsDataDir(t, tmpDir)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runShowRun(cmd, []string{"show-me"}); err != nil {
		t.Fatalf("runShowRun failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Run: show-me", "Method: nelder-mead", "Best point: (1.000000, 0.000000)", "Best cost: 5.000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunsShowCommand_NotFound(t *testing.T) {
	useRunsDataDir(t, t.TempDir())

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runShowRun(cmd, []string{"missing"})
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("Expected run not found error, got %v", err)
	}
}

func TestRunsCleanCommand_NoFlags(t *testing.T) {
	useRunsDataDir(t, t.TempDir())

	originalKeepLast, originalOlderThan := keepLast, olderThanDays
	keepLast, olderThanDays = 0, 0
	defer func() { keepLast, olderThanDays = originalKeepLast, originalOlderThan }()

	if err := runCleanRuns(nil, nil); err == nil {
		t.Error("Expected error when neither --keep-last nor --older-than is set")
	}
}

func TestRunsCleanCommand_OlderThan(t *testing.T) {
	tmpDir := t.TempDir()

	runStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	saveTestRun(t, runStore, "old-run", 10*24*time.Hour)
	saveTestRun(t, runStore, "new-run", time.Hour)

	useRunsDataDir(t, tmpDir)

	originalKeepLast, originalOlderThan, originalForce := keepLast, olderThanDays, forceClean
	keepLast, olderThanDays, forceClean = 0, 7, true
	defer func() { keepLast, olderThanDays, forceClean = originalKeepLast, originalOlderThan, originalForce }()

	if err := runCleanRuns(nil, nil); err != nil {
		t.Fatalf("runCleanRuns failed: %v", err)
	}

	if _, err := runStore.LoadRun("old-run"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected old-run to be deleted, got %v", err)
	}
	if _, err := runStore.LoadRun("new-run"); err != nil {
		t.Errorf("Expected new-run to survive, got %v", err)
	}
}
