package store

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// setupRedisStore connects to REDIS_DSN (e.g. redis://localhost:6379/15) or skips.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	dsn := os.Getenv("REDIS_DSN")
	if dsn == "" {
		t.Skip("REDIS_DSN not set")
	}

	prefix := "weberfit-test-" + uuid.NewString()
	store, err := NewRedisStore(dsn, prefix)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		infos, _ := store.ListRuns()
		for _, info := range infos {
			store.DeleteRun(info.RunID)
		}
		store.Close()
	})

	return store
}

func TestNewRedisStore_BadDSN(t *testing.T) {
	if _, err := NewRedisStore("not a url", ""); err == nil {
		t.Error("Expected error for invalid dsn")
	}
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	store := setupRedisStore(t)

	runID := "redis-run"
	original := createTestRun(runID)
	if err := store.SaveRun(runID, original); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.BestPoint != original.BestPoint || len(loaded.Points) != len(original.Points) {
		t.Errorf("Loaded run differs: %+v", loaded)
	}

	if err := store.DeleteRun(runID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := store.LoadRun(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteRun(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRedisStore_ListRuns(t *testing.T) {
	store := setupRedisStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		runID := fmt.Sprintf("run-%d", i)
		run := createTestRun(runID)
		run.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := store.SaveRun(runID, run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}
	if infos[0].RunID != "run-2" {
		t.Errorf("Expected newest run first, got %s", infos[0].RunID)
	}
}
