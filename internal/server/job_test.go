package server

import (
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/weberfit/internal/weber"
)

// squareConfig returns a job over the corners of a 2x2 square, minimised at (1,1)
func squareConfig() JobConfig {
	config := DefaultJobConfig()
	config.Points = []weber.WeightedPoint{
		{X: 0, Y: 0, Weight: 1},
		{X: 2, Y: 0, Weight: 1},
		{X: 0, Y: 2, Weight: 1},
		{X: 2, Y: 2, Weight: 1},
	}
	return config
}

// waitForJob polls until the job reaches a final state
func waitForJob(t *testing.T, jm *JobManager, jobID string, timeout time.Duration) Job {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		job, exists := jm.GetJob(jobID)
		if !exists {
			t.Fatalf("Job %s disappeared", jobID)
		}
		if job.State.Done() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Job %s did not finish within %v", jobID, timeout)
	return Job{}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(squareConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if len(job.Config.Points) != 4 {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsCopy(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())

	copied, _ := jm.GetJob(job.ID)
	copied.State = StateFailed

	again, _ := jm.GetJob(job.ID)
	if again.State != StatePending {
		t.Errorf("Mutating a copy changed the managed job: %s", again.State)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(squareConfig())
	time.Sleep(time.Millisecond)
	second := jm.CreateJob(squareConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Error("Jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Iterations = 100
		j.BestCost = 5.7
	})
	if err != nil {
		t.Errorf("UpdateJob failed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Errorf("State not updated, got %s", updated.State)
	}
	if updated.Iterations != 100 {
		t.Errorf("Iterations not updated, got %d", updated.Iterations)
	}
	if len(jm.ActiveJobs()) != 1 {
		t.Errorf("Expected 1 active job, got %d", len(jm.ActiveJobs()))
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("UpdateJob should fail for nonexistent job")
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())

	ctx, ok := jm.jobContext(job.ID)
	if !ok {
		t.Fatal("CreateJob should register a job context")
	}

	// Right after creation, before any worker picks the job up
	if !jm.CancelJob(job.ID) {
		t.Fatal("CancelJob should succeed for a pending job")
	}
	if ctx.Err() == nil {
		t.Error("Job context should be cancelled")
	}

	cancelled, _ := jm.GetJob(job.ID)
	if cancelled.State != StateCancelled {
		t.Errorf("Expected cancelled state, got %s", cancelled.State)
	}
	if cancelled.EndTime == nil {
		t.Error("EndTime should be set")
	}
	if jm.CancelJob(job.ID) {
		t.Error("A cancelled job cannot be cancelled again")
	}

	finished := jm.CreateJob(squareConfig())
	jm.UpdateJob(finished.ID, func(j *Job) { j.State = StateCompleted })
	if jm.CancelJob(finished.ID) {
		t.Error("A finished job cannot be cancelled")
	}
	if jm.CancelJob("nonexistent") {
		t.Error("Unknown job cannot be cancelled")
	}
}

func TestJobManager_CancelRunningJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())
	jm.UpdateJob(job.ID, func(j *Job) { j.State = StateRunning })

	ctx, _ := jm.jobContext(job.ID)
	if !jm.CancelJob(job.ID) {
		t.Fatal("CancelJob should succeed for a running job")
	}
	if ctx.Err() == nil {
		t.Error("Job context should be cancelled")
	}

	// The worker records the final state
	running, _ := jm.GetJob(job.ID)
	if running.State != StateRunning {
		t.Errorf("Expected running state until the worker stops, got %s", running.State)
	}
}

func TestJobManager_CreateJobReturnsCopy(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(squareConfig())

	jm.UpdateJob(job.ID, func(j *Job) { j.Iterations = 7 })

	if job.Iterations != 0 {
		t.Errorf("Returned job should not track later updates, got %d iterations", job.Iterations)
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job := jm.CreateJob(squareConfig())
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Iterations++
			})
			jm.GetJob(job.ID)
			jm.ListJobs()
		}()
	}
	wg.Wait()

	if len(jm.ListJobs()) != 10 {
		t.Errorf("Expected 10 jobs, got %d", len(jm.ListJobs()))
	}
}
