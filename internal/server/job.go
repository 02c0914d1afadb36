package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Done reports whether the state is final
func (s JobState) Done() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// JobConfig is the request body of a new job: the point set plus solver options.
// Solver options are inlined, so {"points": [...], "seedIndex": 3} is valid.
type JobConfig struct {
	Points []weber.WeightedPoint `json:"points"`

	weber.Config

	// Trace writes every iteration to <dataDir>/runs/<id>/trace.jsonl
	Trace bool `json:"trace,omitempty"`
}

// DefaultJobConfig returns a JobConfig carrying the solver defaults and no points
func DefaultJobConfig() JobConfig {
	return JobConfig{Config: weber.DefaultConfig()}
}

// Job represents a solve job
type Job struct {
	ID             string       `json:"id"`
	State          JobState     `json:"state"`
	Config         JobConfig    `json:"config"`
	BestPoint      *weber.Point `json:"bestPoint,omitempty"`
	BestCost       float64      `json:"bestCost"`
	MassCenterCost float64      `json:"massCenterCost"`
	Iterations     int          `json:"iterations"`
	Evaluations    int          `json:"evaluations"`
	LastStep       string       `json:"lastStep,omitempty"`
	Degenerate     bool         `json:"degenerate"`
	Cached         bool         `json:"cached"`
	StartTime      time.Time    `json:"startTime"`
	EndTime        *time.Time   `json:"endTime,omitempty"`
	Error          string       `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	contexts    map[string]context.Context
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		contexts:    make(map[string]context.Context),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a pending job and returns a copy of it.
// The job's context is cancelled by CancelJob, also before the job starts.
func (jm *JobManager) CreateJob(config JobConfig) Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.jobs[job.ID] = job
	jm.contexts[job.ID] = ctx
	jm.cancels[job.ID] = cancel
	return *job
}

// GetJob returns a copy of the job so callers can read it without the lock
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns copies of all jobs, oldest first
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// ActiveJobs returns all jobs that are pending or running
func (jm *JobManager) ActiveJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	active := make([]Job, 0)
	for _, job := range jm.jobs {
		if !job.State.Done() {
			active = append(active, *job)
		}
	}
	return active
}

// jobContext returns the context CancelJob cancels for id
func (jm *JobManager) jobContext(id string) (context.Context, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	ctx, ok := jm.contexts[id]
	return ctx, ok
}

// release cancels and drops the job's context once it has finished
func (jm *JobManager) release(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.releaseLocked(id)
}

func (jm *JobManager) releaseLocked(id string) {
	if cancel, ok := jm.cancels[id]; ok {
		cancel()
	}
	delete(jm.cancels, id)
	delete(jm.contexts, id)
}

// CancelJob stops a pending or running job. A pending job is marked
// cancelled at once so its worker never starts the search.
// Returns false if the job is unknown or already finished.
func (jm *JobManager) CancelJob(id string) bool {
	jm.mu.Lock()

	job, exists := jm.jobs[id]
	if !exists || job.State.Done() {
		jm.mu.Unlock()
		return false
	}

	pending := job.State == StatePending
	if pending {
		endTime := time.Now()
		job.State = StateCancelled
		job.EndTime = &endTime
		jm.releaseLocked(id)
	} else if cancel, ok := jm.cancels[id]; ok {
		cancel()
	}
	jm.mu.Unlock()

	if pending {
		slog.Info("Job cancelled before start", "job_id", id)
		broadcastJob(jm, id)
	}
	return true
}
