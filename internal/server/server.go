package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/weberfit/internal/store"
)

// Options configures optional server collaborators
type Options struct {
	// DataDir is the root of iteration traces; empty disables tracing
	DataDir string

	// CacheTTL is how long finished results are reused; negative disables the cache
	CacheTTL time.Duration
}

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	env        jobEnv
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server. runs may be nil, in which case
// finished jobs are kept in memory only.
func NewServer(addr string, runs store.Store, opts Options) *Server {
	env := jobEnv{
		runs:    runs,
		dataDir: opts.DataDir,
	}
	if opts.CacheTTL >= 0 {
		env.cache = NewResultCache(opts.CacheTTL)
	}

	return &Server{
		jobManager: NewJobManager(),
		env:        env,
		addr:       addr,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// UI routes
	mux.HandleFunc("/", s.handleIndex)

	// API routes
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/runs", s.handleListRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleGetRun)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels pending and running jobs and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")

	for _, job := range s.jobManager.ActiveJobs() {
		s.jobManager.CancelJob(job.ID)
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodDelete {
		s.handleCancelJob(w, r, jobID)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "trace":
		s.handleGetTrace(w, r, jobID)
	case parts[1] == "plot.svg":
		s.handleGetPlot(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	// Fields missing from the body keep their defaults
	config := DefaultJobConfig()
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if err := validateJobConfig(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)

	go runJob(context.Background(), s.jobManager, s.env, job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// jobElapsed is the job's running time, up to now while it runs
func jobElapsed(job Job) time.Duration {
	if job.EndTime != nil {
		return job.EndTime.Sub(job.StartTime)
	}
	return time.Since(job.StartTime)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	elapsed := jobElapsed(job)
	ips := float64(0)
	if elapsed.Seconds() > 0 {
		ips = float64(job.Iterations) / elapsed.Seconds()
	}

	response := map[string]interface{}{
		"id":                  job.ID,
		"state":               job.State,
		"points":              len(job.Config.Points),
		"method":              job.Config.Method,
		"weighted":            job.Config.Weighted,
		"bestPoint":           job.BestPoint,
		"bestCost":            job.BestCost,
		"massCenterCost":      job.MassCenterCost,
		"iterations":          job.Iterations,
		"evaluations":         job.Evaluations,
		"lastStep":            job.LastStep,
		"degenerate":          job.Degenerate,
		"cached":              job.Cached,
		"elapsed":             elapsed.Seconds(),
		"iterationsPerSecond": ips,
		"startTime":           job.StartTime,
		"endTime":             job.EndTime,
		"error":               job.Error,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCancelJob handles DELETE /api/v1/jobs/:id
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if !s.jobManager.CancelJob(jobID) {
		http.Error(w, "Job already finished", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleGetTrace handles GET /api/v1/jobs/:id/trace, streaming JSONL
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request, jobID string) {
	if s.env.dataDir == "" {
		http.Error(w, "Tracing disabled", http.StatusNotFound)
		return
	}

	reader, err := store.NewTraceReader(s.env.dataDir, jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for {
		entry, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			slog.Error("Failed to read trace", "job_id", jobID, "error", err)
			return
		}
		if err := enc.Encode(entry); err != nil {
			return
		}
	}
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.env.runs == nil {
		writeJSON(w, http.StatusOK, []store.RunInfo{})
		return
	}

	infos, err := s.env.runs.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetRun handles GET /api/v1/runs/:id
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}
	if s.env.runs == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	run, err := s.env.runs.LoadRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
