package server

import (
	"log/slog"
	"net/http"

	"github.com/cwbudde/weberfit/internal/ui"
	"github.com/cwbudde/weberfit/internal/weber"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	jobs := s.jobManager.ListJobs()

	jobItems := make([]ui.JobListItem, len(jobs))
	for i, job := range jobs {
		method := job.Config.Method
		if method == "" {
			method = weber.MethodNelderMead
		}
		item := ui.JobListItem{
			ID:             job.ID,
			State:          string(job.State),
			Method:         method,
			Points:         len(job.Config.Points),
			Weighted:       job.Config.Weighted,
			Iterations:     job.Iterations,
			BestCost:       job.BestCost,
			MassCenterCost: job.MassCenterCost,
			Cached:         job.Cached,
			StartTime:      job.StartTime,
			EndTime:        job.EndTime,
			Error:          job.Error,
		}
		if job.BestPoint != nil {
			item.HasBest = true
			item.BestX, item.BestY = job.BestPoint.X, job.BestPoint.Y
		}
		jobItems[i] = item
	}

	if err := ui.JobList(jobItems).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}

// handleGetPlot handles GET /api/v1/jobs/:id/plot.svg
func (s *Server) handleGetPlot(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	center, err := weber.MassCenter(weber.Locations(job.Config.Points))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := ui.PlotData{
		Points:     job.Config.Points,
		Solution:   job.BestPoint,
		MassCenter: &center,
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")

	if err := ui.ScatterPlot(data, 640, 480).Render(r.Context(), w); err != nil {
		slog.Error("Failed to render plot", "job_id", jobID, "error", err)
	}
}
