package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return listJobs(out, fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}

	jobID := args[0]
	return getJobStatus(out, fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

// jobSummary is the subset of a listed job the CLI prints
type jobSummary struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Config struct {
		Points []json.RawMessage `json:"points"`
		Method string            `json:"method"`
	} `json:"config"`
	BestPoint *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"bestPoint"`
	BestCost   float64 `json:"bestCost"`
	Iterations int     `json:"iterations"`
	Cached     bool    `json:"cached"`
	Error      string  `json:"error"`
}

func listJobs(out io.Writer, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []jobSummary
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	fmt.Fprintf(out, "Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(out, "Job ID: %s\n", job.ID)
		fmt.Fprintf(out, "  State: %s\n", job.State)
		fmt.Fprintf(out, "  Points: %d\n", len(job.Config.Points))
		if job.BestPoint != nil {
			fmt.Fprintf(out, "  Best: (%.6f, %.6f), cost %.6f after %d iterations\n",
				job.BestPoint.X, job.BestPoint.Y, job.BestCost, job.Iterations)
		}
		if job.Cached {
			fmt.Fprintln(out, "  Answered from cache")
		}
		if job.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", job.Error)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// jobStatus mirrors the server's status response
type jobStatus struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Points    int    `json:"points"`
	Method    string `json:"method"`
	Weighted  bool   `json:"weighted"`
	BestPoint *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"bestPoint"`
	BestCost            float64 `json:"bestCost"`
	MassCenterCost      float64 `json:"massCenterCost"`
	Iterations          int     `json:"iterations"`
	Evaluations         int     `json:"evaluations"`
	LastStep            string  `json:"lastStep"`
	Degenerate          bool    `json:"degenerate"`
	Cached              bool    `json:"cached"`
	Elapsed             float64 `json:"elapsed"`
	IterationsPerSecond float64 `json:"iterationsPerSecond"`
	Error               string  `json:"error"`
}

func getJobStatus(out io.Writer, url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Fprintf(out, "Job: %s\n", status.ID)
	fmt.Fprintf(out, "State: %s\n\n", status.State)

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Points: %d\n", status.Points)
	fmt.Fprintf(out, "  Method: %s\n", status.Method)
	fmt.Fprintf(out, "  Weighted: %v\n\n", status.Weighted)

	fmt.Fprintln(out, "Progress:")
	fmt.Fprintf(out, "  Iterations: %d (last step %s)\n", status.Iterations, status.LastStep)
	if status.BestPoint != nil {
		fmt.Fprintf(out, "  Best Point: (%.6f, %.6f)\n", status.BestPoint.X, status.BestPoint.Y)
		fmt.Fprintf(out, "  Best Cost: %.6f\n", status.BestCost)
	}
	if status.MassCenterCost > 0 {
		fmt.Fprintf(out, "  Mass Center Cost: %.6f\n", status.MassCenterCost)
		fmt.Fprintf(out, "  Improvement: %.6f\n", status.MassCenterCost-status.BestCost)
	}
	if status.Degenerate {
		fmt.Fprintln(out, "  Degenerate input, no search needed")
	}
	if status.Cached {
		fmt.Fprintln(out, "  Answered from cache")
	}

	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Fprintf(out, "  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	if status.IterationsPerSecond > 0 {
		fmt.Fprintf(out, "  Throughput: %.0f iterations/sec\n", status.IterationsPerSecond)
	}

	if status.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", status.Error)
	}

	return nil
}
