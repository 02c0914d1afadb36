// Package ui renders the HTML pages of the job server.
package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// JobListItem is one row of the job list page
type JobListItem struct {
	ID             string
	State          string
	Method         string
	Points         int
	Weighted       bool
	Iterations     int
	BestX, BestY   float64
	HasBest        bool
	BestCost       float64
	MassCenterCost float64
	Cached         bool
	StartTime      time.Time
	EndTime        *time.Time
	Error          string
}

// Elapsed returns how long the job ran, or has been running
func (j JobListItem) Elapsed() time.Duration {
	if j.EndTime != nil {
		return j.EndTime.Sub(j.StartTime).Round(time.Millisecond)
	}
	return time.Since(j.StartTime).Round(time.Millisecond)
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>weberfit jobs</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 0.3em 0.8em; border-bottom: 1px solid #ddd; text-align: left; }
td.num { text-align: right; font-family: monospace; }
.state-completed { color: #2a7; }
.state-failed { color: #c33; }
.state-running { color: #27c; }
</style>
</head>
<body>
<h1>Jobs</h1>
`

const pageFoot = `<p>Submit jobs with <code>POST /api/v1/jobs</code>.</p>
</body>
</html>
`

// JobList renders every job as a table row
func JobList(jobs []JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		if len(jobs) == 0 {
			if _, err := io.WriteString(w, "<p>No jobs yet.</p>\n"); err != nil {
				return err
			}
			_, err := io.WriteString(w, pageFoot)
			return err
		}

		header := "<table>\n<tr><th>ID</th><th>State</th><th>Method</th><th>Points</th>" +
			"<th>Iterations</th><th>Best point</th><th>Cost</th><th>Mass center cost</th><th>Elapsed</th></tr>\n"
		if _, err := io.WriteString(w, header); err != nil {
			return err
		}

		for _, job := range jobs {
			if err := jobRow(w, job); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "</table>\n"); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

func jobRow(w io.Writer, job JobListItem) error {
	best := "-"
	if job.HasBest {
		best = fmt.Sprintf("(%.6f, %.6f)", job.BestX, job.BestY)
	}

	state := templ.EscapeString(job.State)
	if job.Cached {
		state += " (cached)"
	}
	if job.Error != "" {
		state += `<br><small>` + templ.EscapeString(job.Error) + `</small>`
	}

	_, err := fmt.Fprintf(w,
		`<tr><td><a href="/api/v1/jobs/%[1]s">%[1]s</a></td><td class="state-%[2]s">%[3]s</td><td>%[4]s</td>`+
			`<td class="num">%[5]d</td><td class="num">%[6]d</td><td class="num">%[7]s</td>`+
			`<td class="num">%.6[8]f</td><td class="num">%.6[9]f</td><td>%[10]s</td></tr>`+"\n",
		templ.EscapeString(job.ID),
		templ.EscapeString(job.State),
		state,
		templ.EscapeString(job.Method),
		job.Points,
		job.Iterations,
		best,
		job.BestCost,
		job.MassCenterCost,
		job.Elapsed(),
	)
	return err
}
