package weber

import (
	"log/slog"
	"math"
	"sync"

	"github.com/cwbudde/weberfit/internal/opt"
)

// History tracks the best simplex cost across iterations.
// It is safe to read while the optimizer is still writing to it.
type History struct {
	mu          sync.Mutex
	costHistory []float64
	steps       map[opt.Step]int
	bestCost    float64
	violations  int // Iterations where the best cost went up
}

// NewHistory creates an empty cost history
func NewHistory() *History {
	return &History{
		costHistory: []float64{},
		steps:       make(map[opt.Step]int),
		bestCost:    math.Inf(1),
	}
}

// Observer returns an opt.Observer that records each snapshot
func (h *History) Observer() opt.Observer {
	return func(s opt.Snapshot) {
		h.Update(s.Step, minCost(s.Costs))
	}
}

// Update records the best vertex cost of one iteration
func (h *History) Update(step opt.Step, cost float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.costHistory); n > 0 && cost > h.costHistory[n-1] {
		h.violations++
		slog.Warn("Best simplex cost increased",
			"iteration", n+1,
			"previous", h.costHistory[n-1],
			"cost", cost,
		)
	}

	h.costHistory = append(h.costHistory, cost)
	h.steps[step]++
	if cost < h.bestCost {
		h.bestCost = cost
	}
}

// BestCost returns the best cost seen so far
func (h *History) BestCost() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bestCost
}

// Costs returns the full cost history
func (h *History) Costs() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64{}, h.costHistory...) // Return copy
}

// Len returns the number of recorded iterations
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.costHistory)
}

// Monotone reports whether the best cost never increased
func (h *History) Monotone() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.violations == 0
}

// StepCounts returns how often each transformation was applied
func (h *History) StepCounts() map[opt.Step]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[opt.Step]int, len(h.steps))
	for k, v := range h.steps {
		out[k] = v
	}
	return out
}

// Reset clears the history
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.costHistory = []float64{}
	h.steps = make(map[opt.Step]int)
	h.bestCost = math.Inf(1)
	h.violations = 0
}

// ChainObservers fans one snapshot out to several observers; nil entries are skipped
func ChainObservers(observers ...opt.Observer) opt.Observer {
	var active []opt.Observer
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(s opt.Snapshot) {
		for _, o := range active {
			o(s)
		}
	}
}

func minCost(costs []float64) float64 {
	m := math.Inf(1)
	for _, c := range costs {
		m = math.Min(m, c)
	}
	return m
}
