package opt

import "sync"

// evaluator counts objective calls and fans batches out to a fixed worker pool.
// A batch is always joined before it returns.
type evaluator struct {
	f       func([]float64) float64
	workers int
	count   int
}

func (e *evaluator) eval(x []float64) float64 {
	e.count++
	return e.f(x)
}

// batch evaluates every position; results are index-aligned with xs
func (e *evaluator) batch(xs [][]float64) []float64 {
	out := make([]float64, len(xs))
	e.count += len(xs)

	if e.workers <= 1 || len(xs) < 2 {
		for i, x := range xs {
			out[i] = e.f(x)
		}
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(e.workers, len(xs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = e.f(xs[i])
			}
		}()
	}

	for i := range xs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

// trials holds the candidate points of one iteration and memoises their costs
type trials struct {
	ev     *evaluator
	points [numCandidates][]float64
	costs  [numCandidates]float64
	known  [numCandidates]bool
}

// prefetch evaluates every candidate in one concurrent batch
func (t *trials) prefetch() {
	xs := make([][]float64, numCandidates)
	for i := range t.points {
		xs[i] = t.points[i]
	}
	for i, f := range t.ev.batch(xs) {
		t.costs[i] = f
		t.known[i] = true
	}
}

func (t *trials) cost(c candidate) float64 {
	if !t.known[c] {
		t.costs[c] = t.ev.eval(t.points[c])
		t.known[c] = true
	}
	return t.costs[c]
}

func (t *trials) vertex(c candidate) Vertex {
	return Vertex{X: t.points[c], F: t.cost(c)}
}
