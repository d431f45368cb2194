package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Error  error
	Report *Report
	Index  int
}

// BatchSummary contains statistics about a batch run.
type BatchSummary struct {
	Results        []BatchResult
	Total          int
	Succeeded      int
	Failed         int
	Degraded       int
	HabitsDetected int
	Conflicts      int
	ProcessingTime time.Duration
}

// EvaluateBatch evaluates requests in parallel. Results keep request order.
// Invalid requests are reported per result and do not stop the batch. The
// optional progress callback is invoked once per finished request.
func (p *Pipeline) EvaluateBatch(ctx context.Context, reqs []Request, progress func()) *BatchSummary {
	start := time.Now()

	work := make(chan int, len(reqs))
	for i := range reqs {
		work <- i
	}
	close(work)

	results := make(chan BatchResult, len(reqs))

	var wg sync.WaitGroup
	workers := min(p.workers, max(len(reqs), 1))
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			p.batchWorker(ctx, workerID, reqs, work, results)
		}(w)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &BatchSummary{
		Total:   len(reqs),
		Results: make([]BatchResult, len(reqs)),
	}
	for i := range summary.Results {
		summary.Results[i] = BatchResult{Index: i, Error: context.Canceled}
	}
	for result := range results {
		summary.Results[result.Index] = result
		if progress != nil {
			progress()
		}
	}

	for _, r := range summary.Results {
		if r.Error != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if r.Report.Diagnostics.Degraded() {
			summary.Degraded++
		}
		if r.Report.Habit.Detected {
			summary.HabitsDetected++
		}
		if r.Report.Conflict.ConflictDetected {
			summary.Conflicts++
		}
	}
	summary.ProcessingTime = time.Since(start)

	slog.Info("Batch evaluation complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.ProcessingTime)

	return summary
}

func (p *Pipeline) batchWorker(ctx context.Context, workerID int, reqs []Request, work <-chan int, results chan<- BatchResult) {
	for i := range work {
		select {
		case <-ctx.Done():
			return
		default:
		}

		report, err := p.Evaluate(ctx, reqs[i])
		if err != nil {
			slog.Debug("Batch request failed", "worker_id", workerID, "index", i, "error", err)
		}
		results <- BatchResult{Index: i, Report: report, Error: err}
	}
}
