package usecase

import (
	"context"
	"sync"
)

// Bulk item outcomes.
const (
	BulkOutcomeCreated = "created"
	BulkOutcomeSkipped = "skipped"
	BulkOutcomeFailed  = "failed"
)

// BulkItemResult reports one item of a bulk billing run.
type BulkItemResult struct {
	Key     string `json:"key"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// BulkSummary aggregates a bulk billing run. A run never aborts on a failed
// item; each item succeeds or fails on its own.
type BulkSummary struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Items   []BulkItemResult `json:"items"`
}

// runBulk processes keys in chunks with a bounded worker pool, collecting a
// per-item outcome. process returns the outcome for a key; an error marks
// the item failed with the error text as detail.
func runBulk(ctx context.Context, keys []string, chunkSize, workers int, process func(ctx context.Context, key string) (string, error)) BulkSummary {
	if chunkSize <= 0 {
		chunkSize = DefaultBulkChunkSize
	}
	if workers <= 0 {
		workers = DefaultBulkWorkers
	}

	summary := BulkSummary{Items: make([]BulkItemResult, len(keys))}

	for start := 0; start < len(keys); start += chunkSize {
		end := min(start+chunkSize, len(keys))

		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				outcome, err := process(ctx, keys[i])
				result := BulkItemResult{Key: keys[i], Outcome: outcome}
				if err != nil {
					result.Outcome = BulkOutcomeFailed
					result.Detail = err.Error()
				}
				summary.Items[i] = result
			}(i)
		}
		wg.Wait()
	}

	for i := range summary.Items {
		switch summary.Items[i].Outcome {
		case BulkOutcomeCreated:
			summary.Created++
		case BulkOutcomeSkipped:
			summary.Skipped++
		case BulkOutcomeFailed:
			summary.Failed++
		default:
			// context cancelled before the item was scheduled
			summary.Items[i] = BulkItemResult{Key: keys[i], Outcome: BulkOutcomeSkipped, Detail: "run cancelled"}
			summary.Skipped++
		}
	}
	return summary
}
