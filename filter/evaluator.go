package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the minimum chunk size. Inputs shorter than one batch
// are evaluated on the calling goroutine.
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator applies compiled filters to item slices, splitting large inputs
// into chunks evaluated concurrently
type Evaluator struct {
	workers   int
	batchSize int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply returns the items matching filter, in input order. The first
// evaluation error cancels the remaining chunks and is returned.
func Apply[T any](ctx context.Context, e *Evaluator, filter CompiledFilter, items []T, env EnvFunc[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []T{}, nil
	}

	if len(items) < e.batchSize {
		return matchAll(filter, items, env)
	}

	chunkSize := max(len(items)/e.workers, e.batchSize)
	numChunks := (len(items) + chunkSize - 1) / chunkSize
	results := make([][]T, numChunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range numChunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matched, err := matchAll(filter, items[start:end], env)
			if err != nil {
				return err
			}
			results[i] = matched
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matched := make([]T, 0, total)
	for _, r := range results {
		matched = append(matched, r...)
	}
	return matched, nil
}

func matchAll[T any](filter CompiledFilter, items []T, env EnvFunc[T]) ([]T, error) {
	matched := make([]T, 0, len(items)/2)
	for _, item := range items {
		ok, err := filter.Evaluate(env(item))
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}
