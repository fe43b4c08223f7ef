package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunFunc performs one seeded run. It must not share mutable state with
// other runs.
type RunFunc[T any] func(ctx context.Context, seed int64) (T, error)

type Ensemble[T any] struct {
	numRuns   int
	seedStart int64
	limit     int
}

// NewEnsemble runs numRuns seeds starting at seedStart. A limit of zero or
// less means unbounded concurrency.
func NewEnsemble[T any](numRuns int, seedStart int64, limit int) *Ensemble[T] {
	return &Ensemble[T]{numRuns: numRuns, seedStart: seedStart, limit: limit}
}

// Run returns results in seed order. The first error cancels the rest.
func (e *Ensemble[T]) Run(ctx context.Context, fn RunFunc[T]) ([]T, error) {
	results := make([]T, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			res, err := fn(gctx, e.seedStart+int64(idx))
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
