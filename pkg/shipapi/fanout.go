package shipapi

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MaxConcurrentFetches bounds the number of in-flight requests of FetchAll.
const MaxConcurrentFetches = 8

// FetchAll calls fetch for every id in parallel. Results keep the order of
// ids and skip the ones that failed; each failure is reported separately so
// one bad id does not hide the rest.
func FetchAll[T any](ctx context.Context, ids []string, fetch func(ctx context.Context, id string) (T, error)) ([]T, []error) {
	var (
		mu      sync.Mutex
		errs    []error
		results = make([]T, len(ids))
		ok      = make([]bool, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)

	for i, id := range ids {
		g.Go(func() error {
			result, err := fetch(gctx, id)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				mu.Unlock()
				return nil
			}
			results[i] = result
			ok[i] = true
			return nil
		})
	}

	_ = g.Wait()

	out := make([]T, 0, len(ids))
	for i := range ids {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	return out, errs
}
