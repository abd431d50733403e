package middleware

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

// Result is the outcome of one request in a batch.
type Result struct {
	Value string
	Err   *errors.GenerationError
}

// Wire returns the result in the same form as GenerateResult.
func (r Result) Wire() any {
	if r.Err != nil {
		return r.Err.ToMap()
	}
	return r.Value
}

// GenerateBatch runs independent requests on up to workers goroutines and
// returns the results in input order. Each request derives its own streams,
// so results match sequential Generate calls under the same master seed.
//
// Cancelling ctx stops requests that have not started yet; the returned error
// is then the context error and unstarted entries are left zero.
func (m *Middleware) GenerateBatch(ctx context.Context, configs []map[string]any, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cfg := range configs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, ge := m.Generate(cfg)
			results[i] = Result{Value: value, Err: ge}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, errors.Wrap(err, "Middleware", "GenerateBatch", "batch execution")
	}
	return results, nil
}
