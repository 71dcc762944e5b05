package terminal

import (
	"context"
	"fmt"
	"sync"
)

// Sweep runs one simulation per seed on up to workers goroutines. Every run
// owns its engine, terminal and random streams, so a seed gives the same
// result here as in a solo Run. Results come back in the order of seeds.
//
// WithRNG and WithSimulation bind a single run and are rejected.
func Sweep(
	ctx context.Context,
	base Config,
	seeds []int64,
	workers int,
	opts ...Option,
) ([]*Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.rng != nil || o.simulation != nil {
		return nil, fmt.Errorf("sweep runs cannot share random streams or a simulation")
	}

	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(seeds))
	errs := make([]error, len(seeds))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range jobs {
				cfg := base
				cfg.Seed = seeds[i]
				results[i], errs[i] = Run(ctx, cfg, opts...)
			}
		}()
	}

	for i := range seeds {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("seed %d: %w", seeds[i], err)
		}
	}

	return results, nil
}
