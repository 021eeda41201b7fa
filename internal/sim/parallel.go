package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Variant is one member of a sweep. Build must return a cloth no other
// variant shares.
type Variant struct {
	Name  string
	Build func() (*cloth.Cloth, error)
}

// Sweep runs independent cloths concurrently, one per goroutine.
type Sweep struct {
	variants []Variant
	workers  int

	// Metrics returns fresh metric instances for one run.
	Metrics func() []Metric
}

func NewSweep(workers int, variants ...Variant) *Sweep {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Sweep{variants: variants, workers: workers}
}

func (sw *Sweep) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(sw.variants))
	errs := make([]error, len(sw.variants))
	sem := make(chan struct{}, sw.workers)

	var wg sync.WaitGroup
	for i := range sw.variants {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c, err := sw.variants[idx].Build()
			if err != nil {
				errs[idx] = err
				return
			}
			sim := New(c)
			if sw.Metrics != nil {
				for _, m := range sw.Metrics() {
					sim.AddMetric(m)
				}
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (sw *Sweep) Variants() []Variant { return sw.variants }
