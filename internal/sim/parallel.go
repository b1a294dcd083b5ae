package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/dicebox/internal/physics"
	"golang.org/x/sync/errgroup"
)

// WorldFactory builds an independent world for run idx.
type WorldFactory func(idx int) (*physics.World, error)

// Ensemble runs many independent throws concurrently. Metrics are created per
// run because they carry state.
type Ensemble struct {
	factory    WorldFactory
	newMetrics func() []Metric
	numRuns    int
	limit      int
}

func NewEnsemble(factory WorldFactory, numRuns int, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{
		factory:    factory,
		newMetrics: newMetrics,
		numRuns:    numRuns,
		limit:      runtime.GOMAXPROCS(0),
	}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			w, err := e.factory(idx)
			if err != nil {
				return err
			}
			s := New()
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, w, cfg)
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
