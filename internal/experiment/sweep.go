package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"golang.org/x/sync/errgroup"
)

// ParameterSweep varies one parameter linearly between Min and Max while
// holding the rest of Base fixed.
type ParameterSweep struct {
	Base     dynamo.Params
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Metrics  []string
	Workers  int
	MaxSteps int
}

type SweepResult struct {
	ParamValue float64            `json:"value"`
	Params     dynamo.Params      `json:"params"`
	Samples    int                `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Values returns the NumSteps parameter values, Min and Max inclusive.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 0 {
		return nil
	}
	if s.NumSteps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	values[len(values)-1] = s.Max
	return values
}

// RunSweep runs every point of the sweep. Runs are independent and execute
// in parallel; each one is a single sequential simulation. Results keep the
// order of Values. The first failing point cancels the rest.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *Registry, log *slog.Logger) ([]SweepResult, error) {
	if _, err := sweep.Base.Get(sweep.Param); err != nil {
		return nil, err
	}
	// fail fast on unknown metric names
	if _, err := registry.GetMetrics(sweep.Metrics...); err != nil {
		return nil, err
	}

	values := sweep.Values()
	results := make([]SweepResult, len(values))

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			p, err := sweep.Base.With(sweep.Param, v)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("sweep point %d: %w", i, err)
			}
			if err := config.CheckSteps(p, sweep.MaxSteps); err != nil {
				return fmt.Errorf("sweep point %d: %w", i, err)
			}

			ms, err := registry.GetMetrics(sweep.Metrics...)
			if err != nil {
				return err
			}

			ts := physics.Simulate(p)
			results[i] = SweepResult{
				ParamValue: v,
				Params:     p,
				Samples:    ts.Len(),
				Metrics:    metrics.Evaluate(ts, ms...),
			}
			log.Debug("sweep point done", "param", sweep.Param, "value", v, "samples", ts.Len())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
