package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/metrics"
)

var ErrUnknownMetric = errors.New("experiment: unknown metric")

// Registry maps metric names to constructors. Metrics carry per-run state, so
// every run gets fresh instances.
type Registry struct {
	metrics map[string]func() metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() metrics.Metric),
	}

	r.Register(func() metrics.Metric { return metrics.NewMaxElongation() })
	r.Register(func() metrics.Metric { return metrics.NewRMS() })
	r.Register(func() metrics.Metric { return metrics.NewFinal() })
	r.Register(func() metrics.Metric { return metrics.NewSettlingTime(0.01) })
	r.Register(func() metrics.Metric { return metrics.NewStability(0.5) })

	return r
}

// Register adds a constructor under the name its metrics report.
func (r *Registry) Register(fn func() metrics.Metric) {
	r.metrics[fn().Name()] = fn
}

func (r *Registry) GetMetric(name string) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return fn(), nil
}

// GetMetrics builds the named metrics; no names means all of them.
func (r *Registry) GetMetrics(names ...string) ([]metrics.Metric, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]metrics.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
