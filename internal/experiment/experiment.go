// Package experiment holds the state of an interactive session: the current
// parameters, the last computed series and the renderer that displays it.
// Every parameter change is an explicit call that recomputes and re-renders.
package experiment

import (
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/logging"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

// Renderer displays a freshly computed series.
type Renderer interface {
	Render(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64)

func (f RendererFunc) Render(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64) {
	f(p, ts, m)
}

type Option func(*Experiment)

func WithRenderer(r Renderer) Option {
	return func(e *Experiment) { e.renderer = r }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Experiment) { e.log = log }
}

// WithMaxSteps bounds Duration/Dt; 0 disables the bound.
func WithMaxSteps(n int) Option {
	return func(e *Experiment) { e.maxSteps = n }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// Experiment is not safe for concurrent use; it belongs to one front end.
type Experiment struct {
	initial  dynamo.Params
	params   dynamo.Params
	series   dynamo.TimeSeries
	metrics  map[string]float64
	renderer Renderer
	log      *slog.Logger
	maxSteps int
	registry *Registry
}

// New validates p, runs the first simulation and renders it.
func New(p dynamo.Params, opts ...Option) (*Experiment, error) {
	e := &Experiment{
		maxSteps: config.DefaultMaxSteps,
		log:      logging.Discard(),
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.apply(p); err != nil {
		return nil, err
	}
	e.initial = p
	return e, nil
}

func (e *Experiment) Params() dynamo.Params { return e.params }

// Series returns a copy of the last computed series.
func (e *Experiment) Series() dynamo.TimeSeries { return e.series.Clone() }

func (e *Experiment) Metrics() map[string]float64 { return e.metrics }

// SetParam changes one parameter, recomputes and re-renders. An invalid value
// is rejected and leaves the experiment unchanged.
func (e *Experiment) SetParam(name string, value float64) error {
	p, err := e.params.With(name, value)
	if err != nil {
		return err
	}
	if err := e.apply(p); err != nil {
		e.log.Warn("parameter rejected", "param", name, "value", value, tint.Err(err))
		return err
	}
	e.log.Debug("parameter changed", "param", name, "value", value, "samples", e.series.Len())
	return nil
}

// SetParams replaces all parameters at once.
func (e *Experiment) SetParams(p dynamo.Params) error {
	if err := e.apply(p); err != nil {
		e.log.Warn("parameters rejected", tint.Err(err))
		return err
	}
	return nil
}

// Reset restores the parameters the experiment was created with.
func (e *Experiment) Reset() error {
	return e.apply(e.initial)
}

// Recompute reruns the current parameters and re-renders.
func (e *Experiment) Recompute() error {
	return e.apply(e.params)
}

func (e *Experiment) apply(p dynamo.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := config.CheckSteps(p, e.maxSteps); err != nil {
		return err
	}

	ts := physics.Simulate(p)
	ms, err := e.registry.GetMetrics()
	if err != nil {
		return fmt.Errorf("build metrics: %w", err)
	}

	e.params = p
	e.series = ts
	e.metrics = metrics.Evaluate(ts, ms...)

	if e.renderer != nil {
		e.renderer.Render(e.params, e.series, e.metrics)
	}
	return nil
}
