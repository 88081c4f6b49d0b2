// Package optim searches parameter grids for the run that minimises a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

var ErrNoCandidates = errors.New("optim: no valid grid point")

// Axis is one searched parameter and the values it takes.
type Axis struct {
	Param  string
	Values []float64
}

// ParseAxis reads "name=min:max:steps", e.g. "damping=0.1:1:10".
func ParseAxis(s string) (Axis, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("axis %q: expected name=min:max:steps", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return Axis{}, fmt.Errorf("axis %q: expected name=min:max:steps", s)
	}

	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("axis %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("axis %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return Axis{}, fmt.Errorf("axis %q: %w", s, err)
	}
	if _, err := (dynamo.Params{}).Get(name); err != nil {
		return Axis{}, err
	}

	sweep := experiment.ParameterSweep{Min: lo, Max: hi, NumSteps: n}
	return Axis{Param: name, Values: sweep.Values()}, nil
}

type GridSearch struct {
	base     dynamo.Params
	axes     []Axis
	maxSteps int
}

func NewGridSearch(base dynamo.Params, maxSteps int, axes ...Axis) *GridSearch {
	return &GridSearch{base: base, axes: axes, maxSteps: maxSteps}
}

// Best is the winning grid point.
type Best struct {
	Params    dynamo.Params
	Value     float64
	Evaluated int
	Skipped   int
}

// Minimize runs every grid point and returns the one with the smallest value
// of the named metric. Points with invalid parameters or too many steps are
// skipped, as are NaN metric values.
func (g *GridSearch) Minimize(ctx context.Context, registry *experiment.Registry, metricName string) (Best, error) {
	if _, err := registry.GetMetric(metricName); err != nil {
		return Best{}, err
	}

	best := Best{Value: math.Inf(1)}
	found := false
	if err := g.searchRecursive(ctx, 0, g.base, registry, metricName, &best, &found); err != nil {
		return Best{}, err
	}
	if !found {
		return best, ErrNoCandidates
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current dynamo.Params,
	registry *experiment.Registry,
	metricName string,
	best *Best,
	found *bool,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		if current.Validate() != nil || config.CheckSteps(current, g.maxSteps) != nil {
			best.Skipped++
			return nil
		}

		m, err := registry.GetMetric(metricName)
		if err != nil {
			return err
		}
		val := metrics.Evaluate(physics.Simulate(current), m)[metricName]
		best.Evaluated++

		if !math.IsNaN(val) && (!*found || val < best.Value) {
			best.Value = val
			best.Params = current
			*found = true
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next, err := current.With(axis.Param, val)
		if err != nil {
			return err
		}
		if err := g.searchRecursive(ctx, depth+1, next, registry, metricName, best, found); err != nil {
			return err
		}
	}
	return nil
}
