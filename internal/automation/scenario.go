// Package automation runs scripted batches of simulations described in YAML.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of runs, executed in order.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

// Run starts from the base parameters, or from Preset if set, and then
// applies Params by role name.
type Run struct {
	Name    string             `yaml:"name"`
	Preset  string             `yaml:"preset"`
	Params  map[string]float64 `yaml:"params"`
	Metrics []string           `yaml:"metrics"`
}

type Result struct {
	Name    string             `json:"name"`
	Params  dynamo.Params      `json:"params"`
	Samples int                `json:"samples"`
	Metrics map[string]float64 `json:"metrics"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Resolve returns the parameters for one run.
func (r Run) Resolve(base dynamo.Params) (dynamo.Params, error) {
	p := base
	if r.Preset != "" {
		preset, ok := config.Presets[r.Preset]
		if !ok {
			return p, fmt.Errorf("%w: %q", config.ErrUnknownPreset, r.Preset)
		}
		p = preset
	}

	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var err error
		if p, err = p.With(name, r.Params[name]); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// RunScenario executes every run in order and stops at the first failure,
// returning the results collected so far.
func RunScenario(ctx context.Context, scenario *Scenario, base dynamo.Params, maxSteps int, registry *experiment.Registry, log *slog.Logger) ([]Result, error) {
	results := make([]Result, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		log.Info("running", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Runs), "run", name)

		p, err := run.Resolve(base)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}
		if err := config.CheckSteps(p, maxSteps); err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}
		ms, err := registry.GetMetrics(run.Metrics...)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		ts := physics.Simulate(p)
		results = append(results, Result{
			Name:    name,
			Params:  p,
			Samples: ts.Len(),
			Metrics: metrics.Evaluate(ts, ms...),
		})
	}

	return results, nil
}
