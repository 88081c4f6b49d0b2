package dynamo

import (
	"fmt"
	"math"
)

// Parameter role names, in slider order.
const (
	ParamMass      = "mass"
	ParamStiffness = "stiffness"
	ParamDamping   = "damping"
	ParamDt        = "dt"
	ParamDuration  = "duration"
)

// ParamNames lists every parameter role in display order.
var ParamNames = []string{ParamMass, ParamStiffness, ParamDamping, ParamDt, ParamDuration}

// Params bundles the physical parameters of one run. It is immutable for the
// duration of a run; the engine receives it by value.
type Params struct {
	Mass      float64 `json:"mass" yaml:"mass"`
	Stiffness float64 `json:"stiffness" yaml:"stiffness"`
	Damping   float64 `json:"damping" yaml:"damping"`
	Dt        float64 `json:"dt" yaml:"dt"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// Validate rejects parameter sets for which the engine result is undefined.
func (p Params) Validate() error {
	checks := []struct {
		name   string
		value  float64
		ok     bool
		reason string
	}{
		{ParamMass, p.Mass, p.Mass > 0, "must be positive"},
		{ParamStiffness, p.Stiffness, p.Stiffness >= 0, "must be non-negative"},
		{ParamDamping, p.Damping, p.Damping >= 0, "must be non-negative"},
		{ParamDt, p.Dt, p.Dt > 0, "must be positive"},
		{ParamDuration, p.Duration, p.Duration > 0, "must be positive"},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ParameterError{Name: c.name, Value: c.value, Reason: "must be finite", Wrapped: ErrInvalidParameter}
		}
		if !c.ok {
			return &ParameterError{Name: c.name, Value: c.value, Reason: c.reason, Wrapped: ErrInvalidParameter}
		}
	}
	return nil
}

// Steps returns floor(Duration/Dt), the number of samples a run produces.
// A quotient within a relative 1e-9 of the next integer counts as that
// integer, so 1.2/0.1 gives 12 even though the float division lands just
// below. Parameter sets with no finite positive quotient produce no steps.
func (p Params) Steps() int {
	q := p.Duration / p.Dt
	n := math.Floor(q)
	if n+1-q <= stepsEpsilon*(n+1) {
		n++
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	return int(n)
}

const stepsEpsilon = 1e-9

// Get returns the value of a parameter by role name.
func (p Params) Get(name string) (float64, error) {
	switch name {
	case ParamMass:
		return p.Mass, nil
	case ParamStiffness:
		return p.Stiffness, nil
	case ParamDamping:
		return p.Damping, nil
	case ParamDt:
		return p.Dt, nil
	case ParamDuration:
		return p.Duration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// With returns a copy of p with one parameter replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case ParamMass:
		p.Mass = value
	case ParamStiffness:
		p.Stiffness = value
	case ParamDamping:
		p.Damping = value
	case ParamDt:
		p.Dt = value
	case ParamDuration:
		p.Duration = value
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return p, nil
}

// TimeSeries pairs sample times with the signed spring elongation recorded at
// each of them. Positive elongation means stretched.
type TimeSeries struct {
	Times       []float64 `json:"times"`
	Elongations []float64 `json:"elongations"`
}

func (ts TimeSeries) Len() int { return len(ts.Times) }

// Validate checks the parallel-sequence invariant.
func (ts TimeSeries) Validate() error {
	if len(ts.Times) != len(ts.Elongations) {
		return fmt.Errorf("%w: %d times, %d elongations", ErrSeriesMismatch, len(ts.Times), len(ts.Elongations))
	}
	return nil
}

// Step returns the sampling interval, or 0 for series shorter than two samples.
func (ts TimeSeries) Step() float64 {
	if len(ts.Times) < 2 {
		return 0
	}
	return ts.Times[1] - ts.Times[0]
}

// Bounds returns the smallest and largest elongation.
func (ts TimeSeries) Bounds() (lo, hi float64) {
	if len(ts.Elongations) == 0 {
		return 0, 0
	}
	lo, hi = ts.Elongations[0], ts.Elongations[0]
	for _, v := range ts.Elongations[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Window copies the samples with t0 <= t < t1.
func (ts TimeSeries) Window(t0, t1 float64) TimeSeries {
	var out TimeSeries
	for i, t := range ts.Times {
		if t >= t0 && t < t1 {
			out.Times = append(out.Times, t)
			out.Elongations = append(out.Elongations, ts.Elongations[i])
		}
	}
	return out
}

// Clone returns a deep copy.
func (ts TimeSeries) Clone() TimeSeries {
	c := TimeSeries{
		Times:       make([]float64, len(ts.Times)),
		Elongations: make([]float64, len(ts.Elongations)),
	}
	copy(c.Times, ts.Times)
	copy(c.Elongations, ts.Elongations)
	return c
}
