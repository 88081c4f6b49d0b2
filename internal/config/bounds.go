package config

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Range is the closed interval a slider may move through.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

func (r Range) Span() float64 { return r.Max - r.Min }

// Bounds are the interactive slider ranges for each parameter.
var Bounds = map[string]Range{
	dynamo.ParamMass:      {Min: 0.1, Max: 10.0},
	dynamo.ParamStiffness: {Min: 0.01, Max: 5.0},
	dynamo.ParamDamping:   {Min: 0.01, Max: 1.0},
	dynamo.ParamDt:        {Min: 0.01, Max: 1.0},
	dynamo.ParamDuration:  {Min: 1, Max: 100},
}

// Labels are human-readable slider captions.
var Labels = map[string]string{
	dynamo.ParamMass:      "mass (m)",
	dynamo.ParamStiffness: "stiffness (k)",
	dynamo.ParamDamping:   "damping (c)",
	dynamo.ParamDt:        "step (dt)",
	dynamo.ParamDuration:  "duration (T)",
}

func BoundsFor(name string) (Range, error) {
	r, ok := Bounds[name]
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownParameter, name)
	}
	return r, nil
}
