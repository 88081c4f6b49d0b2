package metrics

import "github.com/san-kum/springsim/internal/dynamo"

// Metric reduces an elongation series to one number.
type Metric interface {
	Name() string
	Observe(t, elongation float64)
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every sample and collects the values.
func Evaluate(ts dynamo.TimeSeries, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, t := range ts.Times {
			m.Observe(t, ts.Elongations[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}
