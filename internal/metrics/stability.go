package metrics

import "math"

// SettlingTime is the last sample time at which |elongation| exceeded the
// tolerance. A run that never leaves the band settles at 0.
type SettlingTime struct {
	tolerance float64
	last      float64
}

func NewSettlingTime(tolerance float64) *SettlingTime {
	return &SettlingTime{tolerance: tolerance}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(t, elongation float64) {
	if math.Abs(elongation) > s.tolerance {
		s.last = t
	}
}

func (s *SettlingTime) Value() float64 { return s.last }
func (s *SettlingTime) Reset()         { s.last = 0 }

// Stability is the fraction of samples whose elongation stays finite and
// within the threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(t, elongation float64) {
	s.samples++
	if math.IsNaN(elongation) || math.Abs(elongation) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
