package metrics

import "math"

type MaxElongation struct {
	max float64
}

func NewMaxElongation() *MaxElongation { return &MaxElongation{} }

func (m *MaxElongation) Name() string { return "max_elongation" }

func (m *MaxElongation) Observe(t, elongation float64) {
	m.max = math.Max(m.max, math.Abs(elongation))
}

func (m *MaxElongation) Value() float64 { return m.max }
func (m *MaxElongation) Reset()         { m.max = 0 }

type RMS struct {
	sumSq   float64
	samples int
}

func NewRMS() *RMS { return &RMS{} }

func (r *RMS) Name() string { return "rms_elongation" }

func (r *RMS) Observe(t, elongation float64) {
	r.sumSq += elongation * elongation
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSq / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sumSq = 0
	r.samples = 0
}

type Final struct {
	last float64
}

func NewFinal() *Final { return &Final{} }

func (f *Final) Name() string                  { return "final_elongation" }
func (f *Final) Observe(t, elongation float64) { f.last = elongation }
func (f *Final) Value() float64                { return f.last }
func (f *Final) Reset()                        { f.last = 0 }
