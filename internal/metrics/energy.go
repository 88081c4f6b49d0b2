package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
)

// EnergyLoss observes the full spring state and reports the fraction of the
// initial mechanical energy dissipated by the end of the run.
type EnergyLoss struct {
	mass, stiffness float64
	initial         float64
	current         float64
	samples         int
}

func NewEnergyLoss(mass, stiffness float64) *EnergyLoss {
	return &EnergyLoss{mass: mass, stiffness: stiffness}
}

func (e *EnergyLoss) Name() string { return "energy_loss" }

func (e *EnergyLoss) OnStep(step int, t float64, s physics.Spring, elongation float64) {
	energy := s.Energy(e.mass, e.stiffness)
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.initial == 0 {
		return 0
	}
	return (e.initial - e.current) / math.Abs(e.initial)
}

func (e *EnergyLoss) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
