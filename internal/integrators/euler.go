// Package integrators holds the time-stepping rule used by the spring engine.
package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// SemiImplicitEuler advances velocity from the acceleration first, then
// position from the updated velocity. Swapping the two updates turns it into
// explicit Euler, which gains energy on an undamped oscillator.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() SemiImplicitEuler {
	return SemiImplicitEuler{}
}

func (SemiImplicitEuler) Step(x, v, a dynamo.Vec3, dt float64) (dynamo.Vec3, dynamo.Vec3) {
	v = v.Add(a.Scale(dt))
	x = x.Add(v.Scale(dt))
	return x, v
}
