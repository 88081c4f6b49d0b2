package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
)

func TestSemiImplicitEuler_UsesUpdatedVelocity(t *testing.T) {
	integ := NewSemiImplicitEuler()

	x, v := integ.Step(dynamo.Vec3{}, dynamo.Vec3{X: 1}, dynamo.Vec3{X: 2}, 0.5)

	if v != (dynamo.Vec3{X: 2}) {
		t.Errorf("velocity = %v, want {2 0 0}", v)
	}
	// explicit Euler would give x = 0.5
	if x != (dynamo.Vec3{X: 1}) {
		t.Errorf("position = %v, want {1 0 0}", x)
	}
}

func TestSemiImplicitEuler_BoundedEnergy(t *testing.T) {
	integ := NewSemiImplicitEuler()
	x := dynamo.Vec3{X: 1}
	v := dynamo.Vec3{}
	dt := 0.01

	energy := func(x, v dynamo.Vec3) float64 { return 0.5 * (x.Dot(x) + v.Dot(v)) }
	e0 := energy(x, v)

	maxDrift := 0.0
	for i := 0; i < 100000; i++ {
		x, v = integ.Step(x, v, x.Scale(-1), dt)
		maxDrift = math.Max(maxDrift, math.Abs(energy(x, v)-e0)/e0)
	}

	if maxDrift > 0.01 {
		t.Errorf("energy drift too high: %e", maxDrift)
	}
}

func BenchmarkSemiImplicitEuler(b *testing.B) {
	integ := NewSemiImplicitEuler()
	x := dynamo.Vec3{X: 1}
	v := dynamo.Vec3{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, v = integ.Step(x, v, x.Scale(-1), 0.01)
	}
}
