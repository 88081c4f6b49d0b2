package physics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
)

const DefaultRestLength = 1.0

var (
	DefaultAnchor   = dynamo.Vec3{}
	DefaultPosition = dynamo.Vec3{X: 0, Y: -1, Z: 0}
	DefaultVelocity = dynamo.Vec3{X: 0, Y: 0, Z: 0.1}
)

// Spring is the mutable state of one run: a fixed anchor, the moving end and
// its velocity, and the natural length of the spring.
type Spring struct {
	Anchor     dynamo.Vec3 `json:"anchor" yaml:"anchor"`
	Position   dynamo.Vec3 `json:"position" yaml:"position"`
	Velocity   dynamo.Vec3 `json:"velocity" yaml:"velocity"`
	RestLength float64     `json:"rest_length" yaml:"rest_length"`
}

// DefaultSpring returns the initial condition used by Simulate.
func DefaultSpring() Spring {
	return Spring{
		Anchor:     DefaultAnchor,
		Position:   DefaultPosition,
		Velocity:   DefaultVelocity,
		RestLength: DefaultRestLength,
	}
}

// Length is the current anchor-to-mass distance.
func (s Spring) Length() float64 {
	return s.Position.Sub(s.Anchor).Norm()
}

// Elongation is the signed difference between current and rest length.
func (s Spring) Elongation() float64 {
	return s.Length() - s.RestLength
}

// Force returns the total force on the mass and the elongation it was
// computed from. The spring term points along the current anchor-to-mass
// direction; at zero length that direction is undefined and the result is NaN.
func (s Spring) Force(k, c float64) (dynamo.Vec3, float64) {
	ba := s.Position.Sub(s.Anchor)
	length := ba.Norm()
	elongation := length - s.RestLength

	spring := ba.Scale(-k * elongation / length)
	damping := s.Velocity.Scale(-c)
	return spring.Add(damping), elongation
}

// Energy is kinetic plus elastic energy.
func (s Spring) Energy(m, k float64) float64 {
	d := s.Elongation()
	return 0.5*m*s.Velocity.Dot(s.Velocity) + 0.5*k*d*d
}

// Observer receives the state at every step, before it is advanced.
type Observer interface {
	OnStep(step int, t float64, s Spring, elongation float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, s Spring, elongation float64)

func (f ObserverFunc) OnStep(step int, t float64, s Spring, elongation float64) {
	f(step, t, s, elongation)
}

// Simulate integrates the default spring for floor(Duration/Dt) steps and
// returns the elongation recorded at t = 0, Dt, 2Dt, ...
//
// Parameters are not validated. Non-positive Mass or Dt give non-finite
// samples or an empty series; use Params.Validate first.
func Simulate(p dynamo.Params) dynamo.TimeSeries {
	ts, _ := DefaultSpring().run(p, false)
	return ts
}

// Run integrates s with the given parameters. Unlike Simulate it validates p
// and the initial state, and stops with ErrDegenerateGeometry if the mass
// reaches the anchor, returning the samples recorded before that step.
func (s Spring) Run(p dynamo.Params, observers ...Observer) (dynamo.TimeSeries, error) {
	if err := p.Validate(); err != nil {
		return dynamo.TimeSeries{}, err
	}
	if !s.Anchor.IsValid() || !s.Position.IsValid() || !s.Velocity.IsValid() {
		return dynamo.TimeSeries{}, &dynamo.ParameterError{
			Name: "state", Value: math.NaN(), Reason: "must be finite", Wrapped: dynamo.ErrInvalidParameter,
		}
	}
	if s.RestLength < 0 {
		return dynamo.TimeSeries{}, &dynamo.ParameterError{
			Name: "rest_length", Value: s.RestLength, Reason: "must be non-negative", Wrapped: dynamo.ErrInvalidParameter,
		}
	}
	return s.run(p, true, observers...)
}

func (s Spring) run(p dynamo.Params, guard bool, observers ...Observer) (dynamo.TimeSeries, error) {
	n := p.Steps()
	ts := dynamo.TimeSeries{
		Times:       make([]float64, 0, n),
		Elongations: make([]float64, 0, n),
	}
	integ := integrators.NewSemiImplicitEuler()

	for i := 0; i < n; i++ {
		t := float64(i) * p.Dt

		if guard && s.Length() == 0 {
			return ts, &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrDegenerateGeometry}
		}

		f, elongation := s.Force(p.Stiffness, p.Damping)
		for _, obs := range observers {
			obs.OnStep(i, t, s, elongation)
		}

		a := f.Scale(1 / p.Mass)
		s.Position, s.Velocity = integ.Step(s.Position, s.Velocity, a, p.Dt)

		ts.Times = append(ts.Times, t)
		ts.Elongations = append(ts.Elongations, elongation)
	}

	return ts, nil
}

// Trajectory is Simulate that also returns the mass position at every
// recorded sample.
func Trajectory(p dynamo.Params) (dynamo.TimeSeries, []dynamo.Vec3) {
	positions := make([]dynamo.Vec3, 0, p.Steps())
	record := ObserverFunc(func(_ int, _ float64, s Spring, _ float64) {
		positions = append(positions, s.Position)
	})
	ts, _ := DefaultSpring().run(p, false, record)
	return ts, positions
}
