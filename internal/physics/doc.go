// Package physics implements the anchored damped spring.
//
// [Simulate] is the engine: a pure function of five parameters that returns
// the elongation of the spring at every step of a semi-implicit Euler loop.
// It keeps no state between calls and is safe to call from many goroutines.
//
// [Spring] generalises the fixed initial condition (anchor, start position,
// start velocity, rest length) for callers that need a different geometry.
// Its [Spring.Run] method guards against the singular configuration where
// the mass reaches the anchor; [Simulate] does not, because that
// configuration is unreachable from the default start.
//
// # Sample Alignment
//
// The elongation recorded at sample i is measured before the state is
// advanced, so sample 0 is always the initial elongation and the state
// produced by the last update is never recorded.
package physics
