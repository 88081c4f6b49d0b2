// Package dynamo provides the core value types shared by the spring
// simulator and its front ends.
//
// The package defines:
//
//   - [Vec3]: 3D vector with value semantics
//   - [Params]: the five physical parameters of a run
//   - [TimeSeries]: sample times paired with signed elongations
//
// along with the sentinel errors used across the module.
//
// # Example
//
//	p := dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 50}
//	if err := p.Validate(); err != nil {
//	    return err
//	}
//	ts := physics.Simulate(p)
//
// # Thread Safety
//
// All types are plain values. A [TimeSeries] returned by the engine is owned
// by the caller and never retained.
package dynamo
