// Package analysis extracts oscillation characteristics from an elongation
// series:
//
//   - [Peaks]: local maxima
//   - [PeakToPeak]: amplitude per fixed-length window
//   - [DecayRate]: exponential envelope fitted through the peaks
//   - [DominantFrequency]: strongest spectral component
//   - [Convergence]: distance between runs at different step sizes
//
// # Damping Check
//
// For an underdamped run the fitted decay rate approaches c/(2m):
//
//	rate, err := analysis.DecayRate(physics.Simulate(p))
package analysis
