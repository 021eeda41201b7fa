// Package analysis characterizes recorded cloth runs.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation of a sampled series
//   - [DecayRate]: exponential settling rate of the kinetic energy
//   - [GeneratePhasePortrait]: mean height against its rate of change
//   - [ParameterSweep]: final shape across values of one parameter
//
// # Settling
//
// A damped sheet loses kinetic energy roughly as exp(rate*t):
//
//	rate, err := analysis.DecayRate(times, energies, 1e-12)
//	if err == nil && rate < 0 {
//	    halfLife := math.Ln2 / -rate
//	}
package analysis
