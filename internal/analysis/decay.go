package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DecayRate fits log(e) = a + rate*t by least squares over the samples
// with e > floor, and returns rate. A settling sheet has rate < 0.
func DecayRate(times, energies []float64, floor float64) (float64, error) {
	if len(times) != len(energies) {
		return 0, fmt.Errorf("analysis: %d times for %d energies", len(times), len(energies))
	}

	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(times))
	for i, e := range energies {
		if e > floor && !math.IsInf(e, 0) {
			xs = append(xs, times[i])
			ys = append(ys, math.Log(e))
		}
	}
	if len(xs) < 2 {
		return 0, ErrTooShort
	}

	_, rate := stat.LinearRegression(xs, ys, nil, false)
	return rate, nil
}

// HalfLife converts a decay rate into the time the energy takes to halve.
// It is +Inf for a rate >= 0.
func HalfLife(rate float64) float64 {
	if rate >= 0 {
		return math.Inf(1)
	}
	return math.Ln2 / -rate
}
