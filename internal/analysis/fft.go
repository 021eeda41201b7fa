package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: series too short")

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFT transforms data, zero-padded to a power of two.
func FFT(data []float64) []complex128 {
	padded := make([]float64, NextPow2(len(data)))
	copy(padded, data)
	return fft.FFTReal(padded)
}

// PowerSpectrum returns the magnitudes of the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	ps := make([]float64, len(f)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-zero frequency, in Hz, of a
// series sampled every dt. The mean is removed first.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, ErrTooShort
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}

	n := NextPow2(len(series))
	return float64(best) / (float64(n) * dt), nil
}
