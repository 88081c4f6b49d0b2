package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/springsim/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// the mean-removed series, zero-padded to a power of two.
func PowerSpectrum(ts dynamo.TimeSeries) []float64 {
	if ts.Len() == 0 {
		return nil
	}
	n := 1
	for n < ts.Len() {
		n *= 2
	}

	mu := mean(ts.Elongations)
	padded := make([]float64, n)
	for i, v := range ts.Elongations {
		padded[i] = v - mu
	}

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component, resolved to 1/(N*dt) where N is the padded length.
func DominantFrequency(ts dynamo.TimeSeries) (float64, error) {
	dt := ts.Step()
	ps := PowerSpectrum(ts)
	if dt <= 0 || len(ps) < 2 {
		return 0, ErrEmptySeries
	}

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	return float64(maxIdx) / (float64(2*len(ps)) * dt), nil
}
