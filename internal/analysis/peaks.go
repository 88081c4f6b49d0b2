package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

var (
	ErrTooFewPeaks = errors.New("analysis: need at least two positive peaks")
	ErrEmptySeries = errors.New("analysis: empty series")
)

// Peaks returns the indices of local maxima: samples strictly above the
// previous one and not below the next. The end points are never peaks.
func Peaks(ts dynamo.TimeSeries) []int {
	e := ts.Elongations
	peaks := make([]int, 0)
	for i := 1; i+1 < len(e); i++ {
		if e[i] > e[i-1] && e[i] >= e[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// PeakToPeak splits the series into consecutive windows of the given duration
// and returns max-min of the elongation in each complete window.
func PeakToPeak(ts dynamo.TimeSeries, window float64) []float64 {
	dt := ts.Step()
	if dt <= 0 || window <= 0 {
		return nil
	}
	size := int(math.Round(window / dt))
	if size < 1 {
		size = 1
	}

	out := make([]float64, 0, ts.Len()/size)
	for start := 0; start+size <= ts.Len(); start += size {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range ts.Elongations[start : start+size] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		out = append(out, hi-lo)
	}
	return out
}

// Period is the mean spacing between successive peaks, or 0 when fewer than
// two peaks exist.
func Period(ts dynamo.TimeSeries) float64 {
	peaks := Peaks(ts)
	if len(peaks) < 2 {
		return 0
	}
	first, last := ts.Times[peaks[0]], ts.Times[peaks[len(peaks)-1]]
	return (last - first) / float64(len(peaks)-1)
}

// DecayRate fits ln(peak) = a - rate*t by least squares over the positive
// peaks and returns rate.
func DecayRate(ts dynamo.TimeSeries) (float64, error) {
	var xs, ys []float64
	for _, i := range Peaks(ts) {
		if v := ts.Elongations[i]; v > 0 {
			xs = append(xs, ts.Times[i])
			ys = append(ys, math.Log(v))
		}
	}
	if len(xs) < 2 {
		return 0, ErrTooFewPeaks
	}

	mx, my := mean(xs), mean(ys)
	var sxy, sxx float64
	for i := range xs {
		sxy += (xs[i] - mx) * (ys[i] - my)
		sxx += (xs[i] - mx) * (xs[i] - mx)
	}
	if sxx == 0 {
		return 0, ErrTooFewPeaks
	}
	return -sxy / sxx, nil
}

// Convergence compares a run against a reference run taken with a smaller
// step, matching each coarse sample to the reference sample nearest in time,
// and returns the largest absolute difference.
func Convergence(ref, coarse dynamo.TimeSeries) (float64, error) {
	if ref.Len() == 0 || coarse.Len() == 0 {
		return 0, ErrEmptySeries
	}
	refDt := ref.Step()
	if refDt <= 0 {
		return 0, ErrEmptySeries
	}

	maxErr := 0.0
	for i, t := range coarse.Times {
		j := int(math.Round(t / refDt))
		if j >= ref.Len() {
			break
		}
		maxErr = math.Max(maxErr, math.Abs(coarse.Elongations[i]-ref.Elongations[j]))
	}
	return maxErr, nil
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
