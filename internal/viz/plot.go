package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	axisFPS       = 60
	axisFrequency = 6.0
	axisDamping   = 1.0
	axisPadding   = 0.1
)

// Plot draws the elongation series against sample index.
func Plot(ts dynamo.TimeSeries, width, height int, caption string) string {
	if ts.Len() == 0 {
		return ""
	}
	lo, hi := ts.Bounds()
	return plotWithin(ts.Elongations, lo, hi, width, height, caption)
}

func plotWithin(data []float64, lo, hi float64, width, height int, caption string) string {
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
		asciigraph.Precision(4),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return asciigraph.Plot(data, opts...)
}

// axis eases the plot's y range toward the bounds of the latest series so a
// parameter change rescales smoothly instead of jumping.
type axis struct {
	spring      harmonica.Spring
	lo, loVel   float64
	hi, hiVel   float64
	loTarget    float64
	hiTarget    float64
	initialized bool
}

func newAxis() axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(axisFPS), axisFrequency, axisDamping)}
}

// retarget sets new padded bounds. The first call snaps instead of easing.
func (a *axis) retarget(ts dynamo.TimeSeries) {
	if ts.Len() == 0 {
		return
	}
	lo, hi := ts.Bounds()
	pad := axisPadding * (hi - lo)
	if pad == 0 {
		pad = axisPadding * math.Max(math.Abs(hi), 1)
	}
	a.loTarget, a.hiTarget = lo-pad, hi+pad

	if !a.initialized {
		a.lo, a.hi = a.loTarget, a.hiTarget
		a.initialized = true
	}
}

func (a *axis) step() {
	a.lo, a.loVel = a.spring.Update(a.lo, a.loVel, a.loTarget)
	a.hi, a.hiVel = a.spring.Update(a.hi, a.hiVel, a.hiTarget)
	if a.settled() {
		a.lo, a.hi = a.loTarget, a.hiTarget
		a.loVel, a.hiVel = 0, 0
	}
}

func (a *axis) settled() bool {
	eps := 1e-3*(a.hiTarget-a.loTarget) + 1e-12
	return math.Abs(a.lo-a.loTarget) < eps &&
		math.Abs(a.hi-a.hiTarget) < eps &&
		math.Abs(a.loVel) < eps &&
		math.Abs(a.hiVel) < eps
}
