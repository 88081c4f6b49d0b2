package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/springsim/internal/dynamo"
)

// WriteSVG renders elongation against time as an SVG polyline. Both axes are
// scaled to the data with 10% padding; a flat series gets a unit range.
func WriteSVG(w io.Writer, ts dynamo.TimeSeries, width, height int, strokeColor string) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	if ts.Len() < 2 {
		return fmt.Errorf("export: need at least two samples to plot, got %d", ts.Len())
	}

	minX, maxX := ts.Times[0], ts.Times[ts.Len()-1]
	minY, maxY := ts.Bounds()

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// zero-elongation reference line
	if minY <= 0 && maxY >= 0 {
		y0 := float64(height) - (0-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4"/>
`, y0, width, y0))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, t := range ts.Times {
		x := (t - minX) / rangeX * float64(width)
		y := float64(height) - (ts.Elongations[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>
`)

	_, err := io.WriteString(w, sb.String())
	return err
}
