package chart

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/yndnr/wssviz/internal/core/domain"
)

const (
	svgLeft   = 60
	svgTop    = 30
	svgRight  = 120
	svgBottom = 50
	svgTicks  = 5
)

// fmap maps value from [low1, high1] to [low2, high2].
func fmap(value, low1, high1, low2, high2 float64) float64 {
	return low2 + (high2-low2)*(value-low1)/(high1-low1)
}

// WriteSVG renders the series as an SVG line chart with a legend.
func WriteSVG(w io.Writer, s *domain.Series) error {
	if err := check(s); err != nil {
		return err
	}

	xs := xValues(s)
	minx, maxx := xs[0], xs[len(xs)-1]

	x, y := svgLeft, svgTop
	pw := DefaultWidth - svgLeft - svgRight
	ph := DefaultHeight - svgTop - svgBottom

	canvas := svg.New(w)
	canvas.Start(DefaultWidth, DefaultHeight)
	canvas.Rect(0, 0, DefaultWidth, DefaultHeight, "fill:white")
	canvas.Gstyle("font-family:sans-serif;font-size:12px")

	// axes
	canvas.Line(x, y+ph, x+pw, y+ph, "stroke:black")
	canvas.Line(x, y, x, y+ph, "stroke:black")
	for i := 0; i <= svgTicks; i++ {
		v := float64(i) / svgTicks
		yp := int(fmap(v, 0, 1, float64(y+ph), float64(y)))
		canvas.Line(x-5, yp, x, yp, "stroke:black")
		canvas.Text(x-8, yp+4, fmt.Sprintf("%.1f", v), "text-anchor:end")

		xv := minx + (maxx-minx)*v
		xp := int(fmap(xv, minx, maxx, float64(x), float64(x+pw)))
		canvas.Line(xp, y+ph, xp, y+ph+5, "stroke:black")
		canvas.Text(xp, y+ph+20, fmt.Sprintf("%.0f", xv), "text-anchor:middle")
	}
	canvas.Text(x+pw/2, y+ph+40, "seconds", "text-anchor:middle")

	for i, l := range lines(s) {
		px := make([]int, len(l.values))
		py := make([]int, len(l.values))
		for j, v := range l.values {
			px[j] = int(fmap(xs[j], minx, maxx, float64(x), float64(x+pw)))
			py[j] = int(fmap(v, 0, 1, float64(y+ph), float64(y)))
		}
		canvas.Polyline(px, py, "fill:none;stroke-width:2;stroke:"+l.color)

		ly := y + 10 + i*20
		canvas.Line(x+pw+15, ly, x+pw+35, ly, "stroke-width:2;stroke:"+l.color)
		canvas.Text(x+pw+40, ly+4, l.name)
	}

	canvas.Gend()
	canvas.End()
	return nil
}
