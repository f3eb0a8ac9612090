package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/yndnr/wssviz/internal/core/domain"
)

// WritePNG renders the series as a PNG line chart with a legend.
func WritePNG(w io.Writer, s *domain.Series) error {
	if err := check(s); err != nil {
		return err
	}

	xs := xValues(s)
	var series []gochart.Series
	for _, l := range lines(s) {
		series = append(series, gochart.ContinuousSeries{
			Name:    l.name,
			XValues: xs,
			YValues: l.values,
			Style: gochart.Style{
				StrokeColor: drawing.ColorFromHex(l.color[1:]),
				StrokeWidth: 2,
			},
		})
	}

	graph := gochart.Chart{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{Name: "seconds"},
		YAxis: gochart.YAxis{
			Name:  "fraction of pages",
			Range: &gochart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png chart: %w", err)
	}
	return nil
}
