package chart

import (
	"errors"

	"github.com/yndnr/wssviz/internal/core/domain"
)

// ErrTooFewPoints is returned when a series has fewer than two frames.
var ErrTooFewPoints = errors.New("chart: need at least two frames")

// Default canvas size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// line is one plotted series.
type line struct {
	name   string
	values []float64
	color  string // CSS hex, used by the SVG renderer
}

func lines(s *domain.Series) []line {
	return []line{
		{name: "active", values: s.Active, color: "#cc0000"},
		{name: "zero", values: s.Zero, color: "#1f77b4"},
		{name: "mapped", values: s.Mapped, color: "#2ca02c"},
	}
}

// xValues returns seconds elapsed since the first timestamp.
func xValues(s *domain.Series) []float64 {
	xs := make([]float64, len(s.Timestamps))
	if len(xs) == 0 {
		return xs
	}
	first := s.Timestamps[0]
	for i, ts := range s.Timestamps {
		xs[i] = ts.Sub(first).Seconds()
	}
	// identical timestamps would collapse the x range
	if xs[len(xs)-1] <= xs[0] {
		for i := range xs {
			xs[i] = float64(i)
		}
	}
	return xs
}

func check(s *domain.Series) error {
	if s == nil || s.Len() < 2 || len(s.Timestamps) != s.Len() {
		return ErrTooFewPoints
	}
	return nil
}
