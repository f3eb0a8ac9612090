package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/wssviz/internal/core/domain"
)

const namespace = "wssviz"

// Registry holds all metrics of one render run.
type Registry struct {
	reg *prometheus.Registry

	FramesRendered prometheus.Counter
	FramesSkipped  prometheus.Counter
	SlotsDecoded   *prometheus.CounterVec
	DecodeErrors   prometheus.Counter
	ImageSize      prometheus.Gauge
	FrameDuration  prometheus.Histogram
}

// NewRegistry creates and registers the run metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames decoded and written",
		}),
		FramesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Snapshots dropped because they failed to decode",
		}),
		SlotsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_decoded_total",
			Help:      "Decoded page slots by state",
		}, []string{"state"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Snapshots holding a field value outside the encoding",
		}),
		ImageSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "image_size_pixels",
			Help:      "Side of the square frame in pixels",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_render_seconds",
			Help:      "Time to decode, render and write one frame",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	r.reg.MustRegister(
		r.FramesRendered,
		r.FramesSkipped,
		r.SlotsDecoded,
		r.DecodeErrors,
		r.ImageSize,
		r.FrameDuration,
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveFrame records one rendered frame.
func (r *Registry) ObserveFrame(stats domain.FrameStats, took time.Duration) {
	r.FramesRendered.Inc()
	r.FrameDuration.Observe(took.Seconds())

	inactive := stats.Mapped - stats.Active - stats.Swapped
	r.SlotsDecoded.WithLabelValues("active").Add(float64(stats.Active))
	r.SlotsDecoded.WithLabelValues("inactive").Add(float64(max(inactive, 0)))
	r.SlotsDecoded.WithLabelValues("swapped").Add(float64(stats.Swapped))
	r.SlotsDecoded.WithLabelValues("unmapped").Add(float64(stats.Total - stats.Mapped))
}

// ObserveSkip records a snapshot dropped after a decode error.
func (r *Registry) ObserveSkip() {
	r.DecodeErrors.Inc()
	r.FramesSkipped.Inc()
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
