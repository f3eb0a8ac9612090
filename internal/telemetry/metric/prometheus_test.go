package metric

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/wssviz/internal/core/domain"
)

func TestRegistry_ObserveFrame(t *testing.T) {
	r := NewRegistry()

	stats := domain.FrameStats{Total: 10, Active: 3, Mapped: 7, Swapped: 1}
	r.ObserveFrame(stats, 20*time.Millisecond)
	r.ObserveFrame(stats, 30*time.Millisecond)

	if got := testutil.ToFloat64(r.FramesRendered); got != 2 {
		t.Errorf("frames_rendered_total = %v, want 2", got)
	}

	tests := []struct {
		state string
		want  float64
	}{
		{"active", 6},
		{"inactive", 6},
		{"swapped", 2},
		{"unmapped", 6},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(r.SlotsDecoded.WithLabelValues(tt.state)); got != tt.want {
			t.Errorf("slots_decoded_total{state=%q} = %v, want %v", tt.state, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(r.FrameDuration); n != 1 {
		t.Errorf("frame_render_seconds series = %d, want 1", n)
	}
}

func TestRegistry_ObserveSkip(t *testing.T) {
	r := NewRegistry()
	r.ObserveSkip()

	if got := testutil.ToFloat64(r.FramesSkipped); got != 1 {
		t.Errorf("frames_skipped_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.DecodeErrors); got != 1 {
		t.Errorf("decode_errors_total = %v, want 1", got)
	}
}

func TestRegistry_ImageSize(t *testing.T) {
	r := NewRegistry()
	r.ImageSize.Set(100)

	expected := `
# HELP wssviz_image_size_pixels Side of the square frame in pixels
# TYPE wssviz_image_size_pixels gauge
wssviz_image_size_pixels 100
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "wssviz_image_size_pixels"); err != nil {
		t.Error(err)
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveFrame(domain.FrameStats{Total: 4, Active: 4, Mapped: 4}, time.Millisecond)

	path := filepath.Join(t.TempDir(), "wssviz.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "wssviz_frames_rendered_total 1") {
		t.Errorf("textfile lacks frames_rendered_total:\n%s", data)
	}
}
