package domain

import (
	"testing"
	"time"
)

func TestImageSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		enc  Encoding
		want int
	}{
		{"activity exact square", 2500, EncodingActivity, 100},
		{"activity rounds up", 2501, EncodingActivity, 101},
		{"presence", 2, EncodingPresence, 4},
		{"presence non square", 3, EncodingPresence, 5},
		{"one byte per page", 10000, EncodingActivityZero, 100},
		{"empty file", 0, EncodingActivity, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageSize(tt.size, tt.enc); got != tt.want {
				t.Errorf("ImageSize(%d, %s) = %d, want %d", tt.size, tt.enc, got, tt.want)
			}
		})
	}
}

func TestFrameStats_Fractions(t *testing.T) {
	var s FrameStats
	s.Add(Slot{State: StateActive, Zero: true})
	s.Add(Slot{State: StateMappedInactive})
	s.Add(Slot{State: StateUnmapped})
	s.Add(Slot{State: StateMappedInactive, Zero: true})

	if s.Total != 4 || s.Active != 1 || s.Mapped != 3 || s.Zero != 2 {
		t.Fatalf("stats = %+v", s)
	}
	if got := s.ActiveFraction(); got != 0.25 {
		t.Errorf("ActiveFraction() = %v, want 0.25", got)
	}
	if got := s.MappedFraction(); got != 0.75 {
		t.Errorf("MappedFraction() = %v, want 0.75", got)
	}
	if got := s.ZeroFraction(); got != 0.5 {
		t.Errorf("ZeroFraction() = %v, want 0.5", got)
	}
}

func TestFrameStats_Empty(t *testing.T) {
	var s FrameStats
	if s.ActiveFraction() != 0 || s.MappedFraction() != 0 || s.ZeroFraction() != 0 {
		t.Error("empty frame should report zero fractions")
	}
}

func TestSeries_Append(t *testing.T) {
	var series Series
	t0 := time.Unix(1550000000, 0)
	series.Append(t0, FrameStats{Total: 2, Active: 1, Mapped: 2})
	series.Append(t0.Add(time.Second), FrameStats{Total: 4, Zero: 1})

	if series.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", series.Len())
	}
	if series.Active[0] != 0.5 || series.Mapped[0] != 1 || series.Zero[1] != 0.25 {
		t.Errorf("series = %+v", series)
	}
}

func TestColor_Boost(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want Color
	}{
		{"red", Red, Color{R: 0xFFFF}},
		{"green", Green, Color{G: 0xFFFF}},
		{"black stays black", Black, Black},
		{"saturates", Color{R: 0xFFFF}, Color{R: 0xFFFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Boost(); got != tt.want {
				t.Errorf("Boost() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPixelBuffer(t *testing.T) {
	buf := NewPixelBuffer(3, false)
	if buf.Capacity() != 9 {
		t.Fatalf("Capacity() = %d, want 9", buf.Capacity())
	}

	buf.Set(4, Red)
	buf.Set(9, Green) // out of range, ignored
	if buf.At(1, 1) != Red {
		t.Errorf("At(1,1) = %+v, want red", buf.At(1, 1))
	}

	buf.Reset()
	if buf.At(1, 1) != Black {
		t.Error("Reset() should paint the buffer black")
	}
}
