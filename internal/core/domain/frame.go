package domain

import (
	"math"
	"time"
)

// Snapshot is one timestamped capture of a region's page states.
type Snapshot struct {
	// Name is the directory name the timestamp was parsed from.
	Name      string    `json:"name" yaml:"name"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// Dir is the snapshot directory holding one file per address.
	Dir  string `json:"dir" yaml:"dir"`
	Size int64  `json:"size" yaml:"size"`
	Data []byte `json:"-" yaml:"-"`
}

// FrameStats counts slot states within one frame.
type FrameStats struct {
	Total   int `json:"total" yaml:"total"`
	Active  int `json:"active" yaml:"active"`
	Mapped  int `json:"mapped" yaml:"mapped"`
	Zero    int `json:"zero" yaml:"zero"`
	Swapped int `json:"swapped" yaml:"swapped"`
}

// Add records one decoded slot.
func (s *FrameStats) Add(slot Slot) {
	s.Total++
	if slot.State == StateActive || slot.State == StatePresent {
		s.Active++
	}
	if slot.State.IsMapped() {
		s.Mapped++
	}
	if slot.State == StateSwapped {
		s.Swapped++
	}
	if slot.Zero {
		s.Zero++
	}
}

// ActiveFraction returns active/total, 0 for an empty frame.
func (s FrameStats) ActiveFraction() float64 { return fraction(s.Active, s.Total) }

// MappedFraction returns mapped/total, 0 for an empty frame.
func (s FrameStats) MappedFraction() float64 { return fraction(s.Mapped, s.Total) }

// ZeroFraction returns zero/total, 0 for an empty frame.
func (s FrameStats) ZeroFraction() float64 { return fraction(s.Zero, s.Total) }

func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Series holds the per-frame statistics time series of a run.
type Series struct {
	Timestamps []time.Time `json:"timestamps" yaml:"timestamps"`
	Active     []float64   `json:"active" yaml:"active"`
	Zero       []float64   `json:"zero" yaml:"zero"`
	Mapped     []float64   `json:"mapped" yaml:"mapped"`
}

// Append adds one frame's fractions to the three series.
func (s *Series) Append(ts time.Time, stats FrameStats) {
	s.Timestamps = append(s.Timestamps, ts)
	s.Active = append(s.Active, stats.ActiveFraction())
	s.Zero = append(s.Zero, stats.ZeroFraction())
	s.Mapped = append(s.Mapped, stats.MappedFraction())
}

// Len returns the number of frames recorded.
func (s *Series) Len() int {
	return len(s.Active)
}

// ImageSize returns the side of the square frame able to hold every slot of a
// file of fileSize bytes: ceil(sqrt(fileSize * slotsPerByte)).
func ImageSize(fileSize int64, enc Encoding) int {
	if fileSize <= 0 {
		return 0
	}
	slots := float64(fileSize) * float64(enc.SlotsPerByte())
	return int(math.Ceil(math.Sqrt(slots)))
}

// FrameDelay is the inter-frame delay of the animation, in centiseconds.
const FrameDelay = 100
