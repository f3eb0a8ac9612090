package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
)

// SnapshotSummary is the decoded statistics of one snapshot.
type SnapshotSummary struct {
	Name      string    `json:"name" yaml:"name"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Size      int64     `json:"size" yaml:"size"`
	Slots     int       `json:"slots" yaml:"slots"`
	Active    float64   `json:"active" yaml:"active"`
	Mapped    float64   `json:"mapped" yaml:"mapped"`
	Zero      float64   `json:"zero" yaml:"zero"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// InspectResult summarizes a process's snapshots without rendering.
type InspectResult struct {
	PID       string            `json:"pid" yaml:"pid"`
	Address   string            `json:"address" yaml:"address"`
	Encoding  string            `json:"encoding" yaml:"encoding"`
	ImageSize int               `json:"image_size" yaml:"image_size"`
	Reference string            `json:"reference" yaml:"reference"`
	Snapshots []SnapshotSummary `json:"snapshots" yaml:"snapshots"`
}

// Inspect decodes every snapshot of pid and reports per-snapshot statistics.
// Decode errors are reported per snapshot instead of failing the call.
func (p *Pipeline) Inspect(ctx context.Context, pid, addr string, opts DecoderOptions) (*InspectResult, error) {
	dec, err := NewDecoder(opts)
	if err != nil {
		return nil, err
	}

	snaps, err := p.source.List(pid)
	if err != nil {
		return nil, err
	}
	addr, err = p.source.ResolveAddress(snaps, addr)
	if err != nil {
		return nil, err
	}
	ref, err := snapshot.Reference(snaps)
	if err != nil {
		return nil, err
	}
	refSize, err := p.source.Stat(ref, addr)
	if err != nil {
		return nil, err
	}

	res := &InspectResult{
		PID:       pid,
		Address:   addr,
		Encoding:  dec.Encoding().String(),
		ImageSize: domain.ImageSize(refSize, dec.Encoding()),
		Reference: ref.Name,
	}

	for _, meta := range snaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, err := p.source.Read(meta, addr)
		if err != nil {
			return nil, err
		}

		sum := SnapshotSummary{
			Name:      snap.Name,
			Timestamp: snap.Timestamp,
			Size:      snap.Size,
			Slots:     dec.SlotCount(len(snap.Data)),
		}

		var stats domain.FrameStats
		err = dec.Slots(snap.Data, func(s domain.Slot, _ domain.Color) error {
			stats.Add(s)
			return nil
		})
		var de *domain.DecodeError
		if errors.As(err, &de) {
			sum.Error = de.Error()
		} else if err != nil {
			return nil, err
		}

		sum.Active = stats.ActiveFraction()
		sum.Mapped = stats.MappedFraction()
		sum.Zero = stats.ZeroFraction()
		res.Snapshots = append(res.Snapshots, sum)
	}

	return res, nil
}
