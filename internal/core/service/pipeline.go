package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/render"
	"github.com/yndnr/wssviz/internal/render/chart"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
	"github.com/yndnr/wssviz/internal/telemetry/metric"
)

// Output file names inside the output directory.
const (
	GIFName  = "gif.gif"
	ChartPNG = "graph.png"
	ChartSVG = "graph.svg"
	ChartCSV = "stats.csv"
)

// SnapshotSource lists and reads the snapshots of a process.
type SnapshotSource interface {
	// Dir returns the input directory of pid.
	Dir(pid string) string

	// List returns the snapshots of pid, oldest first.
	List(pid string) ([]domain.Snapshot, error)

	// ResolveAddress picks the address file to render.
	ResolveAddress(snaps []domain.Snapshot, addr string) (string, error)

	// Stat returns the size of one address file.
	Stat(snap domain.Snapshot, addr string) (int64, error)

	// Read loads one address file.
	Read(snap domain.Snapshot, addr string) (domain.Snapshot, error)
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	Put(ctx context.Context, run *domain.Run, frames []domain.FrameRecord) error
}

// Progress receives per-frame progress.
type Progress interface {
	Update(current, total int64)
	Finish()
}

// ErrorPolicy decides what happens to a snapshot that fails to decode.
type ErrorPolicy string

const (
	// ErrorAbort stops the run with the decode error.
	ErrorAbort ErrorPolicy = "abort"
	// ErrorSkip drops the frame and continues.
	ErrorSkip ErrorPolicy = "skip"
)

// ParseErrorPolicy parses a policy name; empty means ErrorAbort.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ErrorAbort:
		return ErrorAbort, nil
	case ErrorSkip:
		return ErrorSkip, nil
	default:
		return "", fmt.Errorf("unknown decode error policy %q (want abort or skip)", s)
	}
}

// ChartOptions selects the summary outputs.
type ChartOptions struct {
	Enabled bool
	SVG     bool
	CSV     bool
}

// DefaultOutputDir is the output directory below the process's input
// directory.
const DefaultOutputDir = "img"

// RunConfig describes one render run.
type RunConfig struct {
	PID     string
	Address string // empty: the only file of the reference snapshot

	Decoder       DecoderOptions
	OnDecodeError ErrorPolicy

	Annotate bool
	Caption  string
	Format   render.StillFormat

	OutputDir       string // relative paths resolve against the input directory
	Chart           ChartOptions
	MetricsTextfile string
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	Run        domain.Run
	Frames     []domain.FrameRecord
	Series     domain.Series
	Stills     []string
	GIF        string
	ChartFiles []string
	// Dropped counts slots cut off by the truncate overflow policy.
	Dropped int
}

// Pipeline renders a process's snapshots to stills, a GIF and a chart.
//
// A Pipeline may run many times but not concurrently.
type Pipeline struct {
	source   SnapshotSource
	recorder RunRecorder
	progress Progress
	metrics  *metric.Registry
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRecorder stores every finished run.
func WithRecorder(r RunRecorder) PipelineOption {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithProgress reports per-frame progress.
func WithProgress(pr Progress) PipelineOption {
	return func(p *Pipeline) {
		p.progress = pr
	}
}

// WithMetrics records into reg instead of a fresh registry per run.
func WithMetrics(reg *metric.Registry) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = reg
	}
}

// NewPipeline creates a pipeline reading from source.
func NewPipeline(source SnapshotSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{source: source}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ============================================================================
// Render Run
// ============================================================================

// Run renders every snapshot of cfg.PID in timestamp order.
//
// Frames are decoded into one shared buffer, so the run is sequential.
// ctx is checked between frames.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	// 1. Prepare the run
	runID, err := domain.GenerateRunID()
	if err != nil {
		return nil, err
	}
	ctx = logger.WithPID(logger.WithRunID(ctx, runID), cfg.PID)
	log := logger.L(ctx)

	dec, err := NewDecoder(cfg.Decoder)
	if err != nil {
		return nil, err
	}
	policy := cfg.OnDecodeError
	if policy == "" {
		policy = ErrorAbort
	}
	outDir := p.outputDir(cfg)
	reg := p.metrics
	if reg == nil {
		reg = metric.NewRegistry()
	}

	// 2. Find snapshots and size the frame
	snaps, err := p.source.List(cfg.PID)
	if err != nil {
		return nil, err
	}
	addr, err := p.source.ResolveAddress(snaps, cfg.Address)
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
	size := domain.ImageSize(refSize, dec.Encoding())
	if size == 0 {
		return nil, domain.ErrEmptyReference.With(snapshot.Path(ref, addr))
	}
	reg.ImageSize.Set(float64(size))

	log.Info("rendering snapshots",
		"address", addr,
		"snapshots", len(snaps),
		"encoding", dec.Encoding().String(),
		"image_size", size,
		"reference", ref.Name,
		"reference_bytes", refSize)

	// 3. Set up renderers
	buf := domain.NewPixelBuffer(size, dec.Encoding().Grayscale())

	var ann *render.Annotator
	if cfg.Annotate {
		ann, err = render.NewAnnotator(render.Margin(size))
		if err != nil {
			return nil, err
		}
		defer ann.Close()
	}

	stills, err := render.NewStillWriter(outDir, cfg.Format, len(snaps))
	if err != nil {
		return nil, err
	}
	anim := render.NewAnimation()

	res := &RunResult{
		Run: domain.Run{
			ID:        runID,
			PID:       cfg.PID,
			Address:   addr,
			Encoding:  dec.Encoding(),
			ImageSize: size,
			OutputDir: outDir,
			StartedAt: time.Now().UTC(),
		},
	}

	// 4. Render frames oldest to newest
	var first time.Time
	for i, meta := range snaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()

		snap, err := p.source.Read(meta, addr)
		if err != nil {
			return nil, err
		}

		decoded, err := dec.Decode(snap.Data, buf)
		if err != nil {
			var de *domain.DecodeError
			if errors.As(err, &de) && policy == ErrorSkip {
				reg.ObserveSkip()
				res.Run.Skipped++
				log.Warn("skipping snapshot", "snapshot", snap.Name, "error", err)
				continue
			}
			return nil, fmt.Errorf("%s: %w", snapshot.Path(snap, addr), err)
		}
		if decoded.Dropped > 0 {
			res.Dropped += decoded.Dropped
			log.Warn("snapshot truncated to frame",
				"snapshot", snap.Name,
				"dropped_slots", decoded.Dropped,
				"capacity", buf.Capacity())
		}

		idx := anim.Len()
		if idx == 0 {
			first = snap.Timestamp
		}

		img := render.NewFrameImage(buf, ann.Margin())
		if ann != nil {
			ann.Draw(img, cfg.Caption, render.Elapsed(snap.Timestamp, first))
		}

		path, err := stills.Write(idx, img)
		if err != nil {
			return nil, err
		}
		if err := anim.Add(img); err != nil {
			return nil, err
		}

		res.Stills = append(res.Stills, path)
		res.Series.Append(snap.Timestamp, decoded.Stats)
		res.Frames = append(res.Frames, domain.FrameRecord{
			Index:     idx,
			Snapshot:  snap.Name,
			Timestamp: snap.Timestamp,
			Stats:     decoded.Stats,
		})

		took := time.Since(start)
		reg.ObserveFrame(decoded.Stats, took)
		log.Debug("frame rendered",
			"frame", idx,
			"snapshot", snap.Name,
			"active", decoded.Stats.ActiveFraction(),
			"zero", decoded.Stats.ZeroFraction(),
			"took", took)

		if p.progress != nil {
			p.progress.Update(int64(i+1), int64(len(snaps)))
		}
	}
	if p.progress != nil {
		p.progress.Finish()
	}

	if anim.Len() == 0 {
		return nil, domain.ErrNoFrames.With(fmt.Sprintf("%d snapshots skipped", res.Run.Skipped))
	}

	// 5. Finalize outputs
	res.GIF = filepath.Join(outDir, GIFName)
	if err := anim.WriteFile(res.GIF); err != nil {
		return nil, err
	}

	if cfg.Chart.Enabled {
		files, err := writeCharts(outDir, &res.Series, cfg.Chart, log)
		if err != nil {
			return nil, err
		}
		res.ChartFiles = files
	}

	res.Run.Frames = anim.Len()
	res.Run.FinishedAt = time.Now().UTC()

	if cfg.MetricsTextfile != "" {
		if err := reg.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return nil, err
		}
	}

	// 6. Record history
	if p.recorder != nil {
		if err := p.recorder.Put(ctx, &res.Run, res.Frames); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	log.Info("render complete",
		"frames", res.Run.Frames,
		"skipped", res.Run.Skipped,
		"gif", res.GIF,
		"took", res.Run.Duration())

	return res, nil
}

// outputDir resolves cfg.OutputDir. A relative path, including the default
// img, lives inside the input directory of the process.
func (p *Pipeline) outputDir(cfg RunConfig) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.source.Dir(cfg.PID), dir)
}

// writeCharts writes the enabled summary files. A series shorter than two
// frames has no line to draw, so the PNG and SVG charts are skipped.
func writeCharts(dir string, s *domain.Series, opts ChartOptions, log logger.Logger) ([]string, error) {
	var files []string

	write := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			os.Remove(path)
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		files = append(files, path)
		return nil
	}

	if s.Len() < 2 {
		log.Warn("chart skipped", "frames", s.Len(), "reason", chart.ErrTooFewPoints.Error())
	} else {
		if err := write(ChartPNG, func(f *os.File) error { return chart.WritePNG(f, s) }); err != nil {
			return nil, err
		}
		if opts.SVG {
			if err := write(ChartSVG, func(f *os.File) error { return chart.WriteSVG(f, s) }); err != nil {
				return nil, err
			}
		}
	}

	if opts.CSV {
		if err := write(ChartCSV, func(f *os.File) error { return chart.WriteCSV(f, s) }); err != nil {
			return nil, err
		}
	}
	return files, nil
}
