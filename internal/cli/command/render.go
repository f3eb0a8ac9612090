package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/core/service"
	"github.com/yndnr/wssviz/internal/infra/shutdown"
	"github.com/yndnr/wssviz/internal/storage/history"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// RenderCommand returns the render command.
func RenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render every snapshot of a process to stills, a GIF and a chart",
		ArgsUsage: "[PID]",
		Description: "Reads <input.root>/<PID>/<timestamp>/<0xaddr> snapshots oldest first and\n" +
			"writes NNN.png frames, gif.gif and graph.png into the output directory.\n" +
			"PID falls back to the pid configuration key.",
		Flags:        renderFlags(),
		OnUsageError: onUsageError,
		Action:       renderAction,
	}
}

// renderFlags are shared by render and watch.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Snapshot root directory"},
		&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Address file to render, e.g. 0x7f3a2c000000"},
		&cli.StringFlag{Name: "encoding", Aliases: []string{"e"}, Usage: "Snapshot encoding: presence, activity, activity-zero"},
		&cli.BoolFlag{Name: "swapped", Usage: "Accept the swapped state in activity-zero snapshots"},
		&cli.StringFlag{Name: "caption", Usage: "Caption drawn bottom-left of every frame"},
		&cli.BoolFlag{Name: "annotate", Usage: "Draw the caption and elapsed-time margin (--annotate=false to disable)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Still image format: png, jpg"},
		&cli.StringFlag{Name: "overflow", Usage: "Snapshot larger than the frame: error, truncate"},
		&cli.StringFlag{Name: "on-decode-error", Usage: "Undecodable snapshot: abort, skip"},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"d"}, Usage: "Directory for stills, GIF and chart"},
		&cli.BoolFlag{Name: "chart", Usage: "Write graph.png (--chart=false to disable)"},
		&cli.BoolFlag{Name: "svg", Usage: "Also write graph.svg"},
		&cli.BoolFlag{Name: "csv", Usage: "Also write stats.csv"},
		&cli.StringFlag{Name: "metrics-textfile", Usage: "Write Prometheus metrics of the run to this file"},
		&cli.BoolFlag{Name: "history", Usage: "Record the run in the history store"},
	}
}

// renderKeys maps render flags to configuration keys.
var renderKeys = map[string]string{
	"root":             "input.root",
	"address":          "address",
	"encoding":         "decode.encoding",
	"swapped":          "decode.swapped",
	"caption":          "render.caption",
	"annotate":         "render.annotate",
	"format":           "render.format",
	"overflow":         "render.overflow",
	"on-decode-error":  "render.on_decode_error",
	"output-dir":       "render.output_dir",
	"chart":            "chart.enabled",
	"svg":              "chart.svg",
	"csv":              "chart.csv",
	"metrics-textfile": "metrics.textfile",
	"history":          "history.enabled",
}

// pidArg returns the single optional PID argument, falling back to fallback.
func pidArg(c *cli.Context, fallback string) (string, error) {
	if c.NArg() > 1 {
		return "", usageError(c, "expected at most one PID, got %d arguments", c.NArg())
	}
	pid := c.Args().First()
	if pid == "" {
		pid = fallback
	}
	if pid == "" {
		return "", usageError(c, "no PID given and no pid configured")
	}
	if err := snapshot.ValidatePID(pid); err != nil {
		return "", usageError(c, "%v", err)
	}
	return pid, nil
}

// renderSummary is the printed outcome of a run.
type renderSummary struct {
	RunID     string   `json:"run_id" yaml:"run_id"`
	PID       string   `json:"pid" yaml:"pid"`
	Address   string   `json:"address" yaml:"address"`
	Encoding  string   `json:"encoding" yaml:"encoding"`
	ImageSize int      `json:"image_size" yaml:"image_size"`
	Frames    int      `json:"frames" yaml:"frames"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Dropped   int      `json:"dropped_slots" yaml:"dropped_slots"`
	OutputDir string   `json:"output_dir" yaml:"output_dir"`
	GIF       string   `json:"gif" yaml:"gif"`
	Charts    []string `json:"charts" yaml:"charts"`
	Took      string   `json:"took" yaml:"took"`
}

func summarize(res *service.RunResult) renderSummary {
	return renderSummary{
		RunID:     res.Run.ID,
		PID:       res.Run.PID,
		Address:   res.Run.Address,
		Encoding:  res.Run.Encoding.String(),
		ImageSize: res.Run.ImageSize,
		Frames:    res.Run.Frames,
		Skipped:   res.Run.Skipped,
		Dropped:   res.Dropped,
		OutputDir: res.Run.OutputDir,
		GIF:       res.GIF,
		Charts:    res.ChartFiles,
		Took:      res.Run.Duration().Round(time.Millisecond).String(),
	}
}

func renderAction(c *cli.Context) error {
	e, err := setup(c, renderKeys)
	if err != nil {
		return err
	}
	pid, err := pidArg(c, e.cfg.PID)
	if err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(c.Context)
	defer cancel()

	r, err := newRenderer(e, pid)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := r.Render(ctx)
	if err != nil {
		return err
	}
	return e.out.Format(e.stdout, summarize(res))
}

// renderer renders one process repeatedly with fixed settings.
type renderer struct {
	pipeline *service.Pipeline
	run      service.RunConfig
	closers  []func() error
}

func newRenderer(e *env, pid string) (*renderer, error) {
	rc, err := e.cfg.RunConfig(pid)
	if err != nil {
		return nil, err
	}

	r := &renderer{run: rc}
	store := snapshot.NewStore(e.cfg.Input.Root, snapshot.WithLogger(e.log))
	opts := []service.PipelineOption{}

	if logger.IsTerminal(e.stderr) {
		opts = append(opts, service.WithProgress(output.NewProgressBar(e.stderr, "Rendering")))
	}

	if e.cfg.History.Enabled {
		hs, closeFn, err := history.Open(e.cfg.History.Dir, e.log)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, closeFn)
		opts = append(opts, service.WithRecorder(hs))
	}

	r.pipeline = service.NewPipeline(store, opts...)
	return r, nil
}

// Render runs the pipeline once.
func (r *renderer) Render(ctx context.Context) (*service.RunResult, error) {
	res, err := r.pipeline.Run(ctx, r.run)
	if err != nil {
		return nil, fmt.Errorf("render pid %s: %w", r.run.PID, err)
	}
	return res, nil
}

// Close releases the history store, if any.
func (r *renderer) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}
