package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/wssviz/internal/infra/dirwatch"
	"github.com/yndnr/wssviz/internal/infra/shutdown"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// shutdownTimeout bounds the cleanup hooks of the watch command.
const shutdownTimeout = 5 * time.Second

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	flags := append(renderFlags(),
		&cli.DurationFlag{Name: "min-interval", Usage: "Minimum time between re-renders"},
	)
	return &cli.Command{
		Name:      "watch",
		Usage:     "Render now and again whenever a new snapshot directory appears",
		ArgsUsage: "[PID]",
		Description: "Watches <input.root>/<PID> and re-renders after each new snapshot,\n" +
			"at most once per --min-interval. Stops on SIGINT or SIGTERM.",
		Flags:        flags,
		OnUsageError: onUsageError,
		Action:       watchAction,
	}
}

var watchKeys = func() map[string]string {
	m := map[string]string{"min-interval": "watch.min_interval"}
	for k, v := range renderKeys {
		m[k] = v
	}
	return m
}()

func watchAction(c *cli.Context) error {
	e, err := setup(c, watchKeys)
	if err != nil {
		return err
	}
	pid, err := pidArg(c, e.cfg.PID)
	if err != nil {
		return err
	}

	dir := snapshot.NewStore(e.cfg.Input.Root).Dir(pid)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("watch: snapshot directory %s does not exist", dir)
	}

	r, err := newRenderer(e, pid)
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(shutdownTimeout)
	h.OnShutdown("renderer", func(context.Context) error { return r.Close() })

	w, err := dirwatch.New(dirwatch.WithLogger(e.log))
	if err != nil {
		h.Shutdown()
		return err
	}
	h.OnShutdown("watcher", func(context.Context) error { return w.Close() })
	if err := w.Add(dir); err != nil {
		h.Shutdown()
		return err
	}

	trigger := make(chan struct{}, 1)
	w.OnEvent(newSnapshotEvents(dir, w.Add, trigger, e.log).handle)
	w.Start()

	ctx, cancel := shutdown.WithSignals(c.Context)
	defer cancel()

	limiter := newRenderLimiter(e.cfg.Watch.MinInterval)
	render := func(ctx context.Context) error {
		res, err := r.Render(ctx)
		if err != nil {
			return err
		}
		return e.out.Format(e.stdout, summarize(res))
	}

	e.log.Info("watching for snapshots", "pid", pid, "dir", dir, "min_interval", e.cfg.Watch.MinInterval)
	watchLoop(ctx, trigger, limiter, render, e.log)

	return h.Shutdown()
}

// newRenderLimiter allows one render per interval. A zero interval means no limit.
func newRenderLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// watchLoop renders once, then once per trigger, until ctx is done. Triggers
// arriving while the limiter holds a render back collapse into one render.
// Render errors are logged and do not stop the loop.
func watchLoop(ctx context.Context, trigger <-chan struct{}, limiter *rate.Limiter,
	render func(context.Context) error, log logger.Logger) {
	run := func() {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		// drain triggers that arrived before the limiter let us through
		select {
		case <-trigger:
		default:
		}
		if err := render(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, snapshot.ErrNoSnapshots) {
				log.Info("no snapshots yet", "error", err)
				return
			}
			if errors.Is(err, snapshot.ErrAddressNotFound) {
				log.Info("snapshot incomplete, waiting for the next one", "error", err)
				return
			}
			log.Error("render failed", "error", err)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			run()
		}
	}
}

// snapshotEvents turns watcher events below dir into render triggers. The
// sampler creates a snapshot directory before its address files, so a new
// timestamp directory is watched in turn and fires only once a file lands
// in it. Other entries, such as the img output directory, are ignored.
type snapshotEvents struct {
	dir     string
	watch   func(dir string) error
	trigger chan<- struct{}
	log     logger.Logger
}

func newSnapshotEvents(dir string, watch func(string) error, trigger chan<- struct{}, log logger.Logger) *snapshotEvents {
	return &snapshotEvents{dir: filepath.Clean(dir), watch: watch, trigger: trigger, log: log}
}

func (s *snapshotEvents) handle(path string) {
	path = filepath.Clean(path)
	parent := filepath.Dir(path)

	switch {
	case parent == s.dir && isSnapshotDir(path):
		if err := s.watch(path); err != nil {
			s.log.Warn("cannot watch snapshot", "dir", path, "error", err)
			return
		}
		s.log.Debug("new snapshot", "dir", path)
		// files written before the watch was in place
		if hasFile(path) {
			s.fire()
		}
	case filepath.Dir(parent) == s.dir && isSnapshotDir(parent):
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			s.log.Debug("snapshot file written", "path", path)
			s.fire()
		}
	}
}

func (s *snapshotEvents) fire() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func isSnapshotDir(path string) bool {
	if _, ok := snapshot.ParseTimestamp(filepath.Base(path)); !ok {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func hasFile(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			return true
		}
	}
	return false
}
