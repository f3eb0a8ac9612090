package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/wssviz/internal/infra/dirwatch"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// startLoop runs watchLoop in the background and reports each render.
func startLoop(t *testing.T, interval time.Duration, errs ...error) (trigger chan struct{}, renders chan struct{}, stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	trigger = make(chan struct{}, 1)
	renders = make(chan struct{}, 16)
	done := make(chan struct{})

	n := 0
	go func() {
		defer close(done)
		watchLoop(ctx, trigger, newRenderLimiter(interval), func(context.Context) error {
			var err error
			if n < len(errs) {
				err = errs[n]
			}
			n++
			renders <- struct{}{}
			return err
		}, logger.Discard())
	}()

	stop = func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("watchLoop did not return after cancel")
		}
	}
	return trigger, renders, stop
}

func waitRender(t *testing.T, renders <-chan struct{}) {
	t.Helper()
	select {
	case <-renders:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a render")
	}
}

func TestWatchLoop_RendersOnTrigger(t *testing.T) {
	trigger, renders, stop := startLoop(t, 0)
	defer stop()

	waitRender(t, renders) // initial render
	trigger <- struct{}{}
	waitRender(t, renders)
}

func TestWatchLoop_ErrorsKeepWatching(t *testing.T) {
	trigger, renders, stop := startLoop(t, 0,
		snapshot.ErrNoSnapshots,
		snapshot.ErrAddressNotFound,
		errors.New("decode failed"),
	)
	defer stop()

	waitRender(t, renders)
	for i := 0; i < 3; i++ {
		trigger <- struct{}{}
		waitRender(t, renders)
	}
}

func noRender(t *testing.T, renders <-chan struct{}, wait time.Duration) {
	t.Helper()
	select {
	case <-renders:
		t.Fatal("unexpected render")
	case <-time.After(wait):
	}
}

func TestWatchLoop_WaitsForAddressFile(t *testing.T) {
	dir := t.TempDir()
	w, err := dirwatch.New(dirwatch.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	trigger, renders, stop := startLoop(t, 0)
	defer stop()
	w.OnEvent(newSnapshotEvents(dir, w.Add, trigger, logger.Discard()).handle)
	w.Start()
	waitRender(t, renders) // initial render

	// the sampler creates the directory first
	snap := filepath.Join(dir, "1550000001")
	if err := os.Mkdir(snap, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	noRender(t, renders, 300*time.Millisecond)

	if err := os.WriteFile(filepath.Join(snap, "0x7fd607823000"), make([]byte, 25), 0644); err != nil {
		t.Fatal(err)
	}
	waitRender(t, renders)
}

func TestSnapshotEvents_Handle(t *testing.T) {
	dir := t.TempDir()
	mkdir := func(p string) string {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatal(err)
		}
		return p
	}
	write := func(p string) string {
		if err := os.WriteFile(p, []byte{0xFF}, 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	empty := mkdir(filepath.Join(dir, "1550000000"))
	filled := mkdir(filepath.Join(dir, "1550000001"))
	addrFile := write(filepath.Join(filled, "0x7fd607823000"))
	img := mkdir(filepath.Join(dir, "img"))
	still := write(filepath.Join(img, "000.png"))
	stray := write(filepath.Join(dir, "stray"))

	tests := []struct {
		name     string
		path     string
		watched  string
		triggers bool
	}{
		{"empty snapshot dir", empty, empty, false},
		{"snapshot dir with file", filled, filled, true},
		{"address file", addrFile, "", true},
		{"output dir", img, "", false},
		{"output file", still, "", false},
		{"stray file", stray, "", false},
		{"removed", filepath.Join(dir, "1550000009"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var watched string
			trigger := make(chan struct{}, 1)
			ev := newSnapshotEvents(dir+"/", func(p string) error {
				watched = p
				return nil
			}, trigger, logger.Discard())

			ev.handle(tt.path)

			if watched != tt.watched {
				t.Errorf("watched %q, want %q", watched, tt.watched)
			}
			if got := len(trigger) == 1; got != tt.triggers {
				t.Errorf("triggered = %v, want %v", got, tt.triggers)
			}
		})
	}
}

func TestWatchLoop_RateLimited(t *testing.T) {
	trigger, renders, stop := startLoop(t, time.Hour)

	waitRender(t, renders)
	trigger <- struct{}{}

	select {
	case <-renders:
		t.Error("second render ran before the minimum interval")
	case <-time.After(100 * time.Millisecond):
	}
	// cancel must interrupt the limiter wait
	stop()
}

func TestNewRenderLimiter(t *testing.T) {
	if l := newRenderLimiter(0); !l.Allow() || !l.Allow() {
		t.Error("zero interval should not limit")
	}
	l := newRenderLimiter(time.Hour)
	if !l.Allow() {
		t.Error("first render should be allowed")
	}
	if l.Allow() {
		t.Error("second render within the interval should be held back")
	}
}

func TestWatchCommand_MissingDirectory(t *testing.T) {
	isolate(t)

	_, _, err := runApp(t, "watch", "--root", t.TempDir(), "--output-dir", filepath.Join(t.TempDir(), "img"), "4242")
	if err == nil {
		t.Fatal("watch of a missing snapshot directory should fail")
	}
	if ExitCode(err) != ExitError {
		t.Errorf("ExitCode() = %d, want %d", ExitCode(err), ExitError)
	}
}

func TestWatchCommand_UsageError(t *testing.T) {
	isolate(t)

	_, _, err := runApp(t, "watch", "1", "2")
	if ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode() = %d, want %d (err = %v)", ExitCode(err), ExitUsage, err)
	}
}
