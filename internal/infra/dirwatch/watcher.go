// Package dirwatch reports entries appearing in watched directories. It
// wraps fsnotify and backs the watch command, which re-renders when the
// sampler finishes writing a snapshot.
package dirwatch

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// Filter decides whether an fsnotify event is reported.
type Filter func(fsnotify.Event) bool

// CreatedOrWritten passes create and write events for any path.
func CreatedOrWritten(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}

// Watcher delivers filtered events to handlers. Directories are not
// watched recursively.
type Watcher struct {
	fs     *fsnotify.Watcher
	filter Filter
	log    logger.Logger

	mu       sync.RWMutex
	handlers []func(path string)

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter replaces the CreatedOrWritten default.
func WithFilter(f Filter) Option {
	return func(w *Watcher) { w.filter = f }
}

// WithLogger sets the logger; the default is logger.Default().
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a watcher. Call Close to release it.
func New(opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		filter: CreatedOrWritten,
		log:    logger.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add starts watching dir.
func (w *Watcher) Add(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.log.Debug("watching directory", "path", dir)
	return nil
}

// OnEvent registers fn to receive the path of every reported event.
// Handlers run on the watcher goroutine and should not block.
func (w *Watcher) OnEvent(fn func(path string)) {
	w.mu.Lock()
	w.handlers = append(w.handlers, fn)
	w.mu.Unlock()
}

// Run dispatches events until Close is called.
func (w *Watcher) Run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.filter(ev) {
				w.dispatch(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("directory watch error", "error", err)
		}
	}
}

// Start runs the watcher in a new goroutine.
func (w *Watcher) Start() {
	go w.Run()
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) dispatch(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, fn := range w.handlers {
		fn(path)
	}
}
