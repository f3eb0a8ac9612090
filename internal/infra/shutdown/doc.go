// Package shutdown coordinates stopping long-running commands.
//
// WithSignals derives a context canceled on SIGINT or SIGTERM. A Handler
// runs named cleanup hooks, newest first:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("renderer", func(context.Context) error { return r.Close() })
//	h.OnShutdown("watcher", func(context.Context) error { return w.Close() })
//	ctx, cancel := shutdown.WithSignals(c.Context)
//	defer cancel()
//	watchLoop(ctx, ...)
//	return h.Shutdown()
package shutdown
