package backupwatcher

import "context"

// Watch starts a watcher on the backups of one file storage session and
// returns its stop func.
//
// Usage:
//
//	stop, err := backupwatcher.Watch(ctx, dir, session, func(s string, st *historystate.Stack, err error) {
//	    // ...
//	})
//	defer stop()
func Watch(ctx context.Context, dir, session string, handler Handler) (func(), error) {
	cfg := DefaultConfig(dir)
	cfg.Session = session
	return WatchWithConfig(ctx, cfg, handler)
}

// WatchWithConfig starts a watcher configured by cfg and returns its stop
// func.
func WatchWithConfig(ctx context.Context, cfg Config, handler Handler) (func(), error) {
	p := New(cfg, handler)
	if err := p.Start(ctx); err != nil {
		return nil, err
	}
	return func() { _ = p.Shutdown(context.Background()) }, nil
}

