// Package backupwatcher follows the reload backups of a file storage
// directory. Whenever a session file is written, the backup it holds is
// decoded and handed to a callback.
package backupwatcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/historystate/pkg/historystate"
)

// ErrNoBackup is passed to the callback when a session file no longer holds a
// backup under the watched key.
var ErrNoBackup = errors.New("backupwatcher: session has no backup")

// Handler receives the decoded backup of a session. stack is nil when err is
// set.
type Handler func(session string, stack *historystate.Stack, err error)

// Config holds configuration options for the backup watcher.
type Config struct {
	// Dir is the file storage directory to watch.
	Dir string

	// StorageKey is the key the backup is stored under.
	// Default: historystate.DefaultStorageKey
	StorageKey string

	// Session restricts the watcher to one session. Empty watches all.
	Session string

	// DebounceDelay is the delay to wait after a file change before reading.
	// Default: 50 milliseconds
	DebounceDelay time.Duration

	// Logger receives watcher diagnostics. Default: no output.
	Logger historystate.Logger
}

// DefaultConfig returns a Config with sensible defaults for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:           dir,
		StorageKey:    historystate.DefaultStorageKey,
		DebounceDelay: 50 * time.Millisecond,
	}
}

// Plugin watches a storage directory for backup writes.
type Plugin struct {
	mu sync.Mutex

	config  Config
	handler Handler
	logger  historystate.Logger

	watcher   *fsnotify.Watcher
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	debounces map[string]*time.Timer
}

// New creates a watcher calling handler for every backup write.
func New(cfg Config, handler Handler) *Plugin {
	if cfg.StorageKey == "" {
		cfg.StorageKey = historystate.DefaultStorageKey
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 50 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = historystate.NewNoopLogger()
	}

	return &Plugin{
		config:    cfg,
		handler:   handler,
		logger:    logger,
		debounces: make(map[string]*time.Timer),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "backupwatcher"
}

// Start begins watching. The directory is created if missing.
func (p *Plugin) Start(ctx context.Context) error {
	if p.config.Dir == "" {
		return fmt.Errorf("%w: backup watcher needs a directory", historystate.ErrInvalidConfig)
	}
	if err := os.MkdirAll(p.config.Dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(p.config.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", p.config.Dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.watcher = watcher
	p.cancel = cancel

	p.logger.Info("backup watcher started", historystate.LogString("dir", p.config.Dir))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)
	return nil
}

// Shutdown stops the watcher and waits for its loop to exit. Pending
// debounced reads are dropped.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	for name, t := range p.debounces {
		t.Stop()
		delete(p.debounces, name)
	}
	p.mu.Unlock()

	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			session := historystate.SessionOf(event.Name)
			if session == "" {
				continue
			}
			if p.config.Session != "" && session != p.config.Session {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			p.debounceRead(ctx, session)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("backup watcher error", historystate.LogErr(err))
		}
	}
}

func (p *Plugin) debounceRead(ctx context.Context, session string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.debounces[session]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(p.config.DebounceDelay, func() {
		p.mu.Lock()
		if p.debounces[session] == t {
			delete(p.debounces, session)
		}
		p.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		p.read(session)
	})
	p.debounces[session] = t
}

func (p *Plugin) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.debounces)
}

// read decodes the current backup of session and hands it to the handler. A
// session file that was removed, or no longer holds the key, reports
// ErrNoBackup: the backup was consumed.
func (p *Plugin) read(session string) {
	path := historystate.SessionFile(p.config.Dir, session)
	values, err := historystate.ReadSessionFile(path)
	if err != nil {
		p.logger.Warn("unreadable session file", historystate.LogString("session", session), historystate.LogErr(err))
		p.handler(session, nil, err)
		return
	}

	blob, ok := values[p.config.StorageKey]
	if !ok {
		p.handler(session, nil, ErrNoBackup)
		return
	}

	stack, err := historystate.DecodeBackup(blob)
	if err != nil {
		p.logger.Warn("malformed backup", historystate.LogString("session", session), historystate.LogErr(err))
		p.handler(session, nil, err)
		return
	}

	p.logger.Debug("backup updated",
		historystate.LogString("session", session),
		historystate.LogInt("page", stack.Page),
		historystate.LogInt("entries", stack.Len()))
	p.handler(session, stack, nil)
}
