package simulate

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/bft-labs/historystate/pkg/historystate"
)

// Options configures a scenario run.
type Options struct {
	Config historystate.Config

	// Storage is the browser's session storage. Default: in memory.
	Storage historystate.Storage

	Logger historystate.Logger

	// Handlers receive the events of every page load.
	Handlers []historystate.EventHandler
}

// Result is the observable state after one step.
type Result struct {
	Step     int
	Op       string
	Action   historystate.Action
	Page     int
	Entries  int
	Route    string
	FullPath string
	Data     historystate.Snapshot

	// Moved is false for back/forward/go steps the browser could not take.
	Moved bool

	// Offset and Found are set by match steps.
	Offset int
	Found  bool
}

// String formats r as one line of a run log.
func (r Result) String() string {
	line := fmt.Sprintf("%2d %-8s action=%-7s page=%d/%d route=%s path=%s",
		r.Step, r.Op, r.Action, r.Page, r.Entries, r.Route, r.FullPath)
	if !r.Moved {
		line += " (no entry)"
	}
	if r.Op == OpMatch {
		line += fmt.Sprintf(" offset=%d found=%t", r.Offset, r.Found)
	}
	if r.Data != nil {
		line += fmt.Sprintf(" data=%v", map[string]any(r.Data))
	}
	return line
}

type session struct {
	scenario *Scenario
	opts     Options
	browser  *historystate.Browser
	state    *historystate.HistoryState
	router   *historystate.Router
}

// Run plays sc step by step. The result of the initial page load comes first,
// with Step 0 and Op "load".
func Run(ctx context.Context, sc *Scenario, opts Options) ([]Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if sc.Reloadable != nil {
		opts.Config.Reloadable = *sc.Reloadable
	}
	if opts.Logger == nil {
		opts.Logger = historystate.NewNoopLogger()
	}

	s := &session{
		scenario: sc,
		opts:     opts,
		browser:  historystate.NewBrowser(historystate.Location{Path: sc.startPath()}, opts.Storage),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	defer s.close()

	results := []Result{s.result(0, "load", true)}
	for i, step := range sc.Steps {
		r, err := s.apply(ctx, i+1, step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// RunTo plays sc and writes one line per result to w.
func RunTo(ctx context.Context, w io.Writer, sc *Scenario, opts Options) error {
	results, err := Run(ctx, sc, opts)
	for _, r := range results {
		fmt.Fprintln(w, r)
	}
	return err
}

func (s *session) apply(ctx context.Context, n int, step Step) (Result, error) {
	moved := true
	var offset int
	var found bool

	switch step.Op {
	case OpPush:
		to := historystate.Location{
			Name:   step.Name,
			Path:   step.Path,
			Params: step.Params,
			Query:  step.Query,
			Hash:   step.Hash,
		}
		if err := s.router.Push(ctx, to); err != nil {
			return Result{}, err
		}
		s.mount()
	case OpBack:
		moved = s.browser.Back()
	case OpForward:
		moved = s.browser.Forward()
	case OpGo:
		moved = s.browser.Go(step.Delta)
	case OpReload:
		s.browser.Unload()
		s.close()
		if err := s.load(ctx); err != nil {
			return Result{}, err
		}
	case OpSnapshot:
		data := maps.Clone(step.Data)
		s.state.MountFunc(func() historystate.Snapshot {
			return maps.Clone(data)
		})
	case OpMatch:
		offset, found = s.state.BackIndexOf(step.Partial)
	}

	if moved && isPop(step.Op) {
		if err := s.router.PopErr(); err != nil {
			return Result{}, err
		}
		s.mount()
	}

	r := s.result(n, step.Op, moved)
	r.Offset, r.Found = offset, found
	return r, nil
}

// load starts a page load on the current browser entry.
func (s *session) load(ctx context.Context) error {
	opts := []historystate.Option{
		historystate.WithBrowser(s.browser),
		historystate.WithLogger(s.opts.Logger),
	}
	for _, h := range s.opts.Handlers {
		opts = append(opts, historystate.WithEventHandler(h))
	}

	state, err := historystate.New(ctx, s.opts.Config, opts...)
	if err != nil {
		return err
	}

	records := make([]historystate.RouteRecord, 0, len(s.scenario.Routes))
	for _, r := range s.scenario.Routes {
		records = append(records, historystate.RouteRecord{Name: r.Name, Path: r.Path, Meta: r.Meta})
	}
	router := historystate.NewRouter(s.browser, records...)
	state.Install(router)
	if err := router.Start(ctx); err != nil {
		state.Close()
		return err
	}

	s.state, s.router = state, router
	s.mount()
	return nil
}

// mount registers a view without data for the page just shown, as every
// mounted view does. A following snapshot step replaces it.
func (s *session) mount() {
	s.state.MountFunc(nil)
}

func (s *session) close() {
	if s.router != nil {
		s.router.Stop()
	}
	if s.state != nil {
		s.state.Close()
	}
}

func (s *session) result(n int, op string, moved bool) Result {
	r := Result{
		Step:    n,
		Op:      op,
		Action:  s.state.Action(),
		Page:    s.state.Page(),
		Entries: s.state.Stack().Len(),
		Data:    s.state.Data(),
		Moved:   moved,
	}
	if route := s.state.Route(); route != nil {
		r.Route = route.Name
		r.FullPath = route.FullPath
	}
	return r
}

func isPop(op string) bool {
	return op == OpBack || op == OpForward || op == OpGo
}
