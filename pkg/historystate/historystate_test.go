package historystate

import (
	"context"
	"errors"
	"testing"
)

var routes = []RouteRecord{
	{Name: "home", Path: "/"},
	{Name: "search", Path: "/search"},
	{Name: "result", Path: "/result/:id"},
}

type searchView struct {
	term string
}

func (v *searchView) BackupData() Snapshot {
	return Snapshot{"term": v.term}
}

type plainView struct{}

type recordingHandler struct {
	BaseEventHandler
	transitions []TransitionEvent
	restores    []RestoreEvent
}

func (r *recordingHandler) OnTransition(e TransitionEvent) { r.transitions = append(r.transitions, e) }
func (r *recordingHandler) OnRestore(e RestoreEvent)       { r.restores = append(r.restores, e) }

func start(t *testing.T, b *Browser, cfg Config, opts ...Option) (*HistoryState, *Router) {
	t.Helper()
	ctx := context.Background()
	hs, err := New(ctx, cfg, append([]Option{WithBrowser(b)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(hs.Close)
	r := NewRouter(b, routes...)
	hs.Install(r)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return hs, r
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage key", func(c *Config) { c.StorageKey = "" }},
		{"empty query key", func(c *Config) { c.QueryKey = "" }},
		{"empty state key", func(c *Config) { c.StateKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.StorageKey != DefaultStorageKey || cfg.QueryKey != DefaultQueryKey || cfg.StateKey != DefaultStateKey {
		t.Errorf("SetDefaults() = %+v", cfg)
	}
}

func TestNew_ReloadableNeedsStorage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reloadable = true

	if _, err := New(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestHistoryState_MountAndRestore(t *testing.T) {
	ctx := context.Background()
	b := NewBrowser(Location{Path: "/"}, nil)
	hs, r := start(t, b, DefaultConfig())

	view := &searchView{term: "go"}
	if err := r.Push(ctx, Location{Name: "search"}); err != nil {
		t.Fatal(err)
	}
	hs.Mount(view)
	view.term = "golang"

	if err := r.Push(ctx, Location{Name: "result", Params: map[string]string{"id": "1"}}); err != nil {
		t.Fatal(err)
	}
	hs.Mount(plainView{})

	if off, ok := hs.BackIndexOf(map[string]any{"name": "search"}); !ok || off != -1 {
		t.Errorf("BackIndexOf(search) = (%d, %v)", off, ok)
	}

	b.Back()
	if hs.Action() != ActionBack || hs.Route().Name != "search" {
		t.Fatalf("after back: action=%s route=%+v", hs.Action(), hs.Route())
	}
	if hs.Data()["term"] != "golang" {
		t.Errorf("Data() = %v, want the term captured on leave", hs.Data())
	}
}

func TestHistoryState_ReloadableRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Reloadable = true
	b := NewBrowser(Location{Path: "/"}, nil)

	handler := &recordingHandler{}
	hs, r := start(t, b, cfg, WithEventHandler(handler))
	if err := r.Push(ctx, Location{Name: "search"}); err != nil {
		t.Fatal(err)
	}
	hs.Mount(&searchView{term: "kept"})

	b.Unload()

	next, _ := start(t, b, cfg, WithEventHandler(handler))
	if next.Action() != ActionReload || next.Page() != 1 {
		t.Fatalf("after reload: action=%s page=%d", next.Action(), next.Page())
	}
	if next.Data()["term"] != "kept" {
		t.Errorf("Data() after reload = %v", next.Data())
	}

	if len(handler.restores) != 2 || handler.restores[0].Action != ActionNew || handler.restores[1].Action != ActionReload {
		t.Errorf("restores = %+v", handler.restores)
	}
	if len(handler.transitions) != 1 || handler.transitions[0] != (TransitionEvent{Action: ActionPush, From: 0, To: 1}) {
		t.Errorf("transitions = %+v", handler.transitions)
	}
}

func TestPeekBackup(t *testing.T) {
	ctx := context.Background()
	s := NewFileStorage(t.TempDir(), "s1")

	stack, err := PeekBackup(ctx, s, DefaultStorageKey)
	if err != nil || stack != nil {
		t.Fatalf("PeekBackup on empty storage = (%v, %v)", stack, err)
	}

	if err := s.Set(ctx, DefaultStorageKey, `{"page":0,"routes":[{"name":"home"}],"datas":[null]}`); err != nil {
		t.Fatal(err)
	}
	stack, err = PeekBackup(ctx, s, DefaultStorageKey)
	if err != nil || stack == nil || stack.Route().Name != "home" {
		t.Fatalf("PeekBackup() = (%+v, %v)", stack, err)
	}
	if _, ok, _ := s.Get(ctx, DefaultStorageKey); !ok {
		t.Error("PeekBackup must not consume the backup")
	}
}

func TestContext(t *testing.T) {
	b := NewBrowser(Location{Path: "/"}, nil)
	hs, _ := start(t, b, DefaultConfig())

	ctx := NewContext(context.Background(), hs.Reader())
	r, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext() found no reader")
	}
	if r.Action() != ActionNew || r.Route().Name != "home" {
		t.Errorf("reader: action=%s route=%+v", r.Action(), r.Route())
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext() on a bare context should find nothing")
	}
}
