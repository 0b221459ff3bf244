package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

func TestBrowser_PushAndGo(t *testing.T) {
	b := NewBrowser(domain.Location{Path: "/"}, nil)
	b.PushEntry(domain.Location{Path: "/a"})
	b.PushEntry(domain.Location{Path: "/b"})

	if b.Len() != 3 || b.Index() != 2 {
		t.Fatalf("Len()=%d Index()=%d, want 3 and 2", b.Len(), b.Index())
	}

	var popped []map[string]any
	b.OnPopState(func(state map[string]any) { popped = append(popped, state) })

	b.entries[0].State = map[string]any{"page": 0}
	if !b.Go(-2) {
		t.Fatal("Go(-2) should succeed")
	}
	if b.Current().Location.Path != "/" {
		t.Errorf("Current() = %+v", b.Current())
	}
	if len(popped) != 1 || popped[0]["page"] != 0 {
		t.Errorf("popped = %v", popped)
	}

	if b.Back() {
		t.Error("Back() at the first entry should do nothing")
	}
	if len(popped) != 1 {
		t.Error("no pop event expected for a refused move")
	}

	b.PushEntry(domain.Location{Path: "/c"})
	if b.Len() != 2 || b.Forward() {
		t.Errorf("push should drop forward entries, Len()=%d", b.Len())
	}
}

func TestBrowser_ListenersAndUnload(t *testing.T) {
	b := NewBrowser(domain.Location{Path: "/"}, nil)
	b.PushEntry(domain.Location{Path: "/a"})

	pops, unloads := 0, 0
	cancel := b.OnPopState(func(map[string]any) { pops++ })
	b.OnUnload(func() { unloads++ })
	cancelUnload := b.OnUnload(func() { unloads += 10 })

	cancelUnload()
	b.Back()
	cancel()
	b.Forward()
	if pops != 1 {
		t.Errorf("pops = %d, want 1", pops)
	}

	b.Unload()
	if unloads != 1 {
		t.Errorf("unloads = %d, want 1", unloads)
	}
	b.Unload()
	if unloads != 1 {
		t.Error("listeners must be dropped after unload")
	}
	if b.Len() != 2 || b.Index() != 1 {
		t.Error("entries must survive unload")
	}
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("empty storage should not hold k")
	}
	_ = s.Set(ctx, "k", "v")
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("Get() = (%q, %v)", v, ok)
	}
	_ = s.Remove(ctx, "k")
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("k should be removed")
	}
}

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter(NewBrowser(domain.Location{Path: "/"}, nil),
		RouteRecord{Name: "home", Path: "/"},
		RouteRecord{Name: "detail", Path: "/items/:id", Meta: map[string]any{"auth": true}},
	)

	route, err := r.Resolve(domain.Location{
		Name:   "detail",
		Params: map[string]string{"id": "7"},
		Query:  map[string]string{"tab": "info", "_p": "2"},
		Hash:   "top",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if route.Path != "/items/7" || route.Params["id"] != "7" || route.Meta["auth"] != true {
		t.Errorf("route = %+v", route)
	}
	if route.FullPath != "/items/7?_p=2&tab=info#top" {
		t.Errorf("FullPath = %q", route.FullPath)
	}

	route, err = r.Resolve(domain.Location{Path: "/items/9"})
	if err != nil || route.Name != "detail" || route.Params["id"] != "9" {
		t.Errorf("Resolve by path = %+v, %v", route, err)
	}

	if _, err := r.Resolve(domain.Location{Path: "/nope"}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("Resolve(/nope) error = %v, want ErrNoRoute", err)
	}
	if _, err := r.Resolve(domain.Location{Name: "detail"}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("Resolve without params error = %v, want ErrNoRoute", err)
	}
}

func TestRouter_PushRunsMiddlewareAndGuards(t *testing.T) {
	ctx := context.Background()
	b := NewBrowser(domain.Location{Path: "/"}, nil)
	r := NewRouter(b, RouteRecord{Name: "home", Path: "/"}, RouteRecord{Name: "a", Path: "/a"})

	var trace []string
	r.UsePush(func(next ports.PushFunc) ports.PushFunc {
		return func(ctx context.Context, to domain.Location) error {
			trace = append(trace, "push")
			return next(ctx, to)
		}
	})
	r.BeforeEach(func(ctx context.Context, to, from domain.Route) error {
		trace = append(trace, "guard:"+from.Name+">"+to.Name)
		return nil
	})

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Push(ctx, domain.Location{Name: "a"}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	b.Back()

	want := []string{"guard:>home", "push", "guard:home>a", "guard:a>home"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
	if r.Current().Name != "home" || r.PopErr() != nil {
		t.Errorf("Current()=%+v PopErr()=%v", r.Current(), r.PopErr())
	}
}
