package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bft-labs/historystate/internal/domain"
	"github.com/bft-labs/historystate/internal/ports"
)

// ErrNoRoute is returned when a location matches no route record.
var ErrNoRoute = errors.New("memory: no route matches location")

// RouteRecord declares one route. Path segments starting with ':' are params.
type RouteRecord struct {
	Name string
	Path string
	Meta map[string]any
}

// Router is a minimal router over a Browser. It resolves locations against
// its records, runs guards and commits native entries.
type Router struct {
	browser *Browser
	records []RouteRecord
	push    ports.PushFunc
	guards  []ports.GuardFunc
	current domain.Route

	ctx       context.Context
	cancelPop func()
	popErr    error
}

// NewRouter creates a router for b.
func NewRouter(b *Browser, records ...RouteRecord) *Router {
	r := &Router{
		browser: b,
		records: records,
		ctx:     context.Background(),
	}
	r.push = r.commitPush
	return r
}

// UsePush composes mw around the push primitive.
func (r *Router) UsePush(mw ports.PushMiddleware) {
	r.push = mw(r.push)
}

// BeforeEach registers a guard.
func (r *Router) BeforeEach(guard ports.GuardFunc) {
	r.guards = append(r.guards, guard)
}

// Start resolves the browser's active entry and starts following pop events.
// Pop listeners registered before Start run before the router's own.
func (r *Router) Start(ctx context.Context) error {
	r.ctx = ctx
	if r.cancelPop == nil {
		r.cancelPop = r.browser.OnPopState(r.onPopState)
	}
	return r.navigate(ctx, r.browser.Current().Location)
}

// Stop stops following pop events.
func (r *Router) Stop() {
	if r.cancelPop != nil {
		r.cancelPop()
		r.cancelPop = nil
	}
}

// Push navigates to a new location through the composed push primitive.
func (r *Router) Push(ctx context.Context, to domain.Location) error {
	return r.push(ctx, to)
}

// Current returns the last resolved route.
func (r *Router) Current() domain.Route {
	return r.current
}

// PopErr returns the error of the last pop-driven navigation, if any.
func (r *Router) PopErr() error {
	return r.popErr
}

func (r *Router) commitPush(ctx context.Context, to domain.Location) error {
	route, err := r.Resolve(to)
	if err != nil {
		return err
	}
	if err := r.runGuards(ctx, route); err != nil {
		return err
	}
	r.browser.PushEntry(to)
	r.current = route
	return nil
}

func (r *Router) navigate(ctx context.Context, to domain.Location) error {
	route, err := r.Resolve(to)
	if err != nil {
		return err
	}
	if err := r.runGuards(ctx, route); err != nil {
		return err
	}
	r.current = route
	return nil
}

func (r *Router) onPopState(map[string]any) {
	r.popErr = r.navigate(r.ctx, r.browser.Current().Location)
}

func (r *Router) runGuards(ctx context.Context, to domain.Route) error {
	for _, g := range r.guards {
		if err := g(ctx, to, r.current); err != nil {
			return fmt.Errorf("navigation to %s aborted: %w", to.FullPath, err)
		}
	}
	return nil
}

// Resolve matches to against the route records, by name first and by path
// otherwise.
func (r *Router) Resolve(to domain.Location) (domain.Route, error) {
	for _, rec := range r.records {
		if to.Name != "" {
			if rec.Name != to.Name {
				continue
			}
			path, err := fillParams(rec.Path, to.Params)
			if err != nil {
				return domain.Route{}, err
			}
			return buildRoute(rec, path, stringParams(to.Params), to), nil
		}
		if params, ok := matchPath(rec.Path, to.Path); ok {
			return buildRoute(rec, to.Path, params, to), nil
		}
	}
	return domain.Route{}, fmt.Errorf("%w: name=%q path=%q", ErrNoRoute, to.Name, to.Path)
}

func buildRoute(rec RouteRecord, path string, params map[string]any, to domain.Location) domain.Route {
	query := make(map[string]any, len(to.Query))
	values := url.Values{}
	for k, v := range to.Query {
		query[k] = v
		values.Set(k, v)
	}

	hash := to.Hash
	if hash != "" && !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}

	full := path
	if len(values) > 0 {
		full += "?" + values.Encode()
	}
	full += hash

	return domain.Route{
		Name:     rec.Name,
		Meta:     rec.Meta,
		Path:     path,
		Hash:     hash,
		Query:    query,
		Params:   params,
		FullPath: full,
		Matched:  []string{rec.Name},
	}
}

func fillParams(pattern string, params map[string]string) (string, error) {
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		v, ok := params[s[1:]]
		if !ok {
			return "", fmt.Errorf("%w: missing param %q for %s", ErrNoRoute, s[1:], pattern)
		}
		segs[i] = url.PathEscape(v)
	}
	return strings.Join(segs, "/"), nil
}

func matchPath(pattern, path string) (map[string]any, bool) {
	if path == "" {
		return nil, false
	}
	ps := strings.Split(pattern, "/")
	segs := strings.Split(path, "/")
	if len(ps) != len(segs) {
		return nil, false
	}
	params := map[string]any{}
	for i, p := range ps {
		if strings.HasPrefix(p, ":") {
			v, err := url.PathUnescape(segs[i])
			if err != nil {
				return nil, false
			}
			params[p[1:]] = v
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func stringParams(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
