package domain

import "maps"

// Route is the resolved route a router hands to its pre-navigation hooks.
type Route struct {
	Name     string
	Meta     map[string]any
	Path     string
	Hash     string
	Query    map[string]any
	Params   map[string]any
	FullPath string

	// Matched lists the names of the route records that matched. It is not
	// captured into a RouteDescriptor.
	Matched []string
}

// RouteDescriptor is the snapshot of a navigated-to route stored on the stack.
// Meta and Query are shallow copies taken when the route resolved; Params is
// shared with the route it was taken from.
type RouteDescriptor struct {
	Name     string         `json:"name"`
	Meta     map[string]any `json:"meta"`
	Path     string         `json:"path"`
	Hash     string         `json:"hash"`
	Query    map[string]any `json:"query"`
	Params   map[string]any `json:"params"`
	FullPath string         `json:"fullPath"`
}

// DescriptorOf captures the descriptor fields of r.
func DescriptorOf(r Route) *RouteDescriptor {
	return &RouteDescriptor{
		Name:     r.Name,
		Meta:     shallowCopy(r.Meta),
		Path:     r.Path,
		Hash:     r.Hash,
		Query:    shallowCopy(r.Query),
		Params:   r.Params,
		FullPath: r.FullPath,
	}
}

// AsMap exposes the descriptor as a value tree keyed by its JSON field names,
// suitable for Contains.
func (d *RouteDescriptor) AsMap() map[string]any {
	if d == nil {
		return nil
	}
	return map[string]any{
		"name":     d.Name,
		"meta":     d.Meta,
		"path":     d.Path,
		"hash":     d.Hash,
		"query":    d.Query,
		"params":   d.Params,
		"fullPath": d.FullPath,
	}
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	maps.Copy(out, m)
	return out
}

// Location is the target of an outgoing push.
type Location struct {
	Name   string
	Path   string
	Hash   string
	Query  map[string]string
	Params map[string]string
}

// LocationFromString turns a bare string target into a named location.
func LocationFromString(s string) Location {
	return Location{Name: s}
}

// WithQuery returns a copy of l whose query carries key=value in addition to
// the existing parameters. The receiver's query map is not modified.
func (l Location) WithQuery(key, value string) Location {
	q := make(map[string]string, len(l.Query)+1)
	maps.Copy(q, l.Query)
	q[key] = value
	l.Query = q
	return l
}
