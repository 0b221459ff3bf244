package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewStack(t *testing.T) {
	s := NewStack()

	if s.Page != 0 {
		t.Errorf("Page = %d, want 0", s.Page)
	}
	if len(s.Routes) != 1 || len(s.Datas) != 1 {
		t.Fatalf("len(Routes)=%d len(Datas)=%d, want 1 and 1", len(s.Routes), len(s.Datas))
	}
	if s.Route() != nil || s.Data() != nil {
		t.Errorf("fresh stack should hold empty entries")
	}
}

func TestStack_EnterGrowsStack(t *testing.T) {
	for n := 0; n <= 6; n++ {
		s := NewStack()
		for i := 0; i < n; i++ {
			s.Enter()
		}
		if s.Page != n {
			t.Errorf("after %d enters Page = %d", n, s.Page)
		}
		if len(s.Routes) != n+1 || len(s.Datas) != n+1 {
			t.Errorf("after %d enters len(Routes)=%d len(Datas)=%d, want %d",
				n, len(s.Routes), len(s.Datas), n+1)
		}
	}
}

func TestStack_EnterTruncatesForwardEntries(t *testing.T) {
	s := NewStack()
	for i := 0; i < 4; i++ {
		s.SetRoute(&RouteDescriptor{Name: string(rune('a' + i))})
		s.SetData(Snapshot{"i": i})
		s.Enter()
	}
	s.SetRoute(&RouteDescriptor{Name: "e"})
	s.MoveTo(2)

	s.Enter()

	if s.Page != 3 {
		t.Fatalf("Page = %d, want 3", s.Page)
	}
	if len(s.Routes) != 4 || len(s.Datas) != 4 {
		t.Fatalf("len(Routes)=%d len(Datas)=%d, want 4", len(s.Routes), len(s.Datas))
	}
	if s.Routes[3] != nil || s.Datas[3] != nil {
		t.Errorf("new top entry should be empty, got %v / %v", s.Routes[3], s.Datas[3])
	}
	if s.Routes[2].Name != "c" {
		t.Errorf("Routes[2].Name = %q, want c", s.Routes[2].Name)
	}
}

func TestStack_BackIndexOf(t *testing.T) {
	s := &Stack{
		Page: 3,
		Routes: []*RouteDescriptor{
			{Name: "list", Query: map[string]any{"page": "1"}},
			{Name: "detail", Params: map[string]any{"id": "7"}},
			{Name: "list", Query: map[string]any{"page": "2"}},
			{Name: "detail", Params: map[string]any{"id": "9"}},
		},
		Datas: make([]Snapshot, 4),
	}

	tests := []struct {
		name    string
		partial map[string]any
		want    int
		wantOK  bool
	}{
		{"nearest match wins", map[string]any{"name": "list"}, -1, true},
		{"nested query", map[string]any{"name": "list", "query": map[string]any{"page": "1"}}, -3, true},
		{"params", map[string]any{"params": map[string]any{"id": "7"}}, -2, true},
		{"current page is skipped", map[string]any{"params": map[string]any{"id": "9"}}, 0, false},
		{"no match", map[string]any{"name": "settings"}, 0, false},
		{"unknown key", map[string]any{"title": "x"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.BackIndexOf(tt.partial)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("BackIndexOf() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStack_BackIndexOfSkipsEmptyEntries(t *testing.T) {
	s := &Stack{
		Page:   2,
		Routes: []*RouteDescriptor{{Name: "a"}, nil, {Name: "c"}},
		Datas:  make([]Snapshot, 3),
	}
	got, ok := s.BackIndexOf(map[string]any{"name": "a"})
	if !ok || got != -2 {
		t.Errorf("BackIndexOf() = (%d, %v), want (-2, true)", got, ok)
	}
}

func TestDecodeStack_Valid(t *testing.T) {
	blob := `{
		"page": 2,
		"routes": [{"name":"r0"}, {"name":"r1"}, {"name":"r2","query":{"q":"x"}}],
		"datas": [{"scroll":1}, null, {"scroll":3}]
	}`

	s, err := DecodeStack([]byte(blob))
	if err != nil {
		t.Fatalf("DecodeStack() error = %v", err)
	}
	if s.Page != 2 {
		t.Errorf("Page = %d, want 2", s.Page)
	}
	if got := s.Route().Name; got != "r2" {
		t.Errorf("Route().Name = %q, want r2", got)
	}
	if s.Datas[1] != nil {
		t.Errorf("Datas[1] = %v, want nil", s.Datas[1])
	}
	if !reflect.DeepEqual(s.Data(), Snapshot{"scroll": float64(3)}) {
		t.Errorf("Data() = %v", s.Data())
	}
}

func TestDecodeStack_PadsUnevenSequences(t *testing.T) {
	s, err := DecodeStack([]byte(`{"page":1,"routes":[null,null,null],"datas":[null,null]}`))
	if err != nil {
		t.Fatalf("DecodeStack() error = %v", err)
	}
	if len(s.Routes) != 3 || len(s.Datas) != 3 {
		t.Errorf("len(Routes)=%d len(Datas)=%d, want 3", len(s.Routes), len(s.Datas))
	}
}

func TestDecodeStack_PadsBeforeRangeCheck(t *testing.T) {
	s, err := DecodeStack([]byte(`{"page":2,"routes":[null,null,{"name":"list"}],"datas":[null]}`))
	if err != nil {
		t.Fatalf("DecodeStack() error = %v", err)
	}
	if s.Page != 2 || s.Route().Name != "list" || len(s.Datas) != 3 {
		t.Errorf("DecodeStack() = page %d route %+v datas %d", s.Page, s.Route(), len(s.Datas))
	}
}

func TestStack_MoveToGrowsBothSequences(t *testing.T) {
	s := NewStack()
	s.MoveTo(2)

	if len(s.Routes) != 3 || len(s.Datas) != 3 {
		t.Fatalf("len(Routes)=%d len(Datas)=%d, want 3", len(s.Routes), len(s.Datas))
	}
	s.SetRoute(&RouteDescriptor{Name: "deep"})
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	s.MoveTo(0)
	if s.Len() != 3 {
		t.Errorf("moving back must keep forward entries, Len() = %d", s.Len())
	}
}

func TestDecodeStack_Invalid(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", `{{`},
		{"page is a string", `{"page":"x","routes":[null],"datas":[null]}`},
		{"page is fractional", `{"page":0.5,"routes":[null],"datas":[null]}`},
		{"missing page", `{"routes":[null],"datas":[null]}`},
		{"missing routes", `{"page":0,"datas":[null]}`},
		{"null routes", `{"page":0,"routes":null,"datas":[null]}`},
		{"routes is an object", `{"page":0,"routes":{},"datas":[null]}`},
		{"missing datas", `{"page":0,"routes":[null]}`},
		{"page beyond entries", `{"page":3,"routes":[null],"datas":[null]}`},
		{"negative page", `{"page":-1,"routes":[null],"datas":[null]}`},
		{"route is a number", `{"page":0,"routes":[1],"datas":[null]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStack([]byte(tt.blob))
			if !errors.Is(err, ErrIllegalHistoryData) {
				t.Errorf("DecodeStack() error = %v, want ErrIllegalHistoryData", err)
			}
		})
	}
}

func TestStack_EncodeDecode(t *testing.T) {
	s := NewStack()
	s.SetRoute(&RouteDescriptor{Name: "home", Path: "/", FullPath: "/"})
	s.SetData(Snapshot{"scroll": 10})
	s.Enter()
	s.SetRoute(&RouteDescriptor{Name: "about", Path: "/about", FullPath: "/about"})

	b, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := DecodeStack(b)
	if err != nil {
		t.Fatalf("DecodeStack() error = %v", err)
	}
	if got.Page != 1 || got.Len() != 2 {
		t.Fatalf("decoded page=%d len=%d", got.Page, got.Len())
	}
	if got.Routes[0].Name != "home" || got.Route().Path != "/about" {
		t.Errorf("routes not preserved: %+v %+v", got.Routes[0], got.Route())
	}
	if got.Datas[0]["scroll"] != float64(10) {
		t.Errorf("Datas[0] = %v", got.Datas[0])
	}
}

func TestDirectionTo(t *testing.T) {
	if got := DirectionTo(2, 0); got != ActionBack {
		t.Errorf("DirectionTo(2, 0) = %s, want back", got)
	}
	if got := DirectionTo(2, 5); got != ActionForward {
		t.Errorf("DirectionTo(2, 5) = %s, want forward", got)
	}
	if got := DirectionTo(2, 2); got != ActionBack {
		t.Errorf("DirectionTo(2, 2) = %s, want back", got)
	}
}
