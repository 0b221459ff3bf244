package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Stack is the navigation stack: one route descriptor and one data snapshot
// per page, and the index of the active page.
//
// Between navigations len(Routes) == len(Datas) and Page < len(Routes). After
// a back navigation the entries past Page are kept so a later forward
// navigation can find them again.
type Stack struct {
	Page   int                `json:"page"`
	Routes []*RouteDescriptor `json:"routes"`
	Datas  []Snapshot         `json:"datas"`
}

// NewStack returns a fresh single-entry stack.
func NewStack() *Stack {
	return &Stack{
		Page:   0,
		Routes: make([]*RouteDescriptor, 1),
		Datas:  make([]Snapshot, 1),
	}
}

// Len returns the number of entries on the stack.
func (s *Stack) Len() int {
	return len(s.Routes)
}

// Enter advances to a new page. Entries after the current page are dropped and
// the new top entry is empty until a route is recorded for it.
func (s *Stack) Enter() {
	s.Page++
	s.Routes = resize(s.Routes, s.Page+1)
	s.Routes[s.Page] = nil
	s.Datas = resize(s.Datas, s.Page+1)
	s.Datas[s.Page] = nil
}

// MoveTo points the stack at page. A page beyond the last entry grows both
// sequences with empty entries up to it.
func (s *Stack) MoveTo(page int) {
	s.Page = page
	s.grow(page + 1)
}

// Route returns the descriptor stored for the active page, or nil.
func (s *Stack) Route() *RouteDescriptor {
	if s.Page < 0 || s.Page >= len(s.Routes) {
		return nil
	}
	return s.Routes[s.Page]
}

// Data returns the snapshot stored for the active page, or nil.
func (s *Stack) Data() Snapshot {
	if s.Page < 0 || s.Page >= len(s.Datas) {
		return nil
	}
	return s.Datas[s.Page]
}

// SetRoute replaces the descriptor of the active page.
func (s *Stack) SetRoute(d *RouteDescriptor) {
	s.grow(s.Page + 1)
	s.Routes[s.Page] = d
}

// SetData replaces the snapshot of the active page.
func (s *Stack) SetData(d Snapshot) {
	s.grow(s.Page + 1)
	s.Datas[s.Page] = d
}

// BackIndexOf scans the pages before the active one, nearest first, for a
// descriptor containing partial. It returns the offset of the match relative
// to the active page (always negative) and true, or 0 and false.
func (s *Stack) BackIndexOf(partial map[string]any) (int, bool) {
	for pos := s.Page - 1; pos >= 0; pos-- {
		if pos >= len(s.Routes) {
			continue
		}
		if Contains(s.Routes[pos].AsMap(), partial) {
			return pos - s.Page, true
		}
	}
	return 0, false
}

// Validate checks the structural invariants a restored stack must satisfy.
func (s *Stack) Validate() error {
	if s.Page < 0 {
		return fmt.Errorf("%w: negative page %d", ErrIllegalHistoryData, s.Page)
	}
	if s.Page >= len(s.Routes) || s.Page >= len(s.Datas) {
		return fmt.Errorf("%w: page %d beyond %d routes / %d datas",
			ErrIllegalHistoryData, s.Page, len(s.Routes), len(s.Datas))
	}
	return nil
}

// Encode serializes the stack for backup storage.
func (s *Stack) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// wireStack distinguishes missing fields from zero values while decoding.
type wireStack struct {
	Page   *float64            `json:"page"`
	Routes *[]*RouteDescriptor `json:"routes"`
	Datas  *[]Snapshot         `json:"datas"`
}

// DecodeStack parses a backup blob. Every failure wraps ErrIllegalHistoryData.
// Routes and datas of unequal length are padded with empty entries.
func DecodeStack(data []byte) (*Stack, error) {
	var w wireStack
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalHistoryData, err)
	}
	if w.Page == nil || *w.Page != math.Trunc(*w.Page) || math.IsInf(*w.Page, 0) {
		return nil, fmt.Errorf("%w: page is not an integer", ErrIllegalHistoryData)
	}
	if w.Routes == nil || *w.Routes == nil {
		return nil, fmt.Errorf("%w: routes is not a sequence", ErrIllegalHistoryData)
	}
	if w.Datas == nil || *w.Datas == nil {
		return nil, fmt.Errorf("%w: datas is not a sequence", ErrIllegalHistoryData)
	}
	if *w.Page > math.MaxInt32 {
		return nil, fmt.Errorf("%w: page %v too large", ErrIllegalHistoryData, *w.Page)
	}

	s := &Stack{
		Page:   int(*w.Page),
		Routes: *w.Routes,
		Datas:  *w.Datas,
	}
	s.grow(max(len(s.Routes), len(s.Datas)))
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// grow pads routes and datas with empty entries to at least n each. It never
// shrinks them.
func (s *Stack) grow(n int) {
	if len(s.Routes) < n {
		s.Routes = resize(s.Routes, n)
	}
	if len(s.Datas) < n {
		s.Datas = resize(s.Datas, n)
	}
}

// resize returns s with length n, zeroing any slots it adds.
func resize[T any](s []T, n int) []T {
	if n <= len(s) {
		return s[:n]
	}
	return append(s, make([]T, n-len(s))...)
}
