// Package view derives filtered, sorted views of an already loaded result set.
//
// Apply never performs I/O, so it can run on every keystroke. It only sees the
// page currently held in memory: filtering a server-paginated collection is
// page-local, not global.
package view

import (
	"slices"
	"strings"

	"github.com/Brownie44l1/propvest/internal/models"
)

// All is the sentinel selection that disables a categorical filter.
const All = "all"

type SortKey string

const (
	SortDefault    SortKey = "default"
	SortTrending   SortKey = "trending"
	SortFeatured   SortKey = "featured"
	SortPriceHigh  SortKey = "price-high"
	SortPriceLow   SortKey = "price-low"
	SortReturnHigh SortKey = "return-high"
	SortReturnLow  SortKey = "return-low"
	SortFundedHigh SortKey = "funded-high"
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
)

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether Min <= Max.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

// Normalize swaps inverted bounds.
func (r Range) Normalize() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Covers reports whether r includes all of o.
func (r Range) Covers(o Range) bool {
	return r.Min <= o.Min && r.Max >= o.Max
}

// Filters is the filter descriptor driving a derived view.
type Filters struct {
	Search     string            `json:"search"`
	Categories map[string]string `json:"categories,omitempty"`
	Ranges     map[string]Range  `json:"ranges,omitempty"`
	Toggles    map[string]bool   `json:"toggles,omitempty"`
	SortBy     SortKey           `json:"sortBy"`
	ViewMode   ViewMode          `json:"viewMode"`
}

// Validate checks the preconditions Apply relies on. Inverted ranges must be
// rejected or normalized before they reach the engine.
func (f Filters) Validate() error {
	for name, r := range f.Ranges {
		if !r.Valid() {
			return models.NewFieldError(name, models.ErrInvertedRange)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate maps safely.
func (f Filters) Clone() Filters {
	out := f
	if f.Categories != nil {
		out.Categories = make(map[string]string, len(f.Categories))
		for k, v := range f.Categories {
			out.Categories[k] = v
		}
	}
	if f.Ranges != nil {
		out.Ranges = make(map[string]Range, len(f.Ranges))
		for k, v := range f.Ranges {
			out.Ranges[k] = v
		}
	}
	if f.Toggles != nil {
		out.Toggles = make(map[string]bool, len(f.Toggles))
		for k, v := range f.Toggles {
			out.Toggles[k] = v
		}
	}
	return out
}

type Match int

const (
	MatchExact Match = iota
	MatchContains
)

// Category reads a categorical field.
type Category[T any] struct {
	Value func(T) string
	Match Match
}

// Numeric reads a numeric field. ok is false when the entity has no value.
type Numeric[T any] struct {
	Value  func(T) (v float64, ok bool)
	Domain Range
}

// Schema maps filter descriptor names onto an entity type.
type Schema[T any] struct {
	Text       func(T) []string
	Categories map[string]Category[T]
	Numbers    map[string]Numeric[T]
	Toggles    map[string]func(T) bool
	Sorts      map[SortKey]func(a, b T) int
}

// Apply returns the subset of items matching f, ordered by f.SortBy.
// items is never modified. Unknown sort keys keep the input order.
func Apply[T any](items []T, f Filters, s Schema[T]) []T {
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesSearch(item, query, s) &&
			matchesCategories(item, f, s) &&
			matchesRanges(item, f, s) &&
			matchesToggles(item, f, s) {
			out = append(out, item)
		}
	}

	if cmp, ok := s.Sorts[f.SortBy]; ok {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matchesSearch[T any](item T, query string, s Schema[T]) bool {
	if query == "" || s.Text == nil {
		return true
	}
	for _, field := range s.Text(item) {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func matchesCategories[T any](item T, f Filters, s Schema[T]) bool {
	for name, want := range f.Categories {
		if want == "" || strings.EqualFold(want, All) {
			continue
		}
		c, ok := s.Categories[name]
		if !ok {
			continue
		}
		got := c.Value(item)
		switch c.Match {
		case MatchContains:
			if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
				return false
			}
		default:
			if !strings.EqualFold(got, want) {
				return false
			}
		}
	}
	return true
}

func matchesRanges[T any](item T, f Filters, s Schema[T]) bool {
	for name, r := range f.Ranges {
		n, ok := s.Numbers[name]
		if !ok || r.Covers(n.Domain) {
			continue
		}
		v, present := n.Value(item)
		if !present || !r.Contains(v) {
			return false
		}
	}
	return true
}

func matchesToggles[T any](item T, f Filters, s Schema[T]) bool {
	for name, on := range f.Toggles {
		if !on {
			continue
		}
		pred, ok := s.Toggles[name]
		if ok && !pred(item) {
			return false
		}
	}
	return true
}
