// Package pagination tracks the page of a server-paginated list that is
// currently held in memory.
package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/Brownie44l1/propvest/internal/models"
)

// DefaultPageSize is used when a controller is created with a non-positive limit.
const DefaultPageSize = 12

// ErrSuperseded is returned to a caller whose response arrived after a newer
// request was issued. The response was discarded.
var ErrSuperseded = errors.New("page request superseded by a newer request")

// Fetcher loads one page from the backend.
type Fetcher[T any] func(ctx context.Context, q models.PageQuery) (*models.Page[T], error)

// State is derived from the latest applied response envelope.
type State struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalCount   int `json:"totalCount"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Controller replaces its items with every applied page; it never
// accumulates across pages. The last issued request wins.
type Controller[T any] struct {
	fetch Fetcher[T]

	mu         sync.Mutex
	generation uint64
	inFlight   int
	items      []T
	state      State
}

// New creates a controller fetching limit items per page.
func New[T any](fetch Fetcher[T], limit int) *Controller[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Controller[T]{
		fetch: fetch,
		state: State{ItemsPerPage: limit},
	}
}

// RequestPage fetches page n and applies the response unless a newer request
// has been issued in the meantime.
func (c *Controller[T]) RequestPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	limit := c.state.ItemsPerPage
	c.inFlight++
	c.mu.Unlock()

	page, err := c.fetch(ctx, models.PageQuery{Page: n, Limit: limit})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if gen != c.generation {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}

	c.items = page.Data
	if c.items == nil {
		c.items = []T{}
	}
	c.state.CurrentPage = page.CurrentPage
	if c.state.CurrentPage == 0 {
		c.state.CurrentPage = n
	}
	c.state.TotalPages = page.Pages
	c.state.TotalCount = page.Total
	return nil
}

// Reload re-requests the current page.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.RequestPage(ctx, c.State().CurrentPage)
}

// Next requests the following page if there is one.
func (c *Controller[T]) Next(ctx context.Context) error {
	s := c.State()
	if s.CurrentPage >= s.TotalPages {
		return nil
	}
	return c.RequestPage(ctx, s.CurrentPage+1)
}

// Prev requests the previous page if there is one.
func (c *Controller[T]) Prev(ctx context.Context) error {
	s := c.State()
	if s.CurrentPage <= 1 {
		return nil
	}
	return c.RequestPage(ctx, s.CurrentPage-1)
}

// Items returns a copy of the current page.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// State returns the current pagination state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsLoading reports whether any request is still in flight.
func (c *Controller[T]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Mutate applies a local edit to the current page, e.g. an optimistic
// update. It does not invalidate in-flight requests.
func (c *Controller[T]) Mutate(fn func(items []T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(c.items)
}
