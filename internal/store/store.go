// Package store is the generic resource store shared by every listing
// domain: one paginated page of entities, a filter descriptor, the derived
// filtered view and CRUD with optimistic local edits.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/pagination"
	"github.com/Brownie44l1/propvest/internal/view"
	"go.uber.org/zap"
)

// Config describes one domain.
type Config[T any] struct {
	Name     string
	Path     string
	Schema   view.Schema[T]
	Defaults func() view.Filters
	PageSize int
	ID       func(T) string
}

// Remote is the endpoint set a store talks to; backend.Resource implements it.
type Remote[T any] interface {
	List(ctx context.Context, q models.PageQuery, params url.Values) (*models.Page[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, body any) (*T, error)
	Update(ctx context.Context, id string, body any) (*T, error)
	Delete(ctx context.Context, id string) error
	Action(ctx context.Context, id, action string, body any) (*T, error)
	Upload(ctx context.Context, id, field, filename string, file io.Reader) (*T, error)
}

var _ Remote[models.Listing] = (*backend.Resource[models.Listing])(nil)

// Store holds one page of T for one user.
type Store[T any] struct {
	cfg    Config[T]
	remote Remote[T]
	pages  *pagination.Controller[T]
	logger *zap.Logger

	mu         sync.RWMutex
	filters    view.Filters
	submitting int
}

func New[T any](remote Remote[T], cfg Config[T], logger *zap.Logger) *Store[T] {
	s := &Store[T]{
		cfg:     cfg,
		remote:  remote,
		logger:  logger.With(zap.String("store", cfg.Name)),
		filters: cfg.Defaults(),
	}
	s.pages = pagination.New[T](func(ctx context.Context, q models.PageQuery) (*models.Page[T], error) {
		return remote.List(ctx, q, nil)
	}, cfg.PageSize)
	return s
}

// ==============================================
// READS
// ==============================================

// Load requests page n. A response overtaken by a newer request is dropped
// silently.
func (s *Store[T]) Load(ctx context.Context, n int) error {
	err := s.pages.RequestPage(ctx, n)
	if errors.Is(err, pagination.ErrSuperseded) {
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load page", zap.Int("page", n), zap.Error(err))
		return fmt.Errorf("failed to load %s: %w", s.cfg.Name, err)
	}
	return nil
}

// Reload re-requests the current page, or the first one if nothing is loaded.
func (s *Store[T]) Reload(ctx context.Context) error {
	n := s.pages.State().CurrentPage
	if n < 1 {
		n = 1
	}
	return s.Load(ctx, n)
}

// Entities returns the loaded page, unfiltered.
func (s *Store[T]) Entities() []T {
	return s.pages.Items()
}

// Filtered applies the current filters to the loaded page only.
func (s *Store[T]) Filtered() []T {
	return view.Apply(s.pages.Items(), s.Filters(), s.cfg.Schema)
}

func (s *Store[T]) Filters() view.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// SetFilters replaces the descriptor. Inverted ranges are rejected.
func (s *Store[T]) SetFilters(f view.Filters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filters = f.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store[T]) ResetFilters() {
	s.mu.Lock()
	s.filters = s.cfg.Defaults()
	s.mu.Unlock()
}

func (s *Store[T]) IsLoading() bool {
	return s.pages.IsLoading()
}

func (s *Store[T]) IsSubmitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting > 0
}

func (s *Store[T]) PageState() pagination.State {
	return s.pages.State()
}

// Get returns the entity from the loaded page, falling back to the backend.
func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	for _, item := range s.pages.Items() {
		if s.cfg.ID(item) == id {
			return &item, nil
		}
	}
	return s.remote.Get(ctx, id)
}

// ==============================================
// WRITES
// ==============================================

func (s *Store[T]) submit() func() {
	s.mu.Lock()
	s.submitting++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.submitting--
		s.mu.Unlock()
	}
}

// Create stores a new entity and reloads the current page, since the
// backend decides where it lands.
func (s *Store[T]) Create(ctx context.Context, body any) (*T, error) {
	defer s.submit()()

	created, err := s.remote.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.cfg.Name, err)
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload after create failed", zap.Error(err))
	}
	return created, nil
}

// Update shows updated immediately and rolls back if the backend refuses it.
func (s *Store[T]) Update(ctx context.Context, id string, updated T) (*T, error) {
	defer s.submit()()

	previous, had := s.replace(id, updated)

	saved, err := s.remote.Update(ctx, id, updated)
	if err != nil {
		if had {
			s.replace(id, previous)
		}
		s.logger.Warn("update rolled back", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update %s: %w", s.cfg.Name, err)
	}
	s.replace(id, *saved)
	return saved, nil
}

// Delete removes the entity immediately and restores it if the backend
// refuses.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	defer s.submit()()

	var (
		removed T
		index   = -1
	)
	s.pages.Mutate(func(items []T) []T {
		for i, item := range items {
			if s.cfg.ID(item) == id {
				removed, index = item, i
				out := make([]T, 0, len(items)-1)
				out = append(out, items[:i]...)
				return append(out, items[i+1:]...)
			}
		}
		return items
	})

	if err := s.remote.Delete(ctx, id); err != nil {
		if index >= 0 {
			s.pages.Mutate(func(items []T) []T {
				for _, item := range items {
					if s.cfg.ID(item) == id {
						return items
					}
				}
				if index > len(items) {
					index = len(items)
				}
				out := make([]T, 0, len(items)+1)
				out = append(out, items[:index]...)
				out = append(out, removed)
				return append(out, items[index:]...)
			})
		}
		s.logger.Warn("delete rolled back", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", s.cfg.Name, err)
	}
	return nil
}

// Action runs a domain action (feature, trend, approve, mark-read...) and
// replaces the local copy with the backend's answer.
func (s *Store[T]) Action(ctx context.Context, id, action string, body any) (*T, error) {
	defer s.submit()()

	updated, err := s.remote.Action(ctx, id, action, body)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", action, s.cfg.Name, err)
	}
	s.replace(id, *updated)
	return updated, nil
}

// Upload attaches a file and replaces the local copy with the updated entity.
func (s *Store[T]) Upload(ctx context.Context, id, field, filename string, file io.Reader) (*T, error) {
	defer s.submit()()

	updated, err := s.remote.Upload(ctx, id, field, filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	s.replace(id, *updated)
	return updated, nil
}

// replace swaps the entity with id in the loaded page and returns the old
// value, if it was loaded.
func (s *Store[T]) replace(id string, item T) (T, bool) {
	var (
		previous T
		found    bool
	)
	s.pages.Mutate(func(items []T) []T {
		out := make([]T, len(items))
		copy(out, items)
		for i := range out {
			if s.cfg.ID(out[i]) == id {
				previous, found = out[i], true
				out[i] = item
				break
			}
		}
		return out
	})
	return previous, found
}
