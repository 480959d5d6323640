package store

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRemote serves a fixed collection, one page at a time.
type fakeRemote struct {
	mu        sync.Mutex
	items     []models.Listing
	lists     int
	failWrite error
	gate      chan struct{}
	uploads   []string
}

func (f *fakeRemote) List(ctx context.Context, q models.PageQuery, params url.Values) (*models.Page[models.Listing], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++

	start := (q.Page - 1) * q.Limit
	if start > len(f.items) {
		start = len(f.items)
	}
	end := min(start+q.Limit, len(f.items))
	data := append([]models.Listing(nil), f.items[start:end]...)
	pages := (len(f.items) + q.Limit - 1) / q.Limit
	return &models.Page[models.Listing]{Data: data, Total: len(f.items), Pages: pages, CurrentPage: q.Page}, nil
}

func (f *fakeRemote) Get(ctx context.Context, id string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.items {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRemote) Create(ctx context.Context, body any) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := body.(models.Listing)
	f.items = append([]models.Listing{l}, f.items...)
	return &l, nil
}

func (f *fakeRemote) Update(ctx context.Context, id string, body any) (*models.Listing, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	l := body.(models.Listing)
	l.UpdatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &l, nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failWrite
}

func (f *fakeRemote) Action(ctx context.Context, id, action string, body any) (*models.Listing, error) {
	l, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if action == "feature" {
		l.Featured = true
	}
	return l, nil
}

func (f *fakeRemote) Upload(ctx context.Context, id, field, filename string, file io.Reader) (*models.Listing, error) {
	b, _ := io.ReadAll(file)
	f.mu.Lock()
	f.uploads = append(f.uploads, filename+":"+string(b))
	f.mu.Unlock()
	l, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Description = "brochure attached"
	return l, nil
}

func listings() []models.Listing {
	return []models.Listing{
		{ID: "1", Title: "Lekki Duplex", Category: "residential", Price: 250000, Quantity: 3, Status: models.ListingAvailable},
		{ID: "2", Title: "Wuse Plaza", Category: "commercial", Price: 900000, Quantity: 0, Status: models.ListingAvailable},
		{ID: "3", Title: "Ikoyi Towers", Category: "residential", Price: 500000, Quantity: 8, Status: models.ListingAvailable},
	}
}

func newMarketplace(t *testing.T) (*fakeRemote, *Store[models.Listing]) {
	t.Helper()
	remote := &fakeRemote{items: listings()}
	cfg := Marketplace()
	s := New[models.Listing](remote, cfg, zap.NewNop())
	require.NoError(t, s.Load(context.Background(), 1))
	return remote, s
}

func ids(items []models.Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.ID
	}
	return out
}

func TestStore_OutOfStockHiddenByDefault(t *testing.T) {
	_, s := newMarketplace(t)

	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Entities()))
	assert.Equal(t, []string{"1", "3"}, ids(s.Filtered()))

	f := s.Filters()
	f.Toggles["inStock"] = false
	require.NoError(t, s.SetFilters(f))
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Filtered()))

	s.ResetFilters()
	assert.True(t, s.Filters().Toggles["inStock"])
}

func TestStore_FiltersAreCopies(t *testing.T) {
	_, s := newMarketplace(t)

	f := s.Filters()
	f.Categories["category"] = "land"

	assert.Equal(t, view.All, s.Filters().Categories["category"])
}

func TestStore_SetFiltersRejectsInvertedRange(t *testing.T) {
	_, s := newMarketplace(t)

	f := s.Filters()
	f.Ranges["price"] = view.Range{Min: 10, Max: 1}

	err := s.SetFilters(f)
	assert.ErrorIs(t, err, models.ErrInvertedRange)
	assert.Equal(t, view.PriceDomain, s.Filters().Ranges["price"])
}

func TestStore_Pagination(t *testing.T) {
	remote := &fakeRemote{}
	for i := 0; i < 30; i++ {
		remote.items = append(remote.items, models.Listing{ID: string(rune('a' + i)), Quantity: 1})
	}
	s := New[models.Listing](remote, Marketplace(), zap.NewNop())

	require.NoError(t, s.Load(context.Background(), 3))

	assert.Len(t, s.Entities(), 6)
	assert.Equal(t, 3, s.PageState().CurrentPage)
	assert.Equal(t, 3, s.PageState().TotalPages)
	assert.Equal(t, 30, s.PageState().TotalCount)
	assert.False(t, s.IsLoading())
}

func TestStore_Get(t *testing.T) {
	remote, s := newMarketplace(t)

	l, err := s.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Ikoyi Towers", l.Title)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 1, remote.lists)
}

func TestStore_CreateReloads(t *testing.T) {
	remote, s := newMarketplace(t)

	_, err := s.Create(context.Background(), models.Listing{ID: "9", Title: "New", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, remote.lists)
	assert.Equal(t, "9", s.Entities()[0].ID)
}

func TestStore_UpdateIsOptimistic(t *testing.T) {
	remote, s := newMarketplace(t)
	remote.gate = make(chan struct{})

	edited := s.Entities()[0]
	edited.Title = "Lekki Villa"

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "1", edited)
		done <- err
	}()

	require.Eventually(t, s.IsSubmitting, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return s.Entities()[0].Title == "Lekki Villa" }, time.Second, time.Millisecond)

	close(remote.gate)
	require.NoError(t, <-done)
	assert.False(t, s.IsSubmitting())
	assert.False(t, s.Entities()[0].UpdatedAt.IsZero(), "server copy replaces the optimistic one")
}

func TestStore_UpdateRollsBack(t *testing.T) {
	remote, s := newMarketplace(t)
	remote.failWrite = errors.New("forbidden")

	edited := s.Entities()[1]
	edited.Price = 1

	_, err := s.Update(context.Background(), "2", edited)
	require.Error(t, err)
	assert.Equal(t, float64(900000), s.Entities()[1].Price)
}

func TestStore_DeleteRollsBack(t *testing.T) {
	remote, s := newMarketplace(t)

	remote.failWrite = errors.New("in use")
	require.Error(t, s.Delete(context.Background(), "2"))
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Entities()))

	remote.failWrite = nil
	require.NoError(t, s.Delete(context.Background(), "2"))
	assert.Equal(t, []string{"1", "3"}, ids(s.Entities()))
}

func TestStore_ActionAndUpload(t *testing.T) {
	remote, s := newMarketplace(t)
	ctx := context.Background()

	featured, err := s.Action(ctx, "3", "feature", nil)
	require.NoError(t, err)
	assert.True(t, featured.Featured)
	assert.True(t, s.Entities()[2].Featured)

	_, err = s.Upload(ctx, "1", "file", "brochure.pdf", strings.NewReader("PDF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"brochure.pdf:PDF"}, remote.uploads)
	assert.Equal(t, "brochure attached", s.Entities()[0].Description)

	_, err = s.Action(ctx, "missing", "feature", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPool_IsolatesUsers(t *testing.T) {
	remote := &fakeRemote{items: listings()}
	p := NewPool[models.Listing](remote, Marketplace(), zap.NewNop())

	a := p.For("a")
	require.NoError(t, a.Load(context.Background(), 1))
	f := a.Filters()
	f.Search = "lekki"
	require.NoError(t, a.SetFilters(f))

	assert.Same(t, a, p.For("a"))
	b := p.For("b")
	assert.Empty(t, b.Entities())
	assert.Empty(t, b.Filters().Search)
}
