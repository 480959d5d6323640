package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Brownie44l1/propvest/internal/models"
)

// MemoryFundingRepository keeps sessions in process. Used when no database
// is configured and in tests.
type MemoryFundingRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.FundingSession
}

func NewMemoryFundingRepository() *MemoryFundingRepository {
	return &MemoryFundingRepository{sessions: make(map[string]models.FundingSession)}
}

func (r *MemoryFundingRepository) Create(ctx context.Context, s *models.FundingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Reference] = *s
	return nil
}

func (r *MemoryFundingRepository) Get(ctx context.Context, reference string) (*models.FundingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[reference]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryFundingRepository) Update(ctx context.Context, s *models.FundingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.Reference]; !ok {
		return models.ErrSessionNotFound
	}
	r.sessions[s.Reference] = *s
	return nil
}

func (r *MemoryFundingRepository) ListByState(ctx context.Context, state models.FundingState, olderThan time.Time, limit int) ([]*models.FundingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.FundingSession
	for _, s := range r.sessions {
		if s.State == state && s.UpdatedAt.Before(olderThan) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
