package store

import (
	"sync"

	"go.uber.org/zap"
)

// Pool keeps one Store per user so pages and filters never leak between
// sessions. Every store shares the same remote endpoint set.
type Pool[T any] struct {
	cfg    Config[T]
	remote Remote[T]
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store[T]
}

func NewPool[T any](remote Remote[T], cfg Config[T], logger *zap.Logger) *Pool[T] {
	return &Pool[T]{cfg: cfg, remote: remote, logger: logger, stores: make(map[string]*Store[T])}
}

// For returns the user's store, creating it on first use.
func (p *Pool[T]) For(userID string) *Store[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[userID]
	if !ok {
		s = New(p.remote, p.cfg, p.logger.With(zap.String("user_id", userID)))
		p.stores[userID] = s
	}
	return s
}

func (p *Pool[T]) Config() Config[T] {
	return p.cfg
}
