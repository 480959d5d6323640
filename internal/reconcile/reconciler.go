// Package reconcile periodically re-verifies card payments whose
// verification was left unconfirmed, in case the gateway webhook completed
// them after the user gave up.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSchedule = "@every 5m"
	DefaultGrace    = 2 * time.Minute
	DefaultBatch    = 50
	runTimeout      = time.Minute
)

// Reverifier is implemented by service.FundingService.
type Reverifier interface {
	ReverifyStale(ctx context.Context, grace time.Duration, limit int) (int, error)
}

type Options struct {
	Schedule string
	Grace    time.Duration
	Batch    int
}

type Reconciler struct {
	svc    Reverifier
	logger *zap.Logger
	opts   Options
	cron   *cron.Cron
}

func New(svc Reverifier, logger *zap.Logger, opts Options) (*Reconciler, error) {
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Batch <= 0 {
		opts.Batch = DefaultBatch
	}

	cl := cronLogger{logger.Sugar()}
	r := &Reconciler{
		svc:    svc,
		logger: logger,
		opts:   opts,
		cron:   cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}

	if _, err := r.cron.AddFunc(opts.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_, _ = r.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", opts.Schedule, err)
	}
	return r, nil
}

// RunOnce re-verifies one batch and returns how many sessions were funded.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	funded, err := r.svc.ReverifyStale(ctx, r.opts.Grace, r.opts.Batch)
	if err != nil {
		r.logger.Error("reconcile run failed", zap.Error(err))
		return funded, err
	}
	if funded > 0 {
		r.logger.Info("reconcile run funded sessions",
			zap.Int("funded", funded),
			zap.Duration("duration", time.Since(start)))
	}
	return funded, nil
}

func (r *Reconciler) Start() {
	r.logger.Info("reconciler started", zap.String("schedule", r.opts.Schedule))
	r.cron.Start()
}

// Stop halts scheduling and waits for a running batch, or for ctx.
func (r *Reconciler) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("reconciler stop timed out")
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
