package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/gateway"
	"github.com/Brownie44l1/propvest/internal/metrics"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ==============================================
// INTERFACES (for testing)
// ==============================================

type FundingRepository interface {
	Create(ctx context.Context, s *models.FundingSession) error
	Get(ctx context.Context, reference string) (*models.FundingSession, error)
	Update(ctx context.Context, s *models.FundingSession) error
	ListByState(ctx context.Context, state models.FundingState, olderThan time.Time, limit int) ([]*models.FundingSession, error)
}

// FundingAPI is the part of the backend the funding flow talks to. It has no
// card "apply" call: card payments are credited by the backend on verify.
type FundingAPI interface {
	VerifyFunding(ctx context.Context, reference string) (*backend.FundingVerification, error)
	FundByBankTransfer(ctx context.Context, req models.BankTransferFundingRequest) (*models.Transaction, error)
}

var _ FundingAPI = (*backend.Client)(nil)

// FundingResult is a session plus the notice to show for it.
type FundingResult struct {
	Session     *models.FundingSession `json:"session"`
	Transaction *models.Transaction    `json:"transaction,omitempty"`
	Notice      models.Notice          `json:"notice"`
}

type FundingConfig struct {
	PublicKey   string
	CallbackURL string
	Policy      Policy
}

// ==============================================
// SERVICE
// ==============================================

type FundingService struct {
	repo    FundingRepository
	gateway gateway.Gateway
	api     FundingAPI
	wallets *WalletService
	logger  *zap.Logger
	cfg     FundingConfig

	newReference func() string
	now          func() time.Time

	locks sync.Map // reference -> *sync.Mutex
}

func NewFundingService(
	repo FundingRepository,
	gw gateway.Gateway,
	api FundingAPI,
	wallets *WalletService,
	logger *zap.Logger,
	cfg FundingConfig,
) *FundingService {
	return &FundingService{
		repo:         repo,
		gateway:      gw,
		api:          api,
		wallets:      wallets,
		logger:       logger,
		cfg:          cfg,
		newReference: gateway.NewReference,
		now:          time.Now,
	}
}

// WithReferences replaces the reference generator.
func (s *FundingService) WithReferences(fn func() string) *FundingService {
	s.newReference = fn
	return s
}

func (s *FundingService) lock(reference string) func() {
	m, _ := s.locks.LoadOrStore(reference, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ==============================================
// CARD FUNDING
// ==============================================

// StartCardFunding validates the amount, persists a new session and opens a
// hosted checkout. The reference exists before the gateway is contacted.
func (s *FundingService) StartCardFunding(ctx context.Context, userID, email, amountInput string) (*FundingResult, error) {
	amount, err := s.cfg.Policy.parseAmount(amountInput, s.cfg.Policy.MinFunding)
	if err != nil {
		return nil, err
	}

	session, err := s.open(ctx, userID, email, amount, models.FundingMethodCard)
	if err != nil {
		return nil, err
	}

	s.logger.Info("card funding started",
		zap.String("reference", session.Reference),
		zap.String("user_id", userID),
		zap.String("amount", amount.String()))

	if err := s.transition(ctx, session, models.FundingGatewayInitializing); err != nil {
		return nil, err
	}

	checkout, err := s.gateway.Initialize(ctx, gateway.NewConfig(session, s.cfg.PublicKey, s.cfg.CallbackURL))
	if err != nil {
		s.logger.Error("gateway initialization failed",
			zap.String("reference", session.Reference),
			zap.Error(err))
		session.LastError = err.Error()
		if terr := s.transition(ctx, session, models.FundingIdle); terr != nil {
			s.logger.Error("failed to reset funding session", zap.String("reference", session.Reference), zap.Error(terr))
		}
		return nil, fmt.Errorf("funding %s: %w", session.Reference, err)
	}

	session.CheckoutURL = checkout.AuthorizationURL
	if err := s.transition(ctx, session, models.FundingGatewayPending); err != nil {
		return nil, err
	}

	return &FundingResult{
		Session: session,
		Notice:  models.InfoNotice("Complete your payment on the secure checkout page."),
	}, nil
}

// HandleGatewayCallback applies the gateway's redirect. A success moves to
// verification; anything else is the user closing the checkout.
func (s *FundingService) HandleGatewayCallback(ctx context.Context, userID string, cb gateway.Callback) (*FundingResult, error) {
	unlock := s.lock(cb.Reference)
	defer unlock()

	session, err := s.owned(ctx, userID, cb.Reference)
	if err != nil {
		return nil, err
	}

	if cb.Outcome != gateway.OutcomeSuccess {
		if session.State == models.FundingGatewayPending {
			if err := s.transition(ctx, session, models.FundingIdle); err != nil {
				return nil, err
			}
		}
		s.logger.Info("card funding cancelled", zap.String("reference", session.Reference))
		return &FundingResult{Session: session, Notice: models.NoticeFor(models.ErrFundingCancelled)}, nil
	}

	return s.verify(ctx, session, true)
}

// Verify asks the backend to confirm the payment. Safe to repeat: the
// backend credits a reference at most once, and this never calls the
// bank-transfer funding endpoint.
func (s *FundingService) Verify(ctx context.Context, userID, reference string) (*FundingResult, error) {
	unlock := s.lock(reference)
	defer unlock()

	session, err := s.owned(ctx, userID, reference)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, session, true)
}

// RetryVerification is Verify restricted to soft-failed sessions.
func (s *FundingService) RetryVerification(ctx context.Context, userID, reference string) (*FundingResult, error) {
	unlock := s.lock(reference)
	defer unlock()

	session, err := s.owned(ctx, userID, reference)
	if err != nil {
		return nil, err
	}
	if !session.Retryable() {
		return nil, fmt.Errorf("%w: %s is %s", models.ErrInvalidTransition, reference, session.State)
	}
	return s.verify(ctx, session, true)
}

// Dismiss closes a finished or soft-failed session.
func (s *FundingService) Dismiss(ctx context.Context, userID, reference string) (*models.FundingSession, error) {
	unlock := s.lock(reference)
	defer unlock()

	session, err := s.owned(ctx, userID, reference)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, session, models.FundingIdle); err != nil {
		return nil, err
	}
	return session, nil
}

// Session returns a user's session.
func (s *FundingService) Session(ctx context.Context, userID, reference string) (*models.FundingSession, error) {
	return s.owned(ctx, userID, reference)
}

func (s *FundingService) verify(ctx context.Context, session *models.FundingSession, refresh bool) (*FundingResult, error) {
	if err := s.transition(ctx, session, models.FundingVerifying); err != nil {
		return nil, err
	}
	session.Attempts++

	v, err := s.api.VerifyFunding(ctx, session.Reference)
	if err == nil && !v.Completed() {
		err = fmt.Errorf("%w: status %s", models.ErrVerificationPending, v.Status)
	}
	if err != nil {
		// the backend webhook may still complete the payment; stay retryable
		s.logger.Warn("funding not confirmed",
			zap.String("reference", session.Reference),
			zap.Int("attempt", session.Attempts),
			zap.Error(err))
		session.LastError = err.Error()
		if terr := s.transition(ctx, session, models.FundingVerificationFailed); terr != nil {
			return nil, terr
		}
		return &FundingResult{Session: session, Notice: models.NoticeFor(models.ErrVerificationPending)}, nil
	}

	session.LastError = ""
	if refresh {
		if _, err := s.wallets.Refresh(ctx, session.UserID); err != nil {
			s.logger.Warn("wallet refresh after funding failed",
				zap.String("reference", session.Reference), zap.Error(err))
		}
	} else {
		s.wallets.Invalidate(session.UserID)
	}
	if err := s.transition(ctx, session, models.FundingFunded); err != nil {
		return nil, err
	}

	s.logger.Info("card funding confirmed",
		zap.String("reference", session.Reference),
		zap.String("amount", session.Amount.String()))
	return &FundingResult{
		Session: session,
		Notice:  models.SuccessNotice(fmt.Sprintf("Wallet funded with %s.", session.Amount.StringFixed(2))),
	}, nil
}

// ==============================================
// BANK TRANSFER
// ==============================================

// SubmitBankTransfer records a manual deposit. The backend keeps it pending
// until an admin approves it, so the balance does not change here.
func (s *FundingService) SubmitBankTransfer(ctx context.Context, userID, email, amountInput, note string) (*FundingResult, error) {
	amount, err := s.cfg.Policy.parseAmount(amountInput, s.cfg.Policy.MinFunding)
	if err != nil {
		return nil, err
	}

	session, err := s.open(ctx, userID, email, amount, models.FundingMethodBankTransfer)
	if err != nil {
		return nil, err
	}

	txn, err := s.api.FundByBankTransfer(ctx, models.BankTransferFundingRequest{
		Amount:    amount,
		Reference: session.Reference,
		Method:    string(models.FundingMethodBankTransfer),
		Note:      note,
	})
	if err != nil {
		s.logger.Error("bank transfer submission failed", zap.String("reference", session.Reference), zap.Error(err))
		session.LastError = err.Error()
		if terr := s.transition(ctx, session, models.FundingIdle); terr != nil {
			s.logger.Error("failed to reset funding session", zap.String("reference", session.Reference), zap.Error(terr))
		}
		return nil, fmt.Errorf("failed to submit bank transfer: %w", err)
	}

	if err := s.transition(ctx, session, models.FundingSubmitted); err != nil {
		return nil, err
	}
	if _, err := s.wallets.Refresh(ctx, userID); err != nil {
		s.logger.Warn("wallet refresh after bank transfer failed", zap.String("reference", session.Reference), zap.Error(err))
	}
	if err := s.transition(ctx, session, models.FundingIdle); err != nil {
		return nil, err
	}

	s.logger.Info("bank transfer submitted",
		zap.String("reference", session.Reference),
		zap.String("amount", amount.String()))
	return &FundingResult{
		Session:     session,
		Transaction: txn,
		Notice:      models.InfoNotice("Transfer submitted. Your wallet will be credited once it is approved."),
	}, nil
}

// ==============================================
// RECONCILIATION
// ==============================================

// ReverifyStale retries verification for sessions that have been soft-failed
// for longer than grace. It runs without a user token, so wallets are only
// invalidated, not refreshed. Returns how many sessions were funded.
func (s *FundingService) ReverifyStale(ctx context.Context, grace time.Duration, limit int) (int, error) {
	sessions, err := s.repo.ListByState(ctx, models.FundingVerificationFailed, s.now().Add(-grace), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unconfirmed sessions: %w", err)
	}

	funded := 0
	for _, session := range sessions {
		if ctx.Err() != nil {
			return funded, ctx.Err()
		}

		unlock := s.lock(session.Reference)
		// re-read under the lock; the user may have retried meanwhile
		current, err := s.repo.Get(ctx, session.Reference)
		if err == nil && current.State == models.FundingVerificationFailed {
			var res *FundingResult
			res, err = s.verify(ctx, current, false)
			if err == nil && res.Session.State == models.FundingFunded {
				funded++
			}
		}
		unlock()

		if err != nil {
			s.logger.Error("reconcile verification failed", zap.String("reference", session.Reference), zap.Error(err))
		}
	}
	return funded, nil
}

// ==============================================
// HELPERS
// ==============================================

func (s *FundingService) open(ctx context.Context, userID, email string, amount decimal.Decimal, method models.FundingMethod) (*models.FundingSession, error) {
	now := s.now()
	session := &models.FundingSession{
		Reference: s.newReference(),
		UserID:    userID,
		Email:     email,
		Amount:    amount,
		Method:    method,
		State:     models.FundingAmountEntered,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save funding session: %w", err)
	}
	metrics.FundingTransitions.WithLabelValues(string(models.FundingIdle), string(models.FundingAmountEntered)).Inc()
	return session, nil
}

func (s *FundingService) owned(ctx context.Context, userID, reference string) (*models.FundingSession, error) {
	session, err := s.repo.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

func (s *FundingService) transition(ctx context.Context, session *models.FundingSession, to models.FundingState) error {
	from := session.State
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}

	session.State = to
	session.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, session); err != nil {
		session.State = from
		if errors.Is(err, models.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to update funding session: %w", err)
	}

	metrics.FundingTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Debug("funding transition",
		zap.String("reference", session.Reference),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}
