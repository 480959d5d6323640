package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/cooldown"
	"github.com/Brownie44l1/propvest/internal/models"
	"go.uber.org/zap"
)

type VerificationAPI interface {
	ResendVerification(ctx context.Context, email, purpose string) error
}

var _ VerificationAPI = (*backend.Client)(nil)

// VerificationService resends verification codes, at most once per
// countdown window per email and purpose.
type VerificationService struct {
	api     VerificationAPI
	limiter cooldown.Limiter
	logger  *zap.Logger
}

func NewVerificationService(api VerificationAPI, limiter cooldown.Limiter, logger *zap.Logger) *VerificationService {
	return &VerificationService{api: api, limiter: limiter, logger: logger}
}

func resendKey(email, purpose string) string {
	return purpose + ":" + strings.ToLower(email)
}

func normalizeResend(email, purpose string) (string, string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", "", models.NewFieldError("email", models.ErrInvalidEmail)
	}
	if purpose == "" {
		purpose = models.PurposeEmailVerify
	}
	if !models.ValidPurpose(purpose) {
		return "", "", models.NewFieldError("purpose", fmt.Errorf("unknown purpose %q", purpose))
	}
	return addr.Address, purpose, nil
}

// Resend asks the backend for a new code. While the countdown runs it
// returns a CooldownError and makes no request.
func (s *VerificationService) Resend(ctx context.Context, email, purpose string) (models.Notice, error) {
	email, purpose, err := normalizeResend(email, purpose)
	if err != nil {
		return models.Notice{}, err
	}
	key := resendKey(email, purpose)

	ok, left, err := s.limiter.Acquire(ctx, key)
	if err != nil {
		return models.Notice{}, fmt.Errorf("failed to check resend cooldown: %w", err)
	}
	if !ok {
		return models.Notice{}, &models.CooldownError{Remaining: left}
	}

	if err := s.api.ResendVerification(ctx, email, purpose); err != nil {
		// a failed send should not lock the user out for the whole window
		if rerr := s.limiter.Reset(ctx, key); rerr != nil {
			s.logger.Warn("failed to reset resend cooldown", zap.Error(rerr))
		}
		return models.Notice{}, fmt.Errorf("failed to resend verification: %w", err)
	}

	s.logger.Info("verification code resent", zap.String("purpose", purpose))
	return models.SuccessNotice("A new code has been sent to " + email + "."), nil
}

// Remaining reports how long until Resend is allowed again.
func (s *VerificationService) Remaining(ctx context.Context, email, purpose string) (int, error) {
	email, purpose, err := normalizeResend(email, purpose)
	if err != nil {
		return 0, err
	}
	left, err := s.limiter.Remaining(ctx, resendKey(email, purpose))
	if err != nil {
		return 0, err
	}
	return int(left.Seconds() + 0.5), nil
}
