package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransferAPI interface {
	Withdraw(ctx context.Context, req models.WithdrawRequest) (*models.Transaction, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error)
}

var _ TransferAPI = (*backend.Client)(nil)

// TransferResult is a submitted withdrawal or transfer and the refreshed wallet.
type TransferResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Snapshot    *Snapshot           `json:"snapshot,omitempty"`
	Notice      models.Notice       `json:"notice"`
}

// WithdrawalService moves money out of the wallet. Results are always
// treated as "submitted": the balance shown is whatever the backend reports
// on the following refresh.
type WithdrawalService struct {
	api     TransferAPI
	wallets *WalletService
	logger  *zap.Logger
	policy  Policy
	now     func() time.Time
}

func NewWithdrawalService(api TransferAPI, wallets *WalletService, logger *zap.Logger, policy Policy) *WithdrawalService {
	return &WithdrawalService{api: api, wallets: wallets, logger: logger, policy: policy, now: time.Now}
}

// ==============================================
// WITHDRAW
// ==============================================

func (s *WithdrawalService) Withdraw(ctx context.Context, userID, amountInput, bankAccountID string) (*TransferResult, error) {
	amount, err := s.policy.parseAmount(amountInput, s.policy.MinWithdraw)
	if err != nil {
		return nil, err
	}
	if bankAccountID == "" {
		return nil, models.NewFieldError("bankAccountId", models.ErrBankAccountRequired)
	}

	snap, err := s.wallets.Refresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !hasAccount(snap.BankAccounts, bankAccountID) {
		return nil, models.NewFieldError("bankAccountId", models.ErrBankAccountNotFound)
	}
	if s.policy.DailyWithdrawLimit.IsPositive() {
		today := withdrawnOn(snap.Transactions, s.now())
		if today.Add(amount).GreaterThan(s.policy.DailyWithdrawLimit) {
			return nil, models.NewFieldError("amount", models.ErrDailyLimitExceeded)
		}
	}
	if snap.Wallet != nil && amount.GreaterThan(snap.Wallet.AvailableBalance) {
		return nil, models.ErrInsufficientBalance
	}

	key := uuid.NewString()
	s.logger.Info("withdrawal requested",
		zap.String("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("idempotency_key", key))

	txn, err := s.api.Withdraw(ctx, models.WithdrawRequest{
		Amount:         amount,
		BankAccountID:  bankAccountID,
		IdempotencyKey: key,
	})
	if err != nil {
		s.logger.Warn("withdrawal rejected", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("withdrawal failed: %w", err)
	}

	return s.finish(ctx, userID, txn, "Withdrawal submitted. Funds will arrive in your bank account shortly.")
}

// ==============================================
// TRANSFER
// ==============================================

// Transfer sends money to another user identified by email or username.
func (s *WithdrawalService) Transfer(ctx context.Context, userID, email, recipient, amountInput, note string) (*TransferResult, error) {
	amount, err := s.policy.parseAmount(amountInput, s.policy.MinTransfer)
	if err != nil {
		return nil, err
	}

	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, models.NewFieldError("recipient", models.ErrRecipientRequired)
	}
	if strings.EqualFold(recipient, email) || recipient == userID {
		return nil, models.NewFieldError("recipient", models.ErrSelfTransfer)
	}

	snap, err := s.wallets.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Wallet != nil && amount.GreaterThan(snap.Wallet.AvailableBalance) {
		return nil, models.ErrInsufficientBalance
	}

	txn, err := s.api.Transfer(ctx, models.TransferRequest{
		Recipient:      recipient,
		Amount:         amount,
		Note:           note,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		s.logger.Warn("transfer rejected",
			zap.String("user_id", userID),
			zap.String("recipient", recipient),
			zap.Error(err))
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	return s.finish(ctx, userID, txn, fmt.Sprintf("Sent %s to %s.", amount.StringFixed(2), recipient))
}

func (s *WithdrawalService) finish(ctx context.Context, userID string, txn *models.Transaction, message string) (*TransferResult, error) {
	res := &TransferResult{Transaction: txn, Notice: models.SuccessNotice(message)}

	snap, err := s.wallets.Refresh(ctx, userID)
	if err != nil {
		s.logger.Warn("wallet refresh after transfer failed", zap.String("user_id", userID), zap.Error(err))
		return res, nil
	}
	res.Snapshot = snap
	return res, nil
}

func hasAccount(accounts []models.BankAccount, id string) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// withdrawnOn sums non-failed withdrawals created on the same calendar day as
// now. Only the loaded transactions page is considered.
func withdrawnOn(txns []models.Transaction, now time.Time) decimal.Decimal {
	y, m, d := now.Date()
	total := decimal.Zero
	for _, t := range txns {
		if t.Type != models.TransactionTypeWithdrawal || t.IsFailed() {
			continue
		}
		ty, tm, td := t.CreatedAt.In(now.Location()).Date()
		if ty == y && tm == m && td == d {
			total = total.Add(t.Amount)
		}
	}
	return total
}
