package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==============================================
// TRANSACTION MODELS
// ==============================================

type TransactionType string

type TransactionStatus string

// Transaction is a wallet ledger entry as reported by the backend.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Reference   string            `json:"reference"`
	Description string            `json:"description,omitempty"`
	Method      string            `json:"method,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// IsPending checks if transaction is still pending
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// IsCompleted checks if transaction is successfully completed
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// IsFailed checks if transaction has failed or was cancelled
func (t *Transaction) IsFailed() bool {
	return t.Status == TransactionStatusFailed || t.Status == TransactionStatusCancelled
}

// ==============================================
// TRANSACTION CONSTANTS
// ==============================================

// Transaction Types
const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeTransfer         TransactionType = "transfer"
	TransactionTypePayment          TransactionType = "payment"
	TransactionTypeRefund           TransactionType = "refund"
	TransactionTypeInvestment       TransactionType = "investment"
	TransactionTypePropertyPurchase TransactionType = "property_purchase"
)

// Transaction Statuses
const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// ==============================================
// REQUESTS (sent to the backend)
// ==============================================

// BankTransferFundingRequest creates a pending deposit awaiting admin approval.
type BankTransferFundingRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Method    string          `json:"method"`
	Note      string          `json:"note,omitempty"`
}

// WithdrawRequest moves funds to one of the user's bank accounts.
type WithdrawRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	BankAccountID  string          `json:"bankAccountId"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// TransferRequest moves funds to another user's wallet.
type TransferRequest struct {
	Recipient      string          `json:"recipient"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey"`
}
