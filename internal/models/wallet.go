package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the user's balance ledger. It is only ever replaced by data
// re-fetched from the backend, never edited locally.
type Wallet struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	PendingBalance   decimal.Decimal `json:"pendingBalance"`
	Currency         string          `json:"currency"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// BankAccount is a withdrawal destination owned by one user.
type BankAccount struct {
	ID            string    `json:"id"`
	BankName      string    `json:"bankName"`
	BankCode      string    `json:"bankCode,omitempty"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewBankAccountRequest registers a bank account with the backend.
type NewBankAccountRequest struct {
	BankName      string `json:"bankName" binding:"required"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber" binding:"required,numeric,len=10"`
	AccountName   string `json:"accountName" binding:"required"`
}

// DefaultBankAccount returns the account marked default, if any.
func DefaultBankAccount(accounts []BankAccount) (BankAccount, bool) {
	for _, a := range accounts {
		if a.IsDefault {
			return a, true
		}
	}
	return BankAccount{}, false
}

// MarkDefault returns a copy of accounts where only id is default.
func MarkDefault(accounts []BankAccount, id string) []BankAccount {
	out := make([]BankAccount, len(accounts))
	for i, a := range accounts {
		a.IsDefault = a.ID == id
		out[i] = a
	}
	return out
}
