package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==============================================
// FUNDING STATE MACHINE
// ==============================================

type FundingState string

const (
	FundingIdle                FundingState = "idle"
	FundingAmountEntered       FundingState = "amount_entered"
	FundingGatewayInitializing FundingState = "gateway_initializing"
	FundingGatewayPending      FundingState = "gateway_pending"
	FundingVerifying           FundingState = "verifying"
	FundingFunded              FundingState = "funded"
	FundingVerificationFailed  FundingState = "verification_failed"
	FundingSubmitted           FundingState = "submitted"
)

type FundingMethod string

const (
	FundingMethodCard         FundingMethod = "card"
	FundingMethodBankTransfer FundingMethod = "bank_transfer"
)

// fundingTransitions lists the allowed moves of the funding state machine.
var fundingTransitions = map[FundingState][]FundingState{
	FundingIdle:                {FundingAmountEntered},
	FundingAmountEntered:       {FundingGatewayInitializing, FundingSubmitted, FundingIdle},
	FundingGatewayInitializing: {FundingGatewayPending, FundingIdle},
	FundingGatewayPending:      {FundingVerifying, FundingIdle},
	FundingVerifying:           {FundingFunded, FundingVerificationFailed},
	FundingFunded:              {FundingVerifying, FundingIdle},
	FundingVerificationFailed:  {FundingVerifying, FundingIdle},
	FundingSubmitted:           {FundingIdle},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to FundingState) bool {
	for _, s := range fundingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// FundingSession is one funding attempt, keyed by its client-generated reference.
type FundingSession struct {
	Reference   string          `json:"reference" db:"reference"`
	UserID      string          `json:"userId" db:"user_id"`
	Email       string          `json:"email" db:"email"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Method      FundingMethod   `json:"method" db:"method"`
	State       FundingState    `json:"state" db:"state"`
	CheckoutURL string          `json:"checkoutUrl,omitempty" db:"checkout_url"`
	Attempts    int             `json:"verifyAttempts" db:"verify_attempts"`
	LastError   string          `json:"lastError,omitempty" db:"last_error"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Retryable reports whether the user may trigger another verification.
func (s *FundingSession) Retryable() bool {
	return s.State == FundingVerificationFailed
}
