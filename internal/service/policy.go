package service

import (
	"github.com/Brownie44l1/propvest/internal/gateway"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/shopspring/decimal"
)

// ==============================================
// BUSINESS RULES
// ==============================================

// Policy holds the client-side amount limits. The backend enforces its own
// limits too; these only stop requests that would certainly be rejected.
type Policy struct {
	MinFunding         decimal.Decimal
	MinWithdraw        decimal.Decimal
	MinTransfer        decimal.Decimal
	MaxPerTransaction  decimal.Decimal
	DailyWithdrawLimit decimal.Decimal
}

// DefaultPolicy returns the limits used when none are configured (NGN).
func DefaultPolicy() Policy {
	return Policy{
		MinFunding:         decimal.NewFromInt(100),
		MinWithdraw:        decimal.NewFromInt(1000),
		MinTransfer:        decimal.NewFromInt(100),
		MaxPerTransaction:  decimal.NewFromInt(5_000_000),
		DailyWithdrawLimit: decimal.NewFromInt(10_000_000),
	}
}

// parseAmount validates raw input against [min, MaxPerTransaction]. Every
// failure is a FieldError on "amount" so nothing reaches the backend.
func (p Policy) parseAmount(input string, min decimal.Decimal) (decimal.Decimal, error) {
	amount, err := gateway.ParseAmount(input)
	if err != nil {
		return decimal.Zero, models.NewFieldError("amount", err)
	}
	if amount.LessThan(min) {
		return decimal.Zero, models.NewFieldError("amount", models.ErrAmountTooSmall)
	}
	if p.MaxPerTransaction.IsPositive() && amount.GreaterThan(p.MaxPerTransaction) {
		return decimal.Zero, models.NewFieldError("amount", models.ErrAmountTooLarge)
	}
	return amount, nil
}
