package models

import (
	"errors"
	"fmt"
	"time"
)

// ==============================================
// CUSTOM ERROR TYPES
// ==============================================

// FieldError is an inline validation error tied to one form field.
// It is produced before any backend call and never sent to the backend.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a new FieldError
func NewFieldError(field string, err error) *FieldError {
	return &FieldError{Field: field, Err: err}
}

// CooldownError reports how long a caller has to wait before a resend.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%v: retry in %ds", ErrResendCooldown, int(e.Remaining.Seconds()+0.5))
}

func (e *CooldownError) Unwrap() error {
	return ErrResendCooldown
}

// ==============================================
// PREDEFINED ERRORS
// ==============================================

// Validation Errors
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountTooSmall      = errors.New("amount is below minimum")
	ErrAmountTooLarge      = errors.New("amount exceeds maximum")
	ErrDailyLimitExceeded  = errors.New("daily limit exceeded")
	ErrBankAccountRequired = errors.New("select a bank account")
	ErrRecipientRequired   = errors.New("recipient is required")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvertedRange       = errors.New("range minimum is greater than maximum")
)

// Authorization / Not-found Errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUserNotFound = errors.New("user not found")
)

// Wallet Errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrBankAccountNotFound = errors.New("bank account not found")
)

// Funding Errors
var (
	ErrFundingCancelled    = errors.New("payment was cancelled")
	ErrVerificationPending = errors.New("payment not yet confirmed")
	ErrSessionNotFound     = errors.New("funding session not found")
	ErrInvalidTransition   = errors.New("invalid funding state transition")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

// Verification Errors
var (
	ErrResendCooldown = errors.New("please wait before requesting another code")
)

// ==============================================
// ERROR KINDS (for user-facing notices)
// ==============================================

type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindNotFound            ErrorKind = "not_found"
	KindUserNotFound        ErrorKind = "user_not_found"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindRecipientNotFound   ErrorKind = "recipient_not_found"
	KindCancelled           ErrorKind = "cancelled"
	KindVerificationPending ErrorKind = "verification_pending"
	KindCooldown            ErrorKind = "cooldown"
	KindConflict            ErrorKind = "conflict"
	KindInternal            ErrorKind = "internal"
)

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// KindOf classifies an error into the taxonomy used for notices and status codes.
func KindOf(err error) ErrorKind {
	var fe *FieldError
	switch {
	case errors.As(err, &fe), IsValidationError(err):
		return KindValidation
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrRecipientNotFound):
		return KindRecipientNotFound
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case IsNotFoundError(err):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return KindUnauthorized
	case errors.Is(err, ErrFundingCancelled):
		return KindCancelled
	case errors.Is(err, ErrVerificationPending):
		return KindVerificationPending
	case errors.Is(err, ErrResendCooldown):
		return KindCooldown
	case errors.Is(err, ErrInvalidTransition):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsNotFoundError checks if error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrBankAccountNotFound)
}

// IsValidationError checks if error is validation-related
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAmountTooSmall) ||
		errors.Is(err, ErrAmountTooLarge) ||
		errors.Is(err, ErrDailyLimitExceeded) ||
		errors.Is(err, ErrBankAccountRequired) ||
		errors.Is(err, ErrRecipientRequired) ||
		errors.Is(err, ErrSelfTransfer) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvertedRange)
}
