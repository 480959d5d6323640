package models

import "time"

// ==============================================
// VERIFICATION CODE PURPOSES
// ==============================================
const (
	PurposeEmailVerify     = "email_verify"
	PurposePasswordReset   = "password_reset"
	PurposeTransactionAuth = "transaction_auth"
)

// ==============================================
// RESEND CONFIGURATION
// ==============================================
const (
	ResendCooldown = 60 * time.Second
)

// ValidPurpose reports whether the backend accepts purpose.
func ValidPurpose(purpose string) bool {
	switch purpose {
	case PurposeEmailVerify, PurposePasswordReset, PurposeTransactionAuth:
		return true
	}
	return false
}
