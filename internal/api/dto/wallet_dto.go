package dto

import (
	"bytes"
	"encoding/json"
)

// Amount accepts a JSON number or string and keeps the raw text.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(b)
	return nil
}

// ==============================================
// WALLET REQUEST DTOs
// ==============================================

// Amounts arrive as entered by the user and are validated by the services,
// so every rule produces the same inline field error.

// FundRequest starts a card payment or records a bank transfer.
type FundRequest struct {
	Amount Amount `json:"amount"`
	Note   string `json:"note,omitempty"`
}

type WithdrawRequest struct {
	Amount        Amount `json:"amount"`
	BankAccountID string `json:"bankAccountId"`
}

type TransferRequest struct {
	Recipient string `json:"recipient"`
	Amount    Amount `json:"amount"`
	Note      string `json:"note,omitempty"`
}

type ResendVerificationRequest struct {
	Email   string `json:"email" binding:"required"`
	Purpose string `json:"purpose"`
}

// ==============================================
// WALLET RESPONSE DTOs
// ==============================================

type ResendVerificationResponse struct {
	Message        string `json:"message"`
	RetryInSeconds int    `json:"retryInSeconds"`
}
