package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Brownie44l1/propvest/internal/models"
)

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
)

// Callback is the gateway redirect after the hosted page closes.
type Callback struct {
	Reference string
	Outcome   Outcome
}

// ParseCallback reads ?reference=&status= (or the gateway's trxref alias).
// Any status other than a success is treated as the user closing the page.
func ParseCallback(q url.Values) (Callback, error) {
	ref := q.Get("reference")
	if ref == "" {
		ref = q.Get("trxref")
	}
	if ref == "" {
		return Callback{}, models.NewFieldError("reference", fmt.Errorf("reference is required"))
	}

	cb := Callback{Reference: ref, Outcome: OutcomeCancelled}
	switch strings.ToLower(q.Get("status")) {
	case "success", "successful", "completed":
		cb.Outcome = OutcomeSuccess
	}
	return cb, nil
}
