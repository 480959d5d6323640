// Package gateway prepares hosted card checkouts and interprets the
// gateway's redirect callbacks.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// ReferencePrefix marks references generated for wallet funding.
const ReferencePrefix = "fund_"

// PurposeWalletFunding tags gateway metadata so the backend webhook can tell
// wallet top-ups from other payments.
const PurposeWalletFunding = "wallet_funding"

var hundred = decimal.NewFromInt(100)

// Config is everything the gateway needs to open a checkout.
type Config struct {
	Reference   string
	Email       string
	Amount      int64 // minor units
	PublicKey   string
	CallbackURL string
	Metadata    map[string]string
}

// Checkout is an opened hosted payment page.
type Checkout struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode,omitempty"`
}

// Gateway opens hosted checkouts.
type Gateway interface {
	Initialize(ctx context.Context, cfg Config) (*Checkout, error)
}

// NewReference returns a unique funding reference: a millisecond timestamp
// followed by a random suffix.
func NewReference() string {
	return ReferencePrefix + strings.ToLower(ulid.Make().String())
}

// ToMinorUnits converts a major-unit amount to the gateway's integer unit.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// ParseAmount parses user input as a positive whole amount. Thousands
// separators and surrounding spaces are ignored.
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if s == "" {
		return decimal.Zero, models.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.ErrInvalidAmount
	}
	if !d.IsPositive() || !d.Equal(d.Truncate(0)) {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return d, nil
}

// NewConfig builds the checkout configuration for one funding session.
func NewConfig(s *models.FundingSession, publicKey, callbackURL string) Config {
	return Config{
		Reference:   s.Reference,
		Email:       s.Email,
		Amount:      ToMinorUnits(s.Amount),
		PublicKey:   publicKey,
		CallbackURL: callbackURL,
		Metadata: map[string]string{
			"purpose": PurposeWalletFunding,
			"user_id": s.UserID,
		},
	}
}

// Hosted opens checkouts through the backend's initialize endpoint, which
// holds the gateway secret key.
type Hosted struct {
	client *backend.Client
}

func NewHosted(client *backend.Client) *Hosted {
	return &Hosted{client: client}
}

func (h *Hosted) Initialize(ctx context.Context, cfg Config) (*Checkout, error) {
	init, err := h.client.InitializeFunding(ctx, backend.InitializeFundingRequest{
		Reference:   cfg.Reference,
		Email:       cfg.Email,
		Amount:      cfg.Amount,
		PublicKey:   cfg.PublicKey,
		CallbackURL: cfg.CallbackURL,
		Metadata:    cfg.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGatewayUnavailable, err)
	}
	return &Checkout{
		Reference:        init.Reference,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
	}, nil
}
