package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/shopspring/decimal"
)

// ==============================================
// FUNDING PAYLOADS
// ==============================================

// InitializeFundingRequest asks the backend to open a hosted checkout with the
// payment gateway. Amount is in minor units.
type InitializeFundingRequest struct {
	Reference   string            `json:"reference"`
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	PublicKey   string            `json:"publicKey,omitempty"`
	CallbackURL string            `json:"callbackUrl,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FundingInitialization is the hosted checkout opened by the gateway.
type FundingInitialization struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
}

// FundingVerification reports what the gateway says about a reference.
type FundingVerification struct {
	Reference string                   `json:"reference"`
	Status    models.TransactionStatus `json:"status"`
	Amount    decimal.Decimal          `json:"amount"`
}

// Completed reports whether the backend credited the wallet.
func (v *FundingVerification) Completed() bool {
	return v.Status == models.TransactionStatusCompleted
}

// ==============================================
// WALLET ENDPOINTS
// ==============================================

func (c *Client) GetWallet(ctx context.Context) (*models.Wallet, error) {
	var env models.Envelope[models.Wallet]
	if err := c.do(ctx, http.MethodGet, "/wallet", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) ListTransactions(ctx context.Context, q models.PageQuery) (*models.Page[models.Transaction], error) {
	var page models.Page[models.Transaction]
	if err := c.do(ctx, http.MethodGet, "/wallet/transactions", pageValues(q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// InitializeFunding opens a gateway checkout for a card payment.
func (c *Client) InitializeFunding(ctx context.Context, req InitializeFundingRequest) (*FundingInitialization, error) {
	var env models.Envelope[FundingInitialization]
	if err := c.do(ctx, http.MethodPost, "/wallet/fund/initialize", nil, req, &env); err != nil {
		return nil, err
	}
	if env.Data.Reference == "" {
		env.Data.Reference = req.Reference
	}
	return &env.Data, nil
}

// VerifyFunding asks the backend to confirm a gateway payment. The backend
// credits the wallet at most once per reference, so repeating this is safe.
func (c *Client) VerifyFunding(ctx context.Context, reference string) (*FundingVerification, error) {
	var env models.Envelope[FundingVerification]
	path := "/wallet/fund/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Data.Reference == "" {
		env.Data.Reference = reference
	}
	return &env.Data, nil
}

// FundByBankTransfer records a manual deposit. It stays pending until an
// admin approves it on the backend.
func (c *Client) FundByBankTransfer(ctx context.Context, req models.BankTransferFundingRequest) (*models.Transaction, error) {
	var env models.Envelope[models.Transaction]
	if err := c.do(ctx, http.MethodPost, "/wallet/fund", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Withdraw(ctx context.Context, req models.WithdrawRequest) (*models.Transaction, error) {
	var env models.Envelope[models.Transaction]
	if err := c.do(ctx, http.MethodPost, "/wallet/withdraw", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error) {
	var env models.Envelope[models.Transaction]
	if err := c.do(ctx, http.MethodPost, "/wallet/transfer", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ==============================================
// BANK ACCOUNTS
// ==============================================

func (c *Client) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var env models.Envelope[[]models.BankAccount]
	if err := c.do(ctx, http.MethodGet, "/wallet/bank-accounts", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) AddBankAccount(ctx context.Context, req models.NewBankAccountRequest) (*models.BankAccount, error) {
	var env models.Envelope[models.BankAccount]
	if err := c.do(ctx, http.MethodPost, "/wallet/bank-accounts", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) DeleteBankAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/wallet/bank-accounts/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SetDefaultBankAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/wallet/bank-accounts/"+url.PathEscape(id)+"/default", nil, nil, nil)
}

// ==============================================
// VERIFICATION
// ==============================================

type resendRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// ResendVerification asks the backend to send a fresh code to email.
func (c *Client) ResendVerification(ctx context.Context, email, purpose string) error {
	return c.do(ctx, http.MethodPost, "/auth/resend-verification", nil, resendRequest{Email: email, Purpose: purpose}, nil)
}

func pageValues(q models.PageQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}
