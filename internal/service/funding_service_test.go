package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/gateway"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser  = "user-1"
	testEmail = "ada@example.com"
)

// MockGateway lets a test replace checkout initialization.
type MockGateway struct {
	InitializeFunc func(ctx context.Context, cfg gateway.Config) (*gateway.Checkout, error)
	calls          []gateway.Config
}

func (m *MockGateway) Initialize(ctx context.Context, cfg gateway.Config) (*gateway.Checkout, error) {
	m.calls = append(m.calls, cfg)
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, cfg)
	}
	return &gateway.Checkout{Reference: cfg.Reference, AuthorizationURL: "https://checkout.test/" + cfg.Reference}, nil
}

type fundingFixture struct {
	api     *fakeAPI
	repo    *repository.MemoryFundingRepository
	wallets *WalletService
	svc     *FundingService
}

func newFundingFixture(t *testing.T, gw func(*backend.Client) gateway.Gateway) *fundingFixture {
	t.Helper()
	api, client := newFakeAPI(t, 20000)
	repo := repository.NewMemoryFundingRepository()
	wallets := NewWalletService(client, testLogger, 10)
	svc := NewFundingService(repo, gw(client), client, wallets, testLogger, FundingConfig{
		PublicKey:   "pk_test",
		CallbackURL: "https://app.test/wallet/fund/callback",
		Policy:      DefaultPolicy(),
	})
	return &fundingFixture{api: api, repo: repo, wallets: wallets, svc: svc}
}

func hostedGateway(c *backend.Client) gateway.Gateway { return gateway.NewHosted(c) }

// ==============================================
// CARD FUNDING
// ==============================================

func TestCardFunding_EndToEnd(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "pay_123" })
	ctx := context.Background()

	before, err := fx.wallets.Refresh(ctx, testUser)
	require.NoError(t, err)

	started, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "5000")
	require.NoError(t, err)
	assert.Equal(t, models.FundingGatewayPending, started.Session.State)
	assert.Equal(t, "https://checkout.test/pay_123", started.Session.CheckoutURL)

	fx.api.setVerify("pay_123", models.TransactionStatusCompleted)
	res, err := fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: "pay_123", Outcome: gateway.OutcomeSuccess})
	require.NoError(t, err)

	assert.Equal(t, models.FundingFunded, res.Session.State)
	assert.Equal(t, models.NoticeSuccess, res.Notice.Level)

	after, err := fx.wallets.Snapshot(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, after.Wallet.Balance.Equal(before.Wallet.Balance.Add(decimal.NewFromInt(5000))),
		"balance %s", after.Wallet.Balance)

	var matching []models.Transaction
	for _, txn := range after.Transactions {
		if txn.Reference == "pay_123" {
			matching = append(matching, txn)
		}
	}
	require.Len(t, matching, 1)
	assert.Equal(t, models.TransactionStatusCompleted, matching[0].Status)

	_, _, fundApply := fx.api.counts()
	assert.Zero(t, fundApply, "card path must not call POST /wallet/fund")
}

func TestCardFunding_BelowMinimumNeverReachesGateway(t *testing.T) {
	gw := &MockGateway{}
	fx := newFundingFixture(t, func(*backend.Client) gateway.Gateway { return gw })

	_, err := fx.svc.StartCardFunding(context.Background(), testUser, testEmail, "50")

	require.Error(t, err)
	var fe *models.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "amount", fe.Field)
	assert.ErrorIs(t, err, models.ErrAmountTooSmall)
	assert.Empty(t, gw.calls)

	stored, _ := fx.repo.ListByState(context.Background(), models.FundingAmountEntered, time.Now().Add(time.Hour), 0)
	assert.Empty(t, stored, "no session is created for an invalid amount")
}

func TestCardFunding_InvalidAmounts(t *testing.T) {
	gw := &MockGateway{}
	fx := newFundingFixture(t, func(*backend.Client) gateway.Gateway { return gw })

	for _, input := range []string{"", "abc", "0", "-100", "100.5", "999999999"} {
		_, err := fx.svc.StartCardFunding(context.Background(), testUser, testEmail, input)
		assert.Equal(t, models.KindValidation, models.KindOf(err), "input %q", input)
	}
	assert.Empty(t, gw.calls)
}

func TestCardFunding_GatewayConfig(t *testing.T) {
	gw := &MockGateway{}
	fx := newFundingFixture(t, func(*backend.Client) gateway.Gateway { return gw })

	res, err := fx.svc.StartCardFunding(context.Background(), testUser, testEmail, "2,500")
	require.NoError(t, err)

	require.Len(t, gw.calls, 1)
	cfg := gw.calls[0]
	assert.Equal(t, res.Session.Reference, cfg.Reference)
	assert.Contains(t, cfg.Reference, gateway.ReferencePrefix)
	assert.Equal(t, int64(250000), cfg.Amount)
	assert.Equal(t, testEmail, cfg.Email)
	assert.Equal(t, "pk_test", cfg.PublicKey)
	assert.Equal(t, gateway.PurposeWalletFunding, cfg.Metadata["purpose"])
	assert.Equal(t, testUser, cfg.Metadata["user_id"])
}

func TestCardFunding_GatewayFailureReturnsToIdle(t *testing.T) {
	gw := &MockGateway{InitializeFunc: func(ctx context.Context, cfg gateway.Config) (*gateway.Checkout, error) {
		return nil, models.ErrGatewayUnavailable
	}}
	fx := newFundingFixture(t, func(*backend.Client) gateway.Gateway { return gw })
	fx.svc.WithReferences(func() string { return "fund_fail" })

	_, err := fx.svc.StartCardFunding(context.Background(), testUser, testEmail, "1000")
	require.ErrorIs(t, err, models.ErrGatewayUnavailable)

	session, err := fx.repo.Get(context.Background(), "fund_fail")
	require.NoError(t, err, "reference is retained")
	assert.Equal(t, models.FundingIdle, session.State)
	assert.NotEmpty(t, session.LastError)
}

func TestCardFunding_CancelSkipsVerification(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_cancel" })
	ctx := context.Background()

	_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "1000")
	require.NoError(t, err)

	res, err := fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: "fund_cancel", Outcome: gateway.OutcomeCancelled})
	require.NoError(t, err)

	assert.Equal(t, models.FundingIdle, res.Session.State)
	assert.Equal(t, models.KindCancelled, res.Notice.Kind)
	assert.Equal(t, models.NoticeInfo, res.Notice.Level)

	_, verifies, _ := fx.api.counts()
	assert.Zero(t, verifies)
}

func TestCardFunding_PendingVerificationIsSoft(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_slow" })
	ctx := context.Background()

	_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "1000")
	require.NoError(t, err)

	res, err := fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: "fund_slow", Outcome: gateway.OutcomeSuccess})
	require.NoError(t, err, "not yet confirmed is not a hard failure")
	assert.Equal(t, models.FundingVerificationFailed, res.Session.State)
	assert.Equal(t, models.NoticeInfo, res.Notice.Level)
	assert.True(t, res.Session.Retryable())

	fx.api.setVerify("fund_slow", models.TransactionStatusCompleted)
	res, err = fx.svc.RetryVerification(ctx, testUser, "fund_slow")
	require.NoError(t, err)
	assert.Equal(t, models.FundingFunded, res.Session.State)
	assert.Equal(t, 2, res.Session.Attempts)

	_, err = fx.svc.RetryVerification(ctx, testUser, "fund_slow")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestVerify_RepeatedIsSafe(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_twice" })
	ctx := context.Background()

	_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "3000")
	require.NoError(t, err)
	fx.api.setVerify("fund_twice", models.TransactionStatusCompleted)

	_, err = fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: "fund_twice", Outcome: gateway.OutcomeSuccess})
	require.NoError(t, err)
	res, err := fx.svc.Verify(ctx, testUser, "fund_twice")
	require.NoError(t, err)
	assert.Equal(t, models.FundingFunded, res.Session.State)

	_, verifies, fundApply := fx.api.counts()
	assert.Equal(t, 2, verifies)
	assert.Zero(t, fundApply)

	snap, err := fx.wallets.Refresh(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(23000).Equal(snap.Wallet.Balance), "credited once, got %s", snap.Wallet.Balance)
}

func TestSession_OwnedByCaller(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_mine" })
	ctx := context.Background()

	_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "1000")
	require.NoError(t, err)

	_, err = fx.svc.Session(ctx, "someone-else", "fund_mine")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = fx.svc.Verify(ctx, testUser, "fund_unknown")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestDismiss(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_dismiss" })
	ctx := context.Background()

	_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "1000")
	require.NoError(t, err)
	_, err = fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: "fund_dismiss", Outcome: gateway.OutcomeSuccess})
	require.NoError(t, err)

	session, err := fx.svc.Dismiss(ctx, testUser, "fund_dismiss")
	require.NoError(t, err)
	assert.Equal(t, models.FundingIdle, session.State)

	_, err = fx.svc.Dismiss(ctx, testUser, "fund_dismiss")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

// ==============================================
// BANK TRANSFER
// ==============================================

func TestBankTransfer_LeavesBalanceUntouched(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	ctx := context.Background()

	before, err := fx.wallets.Refresh(ctx, testUser)
	require.NoError(t, err)

	res, err := fx.svc.SubmitBankTransfer(ctx, testUser, testEmail, "10000", "paid from GTBank")
	require.NoError(t, err)

	assert.Equal(t, models.FundingIdle, res.Session.State)
	assert.Equal(t, models.FundingMethodBankTransfer, res.Session.Method)
	require.NotNil(t, res.Transaction)
	assert.True(t, res.Transaction.IsPending())

	after, err := fx.wallets.Snapshot(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, before.Wallet.Balance.Equal(after.Wallet.Balance))
	require.NotEmpty(t, after.Transactions)
	assert.Equal(t, models.TransactionStatusPending, after.Transactions[0].Status)
	assert.True(t, decimal.NewFromInt(10000).Equal(after.Transactions[0].Amount))

	initCalls, _, fundApply := fx.api.counts()
	assert.Zero(t, initCalls)
	assert.Equal(t, 1, fundApply)
}

func TestBankTransfer_BackendFailure(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	fx.svc.WithReferences(func() string { return "fund_bt" })
	fx.svc.api = failingFundingAPI{}

	_, err := fx.svc.SubmitBankTransfer(context.Background(), testUser, testEmail, "10000", "")
	require.Error(t, err)

	session, err := fx.repo.Get(context.Background(), "fund_bt")
	require.NoError(t, err)
	assert.Equal(t, models.FundingIdle, session.State)
}

type failingFundingAPI struct{}

func (failingFundingAPI) VerifyFunding(ctx context.Context, reference string) (*backend.FundingVerification, error) {
	return nil, errors.New("verify down")
}

func (failingFundingAPI) FundByBankTransfer(ctx context.Context, req models.BankTransferFundingRequest) (*models.Transaction, error) {
	return nil, &backend.APIError{Status: 500, Message: "boom"}
}

// ==============================================
// RECONCILIATION
// ==============================================

func TestReverifyStale(t *testing.T) {
	fx := newFundingFixture(t, hostedGateway)
	ctx := context.Background()
	refs := []string{"fund_r1", "fund_r2"}
	i := 0
	fx.svc.WithReferences(func() string { i++; return refs[i-1] })

	for _, ref := range refs {
		_, err := fx.svc.StartCardFunding(ctx, testUser, testEmail, "1000")
		require.NoError(t, err)
		_, err = fx.svc.HandleGatewayCallback(ctx, testUser, gateway.Callback{Reference: ref, Outcome: gateway.OutcomeSuccess})
		require.NoError(t, err)
	}
	fx.api.setVerify("fund_r1", models.TransactionStatusCompleted)

	fx.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	funded, err := fx.svc.ReverifyStale(ctx, 10*time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, funded)

	s1, _ := fx.repo.Get(ctx, "fund_r1")
	s2, _ := fx.repo.Get(ctx, "fund_r2")
	assert.Equal(t, models.FundingFunded, s1.State)
	assert.Equal(t, models.FundingVerificationFailed, s2.State)
}
