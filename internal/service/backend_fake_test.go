package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeAPI is an in-process stand-in for the backend. It credits a card
// payment on the first completed verify of a reference, like the real one.
type fakeAPI struct {
	mu sync.Mutex

	wallet   models.Wallet
	txns     []models.Transaction
	accounts []models.BankAccount

	verifyStatus map[string]models.TransactionStatus
	amounts      map[string]decimal.Decimal
	credited     map[string]bool

	failInit   bool
	initCalls  int
	verifies   int
	fundApply  int
	withdraws  []models.WithdrawRequest
	transfers  []models.TransferRequest
	resends    int
	failResend bool
}

func newFakeAPI(t *testing.T, balance int64) (*fakeAPI, *backend.Client) {
	t.Helper()
	f := &fakeAPI{
		wallet: models.Wallet{
			ID:               "w1",
			UserID:           "user-1",
			Balance:          decimal.NewFromInt(balance),
			AvailableBalance: decimal.NewFromInt(balance),
			Currency:         "NGN",
		},
		accounts: []models.BankAccount{
			{ID: "acc-1", BankName: "GTBank", AccountNumber: "0123456789", AccountName: "Ada Obi", IsDefault: true},
			{ID: "acc-2", BankName: "Access", AccountNumber: "9876543210", AccountName: "Ada Obi"},
		},
		verifyStatus: map[string]models.TransactionStatus{},
		amounts:      map[string]decimal.Decimal{},
		credited:     map[string]bool{},
	}

	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)
	return f, backend.New(srv.URL)
}

func (f *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wallet", f.locked(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, models.Envelope[models.Wallet]{Data: f.wallet})
	}))
	mux.HandleFunc("GET /wallet/transactions", f.locked(func(w http.ResponseWriter, r *http.Request) {
		data := make([]models.Transaction, len(f.txns))
		for i, t := range f.txns {
			data[len(f.txns)-1-i] = t
		}
		reply(w, http.StatusOK, models.Page[models.Transaction]{Data: data, Total: len(data), Pages: 1, CurrentPage: 1})
	}))
	mux.HandleFunc("GET /wallet/bank-accounts", f.locked(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, models.Envelope[[]models.BankAccount]{Data: f.accounts})
	}))
	mux.HandleFunc("POST /wallet/bank-accounts", f.locked(func(w http.ResponseWriter, r *http.Request) {
		var req models.NewBankAccountRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		acc := models.BankAccount{ID: fmt.Sprintf("acc-%d", len(f.accounts)+1), BankName: req.BankName,
			AccountNumber: req.AccountNumber, AccountName: req.AccountName}
		f.accounts = append(f.accounts, acc)
		reply(w, http.StatusCreated, models.Envelope[models.BankAccount]{Data: acc})
	}))
	mux.HandleFunc("DELETE /wallet/bank-accounts/{id}", f.locked(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /wallet/bank-accounts/{id}/default", f.locked(func(w http.ResponseWriter, r *http.Request) {
		f.accounts = models.MarkDefault(f.accounts, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /wallet/fund/initialize", f.locked(func(w http.ResponseWriter, r *http.Request) {
		f.initCalls++
		if f.failInit {
			reply(w, http.StatusBadGateway, map[string]string{"message": "gateway down"})
			return
		}
		var req backend.InitializeFundingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.amounts[req.Reference] = decimal.NewFromInt(req.Amount).Div(decimal.NewFromInt(100))
		reply(w, http.StatusOK, models.Envelope[backend.FundingInitialization]{Data: backend.FundingInitialization{
			Reference: req.Reference, AuthorizationURL: "https://checkout.test/" + req.Reference,
		}})
	}))
	mux.HandleFunc("GET /wallet/fund/verify/{ref}", f.locked(func(w http.ResponseWriter, r *http.Request) {
		f.verifies++
		ref := r.PathValue("ref")
		status, ok := f.verifyStatus[ref]
		if !ok {
			status = models.TransactionStatusPending
		}
		if status == models.TransactionStatusCompleted && !f.credited[ref] {
			f.credited[ref] = true
			f.credit(ref, f.amounts[ref])
		}
		reply(w, http.StatusOK, models.Envelope[backend.FundingVerification]{Data: backend.FundingVerification{
			Reference: ref, Status: status, Amount: f.amounts[ref],
		}})
	}))
	mux.HandleFunc("POST /wallet/fund", f.locked(func(w http.ResponseWriter, r *http.Request) {
		f.fundApply++
		var req models.BankTransferFundingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		txn := f.record(models.TransactionTypeDeposit, models.TransactionStatusPending, req.Reference, req.Amount)
		f.wallet.PendingBalance = f.wallet.PendingBalance.Add(req.Amount)
		reply(w, http.StatusCreated, models.Envelope[models.Transaction]{Data: txn})
	}))
	mux.HandleFunc("POST /wallet/withdraw", f.locked(func(w http.ResponseWriter, r *http.Request) {
		var req models.WithdrawRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.withdraws = append(f.withdraws, req)
		txn := f.record(models.TransactionTypeWithdrawal, models.TransactionStatusPending, req.IdempotencyKey, req.Amount)
		f.wallet.AvailableBalance = f.wallet.AvailableBalance.Sub(req.Amount)
		reply(w, http.StatusCreated, models.Envelope[models.Transaction]{Data: txn})
	}))
	mux.HandleFunc("POST /wallet/transfer", f.locked(func(w http.ResponseWriter, r *http.Request) {
		var req models.TransferRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.transfers = append(f.transfers, req)
		switch {
		case strings.HasPrefix(req.Recipient, "ghost"):
			reply(w, http.StatusNotFound, map[string]string{"message": "Recipient not found"})
		case req.Amount.GreaterThan(f.wallet.AvailableBalance):
			reply(w, http.StatusBadRequest, map[string]string{"message": "Insufficient balance"})
		default:
			txn := f.record(models.TransactionTypeTransfer, models.TransactionStatusCompleted, req.IdempotencyKey, req.Amount)
			f.wallet.Balance = f.wallet.Balance.Sub(req.Amount)
			f.wallet.AvailableBalance = f.wallet.AvailableBalance.Sub(req.Amount)
			reply(w, http.StatusCreated, models.Envelope[models.Transaction]{Data: txn})
		}
	}))
	mux.HandleFunc("POST /auth/resend-verification", f.locked(func(w http.ResponseWriter, r *http.Request) {
		f.resends++
		if f.failResend {
			reply(w, http.StatusInternalServerError, map[string]string{"message": "mailer down"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return mux
}

func (f *fakeAPI) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		h(w, r)
	}
}

func (f *fakeAPI) credit(ref string, amount decimal.Decimal) {
	f.wallet.Balance = f.wallet.Balance.Add(amount)
	f.wallet.AvailableBalance = f.wallet.AvailableBalance.Add(amount)
	f.record(models.TransactionTypeDeposit, models.TransactionStatusCompleted, ref, amount)
}

func (f *fakeAPI) record(typ models.TransactionType, status models.TransactionStatus, ref string, amount decimal.Decimal) models.Transaction {
	txn := models.Transaction{
		ID:        fmt.Sprintf("txn-%d", len(f.txns)+1),
		Type:      typ,
		Amount:    amount,
		Status:    status,
		Reference: ref,
		CreatedAt: time.Now(),
	}
	f.txns = append(f.txns, txn)
	return txn
}

func (f *fakeAPI) setVerify(ref string, status models.TransactionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyStatus[ref] = status
}

func (f *fakeAPI) counts() (initCalls, verifies, fundApply int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls, f.verifies, f.fundApply
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var testLogger = zap.NewNop()
