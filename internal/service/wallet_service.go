package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/pagination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ==============================================
// BACKEND INTERFACE (for testing)
// ==============================================

type WalletAPI interface {
	GetWallet(ctx context.Context) (*models.Wallet, error)
	ListTransactions(ctx context.Context, q models.PageQuery) (*models.Page[models.Transaction], error)
	ListBankAccounts(ctx context.Context) ([]models.BankAccount, error)
	AddBankAccount(ctx context.Context, req models.NewBankAccountRequest) (*models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, id string) error
	SetDefaultBankAccount(ctx context.Context, id string) error
}

var _ WalletAPI = (*backend.Client)(nil)

// Snapshot is what the wallet page shows: the balance, one page of
// transactions and the user's bank accounts.
type Snapshot struct {
	Wallet       *models.Wallet       `json:"wallet"`
	Transactions []models.Transaction `json:"transactions"`
	Page         pagination.State     `json:"page"`
	BankAccounts []models.BankAccount `json:"bankAccounts"`
	RefreshedAt  time.Time            `json:"refreshedAt"`
}

type userWallet struct {
	mu          sync.RWMutex
	loaded      bool
	wallet      *models.Wallet
	accounts    []models.BankAccount
	txns        *pagination.Controller[models.Transaction]
	refreshedAt time.Time
}

// ==============================================
// SERVICE
// ==============================================

// WalletService keeps a per-user view of the wallet. Nothing here computes a
// balance: every state-changing flow ends with Refresh.
type WalletService struct {
	api      WalletAPI
	logger   *zap.Logger
	pageSize int

	mu    sync.Mutex
	users map[string]*userWallet
}

func NewWalletService(api WalletAPI, logger *zap.Logger, pageSize int) *WalletService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &WalletService{
		api:      api,
		logger:   logger,
		pageSize: pageSize,
		users:    make(map[string]*userWallet),
	}
}

func (s *WalletService) user(userID string) *userWallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = &userWallet{txns: pagination.New[models.Transaction](s.api.ListTransactions, s.pageSize)}
		s.users[userID] = u
	}
	return u
}

// Refresh re-fetches the wallet, the current transactions page and the bank
// accounts concurrently.
func (s *WalletService) Refresh(ctx context.Context, userID string) (*Snapshot, error) {
	u := s.user(userID)

	page := u.txns.State().CurrentPage
	if page < 1 {
		page = 1
	}

	var (
		wallet   *models.Wallet
		accounts []models.BankAccount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.api.GetWallet(gctx)
		if err != nil {
			return fmt.Errorf("failed to get wallet: %w", err)
		}
		wallet = w
		return nil
	})
	g.Go(func() error {
		err := u.txns.RequestPage(gctx, page)
		if err != nil && !errors.Is(err, pagination.ErrSuperseded) {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a, err := s.api.ListBankAccounts(gctx)
		if err != nil {
			return fmt.Errorf("failed to list bank accounts: %w", err)
		}
		accounts = a
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("wallet refresh failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	u.mu.Lock()
	u.wallet = wallet
	u.accounts = accounts
	u.loaded = true
	u.refreshedAt = time.Now()
	u.mu.Unlock()

	s.logger.Debug("wallet refreshed",
		zap.String("user_id", userID),
		zap.String("balance", wallet.Balance.String()))
	return u.snapshot(), nil
}

// Snapshot returns the cached view, loading it first if needed.
func (s *WalletService) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	u := s.user(userID)
	u.mu.RLock()
	loaded := u.loaded
	u.mu.RUnlock()

	if !loaded {
		return s.Refresh(ctx, userID)
	}
	return u.snapshot(), nil
}

// Invalidate forces the next Snapshot to re-fetch. Used when a background job
// learns the wallet changed but holds no user token.
func (s *WalletService) Invalidate(userID string) {
	u := s.user(userID)
	u.mu.Lock()
	u.loaded = false
	u.mu.Unlock()
}

// Transactions loads page n of the user's transaction history.
func (s *WalletService) Transactions(ctx context.Context, userID string, n int) ([]models.Transaction, pagination.State, error) {
	u := s.user(userID)
	if err := u.txns.RequestPage(ctx, n); err != nil {
		return nil, pagination.State{}, err
	}
	return u.txns.Items(), u.txns.State(), nil
}

// ==============================================
// BANK ACCOUNTS
// ==============================================

func (s *WalletService) BankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.BankAccounts, nil
}

func (s *WalletService) AddBankAccount(ctx context.Context, userID string, req models.NewBankAccountRequest) (*models.BankAccount, error) {
	account, err := s.api.AddBankAccount(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add bank account: %w", err)
	}

	u := s.user(userID)
	u.mu.Lock()
	if account.IsDefault {
		u.accounts = models.MarkDefault(u.accounts, account.ID)
	}
	u.accounts = append(u.accounts, *account)
	u.mu.Unlock()

	s.logger.Info("bank account added", zap.String("user_id", userID), zap.String("bank", account.BankName))
	return account, nil
}

func (s *WalletService) DeleteBankAccount(ctx context.Context, userID, id string) error {
	if err := s.api.DeleteBankAccount(ctx, id); err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}

	u := s.user(userID)
	u.mu.Lock()
	kept := u.accounts[:0:0]
	for _, a := range u.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	u.accounts = kept
	u.mu.Unlock()
	return nil
}

// SetDefaultBankAccount marks id as default once the backend confirms; the
// previous default is cleared locally so at most one stays default.
func (s *WalletService) SetDefaultBankAccount(ctx context.Context, userID, id string) ([]models.BankAccount, error) {
	if err := s.api.SetDefaultBankAccount(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to set default bank account: %w", err)
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.accounts = models.MarkDefault(u.accounts, id)
	return cloneAccounts(u.accounts), nil
}

func (u *userWallet) snapshot() *Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	snap := &Snapshot{
		Transactions: u.txns.Items(),
		Page:         u.txns.State(),
		BankAccounts: cloneAccounts(u.accounts),
		RefreshedAt:  u.refreshedAt,
	}
	if u.wallet != nil {
		w := *u.wallet
		snap.Wallet = &w
	}
	return snap
}

func cloneAccounts(in []models.BankAccount) []models.BankAccount {
	out := make([]models.BankAccount, len(in))
	copy(out, in)
	return out
}
