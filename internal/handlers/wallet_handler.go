package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Brownie44l1/propvest/internal/api/dto"
	"github.com/Brownie44l1/propvest/internal/auth"
	"github.com/Brownie44l1/propvest/internal/gateway"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/pagination"
	"github.com/Brownie44l1/propvest/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ==============================================
// SERVICE INTERFACES (for testing)
// ==============================================

type WalletService interface {
	Snapshot(ctx context.Context, userID string) (*service.Snapshot, error)
	Refresh(ctx context.Context, userID string) (*service.Snapshot, error)
	Transactions(ctx context.Context, userID string, n int) ([]models.Transaction, pagination.State, error)
	BankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error)
	AddBankAccount(ctx context.Context, userID string, req models.NewBankAccountRequest) (*models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, userID, id string) error
	SetDefaultBankAccount(ctx context.Context, userID, id string) ([]models.BankAccount, error)
}

type FundingService interface {
	StartCardFunding(ctx context.Context, userID, email, amount string) (*service.FundingResult, error)
	HandleGatewayCallback(ctx context.Context, userID string, cb gateway.Callback) (*service.FundingResult, error)
	Verify(ctx context.Context, userID, reference string) (*service.FundingResult, error)
	RetryVerification(ctx context.Context, userID, reference string) (*service.FundingResult, error)
	Dismiss(ctx context.Context, userID, reference string) (*models.FundingSession, error)
	Session(ctx context.Context, userID, reference string) (*models.FundingSession, error)
	SubmitBankTransfer(ctx context.Context, userID, email, amount, note string) (*service.FundingResult, error)
}

type TransferService interface {
	Withdraw(ctx context.Context, userID, amount, bankAccountID string) (*service.TransferResult, error)
	Transfer(ctx context.Context, userID, email, recipient, amount, note string) (*service.TransferResult, error)
}

type VerificationService interface {
	Resend(ctx context.Context, email, purpose string) (models.Notice, error)
	Remaining(ctx context.Context, email, purpose string) (int, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type WalletHandler struct {
	wallets      WalletService
	funding      FundingService
	transfers    TransferService
	verification VerificationService
	logger       *zap.Logger
}

func NewWalletHandler(
	wallets WalletService,
	funding FundingService,
	transfers TransferService,
	verification VerificationService,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		wallets:      wallets,
		funding:      funding,
		transfers:    transfers,
		verification: verification,
		logger:       logger,
	}
}

// ==============================================
// WALLET
// ==============================================

// GetWallet handles GET /api/v1/wallet (?refresh=true forces a re-fetch)
func (h *WalletHandler) GetWallet(c *gin.Context) {
	var (
		snap *service.Snapshot
		err  error
	)
	if c.Query("refresh") == "true" {
		snap, err = h.wallets.Refresh(c.Request.Context(), auth.UserID(c))
	} else {
		snap, err = h.wallets.Snapshot(c.Request.Context(), auth.UserID(c))
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, snap)
}

// GetTransactions handles GET /api/v1/wallet/transactions?page=
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respondError(c, http.StatusBadRequest, "Invalid page", errInvalidPage)
		return
	}

	items, state, err := h.wallets.Transactions(c.Request.Context(), auth.UserID(c), page)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": items, "page": state})
}

// ==============================================
// FUNDING
// ==============================================

// FundWithCard handles POST /api/v1/wallet/fund/card
func (h *WalletHandler) FundWithCard(c *gin.Context) {
	var req dto.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	res, err := h.funding.StartCardFunding(c.Request.Context(), auth.UserID(c), auth.Email(c), string(req.Amount))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, res)
}

// FundingCallback handles GET /api/v1/wallet/fund/callback?reference=&status=
func (h *WalletHandler) FundingCallback(c *gin.Context) {
	cb, err := gateway.ParseCallback(c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	res, err := h.funding.HandleGatewayCallback(c.Request.Context(), auth.UserID(c), cb)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// GetFunding handles GET /api/v1/wallet/fund/:reference
func (h *WalletHandler) GetFunding(c *gin.Context) {
	session, err := h.funding.Session(c.Request.Context(), auth.UserID(c), c.Param("reference"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, session)
}

// VerifyFunding handles POST /api/v1/wallet/fund/:reference/verify
func (h *WalletHandler) VerifyFunding(c *gin.Context) {
	res, err := h.funding.Verify(c.Request.Context(), auth.UserID(c), c.Param("reference"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// RetryFunding handles POST /api/v1/wallet/fund/:reference/retry
func (h *WalletHandler) RetryFunding(c *gin.Context) {
	res, err := h.funding.RetryVerification(c.Request.Context(), auth.UserID(c), c.Param("reference"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// DismissFunding handles POST /api/v1/wallet/fund/:reference/dismiss
func (h *WalletHandler) DismissFunding(c *gin.Context) {
	session, err := h.funding.Dismiss(c.Request.Context(), auth.UserID(c), c.Param("reference"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, session)
}

// FundWithBankTransfer handles POST /api/v1/wallet/fund/bank-transfer
func (h *WalletHandler) FundWithBankTransfer(c *gin.Context) {
	var req dto.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	res, err := h.funding.SubmitBankTransfer(c.Request.Context(), auth.UserID(c), auth.Email(c), string(req.Amount), req.Note)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, res)
}

// ==============================================
// WITHDRAW / TRANSFER
// ==============================================

// Withdraw handles POST /api/v1/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	res, err := h.transfers.Withdraw(c.Request.Context(), auth.UserID(c), string(req.Amount), req.BankAccountID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, res)
}

// Transfer handles POST /api/v1/wallet/transfer
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	res, err := h.transfers.Transfer(c.Request.Context(), auth.UserID(c), auth.Email(c), req.Recipient, string(req.Amount), req.Note)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// ==============================================
// BANK ACCOUNTS
// ==============================================

func (h *WalletHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.wallets.BankAccounts(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": accounts})
}

func (h *WalletHandler) AddBankAccount(c *gin.Context) {
	var req models.NewBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid bank account", err)
		return
	}

	account, err := h.wallets.AddBankAccount(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"data": account, "notice": models.SuccessNotice("Bank account added.")})
}

func (h *WalletHandler) DeleteBankAccount(c *gin.Context) {
	if err := h.wallets.DeleteBankAccount(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WalletHandler) SetDefaultBankAccount(c *gin.Context) {
	accounts, err := h.wallets.SetDefaultBankAccount(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": accounts})
}

// ==============================================
// VERIFICATION
// ==============================================

// ResendVerification handles POST /api/v1/verification/resend
func (h *WalletHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	notice, err := h.verification.Resend(c.Request.Context(), req.Email, req.Purpose)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	left, err := h.verification.Remaining(c.Request.Context(), req.Email, req.Purpose)
	if err != nil {
		h.logger.Warn("failed to read resend countdown", zap.Error(err))
	}
	respondSuccess(c, http.StatusOK, dto.ResendVerificationResponse{Message: notice.Message, RetryInSeconds: left})
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *WalletHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	wallet := v1.Group("/wallet")
	{
		wallet.GET("", h.GetWallet)
		wallet.GET("/transactions", h.GetTransactions)

		wallet.POST("/fund/card", h.FundWithCard)
		wallet.GET("/fund/callback", h.FundingCallback)
		wallet.POST("/fund/bank-transfer", h.FundWithBankTransfer)
		wallet.GET("/fund/:reference", h.GetFunding)
		wallet.POST("/fund/:reference/verify", h.VerifyFunding)
		wallet.POST("/fund/:reference/retry", h.RetryFunding)
		wallet.POST("/fund/:reference/dismiss", h.DismissFunding)

		wallet.POST("/withdraw", h.Withdraw)
		wallet.POST("/transfer", h.Transfer)

		wallet.GET("/bank-accounts", h.ListBankAccounts)
		wallet.POST("/bank-accounts", h.AddBankAccount)
		wallet.DELETE("/bank-accounts/:id", h.DeleteBankAccount)
		wallet.POST("/bank-accounts/:id/default", h.SetDefaultBankAccount)
	}

	v1.POST("/verification/resend", h.ResendVerification)
}
