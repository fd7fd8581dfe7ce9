package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/dto"
	"github.com/SscSPs/banking_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves the transaction endpoints.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers the transaction routes. idempotency wraps the money movements only.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, idempotency gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService)

	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.GET("/reference/:reference", h.getByReference)
		txns.POST("/deposit", idempotency, h.deposit)
		txns.POST("/withdrawal", idempotency, h.withdraw)
		txns.POST("/transfer", idempotency, h.transfer)
		txns.POST("/payment", idempotency, h.pay)
	}
}

// deposit godoc
// @Summary Deposit money
// @Description Credits an active account owned by the caller
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.LedgerReceiptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Account is not active"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/deposit [post]
func (h *ledgerHandler) deposit(c *gin.Context) {
	var req dto.DepositRequest
	userID, logger, ok := bindMovement(c, &req)
	if !ok {
		return
	}
	receipt, err := h.ledgerService.Deposit(c.Request.Context(), userID, req)
	respondWithReceipt(c, logger.With(slog.Int64("account_id", req.AccountID)), receipt, err, "Failed to process deposit")
}

// withdraw godoc
// @Summary Withdraw money
// @Description Debits an active account owned by the caller within balance plus overdraft
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param withdrawal body dto.WithdrawalRequest true "Withdrawal details"
// @Success 201 {object} dto.LedgerReceiptResponse
// @Failure 400 {object} InsufficientFundsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/withdrawal [post]
func (h *ledgerHandler) withdraw(c *gin.Context) {
	var req dto.WithdrawalRequest
	userID, logger, ok := bindMovement(c, &req)
	if !ok {
		return
	}
	receipt, err := h.ledgerService.Withdraw(c.Request.Context(), userID, req)
	respondWithReceipt(c, logger.With(slog.Int64("account_id", req.AccountID)), receipt, err, "Failed to process withdrawal")
}

// transfer godoc
// @Summary Transfer money
// @Description Debits the source account and credits the recipient when the IBAN belongs to this bank
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.LedgerReceiptResponse
// @Failure 400 {object} InsufficientFundsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/transfer [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	var req dto.TransferRequest
	userID, logger, ok := bindMovement(c, &req)
	if !ok {
		return
	}
	receipt, err := h.ledgerService.Transfer(c.Request.Context(), userID, req)
	respondWithReceipt(c, logger.With(slog.Int64("account_id", req.FromAccountID)), receipt, err, "Failed to process transfer")
}

// pay godoc
// @Summary Pay a merchant
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param payment body dto.PaymentRequest true "Payment details"
// @Success 201 {object} dto.LedgerReceiptResponse
// @Failure 400 {object} InsufficientFundsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/payment [post]
func (h *ledgerHandler) pay(c *gin.Context) {
	var req dto.PaymentRequest
	userID, logger, ok := bindMovement(c, &req)
	if !ok {
		return
	}
	receipt, err := h.ledgerService.Pay(c.Request.Context(), userID, req)
	respondWithReceipt(c, logger.With(slog.Int64("account_id", req.AccountID)), receipt, err, "Failed to process payment")
}

// listTransactions godoc
// @Summary Transaction history
// @Description Newest first, optionally restricted to one account
// @Tags transactions
// @Produce json
// @Param account_id query int false "Account ID"
// @Param page query int false "Page number" default(1) minimum(1) maximum(100000)
// @Param per_page query int false "Rows per page" default(20)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid history query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getByReference godoc
// @Summary Transactions by reference
// @Description Returns the caller's rows sharing a reference, such as both legs of an internal transfer
// @Tags transactions
// @Produce json
// @Param reference path string true "Reference number"
// @Success 200 {object} dto.ListTransactionsByReferenceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/reference/{reference} [get]
func (h *ledgerHandler) getByReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	reference := c.Param("reference")

	txns, err := h.ledgerService.GetTransactionsByReference(c.Request.Context(), userID, reference)
	if err != nil {
		respondWithError(c, logger.With(slog.String("reference", reference)), err, "Failed to look up reference")
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsByReferenceResponse{
		ReferenceNumber: reference,
		Transactions:    dto.ToTransactionResponses(txns),
	})
}

// bindMovement resolves the caller and binds the JSON body shared by all money movements.
func bindMovement(c *gin.Context, req any) (int64, *slog.Logger, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return 0, logger, false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Failed to bind money movement request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return 0, logger, false
	}
	return userID, logger, true
}

func respondWithReceipt(c *gin.Context, logger *slog.Logger, receipt *domain.LedgerReceipt, err error, fallback string) {
	if err != nil {
		respondWithError(c, logger, err, fallback)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerReceiptResponse(receipt))
}
