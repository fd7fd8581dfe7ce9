package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsufficientFundsResponse explains a rejected debit.
type InsufficientFundsResponse struct {
	Error           string `json:"error" example:"Insufficient funds"`
	CurrentBalance  string `json:"current_balance" example:"-40.00"`
	RequestedAmount string `json:"requested_amount" example:"160.00"`
	Available       string `json:"available" example:"10.00"`
}

// respondWithError maps a service error onto a status code and body.
// Unexpected errors are logged and hidden behind fallback.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var fundsErr *apperrors.InsufficientFundsError
	switch {
	case errors.As(err, &fundsErr):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, InsufficientFundsResponse{
			Error:           "Insufficient funds",
			CurrentBalance:  fundsErr.Balance.StringFixed(2),
			RequestedAmount: fundsErr.Requested.StringFixed(2),
			Available:       fundsErr.Available.StringFixed(2),
		})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Insufficient funds"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInactive):
		logger.Warn("Resource inactive", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Warn("Unauthorized", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
