package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInactive indicates that the target account or user is not in an active state.
var ErrInactive = errors.New("resource is not active")

// ErrInsufficientFunds indicates that balance plus overdraft does not cover the requested debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrStoreFailure indicates that the backing store could not complete the operation.
var ErrStoreFailure = errors.New("store failure")

// ErrIdentifierCollision is returned when a freshly generated account number, IBAN or
// transaction reference already exists. The whole unit of work can be retried.
var ErrIdentifierCollision = errors.New("generated identifier already in use")

// InsufficientFundsError carries the figures needed to explain a rejected debit.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s, available %s",
		e.Balance.StringFixed(2), e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// Is lets errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// NewInsufficientFundsError builds an InsufficientFundsError from the account figures.
func NewInsufficientFundsError(balance, overdraft, requested decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{
		Balance:   balance,
		Requested: requested,
		Available: balance.Add(overdraft),
	}
}

// AppError wraps an underlying error with an HTTP-ish status code and a safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStoreError wraps a driver error so that it matches ErrStoreFailure.
func NewStoreError(message string, err error) *AppError {
	return NewAppError(500, message, fmt.Errorf("%w: %w", ErrStoreFailure, err))
}
