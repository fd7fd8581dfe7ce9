package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/banking_backoffice/internal/middleware"
)

// maxIdentifierAttempts bounds how often a unit of work is replayed after a
// generated account number, IBAN or reference clashed with an existing one.
const maxIdentifierAttempts = 3

// BaseService provides common functionality for all services
type BaseService struct {
	txManager portsrepo.TransactionManager
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// atomically runs fn as one unit of work. Every mutating operation goes through here.
// The unit is replayed from scratch when a freshly generated identifier collides,
// and the collision is reported as a conflict once the attempts are used up. The returned
// error still matches ErrIdentifierCollision so callers can tell it from a genuine duplicate.
func (s *BaseService) atomically(ctx context.Context, op string, fn portsrepo.TxFunc) error {
	var err error
	for attempt := 1; attempt <= maxIdentifierAttempts; attempt++ {
		err = s.txManager.WithinTx(ctx, fn)
		if !errors.Is(err, apperrors.ErrIdentifierCollision) {
			return err
		}
		s.LogDebug(ctx, "Generated identifier collided, retrying unit of work",
			slog.String("operation", op), slog.Int("attempt", attempt))
	}
	s.LogError(ctx, err, "Identifier collisions exhausted retries", slog.String("operation", op))
	return fmt.Errorf("%w: %s could not obtain a unique identifier: %w", apperrors.ErrDuplicate, op, err)
}
