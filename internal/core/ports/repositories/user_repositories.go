package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	FindUserByID(ctx context.Context, userID int64) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user data that do not need a unit of work.
type UserWriter interface {
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// UserTxStore defines user writes available inside a unit of work.
type UserTxStore interface {
	// CreateUser inserts user and fills in its ID and CreatedAt.
	// A clash on email or username returns apperrors.ErrDuplicate.
	CreateUser(ctx context.Context, user *domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
