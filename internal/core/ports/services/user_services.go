package services

import (
	"context"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// Register creates the user and its default checking account in one unit of work.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, *domain.Account, error)

	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser checks credentials, rejects inactive users and records the login time.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
