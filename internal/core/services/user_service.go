package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/dto"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/SscSPs/banking_backoffice/internal/utils"
	"github.com/SscSPs/banking_backoffice/internal/utils/banking"
	"github.com/shopspring/decimal"
)

type userService struct {
	BaseService
	userRepo  portsrepo.UserRepositoryFacade
	generator *banking.Generator
	bank      config.BankConfig
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(repos portsrepo.RepositoryProvider, generator *banking.Generator, bank config.BankConfig) portssvc.UserSvcFacade {
	return &userService{
		BaseService: BaseService{txManager: repos.TxManager},
		userRepo:    repos.UserRepo,
		generator:   generator,
		bank:        bank,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to get user", slog.Int64("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// Register creates the user together with an opening account, checking unless another type is requested.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, *domain.Account, error) {
	if !utils.IsStrongPassword(req.Password) {
		return nil, nil, fmt.Errorf("%w: password does not meet the strength requirements", apperrors.ErrValidation)
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	template := domain.User{
		Username:     utils.SanitizeInput(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    utils.SanitizeInput(req.FirstName),
		LastName:     utils.SanitizeInput(req.LastName),
		Phone:        utils.SanitizeInput(req.Phone),
		IsActive:     true,
	}
	if template.Username == "" || template.FirstName == "" || template.LastName == "" {
		return nil, nil, fmt.Errorf("%w: username and names must not be empty", apperrors.ErrValidation)
	}
	accountType := domain.AccountTypeChecking
	if req.AccountType != "" {
		accountType = domain.AccountType(req.AccountType)
		if !accountType.IsValid() {
			return nil, nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
		}
	}

	var (
		user    *domain.User
		account *domain.Account
	)
	err = s.atomically(ctx, "register", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		u := template
		if err := uow.Users().CreateUser(ctx, &u); err != nil {
			return err
		}

		number, err := s.generator.AccountNumber()
		if err != nil {
			return err
		}
		iban, err := s.generator.IBAN(number)
		if err != nil {
			return err
		}
		acc := domain.Account{
			AccountNumber:  number,
			IBAN:           iban,
			UserID:         u.UserID,
			AccountType:    accountType,
			Balance:        decimal.Zero,
			Currency:       s.bank.DefaultCurrency,
			OverdraftLimit: s.bank.DefaultOverdraftLimit,
			InterestRate:   decimal.Zero,
			Status:         domain.AccountStatusActive,
		}
		if err := uow.Accounts().CreateAccount(ctx, &acc); err != nil {
			return err
		}
		user, account = &u, &acc
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrIdentifierCollision) {
			return nil, nil, fmt.Errorf("%w: email or username already registered", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to register user")
		return nil, nil, err
	}

	s.LogInfo(ctx, "User registered",
		slog.Int64("user_id", user.UserID),
		slog.Int64("account_id", account.AccountID))
	return user, account, nil
}

// AuthenticateUser verifies the credentials and records the login time.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperrors.ErrInactive)
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		// Login still succeeds; the timestamp is informational.
		s.LogError(ctx, err, "Failed to record last login", slog.Int64("user_id", user.UserID))
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrUnauthorized)
	}
	if !utils.IsStrongPassword(req.NewPassword) {
		return fmt.Errorf("%w: password does not meet the strength requirements", apperrors.ErrValidation)
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.LogError(ctx, err, "Failed to update password", slog.Int64("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "Password changed", slog.Int64("user_id", userID))
	return nil
}
