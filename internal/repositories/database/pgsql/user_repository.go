package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/banking_backoffice/internal/models"
	"github.com/SscSPs/banking_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, phone, is_active, created_at, last_login`

type PgxUserRepository struct {
	db dbtx
}

func newPgxUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{db: pool}
}

var (
	_ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)
	_ portsrepo.UserTxStore          = (*PgxUserRepository)(nil)
)

// CreateUser inserts a new user.
func (r *PgxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m := mapping.ToModelUser(*user)
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		m.Username,
		m.Email,
		m.PasswordHash,
		m.FirstName,
		m.LastName,
		m.Phone,
		m.IsActive,
	).Scan(&user.UserID, &user.CreatedAt)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: email or username already registered", apperrors.ErrDuplicate)
		}
		return apperrors.NewStoreError("failed to save user", err)
	}
	return nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.PasswordHash,
		&m.FirstName,
		&m.LastName,
		&m.Phone,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStoreError("failed to load user", err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

// FindUserByID retrieves a user by ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, userID)
}

// FindUserByEmail retrieves a user by lower-cased email.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
}

// UpdateLastLogin stamps the login time.
func (r *PgxUserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login = $2 WHERE id = $1;`, userID, at)
}

// UpdatePasswordHash replaces the stored hash.
func (r *PgxUserRepository) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1;`, userID, passwordHash)
}

func (r *PgxUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewStoreError("failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
