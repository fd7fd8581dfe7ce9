package models

import (
	"database/sql"
	"time"
)

// User is the row layout of the users table.
type User struct {
	UserID       int64          `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Phone        sql.NullString `db:"phone"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}
