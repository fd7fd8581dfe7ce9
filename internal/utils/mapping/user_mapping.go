package mapping

import (
	"database/sql"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	m := models.User{
		UserID:       d.UserID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        nullString(d.Phone),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
	}
	if d.LastLogin != nil {
		m.LastLogin = sql.NullTime{Time: *d.LastLogin, Valid: true}
	}
	return m
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Phone:        m.Phone.String,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
	if m.LastLogin.Valid {
		t := m.LastLogin.Time
		d.LastLogin = &t
	}
	return d
}
