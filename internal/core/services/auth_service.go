package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/SscSPs/banking_backoffice/internal/utils"
)

type tokenService struct {
	cfg *config.Config
	now func() time.Time
}

// NewTokenService creates the service issuing access tokens.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg, now: time.Now}
}

func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := s.now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return accessToken, expiryTime, nil
}
