package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staff-admin/internal/auth"
	"github.com/spec-kit/staff-admin/internal/backend"
	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/repository"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

// AuthService coordinates operator accounts and login for the embedded backend.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, accounts repository.AccountRepository) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates an operator and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, backend.ErrInvalidCredentials
		}
		return "", time.Time{}, apperrors.MapError(err)
	}
	if !account.Active {
		return "", time.Time{}, backend.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return "", time.Time{}, backend.ErrInvalidCredentials
	}
	return s.tokenMgr.GenerateToken(account.ID, account.Username)
}

// CreateAccount registers a new active operator.
func (s *AuthService) CreateAccount(ctx context.Context, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required", nil)
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already registered", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
		}
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// ResetPassword replaces the password of an existing operator.
func (s *AuthService) ResetPassword(ctx context.Context, username, password string) error {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", map[string]any{"username": username})
		}
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return apperrors.NewValidationError("password must be at least 8 characters", nil)
		}
		return err
	}
	return apperrors.MapError(s.accounts.UpdatePassword(ctx, account.ID, hash))
}

// Authenticate validates an access token issued by Login.
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, apperrors.NewUnauthorized("token expired")
	}
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return claims, nil
}
