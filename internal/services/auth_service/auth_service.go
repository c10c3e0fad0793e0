package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hondenweiden/internal/domain/models"
	"hondenweiden/internal/lib/logger/sl"
	tokens "hondenweiden/internal/services/token_service"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// AdminSubject is the token subject for the single admin identity.
const AdminSubject = "admin"

const (
	maxLoginAttempts = 5
	attemptWindow    = 15 * time.Minute
)

type AuthService struct {
	log          *slog.Logger
	tokens       *tokens.TokenService
	passwordHash []byte
	attempts     *cache.Cache
}

func NewAuthService(log *slog.Logger, tokenService *tokens.TokenService, passwordHash string) *AuthService {
	return &AuthService{
		log:          log,
		tokens:       tokenService,
		passwordHash: []byte(passwordHash),
		attempts:     cache.New(attemptWindow, attemptWindow),
	}
}

// Login verifies the shared admin password server-side and issues a token
// pair. Failed attempts are counted per client address and throttled.
func (a *AuthService) Login(ctx context.Context, clientIP, password string) (*models.TokenPair, error) {
	const op = "auth_service.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("client_ip", clientIP),
	)

	if n, found := a.attempts.Get(clientIP); found && n.(int) >= maxLoginAttempts {
		log.Warn("login throttled")

		return nil, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		a.recordFailure(clientIP)
		log.Info("invalid credentials", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	a.attempts.Delete(clientIP)

	pair, err := a.tokens.GenerateTokens(ctx, AdminSubject)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in")

	return pair, nil
}

func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "auth_service.Refresh"

	pair, err := a.tokens.RefreshTokens(ctx, refreshToken)
	if err != nil {
		a.log.Info("refresh rejected", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Logout revokes every refresh token of the admin identity, so stolen
// refresh tokens die with the session.
func (a *AuthService) Logout(ctx context.Context) error {
	const op = "auth_service.Logout"

	if err := a.tokens.RevokeAll(ctx, AdminSubject); err != nil {
		a.log.Error("failed to revoke tokens", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("admin logged out", slog.String("op", op))

	return nil
}

func (a *AuthService) recordFailure(clientIP string) {
	if err := a.attempts.Add(clientIP, 1, attemptWindow); err != nil {
		if _, incErr := a.attempts.IncrementInt(clientIP, 1); incErr != nil {
			a.attempts.Set(clientIP, 1, attemptWindow)
		}
	}
}
