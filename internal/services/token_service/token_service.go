package services

import (
	"context"
	"errors"
	"time"

	"hondenweiden/internal/domain/models"
	"hondenweiden/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrTokenNotInStorage  = errors.New("token not found in storage")
)

const (
	AccessTokenExpire  = 15 * time.Minute
	RefreshTokenExpire = 7 * 24 * time.Hour
)

type TokenService struct {
	repo   repository.TokenRepository
	secret []byte
}

func NewTokenService(repo repository.TokenRepository, secret string) *TokenService {
	return &TokenService{repo: repo, secret: []byte(secret)}
}

// GenerateTokens issues a fresh access/refresh pair for the given subject and
// registers the refresh token so it can be redeemed exactly once.
func (s *TokenService) GenerateTokens(ctx context.Context, subject string) (*models.TokenPair, error) {
	accessToken, err := s.newToken(subject, AccessTokenExpire)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.newToken(subject, RefreshTokenExpire)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveRefreshToken(ctx, subject, refreshToken, RefreshTokenExpire); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens rotates the pair: the presented refresh token is consumed and
// a new pair issued for the same subject.
func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	subject, err := s.VerifyToken(refreshToken)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.GetRefreshToken(ctx, subject, refreshToken)
	if err != nil || !exists {
		return nil, ErrTokenNotInStorage
	}

	if err := s.repo.DeleteRefreshToken(ctx, subject, refreshToken); err != nil {
		return nil, err
	}

	return s.GenerateTokens(ctx, subject)
}

// RevokeAll drops every refresh token issued to the subject. Outstanding
// access tokens stay valid until they expire.
func (s *TokenService) RevokeAll(ctx context.Context, subject string) error {
	return s.repo.DeleteAllTokens(ctx, subject)
}

// VerifyToken checks signature and expiry, returning the token's subject.
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidTokenClaims
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidTokenClaims
	}

	return subject, nil
}

func (s *TokenService) newToken(subject string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = subject
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString(s.secret)
}
