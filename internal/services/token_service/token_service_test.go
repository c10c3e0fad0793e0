package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) SaveRefreshToken(ctx context.Context, subject, token string, exp time.Duration) error {
	args := m.Called(ctx, subject, token, exp)
	return args.Error(0)
}

func (m *mockTokenRepo) GetRefreshToken(ctx context.Context, subject, token string) (bool, error) {
	args := m.Called(ctx, subject, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) DeleteRefreshToken(ctx context.Context, subject, token string) error {
	args := m.Called(ctx, subject, token)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteAllTokens(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func TestGenerateTokens(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewTokenService(repo, "test-secret")

	repo.On("SaveRefreshToken", mock.Anything, "admin", mock.AnythingOfType("string"), RefreshTokenExpire).Return(nil)

	pair, err := svc.GenerateTokens(context.Background(), "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// both tokens carry the subject and verify against the same secret
	subject, err := svc.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	subject, err = svc.VerifyToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	repo.AssertExpectations(t)
}

func TestVerifyToken(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewTokenService(repo, "test-secret")

	t.Run("wrong secret is rejected", func(t *testing.T) {
		other := NewTokenService(repo, "other-secret")
		repo.On("SaveRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		pair, err := other.GenerateTokens(context.Background(), "admin")
		require.NoError(t, err)

		_, err = svc.VerifyToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.VerifyToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.VerifyToken(signed)
		assert.ErrorIs(t, err, ErrInvalidTokenClaims)
	})
}

func TestRefreshTokens(t *testing.T) {
	t.Run("consumes the old token and issues a new pair", func(t *testing.T) {
		repo := new(mockTokenRepo)
		svc := NewTokenService(repo, "test-secret")

		repo.On("SaveRefreshToken", mock.Anything, "admin", mock.Anything, RefreshTokenExpire).Return(nil)

		pair, err := svc.GenerateTokens(context.Background(), "admin")
		require.NoError(t, err)

		repo.On("GetRefreshToken", mock.Anything, "admin", pair.RefreshToken).Return(true, nil)
		repo.On("DeleteRefreshToken", mock.Anything, "admin", pair.RefreshToken).Return(nil)

		fresh, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, fresh.AccessToken)
		require.NotEmpty(t, fresh.RefreshToken)

		repo.AssertCalled(t, "DeleteRefreshToken", mock.Anything, "admin", pair.RefreshToken)
	})

	t.Run("token absent from storage is rejected", func(t *testing.T) {
		repo := new(mockTokenRepo)
		svc := NewTokenService(repo, "test-secret")

		repo.On("SaveRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		pair, err := svc.GenerateTokens(context.Background(), "admin")
		require.NoError(t, err)

		repo.On("GetRefreshToken", mock.Anything, "admin", pair.RefreshToken).Return(false, nil)

		_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenNotInStorage)
	})

	t.Run("revoke all clears the subject's tokens", func(t *testing.T) {
		repo := new(mockTokenRepo)
		svc := NewTokenService(repo, "test-secret")

		repo.On("DeleteAllTokens", mock.Anything, "admin").Return(nil)

		require.NoError(t, svc.RevokeAll(context.Background(), "admin"))
		repo.AssertExpectations(t)
	})

	t.Run("forged token never reaches storage", func(t *testing.T) {
		repo := new(mockTokenRepo)
		svc := NewTokenService(repo, "test-secret")

		_, err := svc.RefreshTokens(context.Background(), "forged")
		assert.ErrorIs(t, err, ErrInvalidToken)

		repo.AssertNotCalled(t, "GetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
	})
}
