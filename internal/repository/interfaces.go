package repository

import (
	"context"
	"time"

	"hondenweiden/internal/domain/models"

	"github.com/google/uuid"
)

type PastureRepository interface {
	List(ctx context.Context) ([]models.PastureRecord, error)
	Get(ctx context.Context, id uuid.UUID) (models.PastureRecord, error)
	Create(ctx context.Context, attrs models.Attributes) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch models.Attributes) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, subject, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, subject, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, subject, token string) error
	DeleteAllTokens(ctx context.Context, subject string) error
}
