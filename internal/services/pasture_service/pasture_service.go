package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hondenweiden/internal/domain/models"
	"hondenweiden/internal/lib/logger/sl"
	"hondenweiden/internal/repository"
	storage "hondenweiden/internal/storage/filestorage"

	"github.com/google/uuid"
)

// cleanupTimeout bounds the detached image-folder removal after a delete.
const cleanupTimeout = 10 * time.Second

type PastureService struct {
	log    *slog.Logger
	repo   repository.PastureRepository
	images storage.ImageStorage
}

func NewPastureService(log *slog.Logger, repo repository.PastureRepository, images storage.ImageStorage) *PastureService {
	return &PastureService{
		log:    log,
		repo:   repo,
		images: images,
	}
}

// ListPastures returns every stored document, normalized.
func (s *PastureService) ListPastures(ctx context.Context) ([]models.Pasture, error) {
	const op = "pasture_service.ListPastures"

	records, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list pastures", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pastures := make([]models.Pasture, 0, len(records))
	for _, rec := range records {
		pastures = append(pastures, models.Normalize(rec.ID, rec.Attrs))
	}

	return pastures, nil
}

func (s *PastureService) GetPasture(ctx context.Context, id uuid.UUID) (models.Pasture, error) {
	const op = "pasture_service.GetPasture"

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Pasture{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Normalize(rec.ID, rec.Attrs), nil
}

// CreatePasture stores the submitted attributes as-is (minus identity keys);
// defaults are applied when the record is read back, never at write time.
func (s *PastureService) CreatePasture(ctx context.Context, attrs models.Attributes) (uuid.UUID, error) {
	const op = "pasture_service.CreatePasture"

	log := s.log.With(slog.String("op", op))

	id, err := s.repo.Create(ctx, attrs)
	if err != nil {
		log.Error("failed to create pasture", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("pasture created", slog.String("pasture_id", id.String()))

	return id, nil
}

func (s *PastureService) UpdatePasture(ctx context.Context, id uuid.UUID, patch models.Attributes) error {
	const op = "pasture_service.UpdatePasture"

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeletePasture removes the document and fires a best-effort cleanup of the
// pasture's image folder. The delete succeeds even when the cleanup fails;
// a leftover folder is tolerated inconsistency, not an error.
func (s *PastureService) DeletePasture(ctx context.Context, id uuid.UUID) error {
	const op = "pasture_service.DeletePasture"

	log := s.log.With(
		slog.String("op", op),
		slog.String("pasture_id", id.String()),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("pasture deleted")

	go func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if err := s.images.RemoveFolder(cleanupCtx, id.String()); err != nil {
			log.Warn("failed to remove image folder", sl.Err(err))
		}
	}()

	return nil
}

// ImportPastures bulk-inserts raw records, e.g. a legacy seed file. Returns
// the number of documents created.
func (s *PastureService) ImportPastures(ctx context.Context, records []models.Attributes) (int, error) {
	const op = "pasture_service.ImportPastures"

	log := s.log.With(slog.String("op", op))

	count := 0
	for _, attrs := range records {
		if _, err := s.repo.Create(ctx, attrs); err != nil {
			log.Error("import aborted", slog.Int("imported", count), sl.Err(err))

			return count, fmt.Errorf("%s: %w", op, err)
		}
		count++
	}

	log.Info("pastures imported", slog.Int("count", count))

	return count, nil
}
