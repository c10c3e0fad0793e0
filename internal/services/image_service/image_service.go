package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"hondenweiden/internal/lib/logger/sl"
	"hondenweiden/internal/repository"
	apperrors "hondenweiden/internal/storage"
	storage "hondenweiden/internal/storage/filestorage"

	"github.com/google/uuid"
)

type ImageService struct {
	log     *slog.Logger
	repo    repository.PastureRepository
	storage storage.ImageStorage
	maxSize int64
}

func NewImageService(log *slog.Logger, repo repository.PastureRepository, imageStorage storage.ImageStorage, maxSize int64) *ImageService {
	return &ImageService{
		log:     log,
		repo:    repo,
		storage: imageStorage,
		maxSize: maxSize,
	}
}

// Upload stores the image for an existing pasture, replacing whatever was
// there before. Returns the public path of the stored file.
func (s *ImageService) Upload(ctx context.Context, pastureID uuid.UUID, filename string, r io.Reader) (string, error) {
	const op = "image_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("pasture_id", pastureID.String()),
		slog.String("filename", filename),
	)

	// uploads are only valid for pastures that already exist
	if _, err := s.repo.Get(ctx, pastureID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	limited := io.LimitReader(r, s.maxSize+1)

	filePath, size, err := s.storage.Replace(ctx, pastureID.String(), filename, limited)
	if err != nil {
		log.Error("failed to store image", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if size > s.maxSize {
		// partial write; fall back to the empty-folder degraded state
		if err := s.storage.RemoveFolder(ctx, pastureID.String()); err != nil {
			log.Warn("failed to remove oversized upload", sl.Err(err))
		}

		return "", fmt.Errorf("%s: %w", op, apperrors.ErrFileTooLarge)
	}

	log.Info("image stored", slog.Int64("size", size))

	return path.Join(s.storage.BaseURL(), filePath), nil
}

// ListImages returns the public paths of every stored image, recursing
// through per-pasture folders.
func (s *ImageService) ListImages(ctx context.Context) ([]string, error) {
	const op = "image_service.ListImages"

	images, err := s.storage.ListImages(ctx)
	if err != nil {
		s.log.Error("failed to list images", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// DeleteFolder is the client-facing removal of a named image folder. Unlike
// the cleanup that follows a pasture delete, an absent folder is an error
// here so the caller can distinguish no-op from success.
func (s *ImageService) DeleteFolder(ctx context.Context, folder string) error {
	const op = "image_service.DeleteFolder"

	if !storage.ValidName(folder) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrInvalidFolderName)
	}

	if !s.storage.FolderExists(folder) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrFolderNotFound)
	}

	if err := s.storage.RemoveFolder(ctx, folder); err != nil {
		s.log.Error("failed to remove folder", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
