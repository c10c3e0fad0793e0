package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"hondenweiden/internal/domain/models"
	"hondenweiden/internal/lib/logger/sl"
	authsvc "hondenweiden/internal/services/auth_service"
	apperrors "hondenweiden/internal/storage"
	"hondenweiden/internal/transport/http/dto/request"
	"hondenweiden/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

type PastureService interface {
	ListPastures(ctx context.Context) ([]models.Pasture, error)
	GetPasture(ctx context.Context, id uuid.UUID) (models.Pasture, error)
	CreatePasture(ctx context.Context, attrs models.Attributes) (uuid.UUID, error)
	UpdatePasture(ctx context.Context, id uuid.UUID, patch models.Attributes) error
	DeletePasture(ctx context.Context, id uuid.UUID) error
	ImportPastures(ctx context.Context, records []models.Attributes) (int, error)
}

type ImageService interface {
	Upload(ctx context.Context, pastureID uuid.UUID, filename string, r io.Reader) (string, error)
	ListImages(ctx context.Context) ([]string, error)
	DeleteFolder(ctx context.Context, folder string) error
}

type AuthService interface {
	Login(ctx context.Context, clientIP, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	PastureService PastureService
	ImageService   ImageService
	AuthService    AuthService
}

func NewRouter(log *slog.Logger, pastureService PastureService, imageService ImageService, authService AuthService) *Routers {
	return &Routers{
		log:            log,
		PastureService: pastureService,
		ImageService:   imageService,
		AuthService:    authService,
	}
}

// ListPastures returns every pasture, normalized.
// GET /api/v1/pastures
func (r *Routers) ListPastures(c echo.Context) error {
	const op = "http.routers.ListPastures"

	log := r.log.With(
		slog.String("op", op),
	)

	pastures, err := r.PastureService.ListPastures(c.Request().Context())
	if err != nil {
		log.Error("failed to list pastures", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, pastures)
}

// GetPasture returns a single pasture by id.
// GET /api/v1/pastures/:id
func (r *Routers) GetPasture(c echo.Context) error {
	const op = "http.routers.GetPasture"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid pasture id", slog.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidPastureID)
	}

	pasture, err := r.PastureService.GetPasture(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrPastureNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPastureNotFound)
		}

		log.Error("failed to get pasture", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, pasture)
}

// CreatePasture stores a new pasture document. Any id in the body is
// ignored, the store mints its own.
// POST /api/v1/pastures
func (r *Routers) CreatePasture(c echo.Context) error {
	const op = "http.routers.CreatePasture"

	log := r.log.With(
		slog.String("op", op),
	)

	var attrs models.Attributes
	if err := c.Bind(&attrs); err != nil || attrs == nil {
		log.Warn("expected a pasture object in the body")
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	id, err := r.PastureService.CreatePasture(c.Request().Context(), attrs)
	if err != nil {
		log.Error("failed to create pasture", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Pasture created.",
		"id":      id,
	})
}

// UpdatePasture merge-updates a pasture: only fields present in the body
// change, the id never does.
// PUT /api/v1/pastures/:id
func (r *Routers) UpdatePasture(c echo.Context) error {
	const op = "http.routers.UpdatePasture"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidPastureID)
	}

	// bind the body only; a full Bind would copy the :id path param into the map
	var patch models.Attributes
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil || patch == nil {
		log.Warn("expected pasture data in body")
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.PastureService.UpdatePasture(c.Request().Context(), id, patch); err != nil {
		if errors.Is(err, apperrors.ErrPastureNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPastureNotFound)
		}

		log.Error("failed to update pasture", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Pasture updated."})
}

// DeletePasture removes a pasture and, best-effort, its image folder.
// DELETE /api/v1/pastures/:id
func (r *Routers) DeletePasture(c echo.Context) error {
	const op = "http.routers.DeletePasture"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidPastureID)
	}

	if err := r.PastureService.DeletePasture(c.Request().Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrPastureNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPastureNotFound)
		}

		log.Error("failed to delete pasture", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Pasture deleted."})
}

// ImportPastures bulk-inserts an array of raw pasture records.
// POST /api/v1/pastures/import
func (r *Routers) ImportPastures(c echo.Context) error {
	const op = "http.routers.ImportPastures"

	log := r.log.With(
		slog.String("op", op),
	)

	var records []models.Attributes
	if err := c.Bind(&records); err != nil || records == nil {
		log.Warn("invalid import payload")
		return c.JSON(http.StatusBadRequest,
			response.ErrorResponseWithDetails("invalid_request", "Invalid data format, expected an array"))
	}

	count, err := r.PastureService.ImportPastures(c.Request().Context(), records)
	if err != nil {
		log.Error("import failed", slog.Int("imported", count), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Pastures imported.",
		"count":   count,
	})
}

// UploadImage stores the single image for a pasture. The target id and
// filename travel in headers, the raw bytes in the body.
// POST /api/v1/images/upload
func (r *Routers) UploadImage(c echo.Context) error {
	const op = "http.routers.UploadImage"

	log := r.log.With(
		slog.String("op", op),
	)

	idStr := c.Request().Header.Get("X-Pasture-Id")
	filename := c.Request().Header.Get("X-File-Name")

	if idStr == "" || filename == "" {
		log.Warn("missing upload headers")
		return c.JSON(http.StatusBadRequest,
			response.ErrorResponseWithDetails("invalid_request", "Missing ID or filename in headers"))
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidPastureID)
	}

	imagePath, err := r.ImageService.Upload(c.Request().Context(), id, filename, c.Request().Body)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPastureNotFound):
			return c.JSON(http.StatusNotFound, response.ErrPastureNotFound)
		case errors.Is(err, apperrors.ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, response.ErrorResponse{
				Status: "error",
				Error:  "file_too_large",
			})
		case errors.Is(err, apperrors.ErrInvalidFilename):
			return c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Status: "error",
				Error:  "invalid_filename",
			})
		}

		log.Error("upload failed", slog.String("pasture_id", idStr), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("image uploaded",
		slog.String("pasture_id", idStr),
		slog.String("path", imagePath))

	return c.JSON(http.StatusOK, map[string]string{"imagePath": imagePath})
}

// ListImages returns the paths of all stored images across pasture folders.
// GET /api/v1/images
func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	images, err := r.ImageService.ListImages(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list images", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, images)
}

// DeleteImageFolder removes one pasture's image folder recursively.
// DELETE /api/v1/images/:folder
func (r *Routers) DeleteImageFolder(c echo.Context) error {
	const op = "http.routers.DeleteImageFolder"

	log := r.log.With(
		slog.String("op", op),
	)

	folder := c.Param("folder")

	if err := r.ImageService.DeleteFolder(c.Request().Context(), folder); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidFolderName):
			return c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Status: "error",
				Error:  "invalid_folder_name",
			})
		case errors.Is(err, apperrors.ErrFolderNotFound):
			return c.JSON(http.StatusNotFound, response.ErrorResponse{
				Status: "error",
				Error:  "folder_not_found",
			})
		}

		log.Error("failed to delete folder", slog.String("folder", folder), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Folder deleted."})
}

// Login verifies the admin password and opens a session.
// POST /api/v1/admin/login
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.AuthService.Login(c.Request().Context(), c.RealIP(), req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrTooManyAttempts) {
			return c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
				Status: "error",
				Error:  "too_many_attempts",
			})
		}

		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Values["subject"] = authsvc.AdminSubject
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to save session", sl.Err(err))
		}
	} else {
		// tokens still work without a cookie session
		log.Warn("session store unavailable", sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Logout revokes all refresh tokens and drops the cookie session.
// POST /api/v1/admin/logout
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	if err := r.AuthService.Logout(c.Request().Context()); err != nil {
		log.Error("logout failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to clear session", sl.Err(err))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out."})
}

// Refresh rotates the admin token pair.
// POST /api/v1/admin/refresh
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.AuthService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Info("refresh rejected", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, pair)
}
