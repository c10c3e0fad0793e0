package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "hondenweiden/internal/storage"
)

var imageFileRe = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg|webp)$`)

// ImageStorage хранит не более одного изображения на выгул: файл лежит в
// папке, названной идентификатором выгула
type ImageStorage interface {
	Replace(ctx context.Context, folder, filename string, r io.Reader) (filePath string, fileSize int64, err error)
	RemoveFolder(ctx context.Context, folder string) error
	FolderExists(folder string) bool
	ListImages(ctx context.Context) ([]string, error)
	BaseURL() string
}

// LocalImageStorage реализация для локальной файловой системы
type LocalImageStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./public/pictures")
	baseURL string // Базовый URL для доступа к файлам (например: "/pictures")
}

func NewLocalImageStorage(baseDir, baseURL string) (*LocalImageStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalImageStorage{
		baseDir: baseDir,
		baseURL: baseURL,
	}, nil
}

// Replace writes a new image for the given folder, removing whatever was
// stored there before. Old files are cleared first, so a failure mid-way
// leaves zero images rather than two conflicting ones.
func (s *LocalImageStorage) Replace(ctx context.Context, folder, filename string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if !ValidName(folder) {
		return "", 0, apperrors.ErrInvalidFolderName
	}
	if !ValidName(filename) {
		return "", 0, apperrors.ErrInvalidFilename
	}

	folderPath := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	// Удаляем старые файлы: не более одного изображения на папку
	if entries, err := os.ReadDir(folderPath); err == nil {
		for _, entry := range entries {
			_ = os.RemoveAll(filepath.Join(folderPath, entry.Name()))
		}
	}

	filePath := filepath.Join(folderPath, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, r)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		_ = os.Remove(filePath)
		return "", 0, ctx.Err()
	}

	return filepath.Join(folder, filename), size, nil
}

// RemoveFolder удаляет папку выгула рекурсивно. Отсутствующая папка не ошибка.
func (s *LocalImageStorage) RemoveFolder(ctx context.Context, folder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !ValidName(folder) {
		return apperrors.ErrInvalidFolderName
	}

	return os.RemoveAll(filepath.Join(s.baseDir, folder))
}

func (s *LocalImageStorage) FolderExists(folder string) bool {
	if !ValidName(folder) {
		return false
	}

	info, err := os.Stat(filepath.Join(s.baseDir, folder))
	return err == nil && info.IsDir()
}

// ListImages возвращает пути всех изображений под базовым каталогом,
// включая подпапки
func (s *LocalImageStorage) ListImages(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images := []string{}

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageFileRe.MatchString(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}

		images = append(images, s.baseURL+"/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk image dir: %w", err)
	}

	sort.Strings(images)

	return images, nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalImageStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalImageStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalImageStorage) GetBaseDir() string {
	return s.baseDir
}

// ValidName rejects empty names and anything that could escape the base dir.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
