package storage

import "errors"

var ErrPastureNotFound = errors.New("pasture not found")

var (
	ErrFileTooLarge      = errors.New("file size exceeds limit")
	ErrInvalidFilename   = errors.New("invalid file name")
	ErrInvalidFolderName = errors.New("invalid folder name")
	ErrFolderNotFound    = errors.New("folder not found")
)
