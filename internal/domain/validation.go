package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidFileName = errors.New("invalid statement file name")
	ErrFileTooLarge    = errors.New("statement file exceeds size limit")
)

// Validation constants
const (
	MaxFileNameLength = 255
	MaxStatementBytes = 10 << 20 // 10MB

	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// SupportedFileTypes lists statement formats the import endpoint accepts.
var SupportedFileTypes = map[string]bool{
	"csv": true,
}

// ValidateFileName checks the uploaded file name before any batch exists.
func ValidateFileName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidFileName)
	}

	if len(name) > MaxFileNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidFileName, MaxFileNameLength)
	}

	return nil
}

// FileTypeFromName derives the statement file type from its extension.
func FileTypeFromName(name string) (string, error) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return "", ErrUnsupportedFileType
	}

	ext := strings.ToLower(name[idx+1:])
	if !SupportedFileTypes[ext] {
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFileType, ext)
	}

	return ext, nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
