package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors for use with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidID          = errors.New("invalid id")
	ErrMalformedContent   = errors.New("malformed content")
	ErrIDMismatch         = errors.New("id mismatch")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// InvalidIDError indicates a caller-supplied ID that fails the
	// [A-Za-z0-9_-]+ pattern.
	InvalidIDError struct {
		ID string
	}

	// MalformedContentError indicates content that fails to parse as a
	// YAML mapping.
	MalformedContentError struct {
		Message string
	}

	// IDMismatchError indicates a declared content ID that differs from
	// the path/target ID outside of an explicit rename.
	IDMismatchError struct {
		PathID    string
		ContentID string
	}

	// DeleteFailedError indicates a delete that removed zero files despite
	// the caller expecting an existing document.
	DeleteFailedError struct {
		ID string
	}

	// BackendError wraps storage I/O failures (permissions, network, disk).
	BackendError struct {
		Op  string
		Err error
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid flashcard id %q: must match [A-Za-z0-9_-]+", e.ID)
}

func (e *MalformedContentError) Error() string { return e.Message }

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("content declares id %q but target id is %q", e.ContentID, e.PathID)
}

func (e *DeleteFailedError) Error() string {
	return fmt.Sprintf("delete of %q removed no files", e.ID)
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("storage backend: %s: %v", e.Op, e.Err)
}

func (e *NotFoundError) StatusCode() int         { return http.StatusNotFound }
func (e *UnauthorizedError) StatusCode() int     { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int        { return http.StatusForbidden }
func (e *InvalidIDError) StatusCode() int        { return http.StatusBadRequest }
func (e *MalformedContentError) StatusCode() int { return http.StatusBadRequest }
func (e *IDMismatchError) StatusCode() int       { return http.StatusBadRequest }
func (e *DeleteFailedError) StatusCode() int     { return http.StatusInternalServerError }
func (e *BackendError) StatusCode() int          { return http.StatusInternalServerError }

// Is hooks so errors.Is() matches the sentinel for each typed error.
func (e *NotFoundError) Is(target error) bool         { return target == ErrNotFound }
func (e *UnauthorizedError) Is(target error) bool     { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool        { return target == ErrForbidden }
func (e *InvalidIDError) Is(target error) bool        { return target == ErrInvalidID }
func (e *MalformedContentError) Is(target error) bool { return target == ErrMalformedContent }
func (e *IDMismatchError) Is(target error) bool       { return target == ErrIDMismatch }
func (e *DeleteFailedError) Is(target error) bool     { return target == ErrDeleteFailed }
func (e *BackendError) Is(target error) bool          { return target == ErrBackendUnavailable }

func (e *BackendError) Unwrap() error { return e.Err }

// ConflictError represents a save collision with an existing entry.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (flashcard, document, catalog)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrAlreadyExists
func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError carries the full list of structural validation failures
// plus any non-fatal warnings collected during the same pass.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
