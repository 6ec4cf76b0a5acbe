package utils

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// APIError is a client-facing error with a fixed HTTP status.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

// ErrInvalidID reports a malformed identifier, e.g. "Invalid videoId".
func ErrInvalidID(field string) *APIError {
	return NewAPIError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", field))
}

// ErrValidation reports a missing, empty or oversized required field.
func ErrValidation(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message)
}

// ErrNotFound reports an absent entity, e.g. "Video not found".
func ErrNotFound(entity string) *APIError {
	return NewAPIError(http.StatusNotFound, fmt.Sprintf("%s not found", entity))
}

// ErrForbidden reports an authenticated but unauthorized caller.
func ErrForbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message)
}

// ErrInvalidOperation reports a domain rule violation such as
// self-subscription.
func ErrInvalidOperation(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message)
}

// ErrDuplicateMember reports an add of a video already in the playlist.
func ErrDuplicateMember() *APIError {
	return NewAPIError(http.StatusBadRequest, "Video already in playlist")
}

// ErrMemberNotFound reports a removal of a video not in the playlist.
func ErrMemberNotFound() *APIError {
	return NewAPIError(http.StatusBadRequest, "Video not found in playlist")
}

// ValidID reports whether s is a well-formed UUID.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
