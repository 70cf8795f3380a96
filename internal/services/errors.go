package services

import (
	"errors"
	"fmt"

	"github.com/4brn/stddy-bddy/internal/validator"
)

// Sentinel errors returned by services
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrResultNotFound   = errors.New("result not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// PermissionError describes a denied operation
type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) validator.ValidationErrors {
	return validator.ValidationErrors{{
		Field:   field,
		Message: message,
		Rule:    "business_logic",
	}}
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err carries field validation errors
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err is one of the not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
