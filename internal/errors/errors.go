package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is returned when the API answers with a non-2xx status.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return "unable to reach the server"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PartialFailureError reports a multi-request operation whose first call succeeded
// and whose follow-up failed. The first call is not rolled back.
type PartialFailureError struct {
	Operation  string
	Completed  string
	ResourceID string
	Err        error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed: %s succeeded (id %s) but follow-up failed: %v",
		e.Operation, e.Completed, e.ResourceID, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

var (
	ErrJobNotFound         = &NotFoundError{Entity: "job"}
	ErrDraftNotFound       = &NotFoundError{Entity: "draft"}
	ErrNoPendingAssignment = errors.New("no pending assignment to resume")
	ErrWizardSubmitted     = errors.New("wizard already submitted")
	ErrUnknownStore        = &ConfigurationError{Message: "unknown store backend"}
)

// IsRequest checks if an error is a RequestError
func IsRequest(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsNetwork checks if an error is a NetworkError
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsPartialFailure checks if an error is a PartialFailureError
func IsPartialFailure(err error) bool {
	var partialErr *PartialFailureError
	return errors.As(err, &partialErr)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// StatusOf returns the HTTP status carried by a RequestError, or 0.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

// IsRetryable reports whether a failed call may succeed when repeated.
func IsRetryable(err error) bool {
	if IsNetwork(err) {
		return true
	}
	status := StatusOf(err)
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// UserMessage renders an error as text suitable for a view's error slot.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Unable to reach the server. Check your connection and retry."
	}
	return err.Error()
}
