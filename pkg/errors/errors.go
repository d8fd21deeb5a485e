package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront failure taxonomy. Every failure that
// crosses a component boundary wraps exactly one of these, so callers can
// branch with errors.Is without knowing which layer produced the failure.
var (
	// ErrNetwork covers transport failures and expired waits against the
	// commerce backend. Recoverable: the user may simply try again.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized means the backend rejected the shopper's credential.
	// Not locally recoverable; the session is torn down before this
	// propagates.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidVariant is a client-side precondition failure: the requested
	// (color, size) pair does not exist on the product.
	ErrInvalidVariant = errors.New("invalid variant")

	// ErrNotFound is a local invariant violation, e.g. removing a cart line
	// that is not present. Callers treat it as a logged no-op.
	ErrNotFound = errors.New("not found")

	// ErrRemote is a generic backend rejection with a status and message.
	ErrRemote = errors.New("remote error")

	// ErrInvalidInput is a malformed request from the rendering layer.
	ErrInvalidInput = errors.New("invalid input")
)

// AppError is a structured error with a stable code, a user-presentable
// message, and an HTTP status for the local API.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	// A bare sentinel repeats what the code already says; only a real cause
	// adds detail worth rendering.
	switch e.Err {
	case nil, ErrNetwork, ErrUnauthorized, ErrInvalidVariant, ErrNotFound, ErrRemote, ErrInvalidInput:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Network wraps a transport failure. The cause is kept for logging; the
// message shown upward is deliberately generic.
func Network(err error) *AppError {
	return &AppError{
		Code:    "NETWORK_ERROR",
		Message: "could not reach the store, please try again",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

// Unauthorized creates an authentication error with a user-facing message.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// InvalidVariant creates a variant precondition error.
func InvalidVariant(message string) *AppError {
	return &AppError{
		Code:    "INVALID_VARIANT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidVariant,
	}
}

// NotFound creates a local not-found error for the named resource and key.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, key),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Remote creates an error for a non-2xx backend response. The backend's
// message is passed through when present, otherwise a generic fallback is
// used.
func Remote(status int, message string) *AppError {
	if message == "" {
		message = "the store rejected the request"
	}
	return &AppError{
		Code:    "REMOTE_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrRemote,
	}
}

// InvalidInput creates a 400 error for a malformed local request.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the local API status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidVariant), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
