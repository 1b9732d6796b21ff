package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource does not exist or is owned by
	// another user. The two cases are deliberately indistinguishable so a
	// guessed identifier never confirms that someone else's row exists.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials is returned on login when the username is
	// unknown or the password does not match. One error for both cases.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDuplicateInvoiceNumber is returned when an invoice number collides
	// within the same user and client.
	ErrDuplicateInvoiceNumber = errors.New("duplicate invoice number")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrValidation is returned for malformed input caught before storage.
	ErrValidation = errors.New("validation failed")
	// ErrPasswordMismatch is returned when the two registration passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUserMismatch is returned when a route targets a user other than
	// the authenticated one.
	ErrUserMismatch = errors.New("current user does not match requested user")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised
// is an internal error; its detail is logged server-side, never returned.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrDuplicateInvoiceNumber):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_INVOICE_NUMBER")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrUserMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USER_MISMATCH")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
