package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrStudentExists is returned when signup hits an already registered email.
	ErrStudentExists = errors.New("account already exists")
	// ErrInvalidCredential is returned when login email or password is incorrect.
	ErrInvalidCredential = errors.New("invalid email or password")
	// ErrOTPNotFound is returned when no pending verification exists for the email.
	ErrOTPNotFound = errors.New("verification code not found")
	// ErrOTPExpired is returned when the pending verification has passed its expiry.
	ErrOTPExpired = errors.New("verification code expired")
	// ErrOTPMismatch is returned when the submitted code does not match.
	ErrOTPMismatch = errors.New("wrong verification code")
	// ErrOTPDelivery is returned when the verification email could not be sent.
	ErrOTPDelivery = errors.New("failed to send verification code")
	// ErrSessionNotFound is returned when a session id has no backing record.
	ErrSessionNotFound = errors.New("session not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Internal details never
// reach the client; anything unrecognized collapses to an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrStudentExists):
		return NewHTTPError(http.StatusConflict, "account already exists, login instead", "ACCOUNT_EXISTS")
	case errors.Is(err, ErrInvalidCredential):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrOTPNotFound):
		return NewHTTPError(http.StatusNotFound, "verification code expired or not found", "OTP_NOT_FOUND")
	case errors.Is(err, ErrOTPExpired):
		return NewHTTPError(http.StatusGone, err.Error(), "OTP_EXPIRED")
	case errors.Is(err, ErrOTPMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OTP_MISMATCH")
	case errors.Is(err, ErrOTPDelivery):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "OTP_DELIVERY_FAILED")
	case errors.Is(err, ErrSessionNotFound):
		return NewHTTPError(http.StatusUnauthorized, "session expired, start again", "SESSION_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
