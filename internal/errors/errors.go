// Package errors defines the error taxonomy exposed by the HTTP API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// API level errors. Every failure returned by the session flows wraps one
// of these.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrMissingToken         = errors.New("missing token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrMalformedRequest     = errors.New("malformed request")
	ErrUnexpected           = errors.New("unexpected error")
)

// APIError is the status and client-facing message for a failure.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

var (
	apiInvalidCredentials   = APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	apiIncorrectCredentials = APIError{Status: http.StatusUnauthorized, Message: "Authorization failure"}
	apiUserAlreadyExists    = APIError{Status: http.StatusConflict, Message: "User already exists"}
	apiMissingToken         = APIError{Status: http.StatusBadRequest, Message: "Missing token"}
	apiInvalidToken         = APIError{Status: http.StatusUnauthorized, Message: "Invalid token"}
	apiMalformedRequest     = APIError{Status: http.StatusUnprocessableEntity, Message: "Unprocessable request"}
	apiUnexpected           = APIError{Status: http.StatusInternalServerError, Message: "Unexpected error"}
)

// FromError maps err onto the API taxonomy. Anything unrecognised is an
// unexpected error; the second return is false in that case so callers can
// log the full chain.
func FromError(err error) (APIError, bool) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return apiInvalidCredentials, true
	case errors.Is(err, ErrIncorrectCredentials):
		return apiIncorrectCredentials, true
	case errors.Is(err, ErrUserAlreadyExists):
		return apiUserAlreadyExists, true
	case errors.Is(err, ErrMissingToken):
		return apiMissingToken, true
	case errors.Is(err, ErrInvalidToken):
		return apiInvalidToken, true
	case errors.Is(err, ErrMalformedRequest):
		return apiMalformedRequest, true
	default:
		return apiUnexpected, false
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Unexpectedf marks cause as an unexpected error while keeping it in the chain.
func Unexpectedf(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrUnexpected, fmt.Sprintf(format, args...), cause)
}
