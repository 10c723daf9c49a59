package auth

import apierrors "github.com/jrsteele09/auth-service/internal/errors"

// Errors returned by Service. Each maps to one HTTP status through
// apierrors.FromError.
var (
	ErrInvalidCredentials   = apierrors.ErrInvalidCredentials
	ErrIncorrectCredentials = apierrors.ErrIncorrectCredentials
	ErrUserAlreadyExists    = apierrors.ErrUserAlreadyExists
	ErrMissingToken         = apierrors.ErrMissingToken
	ErrInvalidToken         = apierrors.ErrInvalidToken
	ErrUnexpected           = apierrors.ErrUnexpected
)
