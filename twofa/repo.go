package twofa

import (
	"context"

	"github.com/jrsteele09/auth-service/users"
)

// CodeRepo holds at most one pending challenge per email.
type CodeRepo interface {
	// AddCode replaces any challenge already stored for email.
	AddCode(ctx context.Context, email users.Email, id LoginAttemptID, code Code) error
	// GetCode returns ErrCodeNotFound when no unexpired challenge exists.
	GetCode(ctx context.Context, email users.Email) (LoginAttemptID, Code, error)
	// RemoveCode returns ErrCodeNotFound when no challenge exists.
	RemoveCode(ctx context.Context, email users.Email) error
	// ConsumeCode removes the challenge only if it still holds id and code.
	// It returns ErrCodeNotFound when no unexpired challenge exists and
	// ErrCodeMismatch, leaving the challenge stored, when either differs.
	ConsumeCode(ctx context.Context, email users.Email, id LoginAttemptID, code Code) error
}
