package users

import "context"

// UserRepo stores user credentials keyed by email.
type UserRepo interface {
	// AddUser stores user, failing with ErrUserAlreadyExists if the email is taken.
	AddUser(ctx context.Context, user User) error
	// GetUser returns ErrUserNotFound when no user has the email.
	GetUser(ctx context.Context, email Email) (*User, error)
	// ValidateUser checks password against the stored hash.
	ValidateUser(ctx context.Context, email Email, password Password) error
}
