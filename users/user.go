package users

import (
	"context"
	"fmt"
)

// User is a stored credential record.
type User struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}

// NewUser hashes password and returns the record ready to be stored.
func NewUser(ctx context.Context, hasher PasswordHasher, email Email, password Password, requires2FA bool) (*User, error) {
	hash, err := hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("[NewUser] hash password: %w", err)
	}
	return &User{
		Email:        email,
		PasswordHash: hash,
		Requires2FA:  requires2FA,
	}, nil
}
