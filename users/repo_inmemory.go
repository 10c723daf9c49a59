package users

import (
	"context"
	"fmt"
	"sync"
)

var _ UserRepo = (*InMemoryUserRepo)(nil)

type InMemoryUserRepo struct {
	users  map[Email]User
	hasher PasswordHasher
	lock   sync.RWMutex
}

func NewInMemoryUserRepo(hasher PasswordHasher) *InMemoryUserRepo {
	return &InMemoryUserRepo{
		users:  make(map[Email]User),
		hasher: hasher,
	}
}

func (ur *InMemoryUserRepo) AddUser(_ context.Context, user User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[user.Email]; ok {
		return ErrUserAlreadyExists
	}
	ur.users[user.Email] = user
	return nil
}

func (ur *InMemoryUserRepo) GetUser(_ context.Context, email Email) (*User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ValidateUser reads the hash under the read lock and verifies outside it.
func (ur *InMemoryUserRepo) ValidateUser(ctx context.Context, email Email, password Password) error {
	user, err := ur.GetUser(ctx, email)
	if err != nil {
		return err
	}
	return VerifyPassword(ctx, ur.hasher, user.PasswordHash, password)
}

// VerifyPassword maps a hasher result onto the UserRepo error contract.
func VerifyPassword(ctx context.Context, hasher PasswordHasher, encodedHash string, password Password) error {
	ok, err := hasher.Verify(ctx, password, encodedHash)
	if err != nil {
		return fmt.Errorf("[VerifyPassword] verify hash: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}
