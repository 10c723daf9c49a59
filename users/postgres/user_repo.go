// Package postgres stores user credentials in PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/jrsteele09/auth-service/users"
)

// poolIface is the subset of *pgxpool.Pool used by the repository.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ users.UserRepo = (*UserRepository)(nil)

type UserRepository struct {
	pool   poolIface
	hasher users.PasswordHasher
}

func NewUserRepository(pool poolIface, hasher users.PasswordHasher) *UserRepository {
	return &UserRepository{pool: pool, hasher: hasher}
}

// AddUser inserts user. A concurrent insert of the same email loses with
// ErrUserAlreadyExists.
func (r *UserRepository) AddUser(ctx context.Context, user users.User) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING`,
		user.Email.String(), user.PasswordHash, user.Requires2FA)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return users.ErrUserAlreadyExists
		}
		return oops.Code("USER_INSERT_FAILED").With("operation", "add user").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrUserAlreadyExists
	}
	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, email users.Email) (*users.User, error) {
	var (
		hash        string
		requires2FA bool
	)
	err := r.pool.QueryRow(ctx,
		`SELECT password_hash, requires_2fa FROM users WHERE email = $1`,
		email.String()).Scan(&hash, &requires2FA)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "get user").Wrap(err)
	}

	return &users.User{
		Email:        email,
		PasswordHash: hash,
		Requires2FA:  requires2FA,
	}, nil
}

// ValidateUser fetches the stored hash and verifies password without holding
// a database connection during the hash computation.
func (r *UserRepository) ValidateUser(ctx context.Context, email users.Email, password users.Password) error {
	user, err := r.GetUser(ctx, email)
	if err != nil {
		return err
	}
	return users.VerifyPassword(ctx, r.hasher, user.PasswordHash, password)
}
