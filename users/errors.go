package users

import "errors"

var (
	ErrEmailEmpty     = errors.New("email is empty")
	ErrEmailMissingAt = errors.New("email is missing an @ symbol")
	ErrEmailBadFormat = errors.New("email is badly formatted")

	ErrPasswordBlank    = errors.New("password is blank")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordInsecure = errors.New("password is insecure")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidHash        = errors.New("invalid password hash")
)
