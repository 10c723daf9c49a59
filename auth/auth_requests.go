package auth

import (
	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/twofa"
)

type SignupRequest struct {
	Email       string
	Password    string
	Requires2FA bool
}

type LoginRequest struct {
	Email    string
	Password string
}

type Verify2FARequest struct {
	Email          string
	LoginAttemptID string
	Code           string
}

// LoginResult holds either a session token or, when the user has 2FA
// enabled, the id of the challenge that was emailed to them.
type LoginResult struct {
	Token          secret.String
	Requires2FA    bool
	LoginAttemptID twofa.LoginAttemptID
}
