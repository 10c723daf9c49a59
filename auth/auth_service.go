package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/auth-service/email"
	apierrors "github.com/jrsteele09/auth-service/internal/errors"
	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/token"
	"github.com/jrsteele09/auth-service/twofa"
	"github.com/jrsteele09/auth-service/users"
)

const twoFAEmailSubject = "2FA Code"

// Repos holds the stores shared by every request.
type Repos struct {
	Users         users.UserRepo
	RevokedTokens token.RevokedTokenRepo
	TwoFACodes    twofa.CodeRepo
}

// Service runs the signup, login, 2FA, logout and token verification flows.
// It keeps no state of its own between calls.
type Service struct {
	repos       Repos
	tokens      *token.Manager
	emailClient email.Client
	hasher      users.PasswordHasher
	policy      users.PasswordPolicy
}

type ServiceOption func(*Service)

// WithPasswordPolicy replaces the default production policy.
func WithPasswordPolicy(policy users.PasswordPolicy) ServiceOption {
	return func(s *Service) {
		s.policy = policy
	}
}

func NewService(
	repos Repos,
	tokens *token.Manager,
	emailClient email.Client,
	hasher users.PasswordHasher,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.RevokedTokens == nil {
		return nil, errors.New("[NewService] RevokedTokens repo is required")
	}
	if repos.TwoFACodes == nil {
		return nil, errors.New("[NewService] TwoFACodes repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if emailClient == nil {
		return nil, errors.New("[NewService] email client is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] password hasher is required")
	}

	s := &Service{
		repos:       repos,
		tokens:      tokens,
		emailClient: emailClient,
		hasher:      hasher,
		policy:      users.ProductionPolicy,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) Tokens() *token.Manager {
	return s.tokens
}

func (s *Service) parseCredentials(rawEmail, rawPassword string) (users.Email, users.Password, error) {
	e, err := users.ParseEmail(rawEmail)
	if err != nil {
		return users.Email{}, users.Password{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	pw, err := s.policy.Parse(rawPassword)
	if err != nil {
		return users.Email{}, users.Password{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return e, pw, nil
}

// Signup creates a user. The existence check only avoids hashing for a
// taken email; the store decides the winner of concurrent signups.
func (s *Service) Signup(ctx context.Context, req SignupRequest) error {
	e, pw, err := s.parseCredentials(req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("[Service.Signup] %w", err)
	}

	_, err = s.repos.Users.GetUser(ctx, e)
	switch {
	case err == nil:
		return fmt.Errorf("[Service.Signup] %w", ErrUserAlreadyExists)
	case !errors.Is(err, users.ErrUserNotFound):
		return apierrors.Unexpectedf(err, "[Service.Signup] get user")
	}

	user, err := users.NewUser(ctx, s.hasher, e, pw, req.Requires2FA)
	if err != nil {
		return apierrors.Unexpectedf(err, "[Service.Signup] new user")
	}

	if err := s.repos.Users.AddUser(ctx, *user); err != nil {
		if errors.Is(err, users.ErrUserAlreadyExists) {
			return fmt.Errorf("[Service.Signup] %w", ErrUserAlreadyExists)
		}
		return apierrors.Unexpectedf(err, "[Service.Signup] add user")
	}

	log.Info().Bool("requires2FA", req.Requires2FA).Msg("user signed up")
	return nil
}

// Login checks the password. Users without 2FA get a token straight away;
// the others get a fresh challenge, replacing any earlier one, by email.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	e, pw, err := s.parseCredentials(req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("[Service.Login] %w", err)
	}

	if err := s.repos.Users.ValidateUser(ctx, e, pw); err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) || errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("[Service.Login] %w", ErrIncorrectCredentials)
		}
		return nil, apierrors.Unexpectedf(err, "[Service.Login] validate user")
	}

	user, err := s.repos.Users.GetUser(ctx, e)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("[Service.Login] %w", ErrIncorrectCredentials)
		}
		return nil, apierrors.Unexpectedf(err, "[Service.Login] get user")
	}

	if !user.Requires2FA {
		tok, err := s.tokens.Issue(e)
		if err != nil {
			return nil, apierrors.Unexpectedf(err, "[Service.Login] issue token")
		}
		return &LoginResult{Token: tok}, nil
	}

	id := twofa.NewLoginAttemptID()
	code, err := twofa.NewCode()
	if err != nil {
		return nil, apierrors.Unexpectedf(err, "[Service.Login] new 2FA code")
	}
	if err := s.repos.TwoFACodes.AddCode(ctx, e, id, code); err != nil {
		return nil, apierrors.Unexpectedf(err, "[Service.Login] store 2FA code")
	}

	content := fmt.Sprintf("Your login code is %s (login attempt %s).", code, id)
	if err := s.emailClient.SendEmail(ctx, e, twoFAEmailSubject, content); err != nil {
		return nil, apierrors.Unexpectedf(err, "[Service.Login] send 2FA code")
	}

	log.Debug().Str("loginAttemptId", id.String()).Msg("2FA challenge issued")
	return &LoginResult{Requires2FA: true, LoginAttemptID: id}, nil
}

// Verify2FA consumes the pending challenge for the email when both the id
// and the code match. A mismatch leaves the challenge in place.
func (s *Service) Verify2FA(ctx context.Context, req Verify2FARequest) (secret.String, error) {
	e, err := users.ParseEmail(req.Email)
	if err != nil {
		return secret.String{}, fmt.Errorf("[Service.Verify2FA] %w: %w", ErrInvalidCredentials, err)
	}
	id, err := twofa.ParseLoginAttemptID(req.LoginAttemptID)
	if err != nil {
		return secret.String{}, fmt.Errorf("[Service.Verify2FA] %w: %w", ErrInvalidCredentials, err)
	}
	code, err := twofa.ParseCode(req.Code)
	if err != nil {
		return secret.String{}, fmt.Errorf("[Service.Verify2FA] %w: %w", ErrInvalidCredentials, err)
	}

	// Only the request that removes the challenge may use it.
	if err := s.repos.TwoFACodes.ConsumeCode(ctx, e, id, code); err != nil {
		if errors.Is(err, twofa.ErrCodeNotFound) || errors.Is(err, twofa.ErrCodeMismatch) {
			return secret.String{}, fmt.Errorf("[Service.Verify2FA] %w", ErrIncorrectCredentials)
		}
		return secret.String{}, apierrors.Unexpectedf(err, "[Service.Verify2FA] consume code")
	}

	tok, err := s.tokens.Issue(e)
	if err != nil {
		return secret.String{}, apierrors.Unexpectedf(err, "[Service.Verify2FA] issue token")
	}
	return tok, nil
}

// Logout revokes rawToken. A token that is already revoked or otherwise
// invalid is rejected, so a second logout with the same token fails.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return fmt.Errorf("[Service.Logout] %w", ErrMissingToken)
	}
	tok := secret.New(rawToken)

	if _, err := s.validate(ctx, tok); err != nil {
		return fmt.Errorf("[Service.Logout] %w", err)
	}

	if err := s.repos.RevokedTokens.AddToken(ctx, tok); err != nil {
		return apierrors.Unexpectedf(err, "[Service.Logout] revoke token")
	}
	return nil
}

func (s *Service) VerifyToken(ctx context.Context, rawToken string) (*token.Claims, error) {
	claims, err := s.validate(ctx, secret.New(rawToken))
	if err != nil {
		return nil, fmt.Errorf("[Service.VerifyToken] %w", err)
	}
	return claims, nil
}

func (s *Service) validate(ctx context.Context, tok secret.String) (*token.Claims, error) {
	claims, err := s.tokens.Validate(ctx, tok)
	if err != nil {
		if errors.Is(err, token.ErrRevocationUnavailable) {
			return nil, apierrors.Unexpectedf(err, "validate token")
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
