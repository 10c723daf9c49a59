package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/auth-service/auth"
	apierrors "github.com/jrsteele09/auth-service/internal/errors"
	"github.com/jrsteele09/auth-service/internal/utils"
)

// Operation labels for auth outcome metrics.
const (
	opSignup      = "signup"
	opLogin       = "login"
	opVerify2FA   = "verify_2fa"
	opLogout      = "logout"
	opVerifyToken = "verify_token"
)

const (
	msgUserCreated   = "User created successfully!"
	msg2FARequired   = "2FA required"
	healthStatusOkay = "ok"
)

// Request bodies use pointer fields so that an absent field can be told
// apart from an empty one.

type signupBody struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Requires2FA *bool   `json:"requires2FA"`
}

type loginBody struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type verify2FABody struct {
	Email          *string `json:"email"`
	LoginAttemptID *string `json:"loginAttemptId"`
	Code           *string `json:"2FACode"`
}

type verifyTokenBody struct {
	Token *string `json:"token"`
}

type twoFactorResponse struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (b signupBody) toRequest() (auth.SignupRequest, error) {
	switch {
	case b.Email == nil:
		return auth.SignupRequest{}, missingField("email")
	case b.Password == nil:
		return auth.SignupRequest{}, missingField("password")
	case b.Requires2FA == nil:
		return auth.SignupRequest{}, missingField("requires2FA")
	}
	return auth.SignupRequest{
		Email:       utils.Value(b.Email),
		Password:    utils.Value(b.Password),
		Requires2FA: utils.Value(b.Requires2FA),
	}, nil
}

func (b loginBody) toRequest() (auth.LoginRequest, error) {
	switch {
	case b.Email == nil:
		return auth.LoginRequest{}, missingField("email")
	case b.Password == nil:
		return auth.LoginRequest{}, missingField("password")
	}
	return auth.LoginRequest{Email: utils.Value(b.Email), Password: utils.Value(b.Password)}, nil
}

func (b verify2FABody) toRequest() (auth.Verify2FARequest, error) {
	switch {
	case b.Email == nil:
		return auth.Verify2FARequest{}, missingField("email")
	case b.LoginAttemptID == nil:
		return auth.Verify2FARequest{}, missingField("loginAttemptId")
	case b.Code == nil:
		return auth.Verify2FARequest{}, missingField("2FACode")
	}
	return auth.Verify2FARequest{
		Email:          utils.Value(b.Email),
		LoginAttemptID: utils.Value(b.LoginAttemptID),
		Code:           utils.Value(b.Code),
	}, nil
}

// fail writes the API error for err and records the outcome of op.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := writeAPIError(w, err)
	s.metrics.RecordOutcome(op, outcomeForStatus(status))
}

// SignupHandler creates a user: 201 on success.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body signupBody
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, opSignup, err)
			return
		}
		req, err := body.toRequest()
		if err != nil {
			s.fail(w, opSignup, err)
			return
		}

		if err := s.auth.Signup(r.Context(), req); err != nil {
			s.fail(w, opSignup, err)
			return
		}

		s.metrics.RecordOutcome(opSignup, OutcomeSuccess)
		writeJSON(w, http.StatusCreated, messageResponse{Message: msgUserCreated})
	}
}

// LoginHandler answers 200 with the session cookie, or 206 with the login
// attempt id when the user must complete a 2FA challenge.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, opLogin, err)
			return
		}
		req, err := body.toRequest()
		if err != nil {
			s.fail(w, opLogin, err)
			return
		}

		result, err := s.auth.Login(r.Context(), req)
		if err != nil {
			s.fail(w, opLogin, err)
			return
		}

		if result.Requires2FA {
			s.metrics.RecordOutcome(opLogin, OutcomeChallenge)
			writeJSON(w, http.StatusPartialContent, twoFactorResponse{
				Message:        msg2FARequired,
				LoginAttemptID: result.LoginAttemptID.String(),
			})
			return
		}

		http.SetCookie(w, s.auth.Tokens().Cookie(result.Token))
		s.metrics.RecordOutcome(opLogin, OutcomeSuccess)
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func (s *Server) Verify2FAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body verify2FABody
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, opVerify2FA, err)
			return
		}
		req, err := body.toRequest()
		if err != nil {
			s.fail(w, opVerify2FA, err)
			return
		}

		tok, err := s.auth.Verify2FA(r.Context(), req)
		if err != nil {
			s.fail(w, opVerify2FA, err)
			return
		}

		http.SetCookie(w, s.auth.Tokens().Cookie(tok))
		s.metrics.RecordOutcome(opVerify2FA, OutcomeSuccess)
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

// LogoutHandler revokes the token in the session cookie and tells the
// browser to drop the cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw string
		cookie, err := r.Cookie(s.auth.Tokens().CookieName())
		switch {
		case err == nil:
			raw = cookie.Value
		case !errors.Is(err, http.ErrNoCookie):
			s.fail(w, opLogout, apierrors.Wrapf(apierrors.ErrMalformedRequest, "read cookie: %v", err))
			return
		}

		if err := s.auth.Logout(r.Context(), raw); err != nil {
			s.fail(w, opLogout, err)
			return
		}

		http.SetCookie(w, s.auth.Tokens().ExpiredCookie())
		s.metrics.RecordOutcome(opLogout, OutcomeSuccess)
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func (s *Server) VerifyTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body verifyTokenBody
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, opVerifyToken, err)
			return
		}
		if body.Token == nil {
			s.fail(w, opVerifyToken, missingField("token"))
			return
		}

		if _, err := s.auth.VerifyToken(r.Context(), utils.Value(body.Token)); err != nil {
			s.fail(w, opVerifyToken, err)
			return
		}

		s.metrics.RecordOutcome(opVerifyToken, OutcomeSuccess)
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: healthStatusOkay})
	}
}
