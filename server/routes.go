package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// Session API
	s.registerAPIRoute(RouteSignup, s.SignupHandler())
	s.registerAPIRoute(RouteLogin, s.LoginHandler())
	s.registerAPIRoute(RouteVerify2FA, s.Verify2FAHandler())
	s.registerAPIRoute(RouteLogout, s.LogoutHandler())
	s.registerAPIRoute(RouteVerifyToken, s.VerifyTokenHandler())

	// Operational endpoints are neither rate limited nor CORS enabled.
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("GET "+RouteMetrics, s.metrics.Handler().ServeHTTP)
}

// registerAPIRoute serves handler on POST path and answers CORS preflight
// requests for the same path.
func (s *Server) registerAPIRoute(path string, handler http.HandlerFunc) {
	s.RegisterRouteHandler("POST "+path, ChainMiddleware(handler, s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+path, ChainMiddleware(preflightHandler, s.LoggingMiddleware, s.CorsMiddleware))
}

// preflightHandler is only reached for OPTIONS requests without an Origin.
func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Error().Msgf("[%-19s] %s %s", displayMethod, path, errorString)
}
