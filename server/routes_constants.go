package server

// Route path constants
const (
	// Session routes
	RouteSignup      = "/signup"
	RouteLogin       = "/login"
	RouteVerify2FA   = "/verify-2fa"
	RouteLogout      = "/logout"
	RouteVerifyToken = "/verify-token"

	// Operational routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
