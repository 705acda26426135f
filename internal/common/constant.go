package common

// SessionCookieName is the cookie carrying the session credential for browser
// clients.
const SessionCookieName = "token"

// AccessTokenHeaderName is the gRPC metadata key carrying the session
// credential on outbound requests.
const AccessTokenHeaderName = "access_token"

// Roles assigned to users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
