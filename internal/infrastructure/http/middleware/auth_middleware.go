package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	pkgjwt "github.com/callsight-io/callsight/pkg/jwt"
)

// Echo context keys set by the auth middleware.
const (
	ClaimsContextKey = "claims"
	RoleContextKey   = "role"
)

// EchoAuth returns an Echo middleware that validates the bearer token
// and sets the caller's claims into the Echo context.
func EchoAuth(manager *pkgjwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(RoleContextKey, claims.Role)

			return next(c)
		}
	}
}

// RequireRole returns an Echo middleware that restricts a route to the
// given roles. Must run after EchoAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleContextKey).(string)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// IngestAuth returns a middleware that checks the shared ingest token.
// An empty configured token disables the check (development mode).
func IngestAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token != "" && c.Request().Header.Get("X-Ingest-Token") != token {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid ingest token")
			}
			return next(c)
		}
	}
}

// GetClaims retrieves the validated claims from the Echo context.
func GetClaims(c echo.Context) (*pkgjwt.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*pkgjwt.Claims)
	return claims, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// Try cookie as fallback
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}
