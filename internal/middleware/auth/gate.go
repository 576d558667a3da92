package auth

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vtzdude/Music-library/internal/logging"
	"github.com/vtzdude/Music-library/internal/session"
	"github.com/vtzdude/Music-library/internal/tokens"
)

const (
	msgUnauthorized = "unauthorized"
	msgForbidden    = "forbidden"
)

// Gate decides per request whether it may proceed. A token must pass both
// signature/expiry verification and the session liveness check; a valid
// token whose session was logged out or evicted is rejected.
type Gate struct {
	Tokens   *tokens.TokenService
	Sessions *session.Service
}

func NewGate(t *tokens.TokenService, s *session.Service) *Gate {
	return &Gate{Tokens: t, Sessions: s}
}

// RequireAuth admits any authenticated identity with a live session.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(nil, next)
}

// RequireRoles admits only authenticated identities whose role is in the
// allow-list.
func (g *Gate) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return g.require(roles, next)
	}
}

func (g *Gate) require(allowed []string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth_gate")

		token := bearerToken(c.Request())
		if token == "" {
			return Reject(c, http.StatusUnauthorized, msgUnauthorized)
		}

		claims, err := g.Tokens.Verify(token)
		if err != nil {
			l.Warn("token_rejected", "reason", "signature or expiry")
			return Reject(c, http.StatusUnauthorized, msgUnauthorized)
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			l.Warn("token_rejected", "reason", "malformed subject")
			return Reject(c, http.StatusUnauthorized, msgUnauthorized)
		}

		if !g.Sessions.ValidateSession(ctx, userID, token) {
			l.Warn("token_rejected", "reason", "no live session", "user_id", claims.UserID)
			return Reject(c, http.StatusUnauthorized, msgUnauthorized)
		}

		setIdentity(c, claims.UserID, claims.Role, token)

		if len(allowed) > 0 && !slices.Contains(allowed, claims.Role) {
			l.Warn("role_rejected", "user_id", claims.UserID, "role", claims.Role)
			return Reject(c, http.StatusForbidden, msgForbidden)
		}

		return next(c)
	}
}
