package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileplus/internal/session"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/shared/telemetry"
)

// SessionTokenHeader carries a newly issued session token.
const SessionTokenHeader = "X-Session-Token"

// Session resolves the bearer token to a session, creating one when the
// token is missing or no longer valid. The OAuth callback is skipped: it
// finds its session through the OAuth state instead.
func Session(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		path := c.Request.URL.Path
		if path == "/api/v1/auth/google/callback" {
			c.Next()
			return
		}

		st, issued, err := reg.Resolve(bearerToken(c))
		if err != nil {
			telemetry.Error("session.resolve_failed", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start session", nil)
			return
		}
		if issued != "" {
			c.Writer.Header().Set(SessionTokenHeader, issued)
		}
		session.Attach(c, st)
		c.Next()
	}
}

// SessionIDFromContext fetches the session id set by Session.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString("sessionId")
}

// UserIDFromContext fetches the signed-in user id, if any.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString("userId")
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
