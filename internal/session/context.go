package session

import "github.com/gin-gonic/gin"

const (
	contextKey   = "session"
	sessionIDKey = "sessionId"
	userIDKey    = "userId"
)

// Attach stores st on the gin context for later handlers and loggers.
func Attach(c *gin.Context, st *State) {
	c.Set(contextKey, st)
	c.Set(sessionIDKey, st.ID())
	if u, ok := st.User(); ok {
		c.Set(userIDKey, u.ID)
	}
}

// FromGin returns the session attached by the session middleware.
func FromGin(c *gin.Context) *State {
	if c == nil {
		return nil
	}
	val, _ := c.Get(contextKey)
	st, _ := val.(*State)
	return st
}
