package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileplus/internal/identity"
	"profileplus/internal/routing"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/shared/telemetry"
)

// Handler serves session and sign-in endpoints.
type Handler struct {
	Registry *Registry
	Google   *identity.GoogleProvider
	// UIBaseURL is where the OAuth callback sends the browser back to.
	UIBaseURL string
	// DemoGoogle enables the direct mock Google login when OAuth is not
	// configured.
	DemoGoogle bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type promptRequest struct {
	Open bool `json:"open"`
}

type navigateRequest struct {
	Fragment string `json:"fragment"`
}

// RegisterRoutes attaches session routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/session", h.me)
	rg.POST("/session/login", h.login)
	rg.POST("/session/logout", h.logout)
	rg.POST("/session/prompt", h.prompt)
	rg.POST("/session/navigate", h.navigate)
	rg.POST("/session/login/google", h.demoGoogle)
	rg.GET("/auth/google/start", h.googleStart)
	rg.GET("/auth/google/callback", h.googleCallback)
}

func (h *Handler) me(c *gin.Context) {
	st := FromGin(c)
	if st == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "session unavailable", nil)
		return
	}
	respond.OK(c, st.Snapshot())
}

func (h *Handler) login(c *gin.Context) {
	st := FromGin(c)
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := st.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", identity.ErrInvalidCredentials.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}
	c.Set(userIDKey, user.ID)
	telemetry.Info("session.login", map[string]any{"session_id": st.ID(), "user_id": user.ID, "method": "password"})
	respond.OK(c, st.Snapshot())
}

func (h *Handler) logout(c *gin.Context) {
	st := FromGin(c)
	st.Logout()
	telemetry.Info("session.logout", map[string]any{"session_id": st.ID()})
	respond.OK(c, st.Snapshot())
}

func (h *Handler) prompt(c *gin.Context) {
	st := FromGin(c)
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Open {
		st.OpenLoginPrompt()
	} else {
		st.CloseLoginPrompt()
	}
	respond.OK(c, st.Snapshot())
}

func (h *Handler) navigate(c *gin.Context) {
	st := FromGin(c)
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	st.Navigate(req.Fragment)
	respond.OK(c, st.Snapshot())
}

// demoGoogle signs in the mock user directly. It exists for local
// development when no OAuth client is configured.
func (h *Handler) demoGoogle(c *gin.Context) {
	if !h.DemoGoogle || h.Google.Configured() {
		respond.Error(c, http.StatusNotFound, "not_found", "Google demo sign-in is disabled", nil)
		return
	}
	st := FromGin(c)
	user := identity.MockUser()
	st.LoginWithProvider(user)
	c.Set(userIDKey, user.ID)
	telemetry.Info("session.login", map[string]any{"session_id": st.ID(), "user_id": user.ID, "method": "google_demo"})
	respond.OK(c, st.Snapshot())
}

func (h *Handler) googleStart(c *gin.Context) {
	st := FromGin(c)
	url, err := h.Google.Start(st.ID())
	if err != nil {
		if errors.Is(err, identity.ErrGoogleNotConfigured) {
			respond.Error(c, http.StatusServiceUnavailable, "google_not_configured", "Google sign-in is not configured", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start Google sign-in", nil)
		return
	}
	respond.OK(c, gin.H{"authUrl": url})
}

func (h *Handler) googleCallback(c *gin.Context) {
	state := strings.TrimSpace(c.Query("state"))
	code := strings.TrimSpace(c.Query("code"))
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "state and code are required", nil)
		return
	}

	sessionID, user, err := h.Google.Complete(c.Request.Context(), state, code)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidState):
			respond.Error(c, http.StatusBadRequest, "invalid_state", "invalid or expired state", nil)
		case errors.Is(err, identity.ErrAccountNotAllowed), errors.Is(err, identity.ErrInvalidCredentials):
			respond.Error(c, http.StatusForbidden, "account_not_allowed", identity.ErrAccountNotAllowed.Error(), nil)
		case errors.Is(err, identity.ErrGoogleNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "google_not_configured", "Google sign-in is not configured", nil)
		default:
			telemetry.Error("session.google_failed", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusBadGateway, "google_failed", "Google sign-in failed", nil)
		}
		return
	}

	st, ok := h.Registry.Get(sessionID)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_state", "session expired", nil)
		return
	}
	st.LoginWithProvider(user)
	telemetry.Info("session.login", map[string]any{"session_id": st.ID(), "user_id": user.ID, "method": "google"})
	c.Redirect(http.StatusFound, strings.TrimRight(h.UIBaseURL, "/")+"/"+routing.DashboardFragment)
}
