package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupRouter(t *testing.T, h *Handler) (*gin.Engine, *State) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, _, err := h.Registry.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		Attach(c, st)
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, st
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload.Error.Code, payload.Error.Message
}

func TestLoginEndpoint(t *testing.T) {
	r, st := setupRouter(t, &Handler{Registry: newTestRegistry(t)})

	resp := doJSON(r, http.MethodPost, "/api/v1/session/login", loginRequest{Email: "test@example.com", Password: "nope"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	code, msg := decodeError(t, resp)
	if code != "invalid_credentials" || msg != "Invalid credentials. Use test@example.com and password." {
		t.Fatalf("unexpected error %q %q", code, msg)
	}

	resp = doJSON(r, http.MethodPost, "/api/v1/session/login", loginRequest{Email: "test@example.com", Password: "password"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Authenticated || snap.Location != "#/dashboard" || snap.User == nil || snap.User.ProfileID != "dev-1234" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	resp = doJSON(r, http.MethodPost, "/api/v1/session/logout", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if _, ok := st.User(); ok {
		t.Fatal("expected logged out")
	}
}

func TestPromptAndNavigate(t *testing.T) {
	r, st := setupRouter(t, &Handler{Registry: newTestRegistry(t)})

	if resp := doJSON(r, http.MethodPost, "/api/v1/session/prompt", promptRequest{Open: true}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !st.Snapshot().LoginPromptOpen {
		t.Fatal("expected prompt open")
	}
	doJSON(r, http.MethodPost, "/api/v1/session/prompt", promptRequest{Open: false})
	if st.Snapshot().LoginPromptOpen {
		t.Fatal("expected prompt closed")
	}

	doJSON(r, http.MethodPost, "/api/v1/session/navigate", navigateRequest{Fragment: "#/u/dev-1234"})
	if st.Location() != "#/u/dev-1234" {
		t.Fatalf("unexpected location %q", st.Location())
	}
}

func TestDemoGoogleLogin(t *testing.T) {
	tests := []struct {
		name       string
		demo       bool
		wantStatus int
	}{
		{name: "disabled", demo: false, wantStatus: http.StatusNotFound},
		{name: "enabled", demo: true, wantStatus: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, st := setupRouter(t, &Handler{Registry: newTestRegistry(t), DemoGoogle: tc.demo})
			resp := doJSON(r, http.MethodPost, "/api/v1/session/login/google", nil)
			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.Code)
			}
			_, ok := st.User()
			if ok != tc.demo {
				t.Fatalf("authenticated=%v, want %v", ok, tc.demo)
			}
		})
	}
}

func TestGoogleEndpointsWithoutConfig(t *testing.T) {
	r, _ := setupRouter(t, &Handler{Registry: newTestRegistry(t)})

	resp := doJSON(r, http.MethodGet, "/api/v1/auth/google/start", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodGet, "/api/v1/auth/google/callback", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
