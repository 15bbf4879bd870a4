package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func newTestGoogle(t *testing.T, email string, verified bool) *GoogleProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if verified {
			w.Write([]byte(`{"id":"1","email":"` + email + `","verified_email":true}`))
			return
		}
		w.Write([]byte(`{"id":"1","email":"` + email + `","verified_email":false}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	checker, err := NewChecker()
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	g := NewGoogleProvider("client", "secret", "http://localhost/callback", checker)
	g.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	return u.Query().Get("state")
}

func TestGoogleFlowMapsToMockUser(t *testing.T) {
	g := newTestGoogle(t, "test@example.com", true)

	authURL, err := g.Start("session-42")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	state := stateFrom(t, authURL)

	sid, user, err := g.Complete(context.Background(), state, "code")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if sid != "session-42" || user != MockUser() {
		t.Fatalf("unexpected result %s %#v", sid, user)
	}

	if _, _, err := g.Complete(context.Background(), state, "code"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected state to be single-use, got %v", err)
	}
}

func TestGoogleFlowRejectsOtherAccounts(t *testing.T) {
	g := newTestGoogle(t, "stranger@example.com", true)
	authURL, _ := g.Start("s")
	if _, _, err := g.Complete(context.Background(), stateFrom(t, authURL), "code"); !errors.Is(err, ErrAccountNotAllowed) {
		t.Fatalf("expected ErrAccountNotAllowed, got %v", err)
	}

	unverified := newTestGoogle(t, "test@example.com", false)
	authURL, _ = unverified.Start("s")
	if _, _, err := unverified.Complete(context.Background(), stateFrom(t, authURL), "code"); !errors.Is(err, ErrAccountNotAllowed) {
		t.Fatalf("expected unverified e-mail to be rejected, got %v", err)
	}
}

func TestGoogleNotConfigured(t *testing.T) {
	g := NewGoogleProvider("", "", "", nil)
	if g.Configured() {
		t.Fatalf("expected not configured")
	}
	if _, err := g.Start("s"); !errors.Is(err, ErrGoogleNotConfigured) {
		t.Fatalf("expected ErrGoogleNotConfigured, got %v", err)
	}
}
