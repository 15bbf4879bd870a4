package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"profileplus/internal/identity"
	"profileplus/internal/llm"
	"profileplus/internal/profiles"
	"profileplus/internal/routing"
	"profileplus/internal/shared/auth"
	"profileplus/internal/shared/storage/kv"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	checker, err := identity.NewChecker()
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	signer, err := auth.NewSigner("test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	catalog := profiles.NewCatalog(context.Background(), profiles.NewStore(kv.NewMemoryStore()), profiles.SeedProfile())
	return NewRegistry(signer, Deps{Catalog: catalog, Checker: checker, Analyzer: llm.MockAnalyzer{}}, time.Hour)
}

func newTestState(t *testing.T) *State {
	t.Helper()
	st, _, err := newTestRegistry(t).Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return st
}

func TestLoginSuccessNavigatesToDashboard(t *testing.T) {
	st := newTestState(t)
	st.OpenLoginPrompt()

	u, err := st.Login(context.Background(), "TEST@example.com", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u != identity.MockUser() {
		t.Fatalf("unexpected user: %+v", u)
	}
	snap := st.Snapshot()
	if !snap.Authenticated || snap.LoginPromptOpen || snap.Location != routing.DashboardFragment {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "test@example.com", password: "Password"},
		{name: "wrong email", email: "other@example.com", password: "password"},
		{name: "padded email", email: " test@example.com", password: "password"},
		{name: "empty", email: "", password: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := newTestState(t)
			st.Navigate("#/u/dev-1234")
			st.OpenLoginPrompt()

			_, err := st.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, identity.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			snap := st.Snapshot()
			if snap.Authenticated || !snap.LoginPromptOpen || snap.Location != "#/u/dev-1234" {
				t.Fatalf("state changed on failed login: %+v", snap)
			}
		})
	}
}

func TestLogoutNavigatesHome(t *testing.T) {
	st := newTestState(t)
	st.LoginWithProvider(identity.MockUser())
	st.Logout()

	if _, ok := st.User(); ok {
		t.Fatal("expected no user after logout")
	}
	if st.Location() != routing.HomeFragment {
		t.Fatalf("expected home, got %q", st.Location())
	}
	if _, err := st.RequireUser(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestDraftIDUsesProfileIDOrStableGenerated(t *testing.T) {
	st := newTestState(t)
	st.LoginWithProvider(identity.MockUser())
	if got := st.DraftID(); got != "dev-1234" {
		t.Fatalf("expected user's profile id, got %q", got)
	}

	st.LoginWithProvider(identity.User{ID: "user-2", Email: "x@example.com"})
	first := st.DraftID()
	if !strings.HasPrefix(first, "user-") || first == "user-" {
		t.Fatalf("unexpected generated id %q", first)
	}
	if again := st.DraftID(); again != first {
		t.Fatalf("draft id not stable: %q then %q", first, again)
	}
}

func TestSaveProfileIsVisibleToOtherSessions(t *testing.T) {
	reg := newTestRegistry(t)
	a, _, _ := reg.Create()
	b, _, _ := reg.Create()

	p := profiles.SeedProfile()
	p.Role = "Staff Engineer"
	if _, err := a.SaveProfile(context.Background(), p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := b.Catalog().Get(p.ID)
	if !ok || got.Role != "Staff Engineer" {
		t.Fatalf("expected saved record, got %+v", got)
	}
}

func TestRevealIsPerSession(t *testing.T) {
	reg := newTestRegistry(t)
	a, _, _ := reg.Create()
	b, _, _ := reg.Create()

	a.Reveal("dev-1234")
	if !a.Revealed("dev-1234") {
		t.Fatal("expected revealed in a")
	}
	if b.Revealed("dev-1234") {
		t.Fatal("reveal leaked into b")
	}
}

func TestNavigateEmptyIsHome(t *testing.T) {
	st := newTestState(t)
	st.Navigate("#/dashboard")
	st.Navigate("")
	if st.Location() != routing.HomeFragment {
		t.Fatalf("expected home, got %q", st.Location())
	}
}
