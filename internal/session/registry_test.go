package session

import (
	"testing"
	"time"
)

func TestResolveReusesValidToken(t *testing.T) {
	reg := newTestRegistry(t)
	st, token, err := reg.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, issued, err := reg.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != st {
		t.Fatal("expected the same session")
	}
	if issued != "" {
		t.Fatalf("expected no new token, got %q", issued)
	}
}

func TestResolveIssuesNewSession(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			st, issued, err := reg.Resolve(tc.token)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if st == nil || issued == "" {
				t.Fatal("expected a new session and token")
			}
			if reg.Len() != 1 {
				t.Fatalf("expected 1 session, got %d", reg.Len())
			}
		})
	}
}

func TestResolveUnknownSessionStartsFresh(t *testing.T) {
	reg := newTestRegistry(t)
	token, err := reg.signer.Sign("gone")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	st, issued, err := reg.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if st.ID() == "gone" || issued == "" {
		t.Fatalf("expected a fresh session, got %q", st.ID())
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	reg := newTestRegistry(t)
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	old, _, _ := reg.Create()
	now = now.Add(30 * time.Minute)
	fresh, _, _ := reg.Create()
	now = now.Add(45 * time.Minute)

	if removed := reg.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := reg.Get(old.ID()); ok {
		t.Fatal("idle session survived")
	}
	if _, ok := reg.Get(fresh.ID()); !ok {
		t.Fatal("active session removed")
	}
}
