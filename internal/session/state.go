package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"profileplus/internal/assistant"
	"profileplus/internal/identity"
	"profileplus/internal/profiles"
	"profileplus/internal/routing"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("login required")

// State is the per-visitor state of one API session. Its fields are
// guarded by mu; the assistant guards itself so a long analysis does not
// block the rest of the session.
type State struct {
	id        string
	catalog   *profiles.Catalog
	checker   *identity.Checker
	assistant *assistant.Assistant

	mu              sync.Mutex
	user            *identity.User
	loginPromptOpen bool
	location        string
	revealed        map[string]bool
	draftID         string
	lastSeen        time.Time
}

// Snapshot is a read-only copy of the session's visible state.
type Snapshot struct {
	ID              string         `json:"sessionId"`
	Authenticated   bool           `json:"authenticated"`
	User            *identity.User `json:"user,omitempty"`
	LoginPromptOpen bool           `json:"loginPromptOpen"`
	Location        string         `json:"location"`
}

func newState(id string, catalog *profiles.Catalog, checker *identity.Checker, a *assistant.Assistant, now time.Time) *State {
	return &State{
		id:        id,
		catalog:   catalog,
		checker:   checker,
		assistant: a,
		location:  routing.HomeFragment,
		revealed:  make(map[string]bool),
		lastSeen:  now,
	}
}

// ID returns the session identifier.
func (s *State) ID() string { return s.id }

// Catalog returns the shared profile catalog.
func (s *State) Catalog() *profiles.Catalog { return s.catalog }

// Assistant returns the session's AI assistant.
func (s *State) Assistant() *assistant.Assistant { return s.assistant }

// User returns the authenticated user, if any.
func (s *State) User() (identity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return identity.User{}, false
	}
	return *s.user, true
}

// RequireUser returns the signed-in user or ErrNotAuthenticated.
func (s *State) RequireUser() (identity.User, error) {
	u, ok := s.User()
	if !ok {
		return identity.User{}, ErrNotAuthenticated
	}
	return u, nil
}

// Login checks the credentials. On success the user is set, the login
// prompt closes and the session navigates to the dashboard. On failure
// nothing changes.
func (s *State) Login(ctx context.Context, email, password string) (identity.User, error) {
	if err := ctx.Err(); err != nil {
		return identity.User{}, err
	}
	u, err := s.checker.Check(email, password)
	if err != nil {
		return identity.User{}, err
	}
	s.LoginWithProvider(u)
	return u, nil
}

// LoginWithProvider signs in a user already verified elsewhere.
func (s *State) LoginWithProvider(u identity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != u.ID {
		s.draftID = ""
	}
	s.user = &u
	s.loginPromptOpen = false
	s.location = routing.DashboardFragment
}

// Logout clears the user and navigates home.
func (s *State) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.draftID = ""
	s.location = routing.HomeFragment
}

func (s *State) OpenLoginPrompt() {
	s.mu.Lock()
	s.loginPromptOpen = true
	s.mu.Unlock()
}

func (s *State) CloseLoginPrompt() {
	s.mu.Lock()
	s.loginPromptOpen = false
	s.mu.Unlock()
}

// SaveProfile replaces the catalog entry for p.ID and persists the whole
// mapping before returning.
func (s *State) SaveProfile(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	return s.catalog.Save(ctx, p)
}

// Navigate records fragment as the session location. An empty fragment
// is stored as home.
func (s *State) Navigate(fragment string) {
	if fragment == "" {
		fragment = routing.HomeFragment
	}
	s.mu.Lock()
	s.location = fragment
	s.mu.Unlock()
}

// Location returns the last recorded fragment.
func (s *State) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Reveal marks the candidate as contacted by this session.
func (s *State) Reveal(profileID string) {
	s.mu.Lock()
	s.revealed[profileID] = true
	s.mu.Unlock()
}

// Revealed reports whether this session contacted the candidate.
func (s *State) Revealed(profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed[profileID]
}

// DraftID is the profile id the signed-in user edits: their own profile id,
// or a generated one kept for the rest of the sign-in.
func (s *State) DraftID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ProfileID != "" {
		return s.user.ProfileID
	}
	if s.draftID == "" {
		s.draftID = "user-" + uuid.NewString()
	}
	return s.draftID
}

// Snapshot copies the visible state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:              s.id,
		Authenticated:   s.user != nil,
		LoginPromptOpen: s.loginPromptOpen,
		Location:        s.location,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
