package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrGoogleNotConfigured = errors.New("google sign-in not configured")
	ErrInvalidState        = errors.New("invalid or expired state")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider runs the OAuth code flow and maps the Google account to
// the demo user.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	checker     *Checker
	userInfoURL string
	stateTTL    time.Duration
	states      *stateStore
}

// NewGoogleProvider builds a GoogleProvider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, checker *Checker) *GoogleProvider {
	return &GoogleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		checker:     checker,
		userInfoURL: googleUserInfoURL,
		stateTTL:    5 * time.Minute,
		states:      newStateStore(),
	}
}

// Configured reports whether client credentials are present.
func (g *GoogleProvider) Configured() bool {
	return g != nil && g.oauthConfig.ClientID != "" && g.oauthConfig.ClientSecret != "" && g.oauthConfig.RedirectURL != ""
}

// Start returns the consent URL. The state value remembers sessionID so the
// callback can complete the login on the right session.
func (g *GoogleProvider) Start(sessionID string) (string, error) {
	if !g.Configured() {
		return "", ErrGoogleNotConfigured
	}
	state := uuid.NewString()
	g.states.put(state, sessionID, time.Now().Add(g.stateTTL))
	return g.oauthConfig.AuthCodeURL(state), nil
}

// Complete exchanges code, fetches the account e-mail and returns the
// session id recorded by Start together with the matching user.
func (g *GoogleProvider) Complete(ctx context.Context, state, code string) (string, User, error) {
	if !g.Configured() {
		return "", User{}, ErrGoogleNotConfigured
	}
	sessionID, ok := g.states.consume(state)
	if !ok {
		return "", User{}, ErrInvalidState
	}

	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", User{}, fmt.Errorf("exchange code: %w", err)
	}

	info, err := g.fetchUserInfo(ctx, token)
	if err != nil {
		return "", User{}, fmt.Errorf("fetch user info: %w", err)
	}
	if !info.VerifiedEmail {
		return "", User{}, ErrAccountNotAllowed
	}

	user, err := g.checker.UserForEmail(info.Email)
	if err != nil {
		return "", User{}, err
	}
	return sessionID, user, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

func (g *GoogleProvider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := g.oauthConfig.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

type pendingState struct {
	sessionID string
	expires   time.Time
}

type stateStore struct {
	items map[string]pendingState
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingState)}
}

func (s *stateStore) put(state, sessionID string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v.expires) {
			delete(s.items, k)
		}
	}
	s.items[state] = pendingState{sessionID: sessionID, expires: exp}
}

func (s *stateStore) consume(state string) (string, bool) {
	s.mu.Lock()
	p, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok || time.Now().After(p.expires) {
		return "", false
	}
	return p.sessionID, true
}
