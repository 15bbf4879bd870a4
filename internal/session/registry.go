package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"profileplus/internal/assistant"
	"profileplus/internal/identity"
	"profileplus/internal/llm"
	"profileplus/internal/profiles"
	"profileplus/internal/shared/auth"
	"profileplus/internal/shared/telemetry"
)

// DefaultIdleTTL is how long an unused session is kept.
const DefaultIdleTTL = 2 * time.Hour

// Deps are the collaborators shared by every session.
type Deps struct {
	Catalog  *profiles.Catalog
	Checker  *identity.Checker
	Analyzer llm.CVAnalyzer
}

// Registry owns the live sessions of the process.
type Registry struct {
	deps    Deps
	signer  *auth.Signer
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*State
}

// NewRegistry builds an empty registry.
func NewRegistry(signer *auth.Signer, deps Deps, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		deps:     deps,
		signer:   signer,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*State),
	}
}

// Create starts a new session and returns it with its signed token.
func (r *Registry) Create() (*State, string, error) {
	id := uuid.NewString()
	token, err := r.signer.Sign(id)
	if err != nil {
		return nil, "", err
	}
	st := newState(id, r.deps.Catalog, r.deps.Checker, assistant.New(r.deps.Analyzer), r.now())
	r.mu.Lock()
	r.sessions[id] = st
	r.mu.Unlock()
	telemetry.Info("session.created", map[string]any{"session_id": id})
	return st, token, nil
}

// Get returns a live session by id.
func (r *Registry) Get(id string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[id]
	if ok {
		st.touch(r.now())
	}
	return st, ok
}

// Resolve maps a bearer token to its session. When the token is empty,
// invalid or refers to a session that no longer exists, a new session is
// created and its token returned; otherwise the returned token is empty.
func (r *Registry) Resolve(token string) (*State, string, error) {
	token = strings.TrimSpace(token)
	if token != "" {
		id, err := r.signer.Verify(token)
		if err == nil {
			if st, ok := r.Get(id); ok {
				return st, "", nil
			}
		} else if !errors.Is(err, auth.ErrInvalidToken) {
			return nil, "", err
		}
	}
	return r.Create()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, st := range r.sessions {
		if st.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		telemetry.Info("session.swept", map[string]any{"removed": removed, "remaining": len(r.sessions)})
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
