package profiles

import (
	"context"
	"sort"
	"sync"

	"profileplus/internal/shared/metrics"
)

// Catalog is the shared in-memory profiles mapping. All sessions of the
// process read and write the same Catalog.
type Catalog struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	store    *Store
}

// NewCatalog seeds the mapping with seeds and then merges the stored
// mapping over it, so stored records win on id collisions.
func NewCatalog(ctx context.Context, store *Store, seeds ...Profile) *Catalog {
	m := make(map[string]Profile, len(seeds))
	for _, p := range seeds {
		m[p.ID] = p.Clone()
	}
	for id, p := range store.LoadProfiles(ctx) {
		m[id] = p
	}
	return &Catalog{profiles: m, store: store}
}

// Get returns a copy of the record for id.
func (c *Catalog) Get(id string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// List returns copies of every record ordered by id.
func (c *Catalog) List() []Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Save replaces the record for p.ID and persists the whole mapping before
// returning. The returned record carries the recomputed HasCVFile flag.
// When the write fails the in-memory entry is kept and the error returned.
func (c *Catalog) Save(ctx context.Context, p Profile) (Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.profiles[p.ID] = p.Clone()
	if err := c.store.SaveAllProfiles(ctx, c.profiles); err != nil {
		return c.profiles[p.ID].Clone(), err
	}
	metrics.IncProfileSaves()
	return c.profiles[p.ID].Clone(), nil
}
