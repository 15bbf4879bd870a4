package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"profileplus/internal/shared/metrics"
	"profileplus/internal/shared/storage/kv"
	"profileplus/internal/shared/telemetry"
)

// Keys under which the adapter persists its two values.
const (
	ProfilesKey = "profileplus_profiles"
	PreviewKey  = "profileplus_preview"
)

// Store persists the profiles mapping and the single preview slot.
// Reads fail soft: any missing, unreadable or malformed value is treated
// as no data and logged.
type Store struct {
	kv kv.Store
}

// NewStore wraps a key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// ErrCorruptProfiles marks a stored mapping that could not be decoded.
var ErrCorruptProfiles = errors.New("stored profiles are not valid JSON")

// LoadProfiles returns the stored mapping, or an empty one.
func (s *Store) LoadProfiles(ctx context.Context) map[string]Profile {
	out, err := s.LoadProfilesStrict(ctx)
	if err != nil {
		s.readFailed(ProfilesKey, readStage(err), err)
		return map[string]Profile{}
	}
	return out
}

// LoadProfilesStrict is LoadProfiles for write paths: a missing key is an
// empty mapping, but backend and decode failures are returned. Decode
// failures wrap ErrCorruptProfiles.
func (s *Store) LoadProfilesStrict(ctx context.Context) (map[string]Profile, error) {
	raw, err := s.kv.Get(ctx, ProfilesKey)
	if errors.Is(err, kv.ErrNotFound) {
		return map[string]Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	out := map[string]Profile{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptProfiles, err)
	}
	if out == nil {
		// A stored JSON null decodes to a nil map.
		return map[string]Profile{}, nil
	}
	return out, nil
}

// SaveAllProfiles writes the whole mapping as one overwrite of ProfilesKey.
//
// For every record HasCVFile becomes true when the record carries a file or
// the previously stored record already had the flag. The flag is written
// back into the given map; CVFile stays on the in-memory records and is
// never serialized.
//
// When the stored mapping cannot be read the save is aborted, since the
// prior flags are unknown. When it is present but corrupt, the flags the
// caller already holds stand in for the stored ones.
func (s *Store) SaveAllProfiles(ctx context.Context, all map[string]Profile) error {
	prior, err := s.LoadProfilesStrict(ctx)
	keepGiven := false
	switch {
	case errors.Is(err, ErrCorruptProfiles):
		s.readFailed(ProfilesKey, "decode", err)
		prior, keepGiven = map[string]Profile{}, true
	case err != nil:
		s.readFailed(ProfilesKey, "read", err)
		return fmt.Errorf("save profiles: %w", err)
	}

	for id, p := range all {
		p.HasCVFile = p.CVFile != nil || prior[id].HasCVFile || (keepGiven && p.HasCVFile)
		all[id] = p
	}

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := s.kv.Set(ctx, ProfilesKey, data); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

// WritePreview overwrites the preview slot with p, without its file.
func (s *Store) WritePreview(ctx context.Context, p Profile) error {
	p.CVFile = nil
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := s.kv.Set(ctx, PreviewKey, data); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	metrics.IncPreviewWrites()
	return nil
}

// ReadPreview returns the record in the preview slot, or nil.
func (s *Store) ReadPreview(ctx context.Context) *Profile {
	raw, ok := s.read(ctx, PreviewKey)
	if !ok {
		return nil
	}
	var p *Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.readFailed(PreviewKey, "decode", err)
		return nil
	}
	return p
}

func (s *Store) read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.readFailed(key, "read", err)
		return nil, false
	}
	return raw, true
}

func readStage(err error) string {
	if errors.Is(err, ErrCorruptProfiles) {
		return "decode"
	}
	return "read"
}

func (s *Store) readFailed(key, stage string, err error) {
	metrics.IncStoreReadFailure(key)
	telemetry.Error("store.read_failed", map[string]any{
		"key":   key,
		"stage": stage,
		"error": err,
	})
}
