package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"profileplus/internal/profiles"
	"profileplus/internal/shared/config"
	"profileplus/internal/shared/storage/kv"
)

// flakyStore fails the next failGets reads.
type flakyStore struct {
	kv.Store
	failGets int
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

func useMemoryStore(t *testing.T) kv.Store {
	t.Helper()
	return useStore(t, kv.NewMemoryStore())
}

func useStore(t *testing.T, mem kv.Store) kv.Store {
	t.Helper()
	prev := openStore
	openStore = func(ctx context.Context, cfg config.Config) (kv.Store, func() error, error) {
		return mem, nil, nil
	}
	t.Cleanup(func() {
		openStore = prev
		seedForce = false
		showPublic = false
	})
	return mem
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("profilectl %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestSeedThenList(t *testing.T) {
	useMemoryStore(t)

	if got := run(t, "profiles", "list"); !strings.Contains(got, "No profiles stored.") {
		t.Fatalf("expected empty listing, got %q", got)
	}
	if got := run(t, "seed"); !strings.Contains(got, "Seeded profile "+profiles.SeedProfileID) {
		t.Fatalf("unexpected seed output %q", got)
	}
	if got := run(t, "seed"); !strings.Contains(got, "already stored") {
		t.Fatalf("expected second seed to skip, got %q", got)
	}

	got := run(t, "profiles", "list")
	if !strings.Contains(got, profiles.SeedProfileID) || !strings.Contains(got, "Jane Developer") {
		t.Fatalf("listing missing seed: %q", got)
	}
}

func TestSeedForceOverwrites(t *testing.T) {
	mem := useMemoryStore(t)
	store := profiles.NewStore(mem)
	edited := profiles.SeedProfile()
	edited.Name = "Edited"
	if err := store.SaveAllProfiles(context.Background(), map[string]profiles.Profile{edited.ID: edited}); err != nil {
		t.Fatalf("SaveAllProfiles: %v", err)
	}

	run(t, "seed", "--force")

	if got := store.LoadProfiles(context.Background())[edited.ID].Name; got != "Jane Developer" {
		t.Fatalf("expected seed name restored, got %q", got)
	}
}

func TestProfilesShow(t *testing.T) {
	useMemoryStore(t)
	run(t, "seed")

	var full profiles.Profile
	if err := json.Unmarshal([]byte(run(t, "profiles", "show", profiles.SeedProfileID)), &full); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if full.Name != "Jane Developer" {
		t.Fatalf("unexpected profile %+v", full)
	}

	var public profiles.PublicProfile
	if err := json.Unmarshal([]byte(run(t, "profiles", "show", "--public", profiles.SeedProfileID)), &public); err != nil {
		t.Fatalf("decode public output: %v", err)
	}
	if public.DisplayName != "Candidate #dev-" || public.Revealed {
		t.Fatalf("unexpected public view %+v", public)
	}
}

func TestProfilesShowUnknown(t *testing.T) {
	useMemoryStore(t)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"profiles", "show", "nobody"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestPreviewShow(t *testing.T) {
	mem := useMemoryStore(t)

	if got := run(t, "preview", "show"); !strings.Contains(got, "Preview slot is empty.") {
		t.Fatalf("expected empty slot, got %q", got)
	}

	draft := profiles.NewDraft("user-1")
	draft.Name = "Draft"
	if err := profiles.NewStore(mem).WritePreview(context.Background(), draft); err != nil {
		t.Fatalf("WritePreview: %v", err)
	}
	if got := run(t, "preview", "show"); !strings.Contains(got, `"id": "user-1"`) {
		t.Fatalf("expected preview json, got %q", got)
	}
}

func TestSeedAbortsWhenStoreUnreadable(t *testing.T) {
	backend := &flakyStore{Store: kv.NewMemoryStore()}
	useStore(t, backend)
	store := profiles.NewStore(backend)
	alice := profiles.NewDraft("alice")
	if err := store.SaveAllProfiles(context.Background(), map[string]profiles.Profile{
		alice.ID:               alice,
		profiles.SeedProfileID: profiles.SeedProfile(),
	}); err != nil {
		t.Fatalf("SaveAllProfiles: %v", err)
	}

	backend.failGets = 1
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"seed"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected seed to fail, got output %q", out.String())
	}
	if strings.Contains(out.String(), "Seeded profile") {
		t.Fatalf("seed reported success: %q", out.String())
	}

	stored := store.LoadProfiles(context.Background())
	if len(stored) != 2 {
		t.Fatalf("expected both profiles kept, got %d", len(stored))
	}
	if _, ok := stored["alice"]; !ok {
		t.Fatalf("expected alice kept")
	}
}

func TestSeedForceReplacesCorruptMapping(t *testing.T) {
	mem := useMemoryStore(t)
	_ = mem.Set(context.Background(), profiles.ProfilesKey, []byte("{not json"))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"seed"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected seed without --force to refuse a corrupt mapping")
	}

	if got := run(t, "seed", "--force"); !strings.Contains(got, "Seeded profile") {
		t.Fatalf("unexpected output %q", got)
	}
	if _, ok := profiles.NewStore(mem).LoadProfiles(context.Background())[profiles.SeedProfileID]; !ok {
		t.Fatalf("expected seed stored")
	}
}
