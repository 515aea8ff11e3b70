// Copyright 2024-2026 Aiku AI

package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeStore is an in-memory Store implementation for tests.
type fakeStore struct {
	dict       *Dictionary
	seedCalls  int
	colorSaves int
}

func (f *fakeStore) LoadDictionary(_ context.Context) (*Dictionary, error) {
	if f.dict == nil {
		return nil, nil
	}
	copied := &Dictionary{
		Adjectives:  append([]string(nil), f.dict.Adjectives...),
		Nouns:       append([]string(nil), f.dict.Nouns...),
		GuildColors: map[int64]int{},
	}
	for id, color := range f.dict.GuildColors {
		copied.GuildColors[id] = color
	}
	return copied, nil
}

func (f *fakeStore) SeedDictionary(_ context.Context, dict *Dictionary) error {
	f.seedCalls++
	f.dict = dict
	return nil
}

func (f *fakeStore) SaveGuildColors(_ context.Context, colors map[int64]int) error {
	f.colorSaves++
	if f.dict != nil {
		f.dict.GuildColors = colors
	}
	return nil
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	engine, err := New(context.Background(), store, DefaultAvatarBaseURL, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return engine
}

func TestGetProfile_Deterministic(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	engine := newTestEngine(t, store)

	first := engine.GetProfile("12345")
	second := engine.GetProfile("12345")
	if first != second {
		t.Errorf("same seed produced different profiles: %+v vs %+v", first, second)
	}

	// A second engine over the same store must resolve identically,
	// simulating a process restart.
	restarted := newTestEngine(t, store)
	third := restarted.GetProfile("12345")
	if first != third {
		t.Errorf("profile changed across restart: %+v vs %+v", first, third)
	}

	other := engine.GetProfile("54321")
	if other.DisplayName == first.DisplayName && other.AvatarURL == first.AvatarURL {
		t.Errorf("distinct seeds resolved to the same profile: %+v", other)
	}
}

func TestGetProfile_Shape(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, &fakeStore{})

	prof := engine.GetProfile("seed")

	if prof.DisplayName == "" {
		t.Error("display name is empty")
	}
	if !strings.HasPrefix(prof.AvatarURL, DefaultAvatarBaseURL+"?") {
		t.Errorf("avatar URL not based on the avatar endpoint: %s", prof.AvatarURL)
	}
	if !strings.HasPrefix(prof.Seed, "seed-") {
		t.Errorf("avatar seed should be derived from the input seed: %s", prof.Seed)
	}
}

func TestNew_SeedsDefaultsOnce(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	newTestEngine(t, store)
	if store.seedCalls != 1 {
		t.Fatalf("seed calls: got %d, want 1", store.seedCalls)
	}
	newTestEngine(t, store)
	if store.seedCalls != 1 {
		t.Errorf("second boot reseeded the dictionary")
	}
}

func TestNew_EmptyDictionary(t *testing.T) {
	t.Parallel()
	store := &fakeStore{dict: &Dictionary{Adjectives: []string{}, Nouns: []string{"x"}}}
	if _, err := New(context.Background(), store, "", zerolog.Nop()); err == nil {
		t.Error("expected error for empty adjective list")
	}
}

func TestNew_NormalizesStoredColors(t *testing.T) {
	t.Parallel()
	store := &fakeStore{dict: &Dictionary{
		Adjectives:  []string{"calm"},
		Nouns:       []string{"fox"},
		GuildColors: map[int64]int{1: 0xFF0000, -5: 0x00FF00, 2: 0x1000000},
	}}

	engine := newTestEngine(t, store)

	if store.colorSaves != 1 {
		t.Errorf("normalized table should be written back once, got %d writes", store.colorSaves)
	}
	if _, ok := engine.GuildColor(1); !ok {
		t.Error("valid color entry lost during normalization")
	}
	if _, ok := engine.GuildColor(2); ok {
		t.Error("out-of-range color entry survived normalization")
	}
}

func TestNew_InvalidAvatarBase(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	engine, err := New(context.Background(), store, "::not a url", zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := engine.GetProfile("seed").AvatarURL; got != "" {
		t.Errorf("avatar URL should be empty with an invalid base, got %q", got)
	}
}

func TestRefresh_PicksUpEditedDictionary(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	engine := newTestEngine(t, store)

	store.dict.Adjectives = []string{"only"}
	store.dict.Nouns = []string{"word"}
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := engine.GetProfile("anything").DisplayName; got != "onlyword" {
		t.Errorf("display name after refresh: got %q, want %q", got, "onlyword")
	}
}

func TestEnsureGuildColors(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	engine := newTestEngine(t, store)
	ctx := context.Background()

	colors, err := engine.EnsureGuildColors(ctx, []int64{100, 200})
	if err != nil {
		t.Fatalf("EnsureGuildColors failed: %v", err)
	}
	if len(colors) != 2 {
		t.Fatalf("color count: got %d, want 2", len(colors))
	}
	if colors[100] == colors[200] {
		t.Error("two guilds received the same color")
	}
	if store.colorSaves != 1 {
		t.Errorf("persist writes: got %d, want 1 batched write", store.colorSaves)
	}

	// Already-assigned guilds keep their color and trigger no write.
	again, err := engine.EnsureGuildColors(ctx, []int64{100, 200})
	if err != nil {
		t.Fatalf("EnsureGuildColors failed: %v", err)
	}
	if again[100] != colors[100] || again[200] != colors[200] {
		t.Error("existing color assignments changed")
	}
	if store.colorSaves != 1 {
		t.Errorf("no-op call wrote to the store (%d writes)", store.colorSaves)
	}
}

func TestSplitmix64_PinnedSequence(t *testing.T) {
	t.Parallel()
	// Reference values for the published splitmix64 algorithm seeded with 0.
	state := uint64(0)
	want := []uint64{0xE220A8397B1DCDAF, 0x6E789E6AA1B965F4, 0x06C45D188009454F}
	for i, expected := range want {
		if got := splitmix64(&state); got != expected {
			t.Fatalf("splitmix64 output %d: got %#x, want %#x", i, got, expected)
		}
	}
}
