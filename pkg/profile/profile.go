// Copyright 2024-2026 Aiku AI

// Package profile derives stable pseudonymous identities (display name,
// avatar, per-guild accent color) for mirrored messages.
package profile

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultAvatarBaseURL is the image-generation endpoint used when the
// operator does not configure one.
const DefaultAvatarBaseURL = "https://api.dicebear.com/9.x/bottts-neutral/png"

// Profile is a rendered pseudonymous identity. Seed is the avatar seed
// (author seed combined with the chosen words), not the input seed.
type Profile struct {
	Seed        string
	DisplayName string
	AvatarURL   string
}

// Dictionary is the persisted word lists plus the guild color table.
type Dictionary struct {
	Adjectives  []string
	Nouns       []string
	GuildColors map[int64]int
}

// Store persists the dictionary and color assignments. Implemented by
// database.ProfileDataQuery.
type Store interface {
	// LoadDictionary returns the stored dictionary, or nil if none exists.
	LoadDictionary(ctx context.Context) (*Dictionary, error)
	// SeedDictionary writes the built-in defaults on first boot.
	SeedDictionary(ctx context.Context, dict *Dictionary) error
	// SaveGuildColors replaces the stored color table in one write.
	SaveGuildColors(ctx context.Context, colors map[int64]int) error
}

// Engine renders bridge profiles. Identical seeds always resolve to the
// same profile, within a process and across restarts, as long as the stored
// dictionary is unchanged.
type Engine struct {
	log       zerolog.Logger
	store     Store
	avatarURL *url.URL

	mu          sync.RWMutex
	adjectives  []string
	nouns       []string
	guildColors map[int64]int
}

// New loads the dictionary from the store, seeding it with the built-in
// defaults when absent. An empty or unparsable avatarBaseURL disables
// avatar generation; profiles then carry an empty AvatarURL.
func New(ctx context.Context, store Store, avatarBaseURL string, log zerolog.Logger) (*Engine, error) {
	e := &Engine{
		log:   log.With().Str("component", "profile_engine").Logger(),
		store: store,
	}
	if avatarBaseURL != "" {
		parsed, err := url.Parse(avatarBaseURL)
		if err != nil || parsed.Host == "" {
			e.log.Warn().Str("avatar_base_url", avatarBaseURL).Msg("Invalid avatar base URL, avatar generation disabled")
		} else {
			e.avatarURL = parsed
		}
	}
	if err := e.reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) reload(ctx context.Context) error {
	dict, err := e.store.LoadDictionary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile dictionary: %w", err)
	}
	if dict == nil {
		dict = &Dictionary{
			Adjectives:  append([]string(nil), defaultAdjectives...),
			Nouns:       append([]string(nil), defaultNouns...),
			GuildColors: map[int64]int{},
		}
		if err := e.store.SeedDictionary(ctx, dict); err != nil {
			return fmt.Errorf("failed to seed profile dictionary: %w", err)
		}
		e.log.Info().Msg("Profile dictionary seeded with built-in defaults")
	}
	if len(dict.Adjectives) == 0 || len(dict.Nouns) == 0 {
		return fmt.Errorf("profile dictionary is empty")
	}

	colors, changed := normalizeGuildColors(dict.GuildColors)
	if changed {
		if err := e.store.SaveGuildColors(ctx, colors); err != nil {
			return fmt.Errorf("failed to rewrite normalized guild colors: %w", err)
		}
		e.log.Warn().Msg("Dropped invalid guild color entries from the stored table")
	}

	e.mu.Lock()
	e.adjectives = dict.Adjectives
	e.nouns = dict.Nouns
	e.guildColors = colors
	e.mu.Unlock()
	return nil
}

// Refresh reloads the word lists and color table from the store so an
// externally edited dictionary takes effect without a restart.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.reload(ctx)
}

// GetProfile deterministically derives one adjective and one noun from the
// seed. The word picker is a pinned splitmix64 sequence keyed by the FNV-1a
// hash of the seed, so results are stable across builds and Go releases.
func (e *Engine) GetProfile(seed string) Profile {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hash := fnv.New64a()
	hash.Write([]byte(seed))
	state := hash.Sum64()

	adjective := e.adjectives[splitmix64(&state)%uint64(len(e.adjectives))]
	noun := e.nouns[splitmix64(&state)%uint64(len(e.nouns))]

	avatarSeed := fmt.Sprintf("%s-%s-%s", seed, adjective, noun)
	return Profile{
		Seed:        avatarSeed,
		DisplayName: adjective + noun,
		AvatarURL:   e.avatarURLFor(avatarSeed),
	}
}

func (e *Engine) avatarURLFor(avatarSeed string) string {
	if e.avatarURL == nil {
		return ""
	}
	u := *e.avatarURL
	q := u.Query()
	q.Set("seed", avatarSeed)
	u.RawQuery = q.Encode()
	return u.String()
}

// GuildColor returns the accent color assigned to a guild, if any.
func (e *Engine) GuildColor(guildID int64) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	color, ok := e.guildColors[guildID]
	return color, ok
}

// EnsureGuildColors assigns an accent color to every guild that lacks one,
// persisting the updated table in a single write. Already-assigned guilds
// keep their color; assignment is monotonic.
func (e *Engine) EnsureGuildColors(ctx context.Context, guildIDs []int64) (map[int64]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var missing []int64
	for _, id := range guildIDs {
		if _, ok := e.guildColors[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return copyColors(e.guildColors), nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	inUse := make(map[int]struct{}, len(e.guildColors))
	for _, color := range e.guildColors {
		inUse[color] = struct{}{}
	}

	assigned := copyColors(e.guildColors)
	for _, id := range missing {
		color := pickGuildColor(inUse)
		assigned[id] = color
		inUse[color] = struct{}{}
	}

	if err := e.store.SaveGuildColors(ctx, assigned); err != nil {
		return nil, fmt.Errorf("failed to persist guild colors: %w", err)
	}
	e.guildColors = assigned
	e.log.Info().Ints64("guilds", missing).Msg("Assigned accent colors to new guilds")
	return copyColors(assigned), nil
}

func copyColors(colors map[int64]int) map[int64]int {
	out := make(map[int64]int, len(colors))
	for id, color := range colors {
		out[id] = color
	}
	return out
}

func normalizeGuildColors(raw map[int64]int) (map[int64]int, bool) {
	normalized := make(map[int64]int, len(raw))
	changed := false
	for id, color := range raw {
		if id <= 0 || color < 0 || color > 0xFFFFFF {
			changed = true
			continue
		}
		normalized[id] = color
	}
	return normalized, changed
}

// splitmix64 advances the generator state and returns the next value. The
// algorithm is pinned here rather than relying on math/rand so the word
// selection never changes between releases.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
