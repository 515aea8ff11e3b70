// Copyright 2024-2026 Aiku AI

package routes

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// BuilderEntry is one route as authored by the routes CLI. Unlike the
// runtime Route it carries optional operator-facing labels which the loader
// ignores but humans editing the payload appreciate.
type BuilderEntry struct {
	Src BuilderEndpoint `json:"src"`
	Dst BuilderEndpoint `json:"dst"`
}

// BuilderEndpoint is an endpoint plus optional display labels.
type BuilderEndpoint struct {
	Guild       int64  `json:"guild"`
	Channel     int64  `json:"channel"`
	GuildName   string `json:"guild_name,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
}

func (e BuilderEndpoint) key() Endpoint {
	return Endpoint{Guild: e.Guild, Channel: e.Channel}
}

// GenerateReciprocals appends a reverse entry for every route whose
// reciprocal is not already present, carrying the labels over. Entries that
// already have a reverse are left untouched.
func GenerateReciprocals(entries []BuilderEntry) []BuilderEntry {
	existing := make(map[Route]struct{}, len(entries))
	for _, entry := range entries {
		existing[Route{Source: entry.Src.key(), Destination: entry.Dst.key()}] = struct{}{}
	}

	out := append([]BuilderEntry(nil), entries...)
	generated := make(map[Route]struct{})
	for _, entry := range entries {
		forward := Route{Source: entry.Src.key(), Destination: entry.Dst.key()}
		reverse := forward.Reverse()
		if _, ok := existing[reverse]; ok {
			continue
		}
		if _, ok := generated[reverse]; ok {
			continue
		}
		out = append(out, BuilderEntry{Src: entry.Dst, Dst: entry.Src})
		generated[forward] = struct{}{}
		generated[reverse] = struct{}{}
	}
	return out
}

// MarshalPayload renders the entries as the single-line JSON form expected
// in the BRIDGE_ROUTES environment variable.
func MarshalPayload(entries []BuilderEntry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal route payload: %w", err)
	}
	return string(data), nil
}

// ValidatePayload runs the authored entries through the production loader in
// strict mode so the CLI catches anything the bridge would reject at boot.
func ValidatePayload(entries []BuilderEntry) error {
	payload, err := MarshalPayload(entries)
	if err != nil {
		return err
	}
	_, err = Load(zerolog.Nop(), payload, true, false, true)
	return err
}
