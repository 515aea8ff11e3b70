// Copyright 2024-2026 Aiku AI

// Package routes holds the immutable channel-to-channel routing table that
// decides where a source message gets mirrored.
package routes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Endpoint identifies a single channel scoped to a guild.
type Endpoint struct {
	Guild   int64 `json:"guild"`
	Channel int64 `json:"channel"`
}

// Validate checks that both ids are positive. Snowflakes are never zero or
// negative, so anything else is a malformed route entry.
func (e Endpoint) Validate() error {
	if e.Guild <= 0 || e.Channel <= 0 {
		return fmt.Errorf("guild and channel must be positive integers (got guild=%d, channel=%d)", e.Guild, e.Channel)
	}
	return nil
}

func (e Endpoint) String() string {
	return fmt.Sprintf("(%d, %d)", e.Guild, e.Channel)
}

// Route is a directed source->destination endpoint pair. A route and its
// reverse are two independent entries.
type Route struct {
	Source      Endpoint `json:"src"`
	Destination Endpoint `json:"dst"`
}

func (r Route) String() string {
	return fmt.Sprintf("%s->%s", r.Source, r.Destination)
}

// Reverse returns the reciprocal route.
func (r Route) Reverse() Route {
	return Route{Source: r.Destination, Destination: r.Source}
}

// Table is the immutable set of routes loaded at startup.
type Table struct {
	routes   []Route
	bySource map[Endpoint][]Route
}

// Load parses the BRIDGE_ROUTES JSON payload into a Table.
//
// When enabled is false the payload is not inspected at all and an empty,
// valid table is returned. Malformed entries and duplicate (src, dst) pairs
// are skipped with a warning, or fail the whole load when strict is set.
// When requireReciprocal is set, every accepted route must have its reverse
// in the accepted set, otherwise loading fails naming the offending routes.
func Load(log zerolog.Logger, payload string, enabled, requireReciprocal, strict bool) (*Table, error) {
	if !enabled {
		log.Info().Msg("Bridge routes disabled, not loading channel routes")
		return newTable(nil), nil
	}
	if payload == "" {
		return nil, fmt.Errorf("bridge routes enabled but no route payload configured")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse route payload: %w", err)
	}

	accepted := make([]Route, 0, len(entries))
	seen := make(map[Route]struct{}, len(entries))
	for _, raw := range entries {
		route, err := parseEntry(raw)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("invalid route entry %s: %w", string(raw), err)
			}
			log.Warn().Str("entry", string(raw)).Err(err).Msg("Skipping invalid route entry")
			continue
		}
		if _, dup := seen[route]; dup {
			if strict {
				return nil, fmt.Errorf("duplicate route entry %s", route)
			}
			log.Warn().Stringer("route", route).Msg("Skipping duplicate route entry")
			continue
		}
		seen[route] = struct{}{}
		log.Info().Stringer("route", route).Msg("Loaded channel route")
		accepted = append(accepted, route)
	}

	if requireReciprocal {
		if err := checkReciprocal(accepted, seen); err != nil {
			return nil, err
		}
	}

	if len(accepted) > 0 {
		log.Info().Int("count", len(accepted)).Msg("Channel routes loaded")
	}
	return newTable(accepted), nil
}

func parseEntry(raw json.RawMessage) (Route, error) {
	var entry struct {
		Src *Endpoint `json:"src"`
		Dst *Endpoint `json:"dst"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Route{}, err
	}
	if entry.Src == nil || entry.Dst == nil {
		return Route{}, fmt.Errorf("route entry must contain both src and dst")
	}
	if err := entry.Src.Validate(); err != nil {
		return Route{}, fmt.Errorf("invalid src: %w", err)
	}
	if err := entry.Dst.Validate(); err != nil {
		return Route{}, fmt.Errorf("invalid dst: %w", err)
	}
	return Route{Source: *entry.Src, Destination: *entry.Dst}, nil
}

func checkReciprocal(accepted []Route, seen map[Route]struct{}) error {
	var missing []string
	for _, route := range accepted {
		if _, ok := seen[route.Reverse()]; !ok {
			missing = append(missing, route.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("reciprocal routes required but missing reverse of: %s", strings.Join(missing, ", "))
	}
	return nil
}

func newTable(accepted []Route) *Table {
	t := &Table{
		routes:   accepted,
		bySource: make(map[Endpoint][]Route, len(accepted)),
	}
	for _, route := range accepted {
		t.bySource[route.Source] = append(t.bySource[route.Source], route)
	}
	return t
}

// All returns every route in load order.
func (t *Table) All() []Route {
	return t.routes
}

// Len returns the number of routes in the table.
func (t *Table) Len() int {
	return len(t.routes)
}

// FromEndpoint returns the routes whose source matches the given endpoint.
func (t *Table) FromEndpoint(guildID, channelID int64) []Route {
	return t.bySource[Endpoint{Guild: guildID, Channel: channelID}]
}

// FromGuild returns every route whose source guild matches guildID,
// preserving load order. Used by the introspection command.
func (t *Table) FromGuild(guildID int64) []Route {
	var out []Route
	for _, route := range t.routes {
		if route.Source.Guild == guildID {
			out = append(out, route)
		}
	}
	return out
}
