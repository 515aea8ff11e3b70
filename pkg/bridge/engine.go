// Copyright 2024-2026 Aiku AI

// Package bridge contains the relay engine that mirrors messages between
// configured channel pairs while anonymizing their authors.
package bridge

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aiku/anonbridge/pkg/database"
	"github.com/aiku/anonbridge/pkg/gateway"
	"github.com/aiku/anonbridge/pkg/profile"
	"github.com/aiku/anonbridge/pkg/routes"
)

// LinkStore is the persistence surface the engine needs for message links.
// *database.MessageLinkQuery implements it.
type LinkStore interface {
	Upsert(ctx context.Context, link *database.MessageLink) error
	Get(ctx context.Context, sourceID int64) (*database.MessageLink, error)
	GetByDestination(ctx context.Context, destinationID int64) (*database.MessageLink, error)
	UpdateAttachments(ctx context.Context, sourceID int64, attachments *database.AttachmentSummary) error
	Delete(ctx context.Context, sourceID int64) (bool, error)
	RemoveDestination(ctx context.Context, destinationID int64) error
}

// Profiles is the slice of the profile engine the relay engine consumes.
type Profiles interface {
	GetProfile(seed string) profile.Profile
	GuildColor(guildID int64) (int, bool)
	EnsureGuildColors(ctx context.Context, guildIDs []int64) (map[int64]int, error)
}

var _ LinkStore = (*database.MessageLinkQuery)(nil)
var _ Profiles = (*profile.Engine)(nil)

type location struct {
	GuildID   int64
	ChannelID int64
}

type target struct {
	MessageID int64
	ChannelID int64
}

type reactionKey struct {
	MessageID int64
	Emoji     string
}

// Engine relays messages, edits, deletes and reactions across the
// configured routes. Event handlers run on gateway goroutines, so all
// index state is guarded by mu.
type Engine struct {
	client   gateway.Client
	profiles Profiles
	store    LinkStore
	routes   *routes.Table
	log      zerolog.Logger

	mu sync.Mutex
	// links is bidirectional: a source id maps to its mirror ids and
	// each mirror id maps back to its source.
	links     map[int64]map[int64]struct{}
	locations map[int64]location
	reactions map[reactionKey]map[int64]struct{}
}

var (
	_ gateway.EventHandler   = (*Engine)(nil)
	_ gateway.RouteDescriber = (*Engine)(nil)
)

func New(client gateway.Client, profiles Profiles, store LinkStore, table *routes.Table, log zerolog.Logger) *Engine {
	return &Engine{
		client:   client,
		profiles: profiles,
		store:    store,
		routes:   table,
		log:      log.With().Str("component", "bridge_engine").Logger(),

		links:     make(map[int64]map[int64]struct{}),
		locations: make(map[int64]location),
		reactions: make(map[reactionKey]map[int64]struct{}),
	}
}

// HandleReady assigns embed colors to any guild that does not have one yet.
func (e *Engine) HandleReady(ctx context.Context, guildIDs []int64) error {
	assigned, err := e.profiles.EnsureGuildColors(ctx, guildIDs)
	if err != nil {
		return fmt.Errorf("failed to ensure guild colors: %w", err)
	}
	for guildID, color := range assigned {
		e.log.Info().Int64("guild_id", guildID).Int("color", color).Msg("Assigned guild color")
	}
	return nil
}

// HandleNewMessage mirrors a fresh message to every destination routed
// from its channel and records the resulting link.
func (e *Engine) HandleNewMessage(ctx context.Context, msg *gateway.Message) error {
	if msg.AuthorIsBot {
		return nil
	}
	targets := e.routes.FromEndpoint(msg.GuildID, msg.ChannelID)
	if len(targets) == 0 {
		return nil
	}

	prof := e.profiles.GetProfile(strconv.FormatInt(msg.AuthorID, 10))
	summary := summarizeAttachments(msg.Attachments)
	out := e.renderMirror(msg.GuildID, prof.DisplayName, prof.AvatarURL, msg.Content, summary, false)

	var dests []database.Destination
	for _, route := range targets {
		mirrorID, err := e.client.Send(ctx, route.Destination.Channel, out)
		if err != nil {
			e.log.Error().Err(err).
				Int64("source_id", msg.ID).
				Stringer("route", route).
				Msg("Failed to send mirror")
			continue
		}
		dests = append(dests, database.Destination{
			MessageID: mirrorID,
			GuildID:   route.Destination.Guild,
			ChannelID: route.Destination.Channel,
		})
	}
	if len(dests) == 0 {
		return fmt.Errorf("failed to mirror message %d to any of %d destinations", msg.ID, len(targets))
	}

	link := &database.MessageLink{
		SourceID:     msg.ID,
		Destinations: dests,
		ProfileSeed:  prof.Seed,
		DisplayName:  prof.DisplayName,
		AvatarURL:    prof.AvatarURL,
		AvatarFailed: prof.AvatarURL == "",
		Attachments:  summary,
	}
	if err := e.store.Upsert(ctx, link); err != nil {
		return fmt.Errorf("failed to persist link for message %d: %w", msg.ID, err)
	}
	e.indexLink(link, &location{GuildID: msg.GuildID, ChannelID: msg.ChannelID})
	return nil
}

// HandleMessageEdit re-renders every mirror of an edited source message.
// Edits of untracked messages are ignored.
func (e *Engine) HandleMessageEdit(ctx context.Context, before, after *gateway.Message) error {
	if after.AuthorIsBot {
		return nil
	}
	link, err := e.sourceLink(ctx, after.ID)
	if err != nil {
		return err
	}
	if link == nil {
		return nil
	}

	summary := summarizeAttachments(after.Attachments)
	out := e.renderMirror(after.GuildID, link.DisplayName, link.AvatarURL, after.Content, summary, true)

	var firstErr error
	for _, dest := range link.Destinations {
		if err := e.client.Edit(ctx, dest.ChannelID, dest.MessageID, out); err != nil {
			e.log.Error().Err(err).
				Int64("source_id", after.ID).
				Int64("mirror_id", dest.MessageID).
				Msg("Failed to edit mirror")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to edit mirrors of message %d: %w", after.ID, firstErr)
	}
	if err := e.store.UpdateAttachments(ctx, after.ID, &summary); err != nil {
		return fmt.Errorf("failed to update attachment summary for message %d: %w", after.ID, err)
	}
	return nil
}

// HandleMessageDelete forgets a deleted source message: the link record,
// the index entries and the reaction aggregation go away, while the mirror
// messages themselves stay in place. A deleted mirror is detached from its
// record instead. Unknown ids are ignored.
func (e *Engine) HandleMessageDelete(ctx context.Context, messageID int64) error {
	existed, err := e.store.Delete(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete link for message %d: %w", messageID, err)
	}
	if !existed {
		// Not a tracked source. If it was one of our mirrors, detach it
		// from its record so an operator delete sticks.
		if err := e.store.RemoveDestination(ctx, messageID); err != nil {
			return fmt.Errorf("failed to detach mirror %d: %w", messageID, err)
		}
		e.detachFromIndex(messageID)
		return nil
	}
	e.dropFromIndex(messageID)
	return nil
}

// HandleReaction aggregates reactions per (message, emoji) and keeps one
// bridge-actor reaction alive on every linked copy while at least one
// human reactor remains.
func (e *Engine) HandleReaction(ctx context.Context, evt *gateway.ReactionEvent, add bool) error {
	if evt.UserIsBot {
		return nil
	}
	targets, err := e.linkedTargets(ctx, evt)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	key := reactionKey{MessageID: evt.MessageID, Emoji: evt.Emoji}

	// Fast path under lock: only the first distinct reactor and the last
	// one leaving touch the platform.
	e.mu.Lock()
	members := e.reactions[key]
	if add {
		if len(members) > 0 {
			members[evt.UserID] = struct{}{}
			e.mu.Unlock()
			return nil
		}
	} else {
		if _, ok := members[evt.UserID]; !ok {
			e.mu.Unlock()
			return nil
		}
		if len(members) > 1 {
			delete(members, evt.UserID)
			e.mu.Unlock()
			return nil
		}
	}
	e.mu.Unlock()

	// The platform calls happen outside the lock; the aggregation is only
	// mutated once every call succeeded, so a failed attempt is retried by
	// the next event.
	var firstErr error
	for _, target := range targets {
		var err error
		if add {
			err = e.client.React(ctx, target.ChannelID, target.MessageID, evt.Emoji)
		} else {
			err = e.client.Unreact(ctx, target.ChannelID, target.MessageID, evt.Emoji)
		}
		if err != nil {
			e.log.Error().Err(err).
				Int64("mirror_id", target.MessageID).
				Str("emoji", evt.Emoji).
				Bool("add", add).
				Msg("Failed to mirror reaction change")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to mirror reaction on message %d: %w", evt.MessageID, firstErr)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if add {
		if e.reactions[key] == nil {
			e.reactions[key] = make(map[int64]struct{}, 1)
		}
		e.reactions[key][evt.UserID] = struct{}{}
	} else {
		delete(e.reactions[key], evt.UserID)
		if len(e.reactions[key]) == 0 {
			delete(e.reactions, key)
		}
	}
	return nil
}

func (e *Engine) renderMirror(sourceGuildID int64, displayName, avatarURL, content string, summary database.AttachmentSummary, edited bool) *gateway.OutgoingMessage {
	out := &gateway.OutgoingMessage{
		Body:          composeBody(content, summary, edited),
		AuthorName:    displayName,
		AuthorIconURL: avatarURL,
	}
	if color, ok := e.profiles.GuildColor(sourceGuildID); ok {
		out.Color = color
		out.HasColor = true
	}
	return out
}

// sourceLink returns the link record for a tracked source message, or nil
// when the id is unknown or belongs to a mirror.
func (e *Engine) sourceLink(ctx context.Context, messageID int64) (*database.MessageLink, error) {
	link, err := e.store.Get(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load link for message %d: %w", messageID, err)
	}
	if link != nil {
		e.indexLink(link, nil)
	}
	return link, nil
}

// linkedTargets resolves the messages linked to the one named by evt,
// consulting the in-memory index first and the store on a miss.
func (e *Engine) linkedTargets(ctx context.Context, evt *gateway.ReactionEvent) ([]target, error) {
	e.mu.Lock()
	if len(e.links[evt.MessageID]) > 0 {
		// Remember where the reacted-on message lives so reactions
		// arriving on the other side of the link can find their way
		// back. Only linked messages are worth remembering.
		e.locations[evt.MessageID] = location{GuildID: evt.GuildID, ChannelID: evt.ChannelID}
		targets := e.collectTargetsLocked(evt.MessageID)
		e.mu.Unlock()
		return targets, nil
	}
	e.mu.Unlock()

	link, err := e.store.Get(ctx, evt.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load link for message %d: %w", evt.MessageID, err)
	}
	if link == nil {
		link, err = e.store.GetByDestination(ctx, evt.MessageID)
		if err != nil {
			return nil, fmt.Errorf("failed to load link for mirror %d: %w", evt.MessageID, err)
		}
	}
	if link == nil {
		return nil, nil
	}
	e.indexLink(link, nil)

	e.mu.Lock()
	e.locations[evt.MessageID] = location{GuildID: evt.GuildID, ChannelID: evt.ChannelID}
	targets := e.collectTargetsLocked(evt.MessageID)
	e.mu.Unlock()
	return targets, nil
}

// collectTargetsLocked returns the locations of every message linked to
// messageID whose location is known. Callers hold e.mu.
func (e *Engine) collectTargetsLocked(messageID int64) []target {
	var targets []target
	for linkedID := range e.links[messageID] {
		loc, ok := e.locations[linkedID]
		if !ok {
			continue
		}
		targets = append(targets, target{MessageID: linkedID, ChannelID: loc.ChannelID})
	}
	return targets
}

// indexLink records a link bidirectionally. sourceLoc may be nil for
// records rebuilt from the store, where the source location is unknown.
func (e *Engine) indexLink(link *database.MessageLink, sourceLoc *location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.links[link.SourceID] == nil {
		e.links[link.SourceID] = make(map[int64]struct{}, len(link.Destinations))
	}
	for _, dest := range link.Destinations {
		e.links[link.SourceID][dest.MessageID] = struct{}{}
		if e.links[dest.MessageID] == nil {
			e.links[dest.MessageID] = make(map[int64]struct{}, 1)
		}
		e.links[dest.MessageID][link.SourceID] = struct{}{}
		e.locations[dest.MessageID] = location{GuildID: dest.GuildID, ChannelID: dest.ChannelID}
	}
	if sourceLoc != nil {
		e.locations[link.SourceID] = *sourceLoc
	}
}

// detachFromIndex removes one message from the index, keeping the
// aggregation of whatever it was linked to alive. Used when a mirror
// disappears while its source message remains bridged.
func (e *Engine) detachFromIndex(messageID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for linkedID := range e.links[messageID] {
		delete(e.links[linkedID], messageID)
		if len(e.links[linkedID]) == 0 {
			delete(e.links, linkedID)
			delete(e.locations, linkedID)
		}
	}
	delete(e.links, messageID)
	delete(e.locations, messageID)
	e.clearReactionsLocked(messageID)
}

// dropFromIndex removes a deleted source message, everything linked to it,
// and the reaction aggregation on either side of the link.
func (e *Engine) dropFromIndex(messageID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	linked := e.links[messageID]
	for linkedID := range linked {
		delete(e.links[linkedID], messageID)
		if len(e.links[linkedID]) == 0 {
			delete(e.links, linkedID)
			delete(e.locations, linkedID)
		}
		e.clearReactionsLocked(linkedID)
	}
	delete(e.links, messageID)
	delete(e.locations, messageID)
	e.clearReactionsLocked(messageID)
}

func (e *Engine) clearReactionsLocked(messageID int64) {
	for key := range e.reactions {
		if key.MessageID == messageID {
			delete(e.reactions, key)
		}
	}
}
