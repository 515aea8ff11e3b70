// Copyright 2024-2026 Aiku AI

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mau.fi/util/dbutil"
)

// AttachmentSummary describes the attachments of a bridged message: at most
// one primary image filename plus textual notes for everything else.
type AttachmentSummary struct {
	ImageFilename string   `json:"image_filename,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}

// Destination is one mirrored copy of a source message and where it lives.
type Destination struct {
	MessageID int64
	GuildID   int64
	ChannelID int64
}

// MessageLink maps a source message to its mirrored copies together with
// the presentation metadata needed to re-render edits.
type MessageLink struct {
	SourceID     int64
	Destinations []Destination
	ProfileSeed  string
	DisplayName  string
	AvatarURL    string
	AvatarFailed bool
	Attachments  AttachmentSummary
	UpdatedAt    time.Time
}

// MessageLinkQuery provides access to the message_link tables.
type MessageLinkQuery struct {
	*dbutil.QueryHelper[*MessageLink]
}

func newMessageLink(_ *dbutil.QueryHelper[*MessageLink]) *MessageLink {
	return &MessageLink{}
}

const (
	upsertMessageLinkQuery = `
		INSERT INTO message_link (
			source_id, profile_seed, display_name, avatar_url,
			avatar_failed, image_filename, attachment_notes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_id) DO UPDATE SET
			profile_seed = excluded.profile_seed,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			avatar_failed = excluded.avatar_failed,
			image_filename = excluded.image_filename,
			attachment_notes = excluded.attachment_notes,
			updated_at = excluded.updated_at
	`
	getMessageLinkQuery = `
		SELECT source_id, profile_seed, display_name, avatar_url,
		       avatar_failed, image_filename, attachment_notes, updated_at
		FROM message_link WHERE source_id = $1
	`
	getSourceByDestinationQuery = `
		SELECT source_id FROM message_link_destination WHERE destination_id = $1
	`
	getDestinationsQuery = `
		SELECT destination_id, guild_id, channel_id
		FROM message_link_destination
		WHERE source_id = $1
		ORDER BY destination_id
	`
	deleteDestinationsQuery  = `DELETE FROM message_link_destination WHERE source_id = $1`
	insertDestinationQuery   = `INSERT INTO message_link_destination (destination_id, source_id, guild_id, channel_id) VALUES ($1, $2, $3, $4)`
	deleteMessageLinkQuery   = `DELETE FROM message_link WHERE source_id = $1`
	removeDestinationQuery   = `DELETE FROM message_link_destination WHERE destination_id = $1`
	countDestinationsQuery   = `SELECT COUNT(*) FROM message_link_destination WHERE source_id = $1`
	touchMessageLinkQuery    = `UPDATE message_link SET updated_at = $1 WHERE source_id = $2`
	updateAttachmentsQuery   = `UPDATE message_link SET image_filename = $1, attachment_notes = $2, updated_at = $3 WHERE source_id = $4`
	purgeMessageLinksQuery   = `DELETE FROM message_link WHERE updated_at < $1`
)

// Scan implements dbutil.DataStruct. Destinations are loaded separately.
func (ml *MessageLink) Scan(row dbutil.Scannable) (*MessageLink, error) {
	var imageFilename sql.NullString
	var notesJSON string
	var updatedAt int64
	err := row.Scan(
		&ml.SourceID, &ml.ProfileSeed, &ml.DisplayName, &ml.AvatarURL,
		&ml.AvatarFailed, &imageFilename, &notesJSON, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ml.Attachments.ImageFilename = imageFilename.String
	if notesJSON != "" {
		if err := json.Unmarshal([]byte(notesJSON), &ml.Attachments.Notes); err != nil {
			return nil, fmt.Errorf("failed to parse attachment notes: %w", err)
		}
	}
	ml.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return ml, nil
}

func (ml *MessageLink) sqlVariables(now time.Time) ([]any, error) {
	notesJSON, err := json.Marshal(ml.Attachments.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachment notes: %w", err)
	}
	var imageFilename sql.NullString
	if ml.Attachments.ImageFilename != "" {
		imageFilename = sql.NullString{String: ml.Attachments.ImageFilename, Valid: true}
	}
	return []any{
		ml.SourceID, ml.ProfileSeed, ml.DisplayName, ml.AvatarURL,
		ml.AvatarFailed, imageFilename, string(notesJSON), now.UnixMilli(),
	}, nil
}

// Upsert inserts or replaces the record for link.SourceID. The destination
// set is deduplicated and sorted by message id before the write, keeping
// stored records stable for comparison.
func (mlq *MessageLinkQuery) Upsert(ctx context.Context, link *MessageLink) error {
	link.Destinations = normalizeDestinations(link.Destinations)
	link.UpdatedAt = time.Now().UTC()
	vars, err := link.sqlVariables(link.UpdatedAt)
	if err != nil {
		return err
	}
	return mlq.GetDB().DoTxn(ctx, nil, func(ctx context.Context) error {
		if err := mlq.Exec(ctx, upsertMessageLinkQuery, vars...); err != nil {
			return fmt.Errorf("failed to upsert message link: %w", err)
		}
		if err := mlq.Exec(ctx, deleteDestinationsQuery, link.SourceID); err != nil {
			return fmt.Errorf("failed to clear destinations: %w", err)
		}
		for _, dest := range link.Destinations {
			err := mlq.Exec(ctx, insertDestinationQuery, dest.MessageID, link.SourceID, dest.GuildID, dest.ChannelID)
			if err != nil {
				return fmt.Errorf("failed to insert destination %d: %w", dest.MessageID, err)
			}
		}
		return nil
	})
}

// Get returns the record for a source message id, or nil if none exists.
func (mlq *MessageLinkQuery) Get(ctx context.Context, sourceID int64) (*MessageLink, error) {
	link, err := mlq.QueryOne(ctx, getMessageLinkQuery, sourceID)
	if err != nil || link == nil {
		return link, err
	}
	link.Destinations, err = mlq.getDestinations(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetByDestination returns the record containing the given destination
// message id, or nil if no record holds it.
func (mlq *MessageLinkQuery) GetByDestination(ctx context.Context, destinationID int64) (*MessageLink, error) {
	sourceID, err := mlq.findSource(ctx, destinationID)
	if err != nil || sourceID == 0 {
		return nil, err
	}
	return mlq.Get(ctx, sourceID)
}

func (mlq *MessageLinkQuery) findSource(ctx context.Context, destinationID int64) (int64, error) {
	var sourceID int64
	err := mlq.GetDB().QueryRow(ctx, getSourceByDestinationQuery, destinationID).Scan(&sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to look up destination %d: %w", destinationID, err)
	}
	return sourceID, nil
}

func (mlq *MessageLinkQuery) getDestinations(ctx context.Context, sourceID int64) ([]Destination, error) {
	rows, err := mlq.GetDB().Query(ctx, getDestinationsQuery, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query destinations: %w", err)
	}
	defer rows.Close()
	var dests []Destination
	for rows.Next() {
		var dest Destination
		if err := rows.Scan(&dest.MessageID, &dest.GuildID, &dest.ChannelID); err != nil {
			return nil, fmt.Errorf("failed to scan destination: %w", err)
		}
		dests = append(dests, dest)
	}
	return dests, rows.Err()
}

// UpdateAttachments replaces the stored attachment summary. Passing nil or
// an unknown source id is a no-op.
func (mlq *MessageLinkQuery) UpdateAttachments(ctx context.Context, sourceID int64, attachments *AttachmentSummary) error {
	if attachments == nil {
		return nil
	}
	notesJSON, err := json.Marshal(attachments.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal attachment notes: %w", err)
	}
	var imageFilename sql.NullString
	if attachments.ImageFilename != "" {
		imageFilename = sql.NullString{String: attachments.ImageFilename, Valid: true}
	}
	return mlq.Exec(ctx, updateAttachmentsQuery, imageFilename, string(notesJSON), time.Now().UnixMilli(), sourceID)
}

// Delete removes the record and its destinations. Reports whether a record
// existed.
func (mlq *MessageLinkQuery) Delete(ctx context.Context, sourceID int64) (bool, error) {
	var existed bool
	err := mlq.GetDB().DoTxn(ctx, nil, func(ctx context.Context) error {
		if err := mlq.Exec(ctx, deleteDestinationsQuery, sourceID); err != nil {
			return fmt.Errorf("failed to delete destinations: %w", err)
		}
		res, err := mlq.GetDB().Exec(ctx, deleteMessageLinkQuery, sourceID)
		if err != nil {
			return fmt.Errorf("failed to delete message link: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		existed = affected > 0
		return nil
	})
	return existed, err
}

// RemoveDestination drops one destination id from whichever record holds
// it. When the destination set becomes empty the whole record is deleted,
// otherwise the reduced record is persisted. Unknown ids are a no-op.
func (mlq *MessageLinkQuery) RemoveDestination(ctx context.Context, destinationID int64) error {
	return mlq.GetDB().DoTxn(ctx, nil, func(ctx context.Context) error {
		sourceID, err := mlq.findSource(ctx, destinationID)
		if err != nil || sourceID == 0 {
			return err
		}
		if err := mlq.Exec(ctx, removeDestinationQuery, destinationID); err != nil {
			return fmt.Errorf("failed to remove destination: %w", err)
		}
		var remaining int
		err = mlq.GetDB().QueryRow(ctx, countDestinationsQuery, sourceID).Scan(&remaining)
		if err != nil {
			return fmt.Errorf("failed to count remaining destinations: %w", err)
		}
		if remaining == 0 {
			return mlq.Exec(ctx, deleteMessageLinkQuery, sourceID)
		}
		return mlq.Exec(ctx, touchMessageLinkQuery, time.Now().UnixMilli(), sourceID)
	})
}

// PurgeOlderThan bulk-deletes records whose last write is older than the
// threshold and returns the number of records removed.
func (mlq *MessageLinkQuery) PurgeOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := mlq.GetDB().Exec(ctx, purgeMessageLinksQuery, threshold.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge message links: %w", err)
	}
	return res.RowsAffected()
}

func normalizeDestinations(dests []Destination) []Destination {
	seen := make(map[int64]struct{}, len(dests))
	out := make([]Destination, 0, len(dests))
	for _, dest := range dests {
		if _, dup := seen[dest.MessageID]; dup {
			continue
		}
		seen[dest.MessageID] = struct{}{}
		out = append(out, dest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MessageID < out[j].MessageID })
	return out
}
