// Copyright 2024-2026 Aiku AI

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mau.fi/util/dbutil"

	"github.com/aiku/anonbridge/pkg/profile"
)

// dictionaryRowID is the primary key of the single bridge_profile_data row.
const dictionaryRowID = "dictionary"

// ProfileDataQuery persists the profile engine's word lists and guild color
// table. It implements profile.Store.
type ProfileDataQuery struct {
	db *dbutil.Database
}

var _ profile.Store = (*ProfileDataQuery)(nil)

const (
	getProfileDataQuery = `
		SELECT adjectives, nouns, guild_colors
		FROM bridge_profile_data WHERE id = $1
	`
	upsertProfileDataQuery = `
		INSERT INTO bridge_profile_data (id, adjectives, nouns, guild_colors, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			adjectives = excluded.adjectives,
			nouns = excluded.nouns,
			guild_colors = excluded.guild_colors,
			updated_at = excluded.updated_at
	`
	updateGuildColorsQuery = `
		UPDATE bridge_profile_data SET guild_colors = $1, updated_at = $2 WHERE id = $3
	`
)

// LoadDictionary returns the stored dictionary, or nil when the row has
// never been written.
func (pdq *ProfileDataQuery) LoadDictionary(ctx context.Context) (*profile.Dictionary, error) {
	var adjectivesJSON, nounsJSON, colorsJSON string
	err := pdq.db.QueryRow(ctx, getProfileDataQuery, dictionaryRowID).
		Scan(&adjectivesJSON, &nounsJSON, &colorsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to query profile data: %w", err)
	}

	var dict profile.Dictionary
	if err := json.Unmarshal([]byte(adjectivesJSON), &dict.Adjectives); err != nil {
		return nil, fmt.Errorf("failed to parse adjectives: %w", err)
	}
	if err := json.Unmarshal([]byte(nounsJSON), &dict.Nouns); err != nil {
		return nil, fmt.Errorf("failed to parse nouns: %w", err)
	}
	if err := json.Unmarshal([]byte(colorsJSON), &dict.GuildColors); err != nil {
		return nil, fmt.Errorf("failed to parse guild colors: %w", err)
	}
	return &dict, nil
}

// SeedDictionary writes the dictionary row, replacing any existing one.
func (pdq *ProfileDataQuery) SeedDictionary(ctx context.Context, dict *profile.Dictionary) error {
	adjectivesJSON, err := json.Marshal(dict.Adjectives)
	if err != nil {
		return fmt.Errorf("failed to marshal adjectives: %w", err)
	}
	nounsJSON, err := json.Marshal(dict.Nouns)
	if err != nil {
		return fmt.Errorf("failed to marshal nouns: %w", err)
	}
	colorsJSON, err := marshalGuildColors(dict.GuildColors)
	if err != nil {
		return err
	}
	_, err = pdq.db.Exec(ctx, upsertProfileDataQuery,
		dictionaryRowID, string(adjectivesJSON), string(nounsJSON), colorsJSON, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to seed profile data: %w", err)
	}
	return nil
}

// SaveGuildColors replaces the stored color table in one write.
func (pdq *ProfileDataQuery) SaveGuildColors(ctx context.Context, colors map[int64]int) error {
	colorsJSON, err := marshalGuildColors(colors)
	if err != nil {
		return err
	}
	_, err = pdq.db.Exec(ctx, updateGuildColorsQuery,
		colorsJSON, time.Now().UnixMilli(), dictionaryRowID)
	if err != nil {
		return fmt.Errorf("failed to save guild colors: %w", err)
	}
	return nil
}

func marshalGuildColors(colors map[int64]int) (string, error) {
	if colors == nil {
		colors = map[int64]int{}
	}
	data, err := json.Marshal(colors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal guild colors: %w", err)
	}
	return string(data), nil
}
