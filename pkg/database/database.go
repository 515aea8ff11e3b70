// Copyright 2024-2026 Aiku AI

// Package database implements the durable stores behind the bridge: the
// message link records and the profile dictionary/color table.
package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"

	"github.com/aiku/anonbridge/pkg/database/upgrades"
)

// Database bundles the query helpers over one connection pool.
type Database struct {
	*dbutil.Database

	MessageLink *MessageLinkQuery
	ProfileData *ProfileDataQuery
}

// New opens the database, applies pending schema upgrades and returns the
// query helpers. dbType is a dbutil pool type such as "postgres" or
// "sqlite3-fk-wal".
func New(ctx context.Context, dbType, uri string, log zerolog.Logger) (*Database, error) {
	rawDB, err := dbutil.NewFromConfig("anonbridge", dbutil.Config{
		PoolConfig: dbutil.PoolConfig{
			Type:         dbType,
			URI:          uri,
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
	}, dbutil.ZeroLogger(log.With().Str("component", "database").Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	rawDB.UpgradeTable = upgrades.Table
	rawDB.VersionTable = "bridge_version"
	if err := rawDB.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade database schema: %w", err)
	}

	return wrap(rawDB), nil
}

func wrap(rawDB *dbutil.Database) *Database {
	return &Database{
		Database:    rawDB,
		MessageLink: &MessageLinkQuery{dbutil.MakeQueryHelper(rawDB, newMessageLink)},
		ProfileData: &ProfileDataQuery{db: rawDB},
	}
}
