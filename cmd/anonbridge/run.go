// Copyright 2024-2026 Aiku AI

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aiku/anonbridge/pkg/bridge"
	"github.com/aiku/anonbridge/pkg/config"
	"github.com/aiku/anonbridge/pkg/database"
	"github.com/aiku/anonbridge/pkg/diagnostics"
	"github.com/aiku/anonbridge/pkg/gateway"
	"github.com/aiku/anonbridge/pkg/profile"
	"github.com/aiku/anonbridge/pkg/routes"
)

func newRunCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bridge",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBridge(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
	return cmd
}

func runBridge(configPath string) error {
	_ = godotenv.Load(".env")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Logging)
	log.Info().Str("version", Tag).Msg("Starting anonbridge")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := routes.Load(log, cfg.Bridge.Routes, cfg.Bridge.RoutesEnabled,
		cfg.Bridge.RequireReciprocal, cfg.Bridge.Strict)
	if err != nil {
		return fmt.Errorf("failed to load channel routes: %w", err)
	}

	db, err := database.New(ctx, cfg.Database.Type, cfg.Database.URI, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	diag := diagnostics.New(cfg, func(ctx context.Context) error {
		return db.RawDB.PingContext(ctx)
	}, log)
	if err := diag.Report(diag.Run(ctx)); err != nil {
		return err
	}

	profiles, err := profile.New(ctx, db.ProfileData, cfg.Bridge.AvatarBaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize profile engine: %w", err)
	}

	disc, err := gateway.NewDiscord(cfg.Discord.Token, cfg.Discord.RequestTimeout, log)
	if err != nil {
		return err
	}
	engine := bridge.New(disc, profiles, db.MessageLink, table, log)

	if err := disc.Connect(ctx, engine, engine); err != nil {
		return err
	}
	defer func() {
		if err := disc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close gateway")
		}
	}()
	log.Info().Int("routes", table.Len()).Msg("Bridge is running")

	if cfg.Bridge.RetentionMaxAge > 0 {
		go retentionLoop(ctx, db.MessageLink, cfg.Bridge.RetentionMaxAge, log)
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

// retentionLoop prunes message links older than maxAge once an hour.
func retentionLoop(ctx context.Context, store *database.MessageLinkQuery, maxAge time.Duration, log zerolog.Logger) {
	log = log.With().Str("component", "retention").Logger()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		purged, err := store.PurgeOlderThan(ctx, time.Now().Add(-maxAge))
		if err != nil {
			log.Error().Err(err).Msg("Failed to purge old message links")
		} else if purged > 0 {
			log.Info().Int64("purged", purged).Msg("Purged old message links")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
