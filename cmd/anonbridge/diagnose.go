// Copyright 2024-2026 Aiku AI

package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aiku/anonbridge/pkg/config"
	"github.com/aiku/anonbridge/pkg/database"
	"github.com/aiku/anonbridge/pkg/diagnostics"
)

func newDiagnoseCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run the startup checks and exit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDiagnose(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
	return cmd
}

func runDiagnose(configPath string) error {
	_ = godotenv.Load(".env")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Logging)
	ctx := context.Background()

	probe := func(ctx context.Context) error {
		db, err := database.New(ctx, cfg.Database.Type, cfg.Database.URI, log)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.RawDB.PingContext(ctx)
	}

	diag := diagnostics.New(cfg, probe, log)
	return diag.Report(diag.Run(ctx))
}
