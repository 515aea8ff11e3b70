// Copyright 2024-2026 Aiku AI

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"

	_ "github.com/lib/pq"

	"github.com/aiku/anonbridge/pkg/config"
)

// Filled in by the linker.
var (
	Tag       = "unknown"
	Commit    = ""
	BuildTime = ""
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "anonbridge",
		Short:   "Anonymizing message bridge between Discord channels",
		Version: fmt.Sprintf("%s (%s) built %s", Tag, Commit, BuildTime),
	}
	cmd.AddCommand(
		newRunCommand(),
		newRoutesCommand(),
		newDiagnoseCommand(),
	)
	return cmd
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var writer = zerolog.New(os.Stdout)
	if cfg.Pretty {
		writer = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log := writer.Level(level).With().Timestamp().Logger()
	exzerolog.SetupDefaults(&log)
	return log
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
