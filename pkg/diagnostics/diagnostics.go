// Copyright 2024-2026 Aiku AI

// Package diagnostics runs the startup self-checks: credentials are
// present, the store answers, the data directory is writable and the
// route payload parses. The process refuses to start on any error.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aiku/anonbridge/pkg/config"
	"github.com/aiku/anonbridge/pkg/routes"
)

type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// DatabaseProbe verifies the store answers, typically a ping through the
// configured pool. Injected so checks run without a live database in tests.
type DatabaseProbe func(ctx context.Context) error

type Runner struct {
	cfg   *config.Config
	probe DatabaseProbe
	log   zerolog.Logger
}

func New(cfg *config.Config, probe DatabaseProbe, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:   cfg,
		probe: probe,
		log:   log.With().Str("component", "diagnostics").Logger(),
	}
}

// Run executes every check and returns the results in a fixed order.
func (r *Runner) Run(ctx context.Context) []Result {
	return []Result{
		r.checkToken(),
		r.checkDatabase(ctx),
		r.checkDataDir(),
		r.checkRoutes(),
	}
}

// Report logs every result and returns an error when any check failed.
func (r *Runner) Report(results []Result) error {
	failed := 0
	for _, res := range results {
		evt := r.log.Info()
		switch res.Status {
		case StatusWarning:
			evt = r.log.Warn()
		case StatusError:
			evt = r.log.Error()
			failed++
		}
		evt.Str("check", res.Name).Stringer("status", res.Status).Msg(res.Detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d startup check(s) failed", failed)
	}
	return nil
}

func (r *Runner) checkToken() Result {
	if r.cfg.Discord.Token == "" {
		return Result{Name: "discord token", Status: StatusError, Detail: "token is not configured"}
	}
	return Result{Name: "discord token", Status: StatusOK, Detail: "token is present"}
}

func (r *Runner) checkDatabase(ctx context.Context) Result {
	if r.probe == nil {
		return Result{Name: "database connection", Status: StatusWarning, Detail: "no database probe configured"}
	}
	if err := r.probe(ctx); err != nil {
		return Result{Name: "database connection", Status: StatusError, Detail: fmt.Sprintf("probe failed: %v", err)}
	}
	return Result{Name: "database connection", Status: StatusOK, Detail: "store is reachable"}
}

func (r *Runner) checkDataDir() Result {
	dir := r.cfg.Bridge.DataDir
	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: "data directory", Status: StatusError, Detail: fmt.Sprintf("cannot stat %s: %v", dir, err)}
	}
	if !info.IsDir() {
		return Result{Name: "data directory", Status: StatusError, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}
	probe := filepath.Join(dir, ".anonbridge-write-check")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return Result{Name: "data directory", Status: StatusError, Detail: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	_ = os.Remove(probe)
	return Result{Name: "data directory", Status: StatusOK, Detail: dir + " is writable"}
}

func (r *Runner) checkRoutes() Result {
	bridge := r.cfg.Bridge
	if !bridge.RoutesEnabled {
		return Result{Name: "bridge routes", Status: StatusOK, Detail: "routes are disabled"}
	}
	table, err := routes.Load(zerolog.Nop(), bridge.Routes, true, bridge.RequireReciprocal, bridge.Strict)
	if err != nil {
		return Result{Name: "bridge routes", Status: StatusError, Detail: fmt.Sprintf("route payload rejected: %v", err)}
	}
	return Result{Name: "bridge routes", Status: StatusOK, Detail: fmt.Sprintf("%d route(s) configured", table.Len())}
}
