// Copyright 2024-2026 Aiku AI

package diagnostics

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiku/anonbridge/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Discord.Token = "dummy-token-value"
	cfg.Bridge.DataDir = t.TempDir()
	return cfg
}

func resultsByName(results []Result) map[string]Result {
	byName := make(map[string]Result, len(results))
	for _, res := range results {
		byName[res.Name] = res
	}
	return byName
}

func TestRunAllChecksPassWhenRoutesDisabled(t *testing.T) {
	t.Parallel()
	runner := New(testConfig(t), func(context.Context) error { return nil }, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	for _, name := range []string{"discord token", "database connection", "data directory", "bridge routes"} {
		if results[name].Status != StatusOK {
			t.Errorf("check %q = %v (%s)", name, results[name].Status, results[name].Detail)
		}
	}
	if err := runner.Report(runner.Run(context.Background())); err != nil {
		t.Errorf("Report returned error for passing checks: %v", err)
	}
}

func TestRunAcceptsValidRoutePayload(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Bridge.RoutesEnabled = true
	cfg.Bridge.Routes = `[{"src": {"guild": 1, "channel": 10}, "dst": {"guild": 2, "channel": 20}}]`
	runner := New(cfg, func(context.Context) error { return nil }, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	if res := results["bridge routes"]; res.Status != StatusOK {
		t.Errorf("bridge routes = %v (%s)", res.Status, res.Detail)
	}
}

func TestRunReportsMalformedRoutePayload(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Bridge.RoutesEnabled = true
	cfg.Bridge.Routes = "{"
	runner := New(cfg, func(context.Context) error { return nil }, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	if res := results["bridge routes"]; res.Status != StatusError {
		t.Errorf("bridge routes = %v (%s)", res.Status, res.Detail)
	}
	if err := runner.Report(runner.Run(context.Background())); err == nil {
		t.Error("Report did not surface the failed check")
	}
}

func TestRunReportsDatabaseError(t *testing.T) {
	t.Parallel()
	runner := New(testConfig(t), func(context.Context) error {
		return fmt.Errorf("boom")
	}, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	if res := results["database connection"]; res.Status != StatusError {
		t.Errorf("database connection = %v (%s)", res.Status, res.Detail)
	}
}

func TestRunWarnsWithoutDatabaseProbe(t *testing.T) {
	t.Parallel()
	runner := New(testConfig(t), nil, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	if res := results["database connection"]; res.Status != StatusWarning {
		t.Errorf("database connection = %v (%s)", res.Status, res.Detail)
	}
}

func TestRunReportsMissingToken(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Discord.Token = ""
	runner := New(cfg, nil, zerolog.Nop())

	results := resultsByName(runner.Run(context.Background()))
	if res := results["discord token"]; res.Status != StatusError {
		t.Errorf("discord token = %v (%s)", res.Status, res.Detail)
	}
}
