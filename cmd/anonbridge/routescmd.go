// Copyright 2024-2026 Aiku AI

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiku/anonbridge/pkg/routes"
)

func newRoutesCommand() *cobra.Command {
	var output string
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Interactively build a BRIDGE_ROUTES payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return buildRoutes(cmd.InOrStdin(), cmd.OutOrStdout(), output, noValidate)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "channel_routes.json", "Output JSON file path")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip validating the generated payload with the route loader")
	return cmd
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) positiveInt(prompt string) (int64, error) {
	for {
		raw, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		if raw == "" {
			fmt.Fprintln(p.out, "A value is required.")
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fmt.Fprintln(p.out, "Enter an integer.")
			continue
		}
		if value <= 0 {
			fmt.Fprintln(p.out, "Enter an integer of 1 or more.")
			continue
		}
		return value, nil
	}
}

func (p *prompter) yesNo(prompt string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	for {
		raw, err := p.line(prompt + " " + suffix + " ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(raw) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Answer y or n.")
	}
}

func (p *prompter) endpoint(side string) (routes.BuilderEndpoint, error) {
	var ep routes.BuilderEndpoint
	var err error
	if ep.Guild, err = p.positiveInt(fmt.Sprintf("  %s.guild (guild id): ", side)); err != nil {
		return ep, err
	}
	if ep.Channel, err = p.positiveInt(fmt.Sprintf("  %s.channel (channel id): ", side)); err != nil {
		return ep, err
	}
	if ep.GuildName, err = p.line(fmt.Sprintf("  %s.guild_name (optional label, empty to skip): ", side)); err != nil {
		return ep, err
	}
	if ep.ChannelName, err = p.line(fmt.Sprintf("  %s.channel_name (optional label, empty to skip): ", side)); err != nil {
		return ep, err
	}
	return ep, nil
}

func buildRoutes(in io.Reader, out io.Writer, output string, noValidate bool) error {
	p := &prompter{in: bufio.NewScanner(in), out: out}

	fmt.Fprintln(out, "=== Channel route builder ===")
	fmt.Fprintln(out, "Generates the JSON payload for BRIDGE_ROUTES interactively.")
	fmt.Fprintln(out, "Guild and channel ids are integer snowflakes.")

	var entries []routes.BuilderEntry
	for index := 1; ; index++ {
		fmt.Fprintf(out, "\n[route %d]\n", index)
		src, err := p.endpoint("src")
		if err != nil {
			return err
		}
		dst, err := p.endpoint("dst")
		if err != nil {
			return err
		}
		entries = append(entries, routes.BuilderEntry{Src: src, Dst: dst})

		more, err := p.yesNo("Add another route?", false)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("no routes were defined")
	}

	reciprocal, err := p.yesNo("Planning to run with BRIDGE_ROUTES_REQUIRE_RECIPROCAL=true? Generate the missing reverse routes?", false)
	if err != nil {
		return err
	}
	if reciprocal {
		entries = routes.GenerateReciprocals(entries)
	}

	if !noValidate {
		if err := routes.ValidatePayload(entries); err != nil {
			fmt.Fprintln(out, "\n[ERROR] The generated route definition failed validation.")
			fmt.Fprintf(out, "Detail: %v\n", err)
			return err
		}
	}

	pretty, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal route payload: %w", err)
	}
	if err := os.WriteFile(output, pretty, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	payload, err := routes.MarshalPayload(entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n[OK] Wrote %d route(s) to %s.\n", len(entries), output)
	fmt.Fprintln(out, "\nSet BRIDGE_ROUTES to:")
	fmt.Fprintln(out, payload)
	return nil
}
