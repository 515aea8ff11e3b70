// Copyright 2024-2026 Aiku AI

package routes

import (
	"strings"
	"testing"
)

func builderRoute(srcGuild, srcChannel, dstGuild, dstChannel int64) BuilderEntry {
	return BuilderEntry{
		Src: BuilderEndpoint{Guild: srcGuild, Channel: srcChannel},
		Dst: BuilderEndpoint{Guild: dstGuild, Channel: dstChannel},
	}
}

func TestGenerateReciprocals_AddsMissingReverse(t *testing.T) {
	t.Parallel()
	entries := []BuilderEntry{builderRoute(1, 10, 2, 20)}

	out := GenerateReciprocals(entries)

	if len(out) != 2 {
		t.Fatalf("entry count: got %d, want 2", len(out))
	}
	reverse := out[1]
	if reverse.Src.Guild != 2 || reverse.Src.Channel != 20 || reverse.Dst.Guild != 1 || reverse.Dst.Channel != 10 {
		t.Errorf("generated reverse: got %+v", reverse)
	}
}

func TestGenerateReciprocals_KeepsExistingPair(t *testing.T) {
	t.Parallel()
	entries := []BuilderEntry{
		builderRoute(1, 10, 2, 20),
		builderRoute(2, 20, 1, 10),
	}

	out := GenerateReciprocals(entries)

	if len(out) != 2 {
		t.Errorf("entry count: got %d, want 2", len(out))
	}
}

func TestGenerateReciprocals_CarriesLabels(t *testing.T) {
	t.Parallel()
	entry := builderRoute(1, 10, 2, 20)
	entry.Src.GuildName = "home"
	entry.Dst.ChannelName = "mirror"

	out := GenerateReciprocals([]BuilderEntry{entry})

	if len(out) != 2 {
		t.Fatalf("entry count: got %d, want 2", len(out))
	}
	if out[1].Src.ChannelName != "mirror" || out[1].Dst.GuildName != "home" {
		t.Errorf("labels not carried over: %+v", out[1])
	}
}

func TestMarshalPayload_OmitsEmptyLabels(t *testing.T) {
	t.Parallel()
	payload, err := MarshalPayload([]BuilderEntry{builderRoute(1, 10, 2, 20)})
	if err != nil {
		t.Fatalf("MarshalPayload failed: %v", err)
	}
	if strings.Contains(payload, "guild_name") {
		t.Errorf("payload should omit empty labels: %s", payload)
	}
}

func TestValidatePayload(t *testing.T) {
	t.Parallel()
	if err := ValidatePayload([]BuilderEntry{builderRoute(1, 10, 2, 20)}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := ValidatePayload([]BuilderEntry{builderRoute(0, 10, 2, 20)}); err == nil {
		t.Error("invalid payload accepted")
	}
}
