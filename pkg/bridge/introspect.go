// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"fmt"

	"github.com/aiku/anonbridge/pkg/gateway"
	"github.com/aiku/anonbridge/pkg/routes"
)

// DescribeRoutes renders the routes originating in a guild as numbered,
// human-readable lines for the operator-facing introspection command.
// Name lookups that fail degrade to a placeholder instead of erroring.
func (e *Engine) DescribeRoutes(ctx context.Context, guildID int64, resolver gateway.NameResolver) ([]string, error) {
	fromGuild := e.routes.FromGuild(guildID)
	lines := make([]string, 0, len(fromGuild))
	for i, route := range fromGuild {
		src := e.describeEndpoint(ctx, resolver, route.Source)
		dst := e.describeEndpoint(ctx, resolver, route.Destination)
		lines = append(lines, fmt.Sprintf("%d. source: %s\n   target: %s", i+1, src, dst))
	}
	return lines, nil
}

func (e *Engine) describeEndpoint(ctx context.Context, resolver gateway.NameResolver, ep routes.Endpoint) string {
	guildLabel := fmt.Sprintf("(unresolved guild %d)", ep.Guild)
	if name, err := resolver.GuildName(ctx, ep.Guild); err == nil {
		guildLabel = fmt.Sprintf("%s (ID: %d)", name, ep.Guild)
	} else {
		e.log.Warn().Err(err).Int64("guild_id", ep.Guild).Msg("Failed to resolve guild name")
	}
	channelLabel := fmt.Sprintf("(unresolved channel %d)", ep.Channel)
	if name, err := resolver.ChannelName(ctx, ep.Channel); err == nil {
		channelLabel = fmt.Sprintf("#%s (ID: %d)", name, ep.Channel)
	} else {
		e.log.Warn().Err(err).Int64("channel_id", ep.Channel).Msg("Failed to resolve channel name")
	}
	return guildLabel + " / " + channelLabel
}
