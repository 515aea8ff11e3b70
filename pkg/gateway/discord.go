// Copyright 2024-2026 Aiku AI

package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// introspectCommandName is the slash command exposing the configured routes.
const introspectCommandName = "bridge-links"

// Discord is the production gateway implementation on top of discordgo.
type Discord struct {
	session   *discordgo.Session
	log       zerolog.Logger
	handler   EventHandler
	describer RouteDescriber
}

var (
	_ Client       = (*Discord)(nil)
	_ NameResolver = (*Discord)(nil)
)

// NewDiscord builds a Discord gateway. requestTimeout bounds every REST
// call issued through the client; zero keeps discordgo's default.
func NewDiscord(token string, requestTimeout time.Duration, log zerolog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent
	if requestTimeout > 0 {
		session.Client.Timeout = requestTimeout
	}
	return &Discord{
		session: session,
		log:     log.With().Str("component", "discord_gateway").Logger(),
	}, nil
}

// Connect registers the event handlers and opens the websocket connection.
// Events are dispatched to handler until Close is called.
func (d *Discord) Connect(ctx context.Context, handler EventHandler, describer RouteDescriber) error {
	d.handler = handler
	d.describer = describer
	d.session.AddHandler(d.onReady)
	d.session.AddHandler(d.onMessageCreate)
	d.session.AddHandler(d.onMessageUpdate)
	d.session.AddHandler(d.onMessageDelete)
	d.session.AddHandler(d.onReactionAdd)
	d.session.AddHandler(d.onReactionRemove)
	d.session.AddHandler(d.onInteraction)
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Close shuts down the websocket connection.
func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) onReady(s *discordgo.Session, r *discordgo.Ready) {
	d.log.Info().
		Str("user", r.User.String()).
		Int("guilds", len(r.Guilds)).
		Msg("Discord gateway ready")

	if _, err := s.ApplicationCommandCreate(r.User.ID, "", &discordgo.ApplicationCommand{
		Name:        introspectCommandName,
		Description: "Show the channel bridges configured for this server",
	}); err != nil {
		d.log.Warn().Err(err).Msg("Failed to register introspection command")
	}

	guildIDs := make([]int64, 0, len(r.Guilds))
	for _, guild := range r.Guilds {
		if id := ParseID(guild.ID); id != 0 {
			guildIDs = append(guildIDs, id)
		}
	}
	if err := d.handler.HandleReady(context.Background(), guildIDs); err != nil {
		d.log.Warn().Err(err).Msg("Ready handler failed")
	}
}

func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := d.convertMessage(m.Message)
	if msg == nil || d.isOwnMessage(m.Message) {
		return
	}
	if err := d.handler.HandleNewMessage(context.Background(), msg); err != nil {
		d.log.Error().Err(err).Int64("message_id", msg.ID).Msg("Message handler failed")
	}
}

func (d *Discord) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	after := d.convertMessage(m.Message)
	if after == nil || d.isOwnMessage(m.Message) {
		return
	}
	var before *Message
	if m.BeforeUpdate != nil {
		before = d.convertMessage(m.BeforeUpdate)
	}
	if before == nil {
		// Discord does not always deliver the previous revision; the
		// engine only needs the message id from it.
		before = after
	}
	if err := d.handler.HandleMessageEdit(context.Background(), before, after); err != nil {
		d.log.Error().Err(err).Int64("message_id", after.ID).Msg("Edit handler failed")
	}
}

func (d *Discord) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	id := ParseID(m.ID)
	if id == 0 {
		return
	}
	if err := d.handler.HandleMessageDelete(context.Background(), id); err != nil {
		d.log.Error().Err(err).Int64("message_id", id).Msg("Delete handler failed")
	}
}

func (d *Discord) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	evt := d.convertReaction(r.MessageReaction)
	if evt == nil {
		return
	}
	if r.Member != nil && r.Member.User != nil {
		evt.UserIsBot = r.Member.User.Bot
	}
	if err := d.handler.HandleReaction(context.Background(), evt, true); err != nil {
		d.log.Error().Err(err).Int64("message_id", evt.MessageID).Msg("Reaction handler failed")
	}
}

func (d *Discord) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	evt := d.convertReaction(r.MessageReaction)
	if evt == nil {
		return
	}
	if err := d.handler.HandleReaction(context.Background(), evt, false); err != nil {
		d.log.Error().Err(err).Int64("message_id", evt.MessageID).Msg("Reaction handler failed")
	}
}

// onInteraction serves the introspection slash command. Failures degrade to
// a plain-text notice instead of surfacing to the platform layer.
func (d *Discord) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand ||
		i.ApplicationCommandData().Name != introspectCommandName {
		return
	}

	ctx := context.Background()
	content := d.describeRoutesForGuild(ctx, ParseID(i.GuildID))
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		d.log.Warn().Err(err).Msg("Failed to respond to introspection command")
	}
}

func (d *Discord) describeRoutesForGuild(ctx context.Context, guildID int64) string {
	if guildID == 0 {
		return "This command only works inside a server."
	}
	lines, err := d.describer.DescribeRoutes(ctx, guildID, d)
	if err != nil {
		d.log.Warn().Err(err).Int64("guild_id", guildID).Msg("Failed to describe routes")
		return "Could not look up the bridge configuration, try again later."
	}
	if len(lines) == 0 {
		return "No channel bridges are configured for this server."
	}
	out := "Configured channel bridges:\n"
	for _, line := range lines {
		out += line + "\n"
	}
	return out
}

func (d *Discord) isOwnMessage(m *discordgo.Message) bool {
	return d.session.State.User != nil && m.Author != nil && m.Author.ID == d.session.State.User.ID
}

func (d *Discord) convertMessage(m *discordgo.Message) *Message {
	if m == nil || m.Author == nil {
		return nil
	}
	id := ParseID(m.ID)
	if id == 0 {
		return nil
	}
	msg := &Message{
		ID:          id,
		GuildID:     ParseID(m.GuildID),
		ChannelID:   ParseID(m.ChannelID),
		AuthorID:    ParseID(m.Author.ID),
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	}
	for _, att := range m.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
		})
	}
	return msg
}

func (d *Discord) convertReaction(r *discordgo.MessageReaction) *ReactionEvent {
	if r == nil {
		return nil
	}
	messageID := ParseID(r.MessageID)
	userID := ParseID(r.UserID)
	if messageID == 0 || userID == 0 {
		return nil
	}
	evt := &ReactionEvent{
		MessageID: messageID,
		GuildID:   ParseID(r.GuildID),
		ChannelID: ParseID(r.ChannelID),
		UserID:    userID,
		Emoji:     r.Emoji.APIName(),
	}
	if d.session.State.User != nil && r.UserID == d.session.State.User.ID {
		evt.UserIsBot = true
	}
	return evt
}

// Send implements Client.
func (d *Discord) Send(ctx context.Context, channelID int64, msg *OutgoingMessage) (int64, error) {
	sent, err := d.session.ChannelMessageSendComplex(FormatID(channelID), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{buildEmbed(msg)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to send mirror to channel %d: %w", channelID, err)
	}
	return ParseID(sent.ID), nil
}

// Edit implements Client.
func (d *Discord) Edit(ctx context.Context, channelID, messageID int64, msg *OutgoingMessage) error {
	edit := discordgo.NewMessageEdit(FormatID(channelID), FormatID(messageID)).SetEmbed(buildEmbed(msg))
	if _, err := d.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit mirror %d: %w", messageID, err)
	}
	return nil
}

// Delete implements Client.
func (d *Discord) Delete(ctx context.Context, channelID, messageID int64) error {
	err := d.session.ChannelMessageDelete(FormatID(channelID), FormatID(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete mirror %d: %w", messageID, err)
	}
	return nil
}

// FetchMessage implements Client.
func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error) {
	m, err := d.session.ChannelMessage(FormatID(channelID), FormatID(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", messageID, err)
	}
	msg := d.convertMessage(m)
	if msg == nil {
		return nil, fmt.Errorf("message %d has no usable payload", messageID)
	}
	return msg, nil
}

// React implements Client.
func (d *Discord) React(ctx context.Context, channelID, messageID int64, emoji string) error {
	err := d.session.MessageReactionAdd(FormatID(channelID), FormatID(messageID), emoji, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to react on %d: %w", messageID, err)
	}
	return nil
}

// Unreact implements Client.
func (d *Discord) Unreact(ctx context.Context, channelID, messageID int64, emoji string) error {
	err := d.session.MessageReactionRemove(FormatID(channelID), FormatID(messageID), emoji, "@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove reaction on %d: %w", messageID, err)
	}
	return nil
}

// GuildName implements NameResolver, preferring the session state cache.
func (d *Discord) GuildName(ctx context.Context, guildID int64) (string, error) {
	raw := FormatID(guildID)
	if guild, err := d.session.State.Guild(raw); err == nil && guild.Name != "" {
		return guild.Name, nil
	}
	guild, err := d.session.Guild(raw, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild %d: %w", guildID, err)
	}
	return guild.Name, nil
}

// ChannelName implements NameResolver, preferring the session state cache.
func (d *Discord) ChannelName(ctx context.Context, channelID int64) (string, error) {
	raw := FormatID(channelID)
	if channel, err := d.session.State.Channel(raw); err == nil && channel.Name != "" {
		return channel.Name, nil
	}
	channel, err := d.session.Channel(raw, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch channel %d: %w", channelID, err)
	}
	return channel.Name, nil
}

func buildEmbed(msg *OutgoingMessage) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: msg.Body,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    msg.AuthorName,
			IconURL: msg.AuthorIconURL,
		},
	}
	if msg.HasColor {
		embed.Color = msg.Color
	}
	return embed
}
