// Copyright 2024-2026 Aiku AI

// Package gateway defines the platform-facing surface of the bridge: the
// events the relay engine consumes and the calls it issues, plus the
// Discord implementation of both.
package gateway

import "context"

// Attachment is the metadata the bridge keeps about one uploaded file.
type Attachment struct {
	Filename    string
	ContentType string
}

// Message is a platform message as delivered to the relay engine.
type Message struct {
	ID          int64
	GuildID     int64
	ChannelID   int64
	AuthorID    int64
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
}

// ReactionEvent is a reaction being added to or removed from a message.
type ReactionEvent struct {
	MessageID int64
	GuildID   int64
	ChannelID int64
	UserID    int64
	UserIsBot bool
	Emoji     string
}

// OutgoingMessage is a rendered mirror ready to be sent or edited. Color is
// only applied when HasColor is set; zero is a valid 24-bit color.
type OutgoingMessage struct {
	Body          string
	AuthorName    string
	AuthorIconURL string
	Color         int
	HasColor      bool
}

// Client is the set of platform calls the relay engine issues. All calls
// are synchronous; retry and rate limiting are the platform client's
// responsibility, not the engine's.
type Client interface {
	// Send posts a mirror to the channel and returns the new message id.
	Send(ctx context.Context, channelID int64, msg *OutgoingMessage) (int64, error)
	// Edit replaces a previously sent mirror's content.
	Edit(ctx context.Context, channelID, messageID int64, msg *OutgoingMessage) error
	// Delete removes a previously sent mirror.
	Delete(ctx context.Context, channelID, messageID int64) error
	// FetchMessage retrieves a single message.
	FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error)
	// React adds the bridge's own reaction to a message.
	React(ctx context.Context, channelID, messageID int64, emoji string) error
	// Unreact removes the bridge's own reaction from a message.
	Unreact(ctx context.Context, channelID, messageID int64, emoji string) error
}

// EventHandler receives platform events. Handlers may be invoked from
// separate goroutines; implementations own their locking. Returned errors
// are logged by the gateway and do not stop the event stream.
type EventHandler interface {
	HandleNewMessage(ctx context.Context, msg *Message) error
	HandleMessageEdit(ctx context.Context, before, after *Message) error
	HandleMessageDelete(ctx context.Context, messageID int64) error
	HandleReaction(ctx context.Context, evt *ReactionEvent, add bool) error
	// HandleReady is called once the gateway connection is established
	// and the set of joined guilds is known.
	HandleReady(ctx context.Context, guildIDs []int64) error
}

// NameResolver resolves guild and channel ids to display names for
// operator-facing output.
type NameResolver interface {
	GuildName(ctx context.Context, guildID int64) (string, error)
	ChannelName(ctx context.Context, channelID int64) (string, error)
}

// RouteDescriber produces the human-readable route list backing the
// introspection command.
type RouteDescriber interface {
	DescribeRoutes(ctx context.Context, guildID int64, resolver NameResolver) ([]string, error)
}
