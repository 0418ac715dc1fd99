package models

// DiscordReactionEvent is a single reaction being added or removed.
type DiscordReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	EmojiName string
	// EmojiID is empty for unicode emoji
	EmojiID string
}

// DiscordMessageRefEvent references a message for events that carry no acting user:
// all reactions cleared, all reactions of one emoji removed, message deleted.
type DiscordMessageRefEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	// EmojiName is only set for single-emoji removals
	EmojiName string
}
