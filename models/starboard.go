package models

import "time"

// StarboardConfig is a guild's starboard settings. An empty ChannelID means the feature is disabled.
type StarboardConfig struct {
	ID        string    `json:"id"         db:"id"`
	GuildID   string    `json:"guild_id"   db:"guild_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	Threshold int       `json:"threshold"  db:"threshold"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c *StarboardConfig) IsEnabled() bool {
	return c != nil && c.ChannelID != "" && c.Threshold > 0
}

// StarboardMessage links an original message to the bot's echo of it in the starboard channel.
type StarboardMessage struct {
	ID              string    `json:"id"                db:"id"`
	GuildID         string    `json:"guild_id"          db:"guild_id"`
	MessageID       string    `json:"message_id"        db:"message_id"`
	PostedMessageID string    `json:"posted_message_id" db:"posted_message_id"`
	CreatedAt       time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"        db:"updated_at"`
}

const (
	StarEmoji               = "⭐"
	DefaultStarboardMinimum = 1
	// highest threshold the dashboard accepts
	MaxStarboardThreshold = 100
)
