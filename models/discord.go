package models

import (
	"fmt"
	"time"
)

// Read-side views of Discord objects. They are decoupled from discordgo so they can be
// cached and faked without a gateway connection.

type DiscordUser struct {
	ID        string `msgpack:"id"`
	Username  string `msgpack:"username"`
	AvatarURL string `msgpack:"avatar_url"`
	Bot       bool   `msgpack:"bot"`
}

type DiscordAttachment struct {
	ID          string `msgpack:"id"`
	URL         string `msgpack:"url"`
	Filename    string `msgpack:"filename"`
	ContentType string `msgpack:"content_type"`
	Width       int    `msgpack:"width"`
	Height      int    `msgpack:"height"`
}

type DiscordEmbed struct {
	Type         string `msgpack:"type"`
	URL          string `msgpack:"url"`
	ImageURL     string `msgpack:"image_url"`
	ThumbnailURL string `msgpack:"thumbnail_url"`
}

type DiscordMessage struct {
	ID          string              `msgpack:"id"`
	GuildID     string              `msgpack:"guild_id"`
	ChannelID   string              `msgpack:"channel_id"`
	ChannelName string              `msgpack:"channel_name"`
	Content     string              `msgpack:"content"`
	Author      DiscordUser         `msgpack:"author"`
	WebhookID   string              `msgpack:"webhook_id"`
	Timestamp   time.Time           `msgpack:"timestamp"`
	Attachments []DiscordAttachment `msgpack:"attachments"`
	Embeds      []DiscordEmbed      `msgpack:"embeds"`
}

func (m *DiscordMessage) IsFromBotOrWebhook() bool {
	return m.Author.Bot || m.WebhookID != ""
}

func (m *DiscordMessage) JumpURL() string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
}

type DiscordChannel struct {
	ID       string
	GuildID  string
	Name     string
	Position int
}

type DiscordRole struct {
	ID          string
	Name        string
	Permissions int64
}

type DiscordGuild struct {
	ID                string
	Name              string
	IconURL           string
	OwnerID           string
	MemberCount       int
	TextChannelCount  int
	VoiceChannelCount int
	Roles             []DiscordRole
}

type DiscordMember struct {
	GuildID string
	UserID  string
	RoleIDs []string
}

type DiscordEmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// OutgoingEmbed is the embed the bot sends, as opposed to DiscordEmbed which is read from messages.
type OutgoingEmbed struct {
	Description   string
	Color         int
	AuthorName    string
	AuthorIconURL string
	ImageURL      string
	Fields        []DiscordEmbedField
	Timestamp     time.Time
}
