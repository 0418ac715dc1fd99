package clients

import (
	"context"
	"time"

	"github.com/samber/mo"

	"sorabackend/models"
)

// MessageStore is the bot's view of Discord: it reads and mutates messages, channels and guilds.
// Objects that do not exist (or were deleted) come back as mo.None, never as errors.
type MessageStore interface {
	// GetTextChannel returns the channel only if it is a text channel of guildID.
	GetTextChannel(ctx context.Context, guildID, channelID string) (mo.Option[*models.DiscordChannel], error)
	// GetMessage resolves a message from state, downloading it when it is not cached.
	// GuildID and ChannelName are filled from the channel.
	GetMessage(ctx context.Context, channelID, messageID string) (mo.Option[*models.DiscordMessage], error)
	// GetReactionUsers returns up to limit users, paging through Discord's reaction endpoint as needed.
	GetReactionUsers(ctx context.Context, channelID, messageID, emoji string, limit int) ([]models.DiscordUser, error)
	SendMessage(ctx context.Context, channelID, content string, embed *models.OutgoingEmbed) (*models.DiscordMessage, error)
	// EditMessage fails with core.ErrNotFound when the message no longer exists.
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	// DeleteMessage succeeds when the message is already gone.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	GetGuild(ctx context.Context, guildID string) (mo.Option[*models.DiscordGuild], error)

	GetGuildMember(ctx context.Context, guildID, userID string) (mo.Option[*models.DiscordMember], error)
	GetGuildTextChannels(ctx context.Context, guildID string) ([]models.DiscordChannel, error)
	GetBotGuilds(ctx context.Context) ([]models.DiscordGuild, error)
	Latency() time.Duration
}
