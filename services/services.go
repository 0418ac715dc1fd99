package services

import (
	"context"

	"github.com/samber/mo"

	"sorabackend/models"
)

// StarboardService is the durable record store behind the starboard: guild configuration and
// the original-message to posted-message links.
type StarboardService interface {
	GetStarboardMessage(ctx context.Context, messageID string) (mo.Option[*models.StarboardMessage], error)
	// AddStarboardMessage upserts the record for messageID.
	AddStarboardMessage(ctx context.Context, guildID, messageID, postedMessageID string) (*models.StarboardMessage, error)
	// RemoveStarboardMessage is a no-op when no record exists.
	RemoveStarboardMessage(ctx context.Context, messageID string) error
	// GetStarboardInfo returns the configuration only when the starboard is enabled.
	GetStarboardInfo(ctx context.Context, guildID string) (mo.Option[*models.StarboardConfig], error)
	// RemoveStarboard deletes the guild's configuration together with its records.
	RemoveStarboard(ctx context.Context, guildID string) error

	GetStarboardConfig(ctx context.Context, guildID string) (mo.Option[*models.StarboardConfig], error)
	UpsertStarboard(ctx context.Context, guildID, channelID string, threshold int) (*models.StarboardConfig, error)
	DisableStarboard(ctx context.Context, guildID string) error
	CountStarboardMessages(ctx context.Context, guildID string) (int, error)
}

// GuildAccessService answers "may this Discord user manage this guild" from live guild data.
type GuildAccessService interface {
	IsGuildAdmin(ctx context.Context, guildID, userID string) (bool, error)
	GetAdministeredGuilds(ctx context.Context, userID string) ([]models.DiscordGuild, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
