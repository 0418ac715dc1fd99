package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"sorabackend/clients"
	"sorabackend/core"
	"sorabackend/models"
	"sorabackend/services"
)

// Counters exposes process-wide activity counters owned by the gateway side.
type Counters struct {
	MessagesReceived func() int64
	ReactionsHandled func() int64
}

type EditStarboardParams struct {
	GuildID   string
	ChannelID string
	Threshold int
	Disabled  bool
}

type DashboardUseCase struct {
	messageStore       clients.MessageStore
	starboardService   services.StarboardService
	guildAccessService services.GuildAccessService
	counters           Counters
}

func NewDashboardUseCase(
	messageStore clients.MessageStore,
	starboardService services.StarboardService,
	guildAccessService services.GuildAccessService,
	counters Counters,
) *DashboardUseCase {
	return &DashboardUseCase{
		messageStore:       messageStore,
		starboardService:   starboardService,
		guildAccessService: guildAccessService,
		counters:           counters,
	}
}

func (u *DashboardUseCase) GetStats(ctx context.Context) (*models.BotStats, error) {
	guilds, err := u.messageStore.GetBotGuilds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot guilds: %w", err)
	}

	userCount := 0
	for _, guild := range guilds {
		userCount += guild.MemberCount
	}

	stats := &models.BotStats{
		GuildCount: len(guilds),
		UserCount:  userCount,
		Latency:    u.messageStore.Latency(),
		Version:    core.Version,
		Uptime:     core.Uptime(),
	}
	if u.counters.MessagesReceived != nil {
		stats.MessagesReceived = u.counters.MessagesReceived()
	}
	if u.counters.ReactionsHandled != nil {
		stats.StarboardReactionsHandled = u.counters.ReactionsHandled()
	}
	return stats, nil
}

// GetGuilds lists the guilds userID administers together with their starboard state.
func (u *DashboardUseCase) GetGuilds(ctx context.Context, userID string) ([]models.DashboardGuild, error) {
	slog.Info("📋 Starting to list administered guilds", "user_id", userID)

	guilds, err := u.guildAccessService.GetAdministeredGuilds(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.DashboardGuild, 0, len(guilds))
	for _, guild := range guilds {
		maybeConfig, err := u.starboardService.GetStarboardConfig(ctx, guild.ID)
		if err != nil {
			return nil, err
		}
		count, err := u.starboardService.CountStarboardMessages(ctx, guild.ID)
		if err != nil {
			return nil, err
		}

		result = append(result, models.DashboardGuild{
			Guild:                 guild,
			Starboard:             maybeConfig.OrEmpty(),
			StarboardMessageCount: count,
		})
	}

	slog.Info("✅ Completed successfully - listed administered guilds", "user_id", userID, "count", len(result))
	return result, nil
}

func (u *DashboardUseCase) GuildExists(ctx context.Context, guildID string) (bool, error) {
	maybeGuild, err := u.messageStore.GetGuild(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to get guild: %w", err)
	}
	return maybeGuild.IsPresent(), nil
}

// GetStarboard returns the guild's starboard settings along with the channels it may be pointed at.
// Callers that do not administer the guild get core.ErrForbidden.
func (u *DashboardUseCase) GetStarboard(ctx context.Context, userID, guildID string) (*models.StarboardSettings, error) {
	if err := u.requireGuildAdmin(ctx, guildID, userID); err != nil {
		return nil, err
	}
	return u.starboardSettings(ctx, guildID)
}

// EditStarboard points the starboard at a new channel and threshold, or disables it. Disabling without
// a threshold keeps the stored one.
func (u *DashboardUseCase) EditStarboard(
	ctx context.Context,
	userID string,
	params EditStarboardParams,
) (*models.StarboardSettings, error) {
	slog.Info("📋 Starting to edit starboard",
		"guild_id", params.GuildID, "user_id", userID, "channel_id", params.ChannelID,
		"threshold", params.Threshold, "disabled", params.Disabled)

	if err := u.requireGuildAdmin(ctx, params.GuildID, userID); err != nil {
		return nil, err
	}

	switch {
	case params.Disabled && params.Threshold == 0:
		if err := u.starboardService.DisableStarboard(ctx, params.GuildID); err != nil {
			return nil, err
		}
	case params.Disabled:
		if _, err := u.starboardService.UpsertStarboard(ctx, params.GuildID, "", params.Threshold); err != nil {
			return nil, err
		}
	default:
		maybeChannel, err := u.messageStore.GetTextChannel(ctx, params.GuildID, params.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("failed to get channel: %w", err)
		}
		if maybeChannel.IsAbsent() {
			return nil, fmt.Errorf("channel %s is not a text channel of guild %s: %w",
				params.ChannelID, params.GuildID, core.ErrInvalidArgument)
		}
		if _, err := u.starboardService.UpsertStarboard(ctx, params.GuildID, params.ChannelID, params.Threshold); err != nil {
			return nil, err
		}
	}

	slog.Info("✅ Completed successfully - edited starboard", "guild_id", params.GuildID)
	return u.starboardSettings(ctx, params.GuildID)
}

func (u *DashboardUseCase) requireGuildAdmin(ctx context.Context, guildID, userID string) error {
	isAdmin, err := u.guildAccessService.IsGuildAdmin(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("user %s does not administer guild %s: %w", userID, guildID, core.ErrForbidden)
	}
	return nil
}

func (u *DashboardUseCase) starboardSettings(ctx context.Context, guildID string) (*models.StarboardSettings, error) {
	channels, err := u.messageStore.GetGuildTextChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list text channels: %w", err)
	}

	maybeConfig, err := u.starboardService.GetStarboardConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}

	settings := &models.StarboardSettings{
		GuildID:      guildID,
		Threshold:    models.DefaultStarboardMinimum,
		TextChannels: channels,
	}
	if config, ok := maybeConfig.Get(); ok {
		settings.ChannelID = config.ChannelID
		settings.Threshold = config.Threshold
	}
	return settings, nil
}
