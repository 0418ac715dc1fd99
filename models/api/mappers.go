package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"sorabackend/models"
)

// DomainStatsToAPIStats converts domain BotStats to an API StatsModel
func DomainStatsToAPIStats(stats *models.BotStats, now time.Time) *StatsModel {
	if stats == nil {
		return nil
	}

	return &StatsModel{
		GuildCount:                stats.GuildCount,
		UserCount:                 stats.UserCount,
		LatencyMs:                 stats.Latency.Milliseconds(),
		Version:                   stats.Version,
		UptimeSeconds:             int64(stats.Uptime.Seconds()),
		StartedAgo:                humanize.RelTime(now.Add(-stats.Uptime), now, "ago", "from now"),
		MessagesReceived:          stats.MessagesReceived,
		StarboardReactionsHandled: stats.StarboardReactionsHandled,
	}
}

// DomainGuildToAPIGuild converts a domain DashboardGuild to an API GuildModel
func DomainGuildToAPIGuild(guild models.DashboardGuild) GuildModel {
	model := GuildModel{
		ID:                    guild.Guild.ID,
		Name:                  guild.Guild.Name,
		IconURL:               guild.Guild.IconURL,
		OwnerID:               guild.Guild.OwnerID,
		MemberCount:           guild.Guild.MemberCount,
		TextChannelCount:      guild.Guild.TextChannelCount,
		VoiceChannelCount:     guild.Guild.VoiceChannelCount,
		StarboardThreshold:    models.DefaultStarboardMinimum,
		StarboardMessageCount: guild.StarboardMessageCount,
	}
	if guild.Starboard != nil {
		model.StarboardEnabled = guild.Starboard.IsEnabled()
		model.StarboardChannelID = guild.Starboard.ChannelID
		model.StarboardThreshold = guild.Starboard.Threshold
	}
	return model
}

func DomainGuildsToAPIGuilds(guilds []models.DashboardGuild) []GuildModel {
	result := make([]GuildModel, 0, len(guilds))
	for _, guild := range guilds {
		result = append(result, DomainGuildToAPIGuild(guild))
	}
	return result
}

// DomainStarboardSettingsToAPI converts domain StarboardSettings to an API StarboardSettingsModel
func DomainStarboardSettingsToAPI(settings *models.StarboardSettings) *StarboardSettingsModel {
	if settings == nil {
		return nil
	}

	channels := make([]ChannelModel, 0, len(settings.TextChannels))
	for _, channel := range settings.TextChannels {
		channels = append(channels, ChannelModel{ID: channel.ID, Name: channel.Name})
	}

	return &StarboardSettingsModel{
		GuildID:   settings.GuildID,
		ChannelID: settings.ChannelID,
		Threshold: settings.Threshold,
		Enabled:   settings.ChannelID != "",
		Channels:  channels,
	}
}
