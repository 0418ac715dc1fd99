package models

import "time"

type BotStats struct {
	GuildCount                int
	UserCount                 int
	Latency                   time.Duration
	Version                   string
	Uptime                    time.Duration
	MessagesReceived          int64
	StarboardReactionsHandled int64
}

// DashboardGuild is a guild the caller administers, enriched with its starboard state.
type DashboardGuild struct {
	Guild                 DiscordGuild
	Starboard             *StarboardConfig
	StarboardMessageCount int
}

type StarboardSettings struct {
	GuildID      string
	ChannelID    string
	Threshold    int
	TextChannels []DiscordChannel
}
