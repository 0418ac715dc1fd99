package api

// StatsModel represents the bot statistics returned by the API
type StatsModel struct {
	GuildCount                int    `json:"guild_count"`
	UserCount                 int    `json:"user_count"`
	LatencyMs                 int64  `json:"latency_ms"`
	Version                   string `json:"version"`
	UptimeSeconds             int64  `json:"uptime_seconds"`
	StartedAgo                string `json:"started_ago"`
	MessagesReceived          int64  `json:"messages_received"`
	StarboardReactionsHandled int64  `json:"starboard_reactions_handled"`
}

// GuildModel represents an administered guild returned by the API
type GuildModel struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	IconURL               string `json:"icon_url"`
	OwnerID               string `json:"owner_id"`
	MemberCount           int    `json:"member_count"`
	TextChannelCount      int    `json:"text_channel_count"`
	VoiceChannelCount     int    `json:"voice_channel_count"`
	StarboardEnabled      bool   `json:"starboard_enabled"`
	StarboardChannelID    string `json:"starboard_channel_id"`
	StarboardThreshold    int    `json:"starboard_threshold"`
	StarboardMessageCount int    `json:"starboard_message_count"`
}

type ChannelModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StarboardSettingsModel represents a guild's starboard configuration returned by the API
type StarboardSettingsModel struct {
	GuildID   string         `json:"guild_id"`
	ChannelID string         `json:"channel_id"`
	Threshold int            `json:"threshold"`
	Enabled   bool           `json:"enabled"`
	Channels  []ChannelModel `json:"channels"`
}

type EditStarboardRequest struct {
	ChannelID string `json:"channel_id"`
	Threshold int    `json:"threshold"`
	Disabled  bool   `json:"disabled"`
}

type GuildExistsResponse struct {
	Exists bool `json:"exists"`
}
