package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"sorabackend/clients"
	"sorabackend/core"
	"sorabackend/models"
)

// Discord returns at most 100 reaction users per request
const reactionPageSize = 100

// MessageStore implements clients.MessageStore on top of a discordgo session.
// The session's state cache is consulted before hitting the REST API.
type MessageStore struct {
	session *discordgo.Session
}

func NewMessageStore(session *discordgo.Session) *MessageStore {
	return &MessageStore{session: session}
}

var _ clients.MessageStore = (*MessageStore)(nil)

func (s *MessageStore) GetTextChannel(ctx context.Context, guildID, channelID string) (mo.Option[*models.DiscordChannel], error) {
	maybeChannel, err := s.channel(ctx, channelID)
	if err != nil {
		return mo.None[*models.DiscordChannel](), err
	}

	channel, ok := maybeChannel.Get()
	if !ok || channel.GuildID != guildID || !isTextChannel(channel) {
		return mo.None[*models.DiscordChannel](), nil
	}

	return mo.Some(toChannel(channel)), nil
}

func (s *MessageStore) GetMessage(ctx context.Context, channelID, messageID string) (mo.Option[*models.DiscordMessage], error) {
	maybeChannel, err := s.channel(ctx, channelID)
	if err != nil {
		return mo.None[*models.DiscordMessage](), err
	}
	channel, ok := maybeChannel.Get()
	if !ok {
		return mo.None[*models.DiscordMessage](), nil
	}

	message, err := s.session.State.Message(channelID, messageID)
	if err != nil {
		message, err = s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
		if isNotFound(err) {
			return mo.None[*models.DiscordMessage](), nil
		}
		if err != nil {
			return mo.None[*models.DiscordMessage](), fmt.Errorf("failed to fetch message %s: %w", messageID, err)
		}
	}

	converted := toMessage(message)
	converted.GuildID = channel.GuildID
	converted.ChannelName = channel.Name
	return mo.Some(converted), nil
}

// GetReactionUsers pages through the users who reacted with emoji, following the last id of each
// page until a short page comes back or limit users were collected.
func (s *MessageStore) GetReactionUsers(
	ctx context.Context,
	channelID, messageID, emoji string,
	limit int,
) ([]models.DiscordUser, error) {
	result := make([]models.DiscordUser, 0, min(limit, reactionPageSize))
	afterID := ""
	for len(result) < limit {
		pageSize := min(limit-len(result), reactionPageSize)
		users, err := s.session.MessageReactions(channelID, messageID, emoji, pageSize, "", afterID, discordgo.WithContext(ctx))
		if isNotFound(err) {
			return []models.DiscordUser{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reactions for message %s: %w", messageID, err)
		}

		for _, user := range users {
			result = append(result, toUser(user))
		}
		if len(users) < pageSize {
			break
		}
		afterID = users[len(users)-1].ID
	}
	return result, nil
}

func (s *MessageStore) SendMessage(
	ctx context.Context,
	channelID, content string,
	embed *models.OutgoingEmbed,
) (*models.DiscordMessage, error) {
	send := &discordgo.MessageSend{Content: content}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(embed)}
	}

	message, err := s.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}

	return toMessage(message), nil
}

func (s *MessageStore) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := s.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	if isNotFound(err) {
		return fmt.Errorf("message %s: %w", messageID, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}

func (s *MessageStore) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := s.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

func (s *MessageStore) GetGuild(ctx context.Context, guildID string) (mo.Option[*models.DiscordGuild], error) {
	if guild, err := s.session.State.Guild(guildID); err == nil {
		return mo.Some(toGuild(guild, guild.Channels)), nil
	}

	guild, err := s.session.Guild(guildID, discordgo.WithContext(ctx))
	if isNotFound(err) {
		return mo.None[*models.DiscordGuild](), nil
	}
	if err != nil {
		return mo.None[*models.DiscordGuild](), fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}

	channels, err := s.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return mo.None[*models.DiscordGuild](), fmt.Errorf("failed to fetch channels of guild %s: %w", guildID, err)
	}

	return mo.Some(toGuild(guild, channels)), nil
}

func (s *MessageStore) GetGuildMember(ctx context.Context, guildID, userID string) (mo.Option[*models.DiscordMember], error) {
	member, err := s.session.State.Member(guildID, userID)
	if err != nil {
		member, err = s.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if isNotFound(err) {
			return mo.None[*models.DiscordMember](), nil
		}
		if err != nil {
			return mo.None[*models.DiscordMember](), fmt.Errorf("failed to fetch member %s of guild %s: %w", userID, guildID, err)
		}
	}

	return mo.Some(&models.DiscordMember{
		GuildID: guildID,
		UserID:  userID,
		RoleIDs: append([]string(nil), member.Roles...),
	}), nil
}

func (s *MessageStore) GetGuildTextChannels(ctx context.Context, guildID string) ([]models.DiscordChannel, error) {
	var channels []*discordgo.Channel
	if guild, err := s.session.State.Guild(guildID); err == nil {
		channels = guild.Channels
	} else {
		channels, err = s.session.GuildChannels(guildID, discordgo.WithContext(ctx))
		if isNotFound(err) {
			return []models.DiscordChannel{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch channels of guild %s: %w", guildID, err)
		}
	}

	result := make([]models.DiscordChannel, 0, len(channels))
	for _, channel := range channels {
		if isTextChannel(channel) {
			result = append(result, *toChannel(channel))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// GetBotGuilds lists the guilds from gateway state. The bot only learns about guilds through
// the gateway, so there is no REST fallback.
func (s *MessageStore) GetBotGuilds(ctx context.Context) ([]models.DiscordGuild, error) {
	s.session.State.RLock()
	defer s.session.State.RUnlock()

	result := make([]models.DiscordGuild, 0, len(s.session.State.Guilds))
	for _, guild := range s.session.State.Guilds {
		result = append(result, *toGuild(guild, guild.Channels))
	}
	return result, nil
}

func (s *MessageStore) Latency() time.Duration {
	return s.session.HeartbeatLatency()
}

func (s *MessageStore) channel(ctx context.Context, channelID string) (mo.Option[*discordgo.Channel], error) {
	if channel, err := s.session.State.Channel(channelID); err == nil {
		return mo.Some(channel), nil
	}

	channel, err := s.session.Channel(channelID, discordgo.WithContext(ctx))
	if isNotFound(err) {
		return mo.None[*discordgo.Channel](), nil
	}
	if err != nil {
		return mo.None[*discordgo.Channel](), fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	return mo.Some(channel), nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return true
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return true
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownMessage:
			return true
		}
	}
	return false
}

func isTextChannel(channel *discordgo.Channel) bool {
	return channel.Type == discordgo.ChannelTypeGuildText || channel.Type == discordgo.ChannelTypeGuildNews
}
