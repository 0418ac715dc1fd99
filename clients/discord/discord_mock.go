package discord

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"sorabackend/clients"
	"sorabackend/models"
)

// MockMessageStore implements clients.MessageStore for testing
type MockMessageStore struct {
	mock.Mock
}

var _ clients.MessageStore = (*MockMessageStore)(nil)

func (m *MockMessageStore) GetTextChannel(
	ctx context.Context,
	guildID, channelID string,
) (mo.Option[*models.DiscordChannel], error) {
	args := m.Called(ctx, guildID, channelID)
	return args.Get(0).(mo.Option[*models.DiscordChannel]), args.Error(1)
}

func (m *MockMessageStore) GetMessage(
	ctx context.Context,
	channelID, messageID string,
) (mo.Option[*models.DiscordMessage], error) {
	args := m.Called(ctx, channelID, messageID)
	return args.Get(0).(mo.Option[*models.DiscordMessage]), args.Error(1)
}

func (m *MockMessageStore) GetReactionUsers(
	ctx context.Context,
	channelID, messageID, emoji string,
	limit int,
) ([]models.DiscordUser, error) {
	args := m.Called(ctx, channelID, messageID, emoji, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiscordUser), args.Error(1)
}

func (m *MockMessageStore) SendMessage(
	ctx context.Context,
	channelID, content string,
	embed *models.OutgoingEmbed,
) (*models.DiscordMessage, error) {
	args := m.Called(ctx, channelID, content, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscordMessage), args.Error(1)
}

func (m *MockMessageStore) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	args := m.Called(ctx, channelID, messageID, content)
	return args.Error(0)
}

func (m *MockMessageStore) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}

func (m *MockMessageStore) GetGuild(ctx context.Context, guildID string) (mo.Option[*models.DiscordGuild], error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(mo.Option[*models.DiscordGuild]), args.Error(1)
}

func (m *MockMessageStore) GetGuildMember(
	ctx context.Context,
	guildID, userID string,
) (mo.Option[*models.DiscordMember], error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(mo.Option[*models.DiscordMember]), args.Error(1)
}

func (m *MockMessageStore) GetGuildTextChannels(ctx context.Context, guildID string) ([]models.DiscordChannel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiscordChannel), args.Error(1)
}

func (m *MockMessageStore) GetBotGuilds(ctx context.Context) ([]models.DiscordGuild, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiscordGuild), args.Error(1)
}

func (m *MockMessageStore) Latency() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
