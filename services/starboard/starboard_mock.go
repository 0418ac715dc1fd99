package starboard

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"sorabackend/models"
	"sorabackend/services"
)

type MockStarboardService struct {
	mock.Mock
}

var _ services.StarboardService = (*MockStarboardService)(nil)

func (m *MockStarboardService) GetStarboardMessage(
	ctx context.Context,
	messageID string,
) (mo.Option[*models.StarboardMessage], error) {
	args := m.Called(ctx, messageID)
	return args.Get(0).(mo.Option[*models.StarboardMessage]), args.Error(1)
}

func (m *MockStarboardService) AddStarboardMessage(
	ctx context.Context,
	guildID, messageID, postedMessageID string,
) (*models.StarboardMessage, error) {
	args := m.Called(ctx, guildID, messageID, postedMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StarboardMessage), args.Error(1)
}

func (m *MockStarboardService) RemoveStarboardMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockStarboardService) GetStarboardInfo(
	ctx context.Context,
	guildID string,
) (mo.Option[*models.StarboardConfig], error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(mo.Option[*models.StarboardConfig]), args.Error(1)
}

func (m *MockStarboardService) RemoveStarboard(ctx context.Context, guildID string) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

func (m *MockStarboardService) GetStarboardConfig(
	ctx context.Context,
	guildID string,
) (mo.Option[*models.StarboardConfig], error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(mo.Option[*models.StarboardConfig]), args.Error(1)
}

func (m *MockStarboardService) UpsertStarboard(
	ctx context.Context,
	guildID, channelID string,
	threshold int,
) (*models.StarboardConfig, error) {
	args := m.Called(ctx, guildID, channelID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StarboardConfig), args.Error(1)
}

func (m *MockStarboardService) DisableStarboard(ctx context.Context, guildID string) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

func (m *MockStarboardService) CountStarboardMessages(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}
