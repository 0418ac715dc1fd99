package guildaccess

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sorabackend/models"
	"sorabackend/services"
)

type MockGuildAccessService struct {
	mock.Mock
}

var _ services.GuildAccessService = (*MockGuildAccessService)(nil)

func (m *MockGuildAccessService) IsGuildAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildAccessService) GetAdministeredGuilds(ctx context.Context, userID string) ([]models.DiscordGuild, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiscordGuild), args.Error(1)
}
