package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sorabackend/models"
	"sorabackend/usecases/dashboard"
)

// MockDashboardUseCase implements DashboardUseCase for testing
type MockDashboardUseCase struct {
	mock.Mock
}

func (m *MockDashboardUseCase) GetStats(ctx context.Context) (*models.BotStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BotStats), args.Error(1)
}

func (m *MockDashboardUseCase) GetGuilds(ctx context.Context, userID string) ([]models.DashboardGuild, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DashboardGuild), args.Error(1)
}

func (m *MockDashboardUseCase) GuildExists(ctx context.Context, guildID string) (bool, error) {
	args := m.Called(ctx, guildID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDashboardUseCase) GetStarboard(ctx context.Context, userID, guildID string) (*models.StarboardSettings, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StarboardSettings), args.Error(1)
}

func (m *MockDashboardUseCase) EditStarboard(
	ctx context.Context,
	userID string,
	params dashboard.EditStarboardParams,
) (*models.StarboardSettings, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StarboardSettings), args.Error(1)
}
