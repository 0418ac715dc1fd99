package handlers

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"sorabackend/models"
	"sorabackend/models/api"
	"sorabackend/usecases/dashboard"
)

type DashboardUseCase interface {
	GetStats(ctx context.Context) (*models.BotStats, error)
	GetGuilds(ctx context.Context, userID string) ([]models.DashboardGuild, error)
	GuildExists(ctx context.Context, guildID string) (bool, error)
	GetStarboard(ctx context.Context, userID, guildID string) (*models.StarboardSettings, error)
	EditStarboard(ctx context.Context, userID string, params dashboard.EditStarboardParams) (*models.StarboardSettings, error)
}

var _ DashboardUseCase = (*dashboard.DashboardUseCase)(nil)

type DashboardAPIHandler struct {
	useCase DashboardUseCase
	clock   clockwork.Clock
}

func NewDashboardAPIHandler(useCase DashboardUseCase, clock clockwork.Clock) *DashboardAPIHandler {
	return &DashboardAPIHandler{
		useCase: useCase,
		clock:   clock,
	}
}

// GetStats returns public bot statistics
func (h *DashboardAPIHandler) GetStats(ctx context.Context) (*api.StatsModel, error) {
	stats, err := h.useCase.GetStats(ctx)
	if err != nil {
		slog.Error("❌ Failed to get bot stats", "error", err)
		return nil, err
	}
	return api.DomainStatsToAPIStats(stats, h.clock.Now()), nil
}

// ListGuilds returns the guilds the user administers
func (h *DashboardAPIHandler) ListGuilds(ctx context.Context, userID string) ([]api.GuildModel, error) {
	guilds, err := h.useCase.GetGuilds(ctx, userID)
	if err != nil {
		slog.Error("❌ Failed to list guilds", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("✅ Retrieved administered guilds", "user_id", userID, "count", len(guilds))
	return api.DomainGuildsToAPIGuilds(guilds), nil
}

func (h *DashboardAPIHandler) GuildExists(ctx context.Context, guildID string) (*api.GuildExistsResponse, error) {
	exists, err := h.useCase.GuildExists(ctx, guildID)
	if err != nil {
		slog.Error("❌ Failed to check guild", "guild_id", guildID, "error", err)
		return nil, err
	}
	return &api.GuildExistsResponse{Exists: exists}, nil
}

func (h *DashboardAPIHandler) GetStarboard(ctx context.Context, userID, guildID string) (*api.StarboardSettingsModel, error) {
	settings, err := h.useCase.GetStarboard(ctx, userID, guildID)
	if err != nil {
		slog.Warn("❌ Failed to get starboard settings", "guild_id", guildID, "user_id", userID, "error", err)
		return nil, err
	}
	return api.DomainStarboardSettingsToAPI(settings), nil
}

func (h *DashboardAPIHandler) EditStarboard(
	ctx context.Context,
	userID, guildID string,
	req api.EditStarboardRequest,
) (*api.StarboardSettingsModel, error) {
	settings, err := h.useCase.EditStarboard(ctx, userID, dashboard.EditStarboardParams{
		GuildID:   guildID,
		ChannelID: req.ChannelID,
		Threshold: req.Threshold,
		Disabled:  req.Disabled,
	})
	if err != nil {
		slog.Warn("❌ Failed to edit starboard", "guild_id", guildID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("✅ Starboard updated", "guild_id", guildID, "user_id", userID)
	return api.DomainStarboardSettingsToAPI(settings), nil
}
