package starboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"sorabackend/core"
	"sorabackend/db"
	"sorabackend/models"
	"sorabackend/services"
	"sorabackend/utils"
)

type StarboardService struct {
	starboardRepo *db.PostgresStarboardRepository
	txManager     services.TransactionManager
}

func NewStarboardService(repo *db.PostgresStarboardRepository, txManager services.TransactionManager) *StarboardService {
	return &StarboardService{starboardRepo: repo, txManager: txManager}
}

var _ services.StarboardService = (*StarboardService)(nil)

func (s *StarboardService) GetStarboardMessage(ctx context.Context, messageID string) (mo.Option[*models.StarboardMessage], error) {
	message, err := s.starboardRepo.GetStarboardMessage(ctx, messageID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return mo.None[*models.StarboardMessage](), nil
		}
		return mo.None[*models.StarboardMessage](), fmt.Errorf("failed to get starboard message: %w", err)
	}

	return mo.Some(message), nil
}

func (s *StarboardService) AddStarboardMessage(
	ctx context.Context,
	guildID, messageID, postedMessageID string,
) (*models.StarboardMessage, error) {
	slog.Debug("📋 Starting to add starboard message", "guild_id", guildID, "message_id", messageID, "posted_message_id", postedMessageID)
	utils.AssertInvariant(guildID != "", "guildID must not be empty")
	utils.AssertInvariant(messageID != "", "messageID must not be empty")
	utils.AssertInvariant(postedMessageID != "", "postedMessageID must not be empty")

	message, err := s.starboardRepo.UpsertStarboardMessage(ctx, guildID, messageID, postedMessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to add starboard message: %w", err)
	}

	slog.Debug("✅ Completed successfully - added starboard message", "message_id", messageID, "id", message.ID)
	return message, nil
}

func (s *StarboardService) RemoveStarboardMessage(ctx context.Context, messageID string) error {
	deleted, err := s.starboardRepo.DeleteStarboardMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to remove starboard message: %w", err)
	}

	slog.Debug("✅ Completed successfully - removed starboard message", "message_id", messageID, "existed", deleted)
	return nil
}

func (s *StarboardService) GetStarboardInfo(ctx context.Context, guildID string) (mo.Option[*models.StarboardConfig], error) {
	maybeConfig, err := s.GetStarboardConfig(ctx, guildID)
	if err != nil {
		return mo.None[*models.StarboardConfig](), err
	}

	config, ok := maybeConfig.Get()
	if !ok || !config.IsEnabled() {
		return mo.None[*models.StarboardConfig](), nil
	}
	return mo.Some(config), nil
}

func (s *StarboardService) RemoveStarboard(ctx context.Context, guildID string) error {
	slog.Info("📋 Starting to remove starboard", "guild_id", guildID)

	var removedMessages int64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.starboardRepo.DeleteStarboardConfig(ctx, guildID); err != nil {
			return err
		}

		count, err := s.starboardRepo.DeleteStarboardMessagesByGuild(ctx, guildID)
		if err != nil {
			return err
		}
		removedMessages = count
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove starboard: %w", err)
	}

	slog.Info("✅ Completed successfully - removed starboard", "guild_id", guildID, "removed_messages", removedMessages)
	return nil
}

func (s *StarboardService) GetStarboardConfig(ctx context.Context, guildID string) (mo.Option[*models.StarboardConfig], error) {
	config, err := s.starboardRepo.GetStarboardConfig(ctx, guildID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return mo.None[*models.StarboardConfig](), nil
		}
		return mo.None[*models.StarboardConfig](), fmt.Errorf("failed to get starboard config: %w", err)
	}

	return mo.Some(config), nil
}

func (s *StarboardService) UpsertStarboard(
	ctx context.Context,
	guildID, channelID string,
	threshold int,
) (*models.StarboardConfig, error) {
	slog.Info("📋 Starting to update starboard", "guild_id", guildID, "channel_id", channelID, "threshold", threshold)
	if threshold < models.DefaultStarboardMinimum {
		return nil, fmt.Errorf("threshold must be at least %d: %w", models.DefaultStarboardMinimum, core.ErrInvalidArgument)
	}
	if threshold > models.MaxStarboardThreshold {
		return nil, fmt.Errorf("threshold must be at most %d: %w", models.MaxStarboardThreshold, core.ErrInvalidArgument)
	}

	config, err := s.starboardRepo.UpsertStarboardConfig(ctx, guildID, channelID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to update starboard: %w", err)
	}

	slog.Info("✅ Completed successfully - updated starboard", "guild_id", guildID)
	return config, nil
}

// DisableStarboard clears the channel but keeps the threshold, so re-enabling restores it.
func (s *StarboardService) DisableStarboard(ctx context.Context, guildID string) error {
	slog.Info("📋 Starting to disable starboard", "guild_id", guildID)

	maybeConfig, err := s.GetStarboardConfig(ctx, guildID)
	if err != nil {
		return err
	}
	config, ok := maybeConfig.Get()
	if !ok {
		slog.Info("⏭️ Skipping disable - guild has no starboard", "guild_id", guildID)
		return nil
	}

	if _, err := s.starboardRepo.UpsertStarboardConfig(ctx, guildID, "", config.Threshold); err != nil {
		return fmt.Errorf("failed to disable starboard: %w", err)
	}

	slog.Info("✅ Completed successfully - disabled starboard", "guild_id", guildID)
	return nil
}

func (s *StarboardService) CountStarboardMessages(ctx context.Context, guildID string) (int, error) {
	count, err := s.starboardRepo.CountStarboardMessages(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to count starboard messages: %w", err)
	}
	return count, nil
}
