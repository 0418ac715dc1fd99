package starboard

import (
	"context"
	"fmt"
	"log/slog"

	"sorabackend/cache"
	"sorabackend/models"
)

const (
	outcomeIgnored        = "ignored"
	outcomeBelowThreshold = "below_threshold"
	outcomeHandled        = "handled"
	outcomeFailed         = "failed"

	eventReactionAdded   = "reaction_added"
	eventReactionRemoved = "reaction_removed"
	eventReactionCleared = "reaction_cleared"
	eventEmojiRemoved    = "emoji_removed"
	eventMessageDeleted  = "message_deleted"
)

// HandleReactionAdded posts a message to its guild's starboard once it has enough stars, or refreshes
// the star count of an existing post.
func (s *StarboardUseCase) HandleReactionAdded(ctx context.Context, event models.DiscordReactionEvent) error {
	if !isStarEmoji(event.EmojiName) {
		return nil
	}

	outcome, err := s.handleReactionAdded(ctx, event)
	s.recordOutcome(eventReactionAdded, outcome, err)
	return err
}

func (s *StarboardUseCase) handleReactionAdded(ctx context.Context, event models.DiscordReactionEvent) (string, error) {
	slog.Debug("📋 Starting to handle star reaction", "message_id", event.MessageID, "user_id", event.UserID)

	message, channel, config, proceed, err := s.resolveReaction(ctx, event)
	if err != nil || !proceed {
		return outcomeIgnored, err
	}

	count, err := s.countReactions(ctx, message)
	if err != nil {
		return outcomeFailed, err
	}
	if count < config.Threshold {
		slog.Debug("⏭️ Skipping reaction - below threshold",
			"message_id", message.ID, "count", count, "threshold", config.Threshold)
		return outcomeBelowThreshold, nil
	}

	updated, err := s.tryUpdatePostedMessage(ctx, message, channel, count)
	if err != nil {
		return outcomeFailed, err
	}
	if !updated {
		if err := s.postMessage(ctx, message, channel, count); err != nil {
			return outcomeFailed, err
		}
	}

	if err := s.bumpRateLimit(ctx, message.ID, event.UserID); err != nil {
		return outcomeFailed, err
	}
	return outcomeHandled, nil
}

// HandleReactionRemoved refreshes the star count of a post, or takes it down once the message drops
// below the threshold.
func (s *StarboardUseCase) HandleReactionRemoved(ctx context.Context, event models.DiscordReactionEvent) error {
	if !isStarEmoji(event.EmojiName) {
		return nil
	}

	outcome, err := s.handleReactionRemoved(ctx, event)
	s.recordOutcome(eventReactionRemoved, outcome, err)
	return err
}

func (s *StarboardUseCase) handleReactionRemoved(ctx context.Context, event models.DiscordReactionEvent) (string, error) {
	slog.Debug("📋 Starting to handle star removal", "message_id", event.MessageID, "user_id", event.UserID)

	message, channel, config, proceed, err := s.resolveReaction(ctx, event)
	if err != nil || !proceed {
		return outcomeIgnored, err
	}

	count, err := s.countReactions(ctx, message)
	if err != nil {
		return outcomeFailed, err
	}

	if count >= config.Threshold {
		if _, err := s.tryUpdatePostedMessage(ctx, message, channel, count); err != nil {
			return outcomeFailed, err
		}
	} else {
		maybeRecord, err := s.starboardService.GetStarboardMessage(ctx, message.ID)
		if err != nil {
			return outcomeFailed, err
		}
		record, ok := maybeRecord.Get()
		if !ok {
			slog.Debug("⏭️ Skipping removal - message was never posted", "message_id", message.ID)
			return outcomeBelowThreshold, nil
		}
		if err := s.removeStarboardMessage(ctx, record, channel.ID); err != nil {
			return outcomeFailed, err
		}
	}

	if err := s.bumpRateLimit(ctx, message.ID, event.UserID); err != nil {
		return outcomeFailed, err
	}
	return outcomeHandled, nil
}

// resolveReaction runs the checks shared by star additions and removals. proceed is false when the
// reaction must be ignored.
func (s *StarboardUseCase) resolveReaction(
	ctx context.Context,
	event models.DiscordReactionEvent,
) (*models.DiscordMessage, *models.DiscordChannel, *models.StarboardConfig, bool, error) {
	suppressed, err := s.isSuppressed(ctx, event.MessageID)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if suppressed {
		slog.Debug("⏭️ Skipping reaction - message is suppressed", "message_id", event.MessageID)
		return nil, nil, nil, false, nil
	}

	limited, err := s.rateLimitReached(ctx, event.MessageID, event.UserID)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if limited {
		slog.Debug("⏭️ Skipping reaction - user rate limit reached", "message_id", event.MessageID, "user_id", event.UserID)
		return nil, nil, nil, false, nil
	}

	maybeMessage, err := s.getValidatedMessage(ctx, event)
	if err != nil {
		return nil, nil, nil, false, err
	}
	message, ok := maybeMessage.Get()
	if !ok {
		return nil, nil, nil, false, nil
	}
	if message.GuildID == "" {
		slog.Debug("⏭️ Skipping reaction - not in a guild", "message_id", message.ID)
		return nil, nil, nil, false, nil
	}

	maybeConfig, err := s.starboardService.GetStarboardInfo(ctx, message.GuildID)
	if err != nil {
		return nil, nil, nil, false, err
	}
	config, ok := maybeConfig.Get()
	if !ok {
		slog.Debug("⏭️ Skipping reaction - guild has no starboard", "guild_id", message.GuildID)
		return nil, nil, nil, false, nil
	}

	maybeChannel, err := s.getStarboardChannel(ctx, config)
	if err != nil {
		return nil, nil, nil, false, err
	}
	channel, ok := maybeChannel.Get()
	if !ok {
		return nil, nil, nil, false, nil
	}

	return message, channel, config, true, nil
}

// HandleReactionCleared takes down the post of a message whose reactions were all removed.
func (s *StarboardUseCase) HandleReactionCleared(ctx context.Context, event models.DiscordMessageRefEvent) error {
	outcome, err := s.takeDown(ctx, event.MessageID)
	s.recordOutcome(eventReactionCleared, outcome, err)
	return err
}

// HandleReactionEmojiRemoved takes down the post of a message whose star reactions were removed at once.
func (s *StarboardUseCase) HandleReactionEmojiRemoved(ctx context.Context, event models.DiscordMessageRefEvent) error {
	if !isStarEmoji(event.EmojiName) {
		return nil
	}

	outcome, err := s.takeDown(ctx, event.MessageID)
	s.recordOutcome(eventEmojiRemoved, outcome, err)
	return err
}

// HandleMessageDeleted drops a deleted message from the cache and takes down its post if it had one.
func (s *StarboardUseCase) HandleMessageDeleted(ctx context.Context, event models.DiscordMessageRefEvent) error {
	if err := s.cache.Remove(ctx, cache.MessageKey(event.MessageID)); err != nil {
		slog.Warn("⚠️ Failed to drop cached message", "message_id", event.MessageID, "error", err)
	}

	outcome, err := s.takeDown(ctx, event.MessageID)
	s.recordOutcome(eventMessageDeleted, outcome, err)
	return err
}

// takeDown removes the record for messageID. The posted message is deleted only when the guild's
// starboard channel can be resolved; the record and suppression marker go either way.
func (s *StarboardUseCase) takeDown(ctx context.Context, messageID string) (string, error) {
	maybeRecord, err := s.starboardService.GetStarboardMessage(ctx, messageID)
	if err != nil {
		return outcomeFailed, err
	}
	record, ok := maybeRecord.Get()
	if !ok {
		return outcomeIgnored, nil
	}

	// the channel is only needed for the physical delete; the record and marker go regardless
	channelID, err := s.currentStarboardChannelID(ctx, record.GuildID)
	if err != nil {
		slog.Error("❌ Failed to resolve starboard channel, skipping post deletion",
			"guild_id", record.GuildID, "message_id", messageID, "error", err)
		channelID = ""
	}

	if err := s.removeStarboardMessage(ctx, record, channelID); err != nil {
		return outcomeFailed, err
	}
	return outcomeHandled, nil
}

func (s *StarboardUseCase) currentStarboardChannelID(ctx context.Context, guildID string) (string, error) {
	maybeConfig, err := s.starboardService.GetStarboardInfo(ctx, guildID)
	if err != nil {
		return "", err
	}
	config, ok := maybeConfig.Get()
	if !ok {
		return "", nil
	}

	maybeChannel, err := s.messageStore.GetTextChannel(ctx, guildID, config.ChannelID)
	if err != nil {
		return "", fmt.Errorf("failed to get starboard channel: %w", err)
	}
	channel, ok := maybeChannel.Get()
	if !ok {
		return "", nil
	}
	return channel.ID, nil
}

func (s *StarboardUseCase) recordOutcome(event, outcome string, err error) {
	if err != nil {
		outcome = outcomeFailed
		slog.Error("❌ Failed to handle starboard event", "event", event, "error", err)
	}
	if outcome == outcomeHandled {
		s.reactionsHandled.Add(1)
	}
	s.metrics.StarboardEvent(event, outcome)
}
