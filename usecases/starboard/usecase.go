package starboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/samber/mo"

	"sorabackend/cache"
	"sorabackend/clients"
	"sorabackend/core"
	"sorabackend/metrics"
	"sorabackend/models"
	"sorabackend/services"
)

const (
	sourceMessageCacheTTL = 10 * time.Minute
	postedMessageCacheTTL = time.Hour
	DefaultSuppressionTTL = time.Hour

	// upper bound on reactors counted per event, ten pages of Discord's reaction endpoint
	reactionUsersLimit = 1000
)

// StarboardUseCase reposts messages into a guild's starboard channel once enough distinct users
// star them, keeps the posted star count current, and takes posts down when stars are withdrawn.
//
// It holds no locks. Events for the same message are expected to be serialised by the caller;
// concurrent events for different messages only share the cache and the record store.
type StarboardUseCase struct {
	cache            cache.Cache
	messageStore     clients.MessageStore
	starboardService services.StarboardService
	metrics          *metrics.Metrics
	suppressionTTL   time.Duration

	reactionsHandled atomic.Int64
}

func NewStarboardUseCase(
	c cache.Cache,
	messageStore clients.MessageStore,
	starboardService services.StarboardService,
	m *metrics.Metrics,
	suppressionTTL time.Duration,
) *StarboardUseCase {
	if suppressionTTL <= 0 {
		suppressionTTL = DefaultSuppressionTTL
	}

	return &StarboardUseCase{
		cache:            c,
		messageStore:     messageStore,
		starboardService: starboardService,
		metrics:          m,
		suppressionTTL:   suppressionTTL,
	}
}

// ReactionsHandled counts star reactions that changed or confirmed a starboard post.
func (s *StarboardUseCase) ReactionsHandled() int64 {
	return s.reactionsHandled.Load()
}

func isStarEmoji(emojiName string) bool {
	return emojiName == models.StarEmoji
}

func (s *StarboardUseCase) isSuppressed(ctx context.Context, messageID string) (bool, error) {
	suppressed, err := s.cache.Contains(ctx, cache.DoNotPostKey(messageID))
	if err != nil {
		return false, fmt.Errorf("failed to check suppression marker: %w", err)
	}
	return suppressed, nil
}

// getMessage resolves a message through the cache, downloading it on a miss.
func (s *StarboardUseCase) getMessage(
	ctx context.Context,
	channelID, messageID string,
	ttl time.Duration,
) (mo.Option[*models.DiscordMessage], error) {
	maybeEntry, err := cache.GetOrSet(ctx, s.cache, cache.MessageKey(messageID), ttl,
		func(ctx context.Context) (mo.Option[cache.MessageEntry], error) {
			maybeMessage, err := s.messageStore.GetMessage(ctx, channelID, messageID)
			if err != nil {
				return mo.None[cache.MessageEntry](), err
			}
			message, ok := maybeMessage.Get()
			if !ok {
				return mo.None[cache.MessageEntry](), nil
			}
			return mo.Some(cache.MessageEntry{Message: *message}), nil
		})
	if err != nil {
		return mo.None[*models.DiscordMessage](), fmt.Errorf("failed to resolve message %s: %w", messageID, err)
	}

	entry, ok := maybeEntry.Get()
	if !ok {
		return mo.None[*models.DiscordMessage](), nil
	}
	message := entry.Message
	return mo.Some(&message), nil
}

// getValidatedMessage resolves the reacted message and rejects bot or webhook authors and
// reactions by the author on their own message.
func (s *StarboardUseCase) getValidatedMessage(
	ctx context.Context,
	event models.DiscordReactionEvent,
) (mo.Option[*models.DiscordMessage], error) {
	maybeMessage, err := s.getMessage(ctx, event.ChannelID, event.MessageID, sourceMessageCacheTTL)
	if err != nil {
		return mo.None[*models.DiscordMessage](), err
	}

	message, ok := maybeMessage.Get()
	if !ok {
		slog.Debug("⏭️ Skipping reaction - message not found", "message_id", event.MessageID)
		return mo.None[*models.DiscordMessage](), nil
	}
	if message.IsFromBotOrWebhook() {
		slog.Debug("⏭️ Skipping reaction - message authored by bot or webhook", "message_id", event.MessageID)
		return mo.None[*models.DiscordMessage](), nil
	}
	if message.Author.ID == event.UserID {
		slog.Debug("⏭️ Skipping reaction - author reacted to own message", "message_id", event.MessageID)
		return mo.None[*models.DiscordMessage](), nil
	}

	return mo.Some(message), nil
}

// getStarboardChannel returns the guild's configured starboard channel. A configured channel that no
// longer exists clears the guild's starboard configuration.
func (s *StarboardUseCase) getStarboardChannel(
	ctx context.Context,
	config *models.StarboardConfig,
) (mo.Option[*models.DiscordChannel], error) {
	maybeChannel, err := s.messageStore.GetTextChannel(ctx, config.GuildID, config.ChannelID)
	if err != nil {
		return mo.None[*models.DiscordChannel](), fmt.Errorf("failed to get starboard channel: %w", err)
	}
	if maybeChannel.IsPresent() {
		return maybeChannel, nil
	}

	slog.Warn("⚠️ Starboard channel no longer exists, clearing guild starboard",
		"guild_id", config.GuildID, "channel_id", config.ChannelID)
	if err := s.starboardService.RemoveStarboard(ctx, config.GuildID); err != nil {
		return mo.None[*models.DiscordChannel](), err
	}
	return mo.None[*models.DiscordChannel](), nil
}

// countReactions returns the live number of distinct users other than the author who starred the message.
func (s *StarboardUseCase) countReactions(ctx context.Context, message *models.DiscordMessage) (int, error) {
	users, err := s.messageStore.GetReactionUsers(ctx, message.ChannelID, message.ID, models.StarEmoji, reactionUsersLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to get reaction users: %w", err)
	}

	count := 0
	for _, user := range users {
		if user.ID != message.Author.ID {
			count++
		}
	}
	return count, nil
}

// tryUpdatePostedMessage refreshes the star count of an existing post. It reports false when the
// message was never posted. A post that disappeared from the starboard channel has its record purged,
// which still counts as handled.
func (s *StarboardUseCase) tryUpdatePostedMessage(
	ctx context.Context,
	message *models.DiscordMessage,
	channel *models.DiscordChannel,
	count int,
) (bool, error) {
	maybeRecord, err := s.starboardService.GetStarboardMessage(ctx, message.ID)
	if err != nil {
		return false, err
	}
	record, ok := maybeRecord.Get()
	if !ok {
		return false, nil
	}

	maybePosted, err := s.getMessage(ctx, channel.ID, record.PostedMessageID, postedMessageCacheTTL)
	if err != nil {
		return true, err
	}
	if maybePosted.IsAbsent() {
		return true, s.purgeRecord(ctx, record)
	}

	err = s.messageStore.EditMessage(ctx, channel.ID, record.PostedMessageID, starCountContent(count))
	if core.IsNotFoundError(err) {
		return true, s.purgeRecord(ctx, record)
	}
	if err != nil {
		return true, fmt.Errorf("failed to update posted message: %w", err)
	}

	s.metrics.StarboardPost(metrics.PostActionUpdated)
	slog.Info("✅ Completed successfully - updated starboard post",
		"message_id", message.ID, "posted_message_id", record.PostedMessageID, "count", count)
	return true, nil
}

func (s *StarboardUseCase) postMessage(
	ctx context.Context,
	message *models.DiscordMessage,
	channel *models.DiscordChannel,
	count int,
) error {
	posted, err := s.messageStore.SendMessage(ctx, channel.ID, starCountContent(count), buildStarboardEmbed(message))
	if err != nil {
		return fmt.Errorf("failed to post starboard message: %w", err)
	}

	if err := s.cache.Set(ctx, cache.MessageKey(posted.ID), cache.MessageEntry{Message: *posted}, postedMessageCacheTTL); err != nil {
		slog.Warn("⚠️ Failed to cache posted starboard message", "posted_message_id", posted.ID, "error", err)
	}

	if _, err := s.starboardService.AddStarboardMessage(ctx, message.GuildID, message.ID, posted.ID); err != nil {
		// without a record nothing would ever update or remove the post
		if deleteErr := s.messageStore.DeleteMessage(ctx, channel.ID, posted.ID); deleteErr != nil {
			slog.Error("❌ Failed to delete unrecorded starboard post", "posted_message_id", posted.ID, "error", deleteErr)
		}
		return err
	}

	s.metrics.StarboardPost(metrics.PostActionPosted)
	slog.Info("✅ Completed successfully - posted message to starboard",
		"guild_id", message.GuildID, "message_id", message.ID, "posted_message_id", posted.ID, "count", count)
	return nil
}

// purgeRecord forgets a record whose posted message vanished, without suppressing a repost.
func (s *StarboardUseCase) purgeRecord(ctx context.Context, record *models.StarboardMessage) error {
	if err := s.removeFromCacheAndStore(ctx, record); err != nil {
		return err
	}

	s.metrics.StarboardPost(metrics.PostActionPurged)
	slog.Info("🧹 Purged stale starboard record", "message_id", record.MessageID, "posted_message_id", record.PostedMessageID)
	return nil
}

// removeStarboardMessage takes a post down: the record and cached messages are dropped, the posted
// message is deleted when channelID is known, and the original is suppressed from reposting.
func (s *StarboardUseCase) removeStarboardMessage(ctx context.Context, record *models.StarboardMessage, channelID string) error {
	if err := s.removeFromCacheAndStore(ctx, record); err != nil {
		return err
	}

	if channelID != "" {
		if err := s.messageStore.DeleteMessage(ctx, channelID, record.PostedMessageID); err != nil {
			slog.Error("❌ Failed to delete starboard post",
				"message_id", record.MessageID, "posted_message_id", record.PostedMessageID, "error", err)
		}
	}

	if err := s.cache.Set(ctx, cache.DoNotPostKey(record.MessageID), cache.MarkerEntry{}, s.suppressionTTL); err != nil {
		return fmt.Errorf("failed to set suppression marker: %w", err)
	}

	s.metrics.StarboardPost(metrics.PostActionRemoved)
	slog.Info("✅ Completed successfully - removed starboard post",
		"message_id", record.MessageID, "posted_message_id", record.PostedMessageID)
	return nil
}

func (s *StarboardUseCase) removeFromCacheAndStore(ctx context.Context, record *models.StarboardMessage) error {
	for _, key := range []string{cache.MessageKey(record.MessageID), cache.MessageKey(record.PostedMessageID)} {
		if err := s.cache.Remove(ctx, key); err != nil {
			slog.Warn("⚠️ Failed to drop cached message", "key", key, "error", err)
		}
	}

	if err := s.starboardService.RemoveStarboardMessage(ctx, record.MessageID); err != nil {
		return err
	}
	return nil
}
