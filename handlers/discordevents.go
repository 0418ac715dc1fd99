package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cespare/xxhash/v2"
	"github.com/gammazero/workerpool"

	"sorabackend/models"
)

const (
	eventTimeout = 30 * time.Second

	reactionRemoveEmojiEvent = "MESSAGE_REACTION_REMOVE_EMOJI"
)

// StarboardEventProcessor consumes the gateway events the starboard reacts to.
type StarboardEventProcessor interface {
	HandleReactionAdded(ctx context.Context, event models.DiscordReactionEvent) error
	HandleReactionRemoved(ctx context.Context, event models.DiscordReactionEvent) error
	HandleReactionCleared(ctx context.Context, event models.DiscordMessageRefEvent) error
	HandleReactionEmojiRemoved(ctx context.Context, event models.DiscordMessageRefEvent) error
	HandleMessageDeleted(ctx context.Context, event models.DiscordMessageRefEvent) error
}

// BackgroundTaskWrapper reports failures and panics of dispatched tasks.
type BackgroundTaskWrapper interface {
	WrapBackgroundTask(taskName string, task func() error) func() error
}

// DiscordEventsHandler feeds gateway events to the starboard. Events are sharded by message id over
// single-worker pools, so events for one message are handled in arrival order while different
// messages proceed in parallel.
type DiscordEventsHandler struct {
	session   *discordgo.Session
	starboard StarboardEventProcessor
	alerts    BackgroundTaskWrapper
	shards    []*workerpool.WorkerPool

	ctx    context.Context
	cancel context.CancelFunc

	messagesReceived atomic.Int64

	// mu guards stopped against shards being stopped while a handler submits
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewDiscordEventsHandler(
	session *discordgo.Session,
	starboard StarboardEventProcessor,
	alerts BackgroundTaskWrapper,
	workers int,
) *DiscordEventsHandler {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	handler := &DiscordEventsHandler{
		session:   session,
		starboard: starboard,
		alerts:    alerts,
		shards:    make([]*workerpool.WorkerPool, workers),
		ctx:       ctx,
		cancel:    cancel,
	}
	for i := range handler.shards {
		handler.shards[i] = workerpool.New(1)
	}

	session.AddHandler(handler.handleMessageCreatedEvent)
	session.AddHandler(handler.handleMessageDeletedEvent)
	session.AddHandler(handler.handleReactionAddedEvent)
	session.AddHandler(handler.handleReactionRemovedEvent)
	session.AddHandler(handler.handleReactionRemovedAllEvent)
	session.AddHandler(handler.handleRawEvent)

	// MessageContent is privileged and must be enabled for the application in the developer portal,
	// otherwise Discord strips content, attachments and embeds from every message the bot reads.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	slog.Info("🤖 Discord bot is now running and listening for events", "shards", len(h.shards))
	return nil
}

// StopBot closes the gateway connection and waits for queued events to finish
func (h *DiscordEventsHandler) StopBot() {
	h.stopOnce.Do(func() {
		if err := h.session.Close(); err != nil {
			slog.Error("❌ Failed to close Discord session", "error", err)
		}
		h.drain()
		h.cancel()
		slog.Info("✅ Discord bot stopped")
	})
}

func (h *DiscordEventsHandler) MessagesReceived() int64 {
	return h.messagesReceived.Load()
}

// drain stops accepting events and waits for the queued ones. discordgo runs handlers on their own
// goroutines, so events can still arrive after the session is closed; those are dropped.
func (h *DiscordEventsHandler) drain() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()

	for _, shard := range h.shards {
		shard.StopWait()
	}
}

func (h *DiscordEventsHandler) shardFor(messageID string) *workerpool.WorkerPool {
	return h.shards[xxhash.Sum64String(messageID)%uint64(len(h.shards))]
}

func (h *DiscordEventsHandler) dispatch(taskName, messageID string, task func(ctx context.Context) error) {
	run := h.alerts.WrapBackgroundTask(taskName, func() error {
		ctx, cancel := context.WithTimeout(h.ctx, eventTimeout)
		defer cancel()
		return task(ctx)
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.stopped {
		slog.Debug("⏭️ Skipping gateway event - bot is stopping", "task", taskName, "message_id", messageID)
		return
	}

	h.shardFor(messageID).Submit(func() {
		_ = run()
	})
}

func (h *DiscordEventsHandler) handleMessageCreatedEvent(_ *discordgo.Session, m *discordgo.MessageCreate) {
	h.messagesReceived.Add(1)
}

func (h *DiscordEventsHandler) handleMessageDeletedEvent(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}

	event := models.DiscordMessageRefEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
	h.dispatch("message_deleted", event.MessageID, func(ctx context.Context) error {
		return h.starboard.HandleMessageDeleted(ctx, event)
	})
}

func (h *DiscordEventsHandler) handleReactionAddedEvent(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	slog.Debug("🤖 Discord reaction added",
		"emoji", r.Emoji.Name, "user_id", r.UserID, "message_id", r.MessageID, "guild_id", r.GuildID)

	event := toReactionEvent(r.MessageReaction)
	h.dispatch("reaction_added", event.MessageID, func(ctx context.Context) error {
		return h.starboard.HandleReactionAdded(ctx, event)
	})
}

func (h *DiscordEventsHandler) handleReactionRemovedEvent(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}

	event := toReactionEvent(r.MessageReaction)
	h.dispatch("reaction_removed", event.MessageID, func(ctx context.Context) error {
		return h.starboard.HandleReactionRemoved(ctx, event)
	})
}

func (h *DiscordEventsHandler) handleReactionRemovedAllEvent(_ *discordgo.Session, r *discordgo.MessageReactionRemoveAll) {
	if r.MessageReaction == nil {
		return
	}

	event := models.DiscordMessageRefEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
	}
	h.dispatch("reaction_cleared", event.MessageID, func(ctx context.Context) error {
		return h.starboard.HandleReactionCleared(ctx, event)
	})
}

type reactionRemoveEmojiPayload struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"emoji"`
}

// handleRawEvent picks up gateway events discordgo has no typed handler for.
func (h *DiscordEventsHandler) handleRawEvent(_ *discordgo.Session, e *discordgo.Event) {
	if e.Type != reactionRemoveEmojiEvent {
		return
	}

	var payload reactionRemoveEmojiPayload
	if err := json.Unmarshal(e.RawData, &payload); err != nil {
		slog.Error("❌ Failed to decode reaction emoji removal", "error", err)
		return
	}

	event := models.DiscordMessageRefEvent{
		GuildID:   payload.GuildID,
		ChannelID: payload.ChannelID,
		MessageID: payload.MessageID,
		EmojiName: payload.Emoji.Name,
	}
	h.dispatch("reaction_emoji_removed", event.MessageID, func(ctx context.Context) error {
		return h.starboard.HandleReactionEmojiRemoved(ctx, event)
	})
}

func toReactionEvent(r *discordgo.MessageReaction) models.DiscordReactionEvent {
	return models.DiscordReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		EmojiName: r.Emoji.Name,
		EmojiID:   r.Emoji.ID,
	}
}
