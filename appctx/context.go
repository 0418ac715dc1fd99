package appctx

import (
	"context"
)

type contextKey string

const DiscordUserIDContextKey contextKey = "discord_user_id"

// SetDiscordUserID adds the authenticated dashboard user's Discord id to the request context
func SetDiscordUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, DiscordUserIDContextKey, userID)
}

// GetDiscordUserID extracts the authenticated dashboard user's Discord id from the request context
func GetDiscordUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(DiscordUserIDContextKey).(string)
	return userID, ok && userID != ""
}
