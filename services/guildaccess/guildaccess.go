package guildaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"sorabackend/clients"
	"sorabackend/models"
	"sorabackend/services"
)

type GuildAccessService struct {
	messageStore clients.MessageStore
}

func NewGuildAccessService(messageStore clients.MessageStore) *GuildAccessService {
	return &GuildAccessService{messageStore: messageStore}
}

var _ services.GuildAccessService = (*GuildAccessService)(nil)

// IsGuildAdmin reports whether userID owns the guild or holds the Administrator permission through
// any of their roles, @everyone included. Unknown guilds and non-members are not admins.
func (s *GuildAccessService) IsGuildAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	maybeGuild, err := s.messageStore.GetGuild(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to get guild: %w", err)
	}
	guild, ok := maybeGuild.Get()
	if !ok {
		return false, nil
	}

	return s.isAdminOf(ctx, guild, userID)
}

func (s *GuildAccessService) GetAdministeredGuilds(ctx context.Context, userID string) ([]models.DiscordGuild, error) {
	guilds, err := s.messageStore.GetBotGuilds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot guilds: %w", err)
	}

	result := []models.DiscordGuild{}
	for i := range guilds {
		isAdmin, err := s.isAdminOf(ctx, &guilds[i], userID)
		if err != nil {
			return nil, err
		}
		if isAdmin {
			result = append(result, guilds[i])
		}
	}

	slog.Debug("✅ Completed successfully - resolved administered guilds", "user_id", userID, "count", len(result))
	return result, nil
}

func (s *GuildAccessService) isAdminOf(ctx context.Context, guild *models.DiscordGuild, userID string) (bool, error) {
	if guild.OwnerID == userID {
		return true, nil
	}

	maybeMember, err := s.messageStore.GetGuildMember(ctx, guild.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get guild member: %w", err)
	}
	member, ok := maybeMember.Get()
	if !ok {
		return false, nil
	}

	return memberPermissions(guild, member)&discordgo.PermissionAdministrator != 0, nil
}

func memberPermissions(guild *models.DiscordGuild, member *models.DiscordMember) int64 {
	held := make(map[string]bool, len(member.RoleIDs)+1)
	// the @everyone role shares the guild's id
	held[guild.ID] = true
	for _, roleID := range member.RoleIDs {
		held[roleID] = true
	}

	var permissions int64
	for _, role := range guild.Roles {
		if held[role.ID] {
			permissions |= role.Permissions
		}
	}
	return permissions
}
