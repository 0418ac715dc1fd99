package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"sorabackend/models"
)

func toUser(user *discordgo.User) models.DiscordUser {
	if user == nil {
		return models.DiscordUser{}
	}

	username := user.Username
	if user.Discriminator != "" && user.Discriminator != "0" {
		username += "#" + user.Discriminator
	}

	return models.DiscordUser{
		ID:        user.ID,
		Username:  username,
		AvatarURL: user.AvatarURL(""),
		Bot:       user.Bot,
	}
}

func toMessage(message *discordgo.Message) *models.DiscordMessage {
	result := &models.DiscordMessage{
		ID:          message.ID,
		GuildID:     message.GuildID,
		ChannelID:   message.ChannelID,
		Content:     message.Content,
		Author:      toUser(message.Author),
		WebhookID:   message.WebhookID,
		Timestamp:   message.Timestamp,
		Attachments: make([]models.DiscordAttachment, 0, len(message.Attachments)),
		Embeds:      make([]models.DiscordEmbed, 0, len(message.Embeds)),
	}

	for _, attachment := range message.Attachments {
		result.Attachments = append(result.Attachments, models.DiscordAttachment{
			ID:          attachment.ID,
			URL:         attachment.URL,
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Width:       attachment.Width,
			Height:      attachment.Height,
		})
	}

	for _, embed := range message.Embeds {
		converted := models.DiscordEmbed{Type: string(embed.Type), URL: embed.URL}
		if embed.Image != nil {
			converted.ImageURL = embed.Image.URL
		}
		if embed.Thumbnail != nil {
			converted.ThumbnailURL = embed.Thumbnail.URL
		}
		result.Embeds = append(result.Embeds, converted)
	}

	return result
}

func toChannel(channel *discordgo.Channel) *models.DiscordChannel {
	return &models.DiscordChannel{
		ID:       channel.ID,
		GuildID:  channel.GuildID,
		Name:     channel.Name,
		Position: channel.Position,
	}
}

func toGuild(guild *discordgo.Guild, channels []*discordgo.Channel) *models.DiscordGuild {
	result := &models.DiscordGuild{
		ID:          guild.ID,
		Name:        guild.Name,
		IconURL:     guild.IconURL(""),
		OwnerID:     guild.OwnerID,
		MemberCount: guild.MemberCount,
		Roles:       make([]models.DiscordRole, 0, len(guild.Roles)),
	}
	if result.MemberCount == 0 {
		result.MemberCount = guild.ApproximateMemberCount
	}

	for _, role := range guild.Roles {
		result.Roles = append(result.Roles, models.DiscordRole{
			ID:          role.ID,
			Name:        role.Name,
			Permissions: role.Permissions,
		})
	}

	for _, channel := range channels {
		switch channel.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			result.TextChannelCount++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			result.VoiceChannelCount++
		}
	}

	return result
}

func toEmbed(embed *models.OutgoingEmbed) *discordgo.MessageEmbed {
	result := &discordgo.MessageEmbed{
		Description: embed.Description,
		Color:       embed.Color,
	}

	if embed.AuthorName != "" {
		result.Author = &discordgo.MessageEmbedAuthor{Name: embed.AuthorName, IconURL: embed.AuthorIconURL}
	}
	if embed.ImageURL != "" {
		result.Image = &discordgo.MessageEmbedImage{URL: embed.ImageURL}
	}
	for _, field := range embed.Fields {
		result.Fields = append(result.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	if !embed.Timestamp.IsZero() {
		result.Timestamp = embed.Timestamp.UTC().Format(time.RFC3339)
	}

	return result
}
