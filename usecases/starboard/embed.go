package starboard

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"mvdan.cc/xurls/v2"

	"sorabackend/models"
	"sorabackend/utils"
)

const (
	starboardEmbedColor = 0x9B59B6
	// Discord rejects embed descriptions longer than this
	maxEmbedDescription = 4096
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

var strictURLs = xurls.Strict()

// imageExtractor picks an image for the starboard embed out of a message.
type imageExtractor func(message *models.DiscordMessage) (string, bool)

// imageExtractors are tried in order; the first match wins.
var imageExtractors = []imageExtractor{
	attachmentImage,
	embeddedImage,
	embeddedThumbnail,
	linkedImage,
}

func starCountContent(count int) string {
	return fmt.Sprintf("%s %s", humanize.Comma(int64(count)), models.StarEmoji)
}

func buildStarboardEmbed(message *models.DiscordMessage) *models.OutgoingEmbed {
	embed := &models.OutgoingEmbed{
		Color:         starboardEmbedColor,
		AuthorName:    message.Author.Username,
		AuthorIconURL: message.Author.AvatarURL,
		ImageURL:      extractImageURL(message),
		Fields: []models.DiscordEmbedField{
			{
				Name:  "Posted in",
				Value: fmt.Sprintf("[#%s (take me!)](%s)", message.ChannelName, message.JumpURL()),
			},
		},
		Timestamp: message.Timestamp,
	}

	if strings.TrimSpace(message.Content) != "" {
		embed.Description = utils.TruncateRunes(message.Content, maxEmbedDescription)
	}

	return embed
}

func extractImageURL(message *models.DiscordMessage) string {
	for _, extract := range imageExtractors {
		if imageURL, ok := extract(message); ok {
			return imageURL
		}
	}
	return ""
}

func attachmentImage(message *models.DiscordMessage) (string, bool) {
	for _, attachment := range message.Attachments {
		if attachment.ContentType != "" {
			if strings.HasPrefix(attachment.ContentType, "image/") {
				return attachment.URL, true
			}
			continue
		}
		if !linkIsNoImage(attachment.URL) {
			return attachment.URL, true
		}
	}
	return "", false
}

func embeddedImage(message *models.DiscordMessage) (string, bool) {
	for _, embed := range message.Embeds {
		if embed.ImageURL != "" {
			return embed.ImageURL, true
		}
	}
	return "", false
}

func embeddedThumbnail(message *models.DiscordMessage) (string, bool) {
	for _, embed := range message.Embeds {
		if embed.ThumbnailURL != "" {
			return embed.ThumbnailURL, true
		}
	}
	return "", false
}

func linkedImage(message *models.DiscordMessage) (string, bool) {
	for _, link := range strictURLs.FindAllString(message.Content, -1) {
		if !linkIsNoImage(link) {
			return link, true
		}
	}
	return "", false
}

// linkIsNoImage reports whether a link clearly does not point at an image, judged by its path extension.
func linkIsNoImage(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return true
	}
	return !imageExtensions[strings.ToLower(path.Ext(parsed.Path))]
}
