package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	loggerNameKey = "logger"
)

var discordgoLogLevels = map[int]slog.Level{
	discordgo.LogDebug:         slog.LevelDebug,
	discordgo.LogInformational: slog.LevelInfo,
	discordgo.LogWarning:       slog.LevelWarn,
	discordgo.LogError:         slog.LevelError,
}

func ParseLevel(level string) (slog.Level, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// NewHandler builds the process log handler: tint for humans, JSON for log shippers.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		}), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// Init installs the default slog logger and routes discordgo's logging through it.
func Init(w io.Writer, level, format string) error {
	parsedLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	handler, err := NewHandler(w, parsedLevel, format)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))
	discordgo.Logger = DiscordgoLogger(context.Background(),
		handler.WithAttrs([]slog.Attr{slog.String(loggerNameKey, "discordgo")}))
	return nil
}

// DiscordgoLogger adapts a slog handler to discordgo's package level Logger hook.
func DiscordgoLogger(ctx context.Context, handler slog.Handler) func(msgL, caller int, format string, a ...any) {
	logger := slog.New(handler)
	return func(msgL, _ int, format string, a ...any) {
		level, ok := discordgoLogLevels[msgL]
		if !ok {
			level = slog.LevelInfo
		}
		logger.LogAttrs(ctx, level, strings.ReplaceAll(fmt.Sprintf(format, a...), "\n", ""))
	}
}
