package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"sorabackend/core"
	dbtx "sorabackend/db/tx"
	"sorabackend/models"
)

type PostgresStarboardRepository struct {
	db     *sqlx.DB
	schema string
}

var starboardConfigColumns = []string{
	"id",
	"guild_id",
	"channel_id",
	"threshold",
	"created_at",
	"updated_at",
}

var starboardMessageColumns = []string{
	"id",
	"guild_id",
	"message_id",
	"posted_message_id",
	"created_at",
	"updated_at",
}

func NewPostgresStarboardRepository(db *sqlx.DB, schema string) *PostgresStarboardRepository {
	return &PostgresStarboardRepository{db: db, schema: schema}
}

func (r *PostgresStarboardRepository) UpsertStarboardConfig(
	ctx context.Context,
	guildID, channelID string,
	threshold int,
) (*models.StarboardConfig, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	id := core.NewID(core.StarboardConfigIDPrefix)
	returningStr := strings.Join(starboardConfigColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.guild_starboards (id, guild_id, channel_id, threshold)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id)
		DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			threshold = EXCLUDED.threshold,
			updated_at = NOW()
		RETURNING %s
	`, r.schema, returningStr)

	var config models.StarboardConfig
	err := db.QueryRowxContext(ctx, query, id, guildID, channelID, threshold).StructScan(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert starboard config: %w", err)
	}

	return &config, nil
}

func (r *PostgresStarboardRepository) GetStarboardConfig(ctx context.Context, guildID string) (*models.StarboardConfig, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.guild_starboards
		WHERE guild_id = $1
	`, strings.Join(starboardConfigColumns, ", "), r.schema)

	var config models.StarboardConfig
	err := db.GetContext(ctx, &config, query, guildID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("starboard config for guild %s: %w", guildID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get starboard config: %w", err)
	}

	return &config, nil
}

func (r *PostgresStarboardRepository) DeleteStarboardConfig(ctx context.Context, guildID string) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`DELETE FROM %s.guild_starboards WHERE guild_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete starboard config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresStarboardRepository) UpsertStarboardMessage(
	ctx context.Context,
	guildID, messageID, postedMessageID string,
) (*models.StarboardMessage, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	id := core.NewID(core.StarboardMessageIDPrefix)
	returningStr := strings.Join(starboardMessageColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.starboard_messages (id, guild_id, message_id, posted_message_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id)
		DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			posted_message_id = EXCLUDED.posted_message_id,
			updated_at = NOW()
		RETURNING %s
	`, r.schema, returningStr)

	var message models.StarboardMessage
	err := db.QueryRowxContext(ctx, query, id, guildID, messageID, postedMessageID).StructScan(&message)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert starboard message: %w", err)
	}

	return &message, nil
}

func (r *PostgresStarboardRepository) GetStarboardMessage(ctx context.Context, messageID string) (*models.StarboardMessage, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.starboard_messages
		WHERE message_id = $1
	`, strings.Join(starboardMessageColumns, ", "), r.schema)

	var message models.StarboardMessage
	err := db.GetContext(ctx, &message, query, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("starboard message %s: %w", messageID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get starboard message: %w", err)
	}

	return &message, nil
}

func (r *PostgresStarboardRepository) DeleteStarboardMessage(ctx context.Context, messageID string) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`DELETE FROM %s.starboard_messages WHERE message_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to delete starboard message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresStarboardRepository) DeleteStarboardMessagesByGuild(ctx context.Context, guildID string) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`DELETE FROM %s.starboard_messages WHERE guild_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete guild starboard messages: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *PostgresStarboardRepository) CountStarboardMessages(ctx context.Context, guildID string) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.starboard_messages WHERE guild_id = $1`, r.schema)

	var count int
	if err := db.GetContext(ctx, &count, query, guildID); err != nil {
		return 0, fmt.Errorf("failed to count starboard messages: %w", err)
	}

	return count, nil
}
