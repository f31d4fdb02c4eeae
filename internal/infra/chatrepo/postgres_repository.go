package chatrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beforest/brandvoice/internal/domain/chat"
)

const (
	conversationColumns = `id, user_id, title, mode, created_at, last_activity, is_archived`
	messageColumns      = `id, conversation_id, role, content, metadata, timestamp, token_count`
)

// PostgresRepository persists conversations and messages in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateConversation(ctx context.Context, conv chat.Conversation) (chat.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id, title, mode, created_at, last_activity, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+conversationColumns,
		conv.ID, conv.UserID, conv.Title, conv.Mode, conv.CreatedAt, conv.LastActivity, conv.IsArchived)
	return scanConversation(row)
}

func (r *PostgresRepository) GetConversation(ctx context.Context, id string) (chat.Conversation, bool, error) {
	conv, err := scanConversation(r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return chat.Conversation{}, false, nil
		}
		return chat.Conversation{}, false, err
	}
	return conv, true, nil
}

func (r *PostgresRepository) ListConversations(ctx context.Context, userID int64) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]chat.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id, title string) (chat.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE conversations SET title = $2
		WHERE id = $1
		RETURNING `+conversationColumns, id, title)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, fmt.Errorf("conversation %s not found", id)
	}
	return conv, err
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE conversations SET last_activity = $2 WHERE id = $1`, id, at)
	return err
}

// DeleteConversation relies on ON DELETE CASCADE for messages.
func (r *PostgresRepository) DeleteConversation(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	var metadata any
	if len(msg.Metadata) > 0 {
		metadata = []byte(msg.Metadata)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, metadata, timestamp, token_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+messageColumns,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, metadata, msg.Timestamp, msg.TokenCount)
	return scanMessage(row)
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	return r.queryMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC, seq ASC
	`, conversationID)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		return r.ListMessages(ctx, conversationID)
	}
	return r.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+`, seq
			FROM messages
			WHERE conversation_id = $1
			ORDER BY timestamp DESC, seq DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC, seq ASC
	`, conversationID, limit)
}

func (r *PostgresRepository) queryMessages(ctx context.Context, query string, args ...any) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]chat.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (chat.Conversation, error) {
	var conv chat.Conversation
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.Mode, &conv.CreatedAt, &conv.LastActivity, &conv.IsArchived); err != nil {
		return chat.Conversation{}, err
	}
	conv.CreatedAt = conv.CreatedAt.UTC()
	conv.LastActivity = conv.LastActivity.UTC()
	return conv, nil
}

func scanMessage(row rowScanner) (chat.Message, error) {
	var (
		msg      chat.Message
		metadata []byte
	)
	if err := row.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &metadata, &msg.Timestamp, &msg.TokenCount); err != nil {
		return chat.Message{}, err
	}
	if len(metadata) > 0 {
		msg.Metadata = metadata
	}
	msg.Timestamp = msg.Timestamp.UTC()
	return msg, nil
}

var _ chat.Repository = (*PostgresRepository)(nil)
