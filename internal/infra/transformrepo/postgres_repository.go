package transformrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beforest/brandvoice/internal/domain/transform"
)

const transformationColumns = `id, user_id, COALESCE(user_email, ''), original_content, transformed_content,
	content_type, target_audience, COALESCE(additional_context, ''), original_length, transformed_length,
	length_change_percent, justification, transformation_quality_score, user_feedback, processing_time_ms,
	COALESCE(api_model_used, ''), COALESCE(user_ip, ''), COALESCE(user_agent, ''), COALESCE(session_id, ''),
	created_at, updated_at`

// PostgresRepository persists transformations in beforest_transformations.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, t transform.Transformation) (transform.Transformation, error) {
	justification, err := json.Marshal(t.Justification)
	if err != nil {
		return transform.Transformation{}, fmt.Errorf("encode justification: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO beforest_transformations (
			id, user_id, user_email, original_content, transformed_content, content_type, target_audience,
			additional_context, original_length, transformed_length, length_change_percent, justification,
			transformation_quality_score, user_feedback, processing_time_ms, api_model_used, user_ip,
			user_agent, session_id, created_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15,
			NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''), $20, $21)
		RETURNING `+transformationColumns,
		t.ID, t.UserID, t.UserEmail, t.OriginalContent, t.TransformedContent, t.ContentType, t.TargetAudience,
		t.AdditionalContext, t.OriginalLength, t.TransformedLength, t.LengthChangePercent, justification,
		t.QualityScore, t.UserFeedback, t.ProcessingTimeMs, t.APIModelUsed, t.UserIP,
		t.UserAgent, t.SessionID, t.CreatedAt, t.UpdatedAt,
	)
	return scanTransformation(row)
}

func (r *PostgresRepository) List(ctx context.Context, filter transform.Filter) ([]transform.Transformation, error) {
	where, args := buildWhere(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM beforest_transformations
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, transformationColumns, where, len(args)-1, len(args))
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter transform.Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM beforest_transformations WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *PostgresRepository) SetFeedback(ctx context.Context, id string, userID int64, feedback int, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE beforest_transformations
		SET user_feedback = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`, id, userID, feedback, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]transform.Transformation, error) {
	return r.query(ctx, `
		SELECT `+transformationColumns+`
		FROM beforest_transformations
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, userID, since)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]transform.Transformation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]transform.Transformation, 0)
	for rows.Next() {
		t, err := scanTransformation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func buildWhere(filter transform.Filter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{filter.UserID}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		clauses = append(clauses, fmt.Sprintf("content_type = $%d", len(args)))
	}
	if filter.TargetAudience != "" {
		args = append(args, filter.TargetAudience)
		clauses = append(clauses, fmt.Sprintf("target_audience = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransformation(row rowScanner) (transform.Transformation, error) {
	var (
		t             transform.Transformation
		justification []byte
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.UserEmail, &t.OriginalContent, &t.TransformedContent,
		&t.ContentType, &t.TargetAudience, &t.AdditionalContext, &t.OriginalLength, &t.TransformedLength,
		&t.LengthChangePercent, &justification, &t.QualityScore, &t.UserFeedback, &t.ProcessingTimeMs,
		&t.APIModelUsed, &t.UserIP, &t.UserAgent, &t.SessionID,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return transform.Transformation{}, err
	}
	if len(justification) > 0 {
		if err := json.Unmarshal(justification, &t.Justification); err != nil {
			return transform.Transformation{}, fmt.Errorf("decode justification: %w", err)
		}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

var _ transform.Repository = (*PostgresRepository)(nil)
