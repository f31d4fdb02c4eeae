package settingsrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beforest/brandvoice/internal/domain/settings"
)

// PostgresRepository stores records in beforest_settings.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (settings.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT setting_key, setting_value, COALESCE(updated_by, ''), updated_at
		FROM beforest_settings
		WHERE setting_key = $1
	`, key)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Record{}, false, nil
		}
		return settings.Record{}, false, err
	}
	return record, true, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, record settings.Record) (settings.Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO beforest_settings (setting_key, setting_value, updated_by, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (setting_key) DO UPDATE
		SET setting_value = EXCLUDED.setting_value,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
		RETURNING setting_key, setting_value, COALESCE(updated_by, ''), updated_at
	`, record.Key, []byte(record.Value), record.UpdatedBy, record.UpdatedAt)
	return scanRecord(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]settings.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT setting_key, setting_value, COALESCE(updated_by, ''), updated_at
		FROM beforest_settings
		ORDER BY setting_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]settings.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (settings.Record, error) {
	var (
		record settings.Record
		value  []byte
	)
	if err := row.Scan(&record.Key, &value, &record.UpdatedBy, &record.UpdatedAt); err != nil {
		return settings.Record{}, err
	}
	record.Value = value
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

var _ settings.Repository = (*PostgresRepository)(nil)
