package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/infrastructure/database"
)

// HistoryRepository stores the lookup history
type HistoryRepository struct {
	db    *database.PostgresDB
	limit int
}

// NewHistoryRepository creates a history repository keeping at most limit entries
func NewHistoryRepository(db *database.PostgresDB, limit int) *HistoryRepository {
	if limit <= 0 {
		limit = 50
	}
	return &HistoryRepository{db: db, limit: limit}
}

// Add records a lookup and drops entries beyond the retention limit
func (r *HistoryRepository) Add(ctx context.Context, e models.HistoryEntry) error {
	err := r.db.WithTx(ctx, func(q database.DBTX) error {
		_, err := q.Exec(ctx, `
			INSERT INTO lookup_history (number, formatted, country, flag, carrier, line_type, location, valid, looked_up_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.Number, e.Formatted, e.Country, e.Flag, e.Carrier, e.LineType, e.Location, e.Valid, e.Timestamp,
		)
		if err != nil {
			return err
		}

		_, err = q.Exec(ctx, `
			DELETE FROM lookup_history
			WHERE id NOT IN (
				SELECT id FROM lookup_history ORDER BY looked_up_at DESC, id DESC LIMIT $1
			)`, r.limit)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	rows, err := r.db.Querier().Query(ctx, `
		SELECT number, formatted, country, flag, carrier, line_type, location, valid, looked_up_at
		FROM lookup_history
		ORDER BY looked_up_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.HistoryEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}
