package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/infrastructure/database"
)

// ReportRepository handles community report persistence
type ReportRepository struct {
	db *database.PostgresDB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.PostgresDB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Add inserts a report and returns the number of reports now filed for its number
func (r *ReportRepository) Add(ctx context.Context, report *models.Report) (int, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}

	var total int
	err := r.db.WithTx(ctx, func(q database.DBTX) error {
		if err := insertReport(ctx, q, report); err != nil {
			return err
		}
		n, err := countReports(ctx, q, report.Number)
		total = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add report: %w", err)
	}

	return total, nil
}

// ListByNumber returns every report for an E.164 number, oldest first
func (r *ReportRepository) ListByNumber(ctx context.Context, number string) ([]models.Report, error) {
	rows, err := r.db.Querier().Query(ctx, `
		SELECT id, number, type, description, reported_at
		FROM reports
		WHERE number = $1
		ORDER BY reported_at ASC, id ASC`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Report])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reports: %w", err)
	}
	return reports, nil
}

// Ping checks the database connection
func (r *ReportRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func insertReport(ctx context.Context, q database.DBTX, report *models.Report) error {
	_, err := q.Exec(ctx, `
		INSERT INTO reports (id, number, type, description, reported_at)
		VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.Number, report.Type, report.Description, report.Timestamp,
	)
	return err
}

func countReports(ctx context.Context, q database.DBTX, number string) (int, error) {
	var total int
	err := q.QueryRow(ctx, `SELECT count(*) FROM reports WHERE number = $1`, number).Scan(&total)
	return total, err
}
