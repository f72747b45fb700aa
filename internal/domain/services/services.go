package services

import (
	"context"
	"errors"

	"phonetracer/internal/domain/models"
)

var (
	// ErrInvalidNumber is returned when a number cannot be parsed
	ErrInvalidNumber = errors.New("invalid phone number format")

	// ErrEmptyReportType is returned when a report has no type
	ErrEmptyReportType = errors.New("report type is required")
)

// ReportStore defines the interface for community report storage
type ReportStore interface {
	// Add stores a report and returns the number of reports for its number
	Add(ctx context.Context, report *models.Report) (int, error)

	// ListByNumber returns all reports for an E.164 number, oldest first
	ListByNumber(ctx context.Context, number string) ([]models.Report, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// HistoryStore defines the interface for lookup history storage
type HistoryStore interface {
	// Add records a lookup
	Add(ctx context.Context, entry models.HistoryEntry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// EventPublisher defines the interface for publishing phone events
type EventPublisher interface {
	// PublishTraced publishes an event for a completed trace
	PublishTraced(ctx context.Context, trace *models.TraceData) error

	// PublishReported publishes an event for a submitted report
	PublishReported(ctx context.Context, report *models.Report, total int) error

	// PublishAnalyzed publishes an event for a completed risk analysis
	PublishAnalyzed(ctx context.Context, number string, result *models.AnalysisResult) error
}

type nopPublisher struct{}

func (nopPublisher) PublishTraced(context.Context, *models.TraceData) error { return nil }
func (nopPublisher) PublishReported(context.Context, *models.Report, int) error {
	return nil
}
func (nopPublisher) PublishAnalyzed(context.Context, string, *models.AnalysisResult) error {
	return nil
}
