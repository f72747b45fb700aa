package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

// ReportService accepts community reports about phone numbers
type ReportService struct {
	resolver  *PhoneResolver
	store     ReportStore
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewReportService creates a report service. publisher may be nil.
func NewReportService(resolver *PhoneResolver, store ReportStore, publisher EventPublisher, log *logger.Logger) *ReportService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ReportService{
		resolver:  resolver,
		store:     store,
		publisher: publisher,
		logger:    log.WithComponent("report-service"),
		now:       time.Now,
	}
}

// Submit stores a report and returns the total reports for the number
func (s *ReportService) Submit(ctx context.Context, number, reportType, description string) (int, error) {
	e164, err := s.resolver.Normalize(number)
	if err != nil {
		return 0, err
	}

	reportType = strings.ToLower(strings.TrimSpace(reportType))
	if reportType == "" {
		return 0, ErrEmptyReportType
	}

	report := &models.Report{
		ID:          uuid.New(),
		Number:      e164,
		Type:        reportType,
		Description: strings.TrimSpace(description),
		Timestamp:   s.now().UTC(),
	}

	total, err := s.store.Add(ctx, report)
	if err != nil {
		return 0, fmt.Errorf("failed to store report: %w", err)
	}

	metrics.RecordReport(reportType, slices.Contains(ai.KnownReportTypes(), reportType))

	log := s.logger.WithNumber(e164)
	if err := s.publisher.PublishReported(ctx, report, total); err != nil {
		log.Warn().Err(err).Msg("failed to publish report event")
	}

	log.Info().
		Str("type", reportType).
		Int("total", total).
		Msg("report submitted")

	return total, nil
}

// ReportsFor returns all reports for an E.164 number. An empty number has none.
func (s *ReportService) ReportsFor(ctx context.Context, e164 string) ([]models.Report, error) {
	if e164 == "" {
		return nil, nil
	}
	reports, err := s.store.ListByNumber(ctx, e164)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	return reports, nil
}
