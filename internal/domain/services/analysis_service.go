package services

import (
	"context"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/pkg/logger"
)

// AnalysisService runs risk analysis over a trace and the stored reports for it
type AnalysisService struct {
	analyzer  *ai.Analyzer
	reports   *ReportService
	publisher EventPublisher
	logger    *logger.Logger
}

// NewAnalysisService creates an analysis service. publisher may be nil.
func NewAnalysisService(analyzer *ai.Analyzer, reports *ReportService, publisher EventPublisher, log *logger.Logger) *AnalysisService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &AnalysisService{
		analyzer:  analyzer,
		reports:   reports,
		publisher: publisher,
		logger:    log.WithComponent("analysis-service"),
	}
}

// Analyze scores a trace. Reports are looked up by the trace's E.164 number.
func (s *AnalysisService) Analyze(ctx context.Context, trace models.TraceData) (*models.AnalysisResult, error) {
	reports, err := s.reports.ReportsFor(ctx, trace.E164)
	if err != nil {
		return nil, err
	}

	result := s.analyzer.Analyze(ctx, trace, reports)

	if trace.E164 != "" {
		if err := s.publisher.PublishAnalyzed(ctx, trace.E164, &result); err != nil {
			s.logger.WithNumber(trace.E164).Warn().Err(err).Msg("failed to publish analysis event")
		}
	}

	return &result, nil
}
