package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

const (
	// tracedReportsShown is how many of the newest reports a trace carries
	tracedReportsShown = 5

	// RecentLookups is the number of history entries served by Recent
	RecentLookups = 20
)

// TraceService resolves numbers, attaches community reports and records
// the lookup history.
type TraceService struct {
	resolver  *PhoneResolver
	reports   ReportStore
	history   HistoryStore
	cache     cache.Cache
	ttl       time.Duration
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewTraceService creates a trace service. cache and publisher may be nil.
func NewTraceService(
	resolver *PhoneResolver,
	reports ReportStore,
	history HistoryStore,
	c cache.Cache,
	ttl time.Duration,
	publisher EventPublisher,
	log *logger.Logger,
) *TraceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &TraceService{
		resolver:  resolver,
		reports:   reports,
		history:   history,
		cache:     c,
		ttl:       ttl,
		publisher: publisher,
		logger:    log.WithComponent("trace-service"),
		now:       time.Now,
	}
}

// Trace resolves raw and returns its metadata with spam report counts
func (s *TraceService) Trace(ctx context.Context, raw string) (*models.TraceData, error) {
	trace, err := s.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	reports, err := s.reports.ListByNumber(ctx, trace.E164)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	trace.SpamReports = len(reports)
	trace.Reports = lastReports(reports, tracedReportsShown)

	log := s.logger.WithNumber(trace.E164)
	if err := s.history.Add(ctx, models.NewHistoryEntry(trace, s.now())); err != nil {
		// history is best effort; the trace itself succeeded
		log.Warn().Err(err).Msg("failed to record lookup history")
	}

	metrics.RecordTrace(trace.IsValid())

	if err := s.publisher.PublishTraced(ctx, trace); err != nil {
		log.Warn().Err(err).Msg("failed to publish trace event")
	}

	log.Info().
		Bool("valid", trace.IsValid()).
		Str("line_type", trace.LineType).
		Int("spam_reports", trace.SpamReports).
		Msg("number traced")

	return trace, nil
}

// resolve returns cached metadata for the number or resolves it afresh
func (s *TraceService) resolve(ctx context.Context, raw string) (*models.TraceData, error) {
	if s.cache == nil {
		return s.resolver.Resolve(ctx, raw)
	}

	e164, err := s.resolver.Normalize(raw)
	if err != nil {
		return nil, err
	}

	var cached models.TraceData
	err = s.cache.GetJSON(ctx, cache.TraceKey(e164), &cached)
	if err == nil {
		cached.Number = cleanedInput(raw)
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Debug().Err(err).Msg("trace cache read failed")
	}

	trace, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.TraceKey(e164), trace, s.ttl); err != nil {
		s.logger.Debug().Err(err).Msg("trace cache write failed")
	}
	return trace, nil
}

// Recent returns the newest lookup history entries
func (s *TraceService) Recent(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.history.Recent(ctx, RecentLookups)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

func lastReports(reports []models.Report, n int) []models.Report {
	if len(reports) > n {
		return reports[len(reports)-n:]
	}
	return reports
}

func cleanedInput(raw string) string {
	_, cleaned, _ := parseNumber(raw)
	return cleaned
}
