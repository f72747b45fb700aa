package services

import (
	"context"
	"errors"
	"sync"

	"phonetracer/internal/domain/models"
)

// memReportStore is an in-memory ReportStore for tests
type memReportStore struct {
	mu      sync.Mutex
	reports []models.Report
	err     error
}

func (s *memReportStore) Add(_ context.Context, r *models.Report) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.reports = append(s.reports, *r)
	total := 0
	for _, existing := range s.reports {
		if existing.Number == r.Number {
			total++
		}
	}
	return total, nil
}

func (s *memReportStore) ListByNumber(_ context.Context, number string) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Report
	for _, r := range s.reports {
		if r.Number == number {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memReportStore) Ping(context.Context) error { return s.err }

// memHistoryStore is an in-memory HistoryStore for tests
type memHistoryStore struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
	err     error
}

func (s *memHistoryStore) Add(_ context.Context, e models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append([]models.HistoryEntry{e}, s.entries...)
	return nil
}

func (s *memHistoryStore) Recent(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu       sync.Mutex
	traced   []string
	reported []string
	analyzed []string
	err      error
}

func (p *recordingPublisher) PublishTraced(_ context.Context, t *models.TraceData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.traced = append(p.traced, t.E164)
	return p.err
}

func (p *recordingPublisher) PublishReported(_ context.Context, r *models.Report, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reported = append(p.reported, r.Number)
	return p.err
}

func (p *recordingPublisher) PublishAnalyzed(_ context.Context, number string, _ *models.AnalysisResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyzed = append(p.analyzed, number)
	return p.err
}

// fakeLookup is a CarrierLookup returning a fixed answer
type fakeLookup struct {
	mu    sync.Mutex
	info  *LiveCarrierInfo
	err   error
	calls int
}

func (f *fakeLookup) Lookup(context.Context, string) (*LiveCarrierInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.info, f.err
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errStoreDown = errors.New("store down")
