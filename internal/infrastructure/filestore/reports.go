package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"phonetracer/internal/domain/models"
)

// ReportStore keeps all reports in a single JSON array file
type ReportStore struct {
	mu   sync.Mutex
	path string
}

// NewReportStore creates a store backed by dir/file
func NewReportStore(dir, file string) *ReportStore {
	return &ReportStore{path: filepath.Join(dir, file)}
}

// Add appends a report and returns the number of reports for its number
func (s *ReportStore) Add(_ context.Context, report *models.Report) (int, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := loadJSON[models.Report](s.path)
	if err != nil {
		return 0, err
	}
	reports = append(reports, *report)
	if err := saveJSON(s.path, reports); err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	total := 0
	for _, r := range reports {
		if r.Number == report.Number {
			total++
		}
	}
	return total, nil
}

// ListByNumber returns the reports for an E.164 number in insertion order
func (s *ReportStore) ListByNumber(_ context.Context, number string) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := loadJSON[models.Report](s.path)
	if err != nil {
		return nil, err
	}

	var out []models.Report
	for _, r := range reports {
		if r.Number == number {
			out = append(out, r)
		}
	}
	return out, nil
}

// Ping checks that the data directory is usable
func (s *ReportStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	return nil
}
