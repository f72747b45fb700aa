package streaming

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"phonetracer/internal/domain/models"
)

// EventType is the type of a phone event. Values double as NATS subjects.
type EventType string

const (
	EventTypeTraced   EventType = "phone.traced"
	EventTypeReported EventType = "phone.reported"
	EventTypeAnalyzed EventType = "phone.analyzed"
)

// PhoneEvent is a real-time notification about a phone number
type PhoneEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Number    string    `json:"number"` // E.164

	// Trace details
	Valid       *bool  `json:"valid,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	LineType    string `json:"line_type,omitempty"`
	Carrier     string `json:"carrier,omitempty"`
	SpamReports int    `json:"spam_reports,omitempty"`

	// Report details
	ReportType   string `json:"report_type,omitempty"`
	TotalReports int    `json:"total_reports,omitempty"`

	// Analysis details
	RiskScore  int               `json:"risk_score,omitempty"`
	RiskLevel  models.RiskLevel  `json:"risk_level,omitempty"`
	ThreatType models.ThreatType `json:"threat_type,omitempty"`
	AISource   models.AISource   `json:"ai_source,omitempty"`
}

func newEvent(t EventType, number string) *PhoneEvent {
	return &PhoneEvent{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Number:    number,
	}
}

// NewTracedEvent creates an event for a completed trace
func NewTracedEvent(trace *models.TraceData) *PhoneEvent {
	e := newEvent(EventTypeTraced, trace.E164)
	e.Valid = models.BoolPtr(trace.IsValid())
	e.CountryCode = trace.CountryCode
	e.LineType = trace.LineType
	e.Carrier = trace.Carrier
	e.SpamReports = trace.SpamReports
	return e
}

// NewReportedEvent creates an event for a submitted report
func NewReportedEvent(report *models.Report, total int) *PhoneEvent {
	e := newEvent(EventTypeReported, report.Number)
	e.ReportType = report.NormalizedType()
	e.TotalReports = total
	return e
}

// NewAnalyzedEvent creates an event for a completed risk analysis
func NewAnalyzedEvent(number string, result *models.AnalysisResult) *PhoneEvent {
	e := newEvent(EventTypeAnalyzed, number)
	e.RiskScore = result.RiskScore
	e.RiskLevel = result.RiskLevel
	e.ThreatType = result.ThreatType
	e.AISource = result.AISource
	return e
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Filter by numbers in E.164 form (empty = all)
	Numbers []string `json:"numbers,omitempty"`

	// Only analysis events at or above this score
	MinRiskScore int `json:"min_risk_score,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *PhoneEvent) bool {
	if s == nil {
		return true
	}
	if len(s.Types) > 0 && !slices.Contains(s.Types, event.Type) {
		return false
	}
	if len(s.Numbers) > 0 && !slices.Contains(s.Numbers, event.Number) {
		return false
	}
	if s.MinRiskScore > 0 && event.Type == EventTypeAnalyzed && event.RiskScore < s.MinRiskScore {
		return false
	}
	return true
}
