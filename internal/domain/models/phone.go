package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults substituted for missing trace fields
const (
	UnknownValue = "Unknown"
)

// Carrier source values
const (
	CarrierSourceOffline = "offline" // resolved from the bundled numbering metadata
	CarrierSourceLive    = "live"    // resolved from a live carrier lookup
)

// TraceData is the resolved metadata of a phone number. Every field is
// optional: callers may post partial documents, so accessors substitute
// neutral defaults instead of failing.
type TraceData struct {
	Number                 string   `json:"number,omitempty"`
	FormattedInternational string   `json:"formatted_international,omitempty"`
	FormattedNational      string   `json:"formatted_national,omitempty"`
	E164                   string   `json:"e164,omitempty"`
	Valid                  *bool    `json:"valid,omitempty"`
	Possible               *bool    `json:"possible,omitempty"`
	CountryCode            string   `json:"country_code,omitempty"`
	CountryName            string   `json:"country_name,omitempty"`
	Flag                   string   `json:"flag,omitempty"`
	Location               string   `json:"location,omitempty"`
	Carrier                string   `json:"carrier,omitempty"`
	OriginalCarrier        string   `json:"original_carrier,omitempty"`
	CarrierSource          string   `json:"carrier_source,omitempty"`
	LineType               string   `json:"line_type,omitempty"`
	Timezones              []string `json:"timezones,omitempty"`
	SpamReports            int      `json:"spam_reports"`
	Reports                []Report `json:"reports,omitempty"` // newest matching reports
}

// IsValid reports the validity flag, true when absent
func (t TraceData) IsValid() bool {
	return t.Valid == nil || *t.Valid
}

// IsPossible reports the possibility flag, true when absent
func (t TraceData) IsPossible() bool {
	return t.Possible == nil || *t.Possible
}

// DisplayNumber returns the best human-readable form of the number
func (t TraceData) DisplayNumber() string {
	switch {
	case t.FormattedInternational != "":
		return t.FormattedInternational
	case t.Number != "":
		return t.Number
	default:
		return UnknownValue
	}
}

// DisplayCountry returns the country name or "Unknown"
func (t TraceData) DisplayCountry() string {
	return orUnknown(t.CountryName)
}

// DisplayCarrier returns the carrier or "Unknown"
func (t TraceData) DisplayCarrier() string {
	return orUnknown(t.Carrier)
}

// DisplayLineType returns the line type label or "Unknown"
func (t TraceData) DisplayLineType() string {
	return orUnknown(t.LineType)
}

// RegionLabel names the origin region, preferring the country name over the code
func (t TraceData) RegionLabel() string {
	if t.CountryName != "" {
		return t.CountryName
	}
	return t.CountryCode
}

// HasKnownCarrier is false for a blank or "Unknown" carrier
func (t TraceData) HasKnownCarrier() bool {
	c := strings.TrimSpace(t.Carrier)
	return c != "" && !strings.EqualFold(c, UnknownValue)
}

// BoolPtr is a helper for building TraceData literals
func BoolPtr(b bool) *bool {
	return &b
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

// Report is one community submission about a phone number
type Report struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Number      string    `json:"number" db:"number"` // E.164
	Type        string    `json:"type" db:"type"`     // spam, scam, fraud, phishing, harassment, robocall, telemarketer, other
	Description string    `json:"description" db:"description"`
	Timestamp   time.Time `json:"timestamp" db:"reported_at"`
}

// NormalizedType returns the lower-cased report type, "other" when empty
func (r Report) NormalizedType() string {
	t := strings.ToLower(strings.TrimSpace(r.Type))
	if t == "" {
		return "other"
	}
	return t
}

// HistoryEntry records a single number lookup
type HistoryEntry struct {
	Number    string    `json:"number" db:"number"`
	Formatted string    `json:"formatted" db:"formatted"`
	Country   string    `json:"country" db:"country"`
	Flag      string    `json:"flag" db:"flag"`
	Carrier   string    `json:"carrier" db:"carrier"`
	LineType  string    `json:"line_type" db:"line_type"`
	Location  string    `json:"location" db:"location"`
	Valid     bool      `json:"valid" db:"valid"`
	Timestamp time.Time `json:"timestamp" db:"looked_up_at"`
}

// NewHistoryEntry builds a history entry from a trace
func NewHistoryEntry(t *TraceData, at time.Time) HistoryEntry {
	return HistoryEntry{
		Number:    t.E164,
		Formatted: t.FormattedInternational,
		Country:   t.CountryName,
		Flag:      t.Flag,
		Carrier:   t.Carrier,
		LineType:  t.LineType,
		Location:  t.Location,
		Valid:     t.IsValid(),
		Timestamp: at.UTC(),
	}
}
