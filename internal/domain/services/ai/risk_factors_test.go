package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"phonetracer/internal/domain/models"
)

func TestScoreSpamVolume(t *testing.T) {
	tests := []struct {
		count   int
		points  int
		message string
	}{
		{0, 0, ""},
		{1, 8, "1 community report filed"},
		{2, 15, "Multiple community reports (2)"},
		{4, 15, "Multiple community reports (4)"},
		{5, 25, "High number of community reports (5)"},
		{9, 25, "High number of community reports (9)"},
		{10, 35, "Extremely high report volume (10 reports)"},
		{250, 35, "Extremely high report volume (250 reports)"},
	}

	prev := 0
	for _, tt := range tests {
		got := ScoreSpamVolume(tt.count)
		assert.Equal(t, tt.points, got.Points, "count %d", tt.count)
		if tt.message == "" {
			assert.Empty(t, got.Messages)
		} else {
			assert.Equal(t, []string{tt.message}, got.Messages)
		}
		assert.GreaterOrEqual(t, got.Points, prev, "monotone at %d", tt.count)
		prev = got.Points
	}
}

func TestScoreReportContent(t *testing.T) {
	t.Run("type total is capped", func(t *testing.T) {
		reports := []models.Report{{Type: "fraud"}, {Type: "scam"}}
		got := ScoreReportContent(reports)
		assert.Equal(t, 20, got.Points)
		assert.Empty(t, got.Messages)
	})

	t.Run("unknown and empty types count as five", func(t *testing.T) {
		reports := []models.Report{{Type: "weird"}, {Type: ""}}
		got := ScoreReportContent(reports)
		assert.Equal(t, 10, got.Points)
	})

	t.Run("type lookup is case insensitive", func(t *testing.T) {
		got := ScoreReportContent([]models.Report{{Type: "SPAM"}})
		assert.Equal(t, 8, got.Points)
	})

	t.Run("first severe keyword in list order is reported", func(t *testing.T) {
		// "bitcoin" appears first in the text, "bank" first in the list
		reports := []models.Report{{Type: "spam", Description: "Wanted bitcoin sent to my BANK"}}
		got := ScoreReportContent(reports)
		assert.Equal(t, 8+5, got.Points)
		assert.Equal(t, []string{"Severe keyword detected: 'bank' in report"}, got.Messages)
	})

	t.Run("moderate keyword only when no severe keyword", func(t *testing.T) {
		reports := []models.Report{
			{Type: "other", Description: "You are a WINNER, press 1"},
			{Type: "other", Description: "free prize but they wanted my account"},
		}
		got := ScoreReportContent(reports)
		// 5+5 type, +2 moderate, +5 severe
		assert.Equal(t, 17, got.Points)
		assert.Equal(t, []string{"Severe keyword detected: 'account' in report"}, got.Messages)
	})

	t.Run("no reports", func(t *testing.T) {
		got := ScoreReportContent(nil)
		assert.Zero(t, got.Points)
		assert.Empty(t, got.Messages)
	})
}

func TestScoreValidity(t *testing.T) {
	assert.Equal(t, FactorResult{}, ScoreValidity(models.TraceData{}))

	got := ScoreValidity(models.TraceData{Valid: models.BoolPtr(false), Possible: models.BoolPtr(false)})
	assert.Equal(t, 15, got.Points)
	assert.Equal(t, []string{"Number flagged as invalid/not active"}, got.Messages)

	got = ScoreValidity(models.TraceData{Valid: models.BoolPtr(true), Possible: models.BoolPtr(false)})
	assert.Equal(t, 10, got.Points)
	assert.Equal(t, []string{"Number format is not possible for this region"}, got.Messages)
}

func TestScoreLineType(t *testing.T) {
	tests := []struct {
		lineType string
		points   int
		messages int
	}{
		{"VoIP", 15, 1},
		{"voip", 15, 1},
		{"Premium Rate", 12, 1},
		{"Toll-Free", 5, 1},
		{"Landline", -3, 1},
		{"Landline/Mobile", -3, 1},
		{"Mobile", 0, 0},
		{"", 0, 0},
		{"Unknown", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.lineType, func(t *testing.T) {
			got := ScoreLineType(tt.lineType)
			assert.Equal(t, tt.points, got.Points)
			assert.Len(t, got.Messages, tt.messages)
		})
	}
}

func TestScoreCountry(t *testing.T) {
	got := ScoreCountry(models.TraceData{CountryCode: "NG", CountryName: "Nigeria"})
	assert.Equal(t, 15, got.Points)
	assert.Equal(t, []string{"Originates from high-risk telecom fraud region (Nigeria)"}, got.Messages)

	got = ScoreCountry(models.TraceData{CountryCode: "br"})
	assert.Equal(t, 8, got.Points)
	assert.Equal(t, []string{"Originates from medium-risk region (br)"}, got.Messages)

	got = ScoreCountry(models.TraceData{CountryCode: "US", CountryName: "United States"})
	assert.Zero(t, got.Points)
	assert.Equal(t, []string{"Country risk: normal (United States)"}, got.Messages)

	got = ScoreCountry(models.TraceData{})
	assert.Equal(t, []string{"Country risk: normal (Unknown)"}, got.Messages)
}

func TestScoreCarrier(t *testing.T) {
	assert.Equal(t, 10, ScoreCarrier("").Points)
	assert.Equal(t, 10, ScoreCarrier("unknown").Points)
	assert.Equal(t, 10, ScoreCarrier("Unknown").Points)

	got := ScoreCarrier("Bandwidth VoIP Services")
	assert.Equal(t, 8, got.Points)
	assert.Equal(t, []string{"Virtual/internet-based carrier detected: Bandwidth VoIP Services"}, got.Messages)

	assert.Equal(t, FactorResult{}, ScoreCarrier("AT&T"))
}

func TestScorePorting(t *testing.T) {
	got := ScorePorting("AT&T", "T-Mobile")
	assert.Equal(t, 5, got.Points)
	assert.Equal(t, []string{"Number was ported from AT&T to T-Mobile"}, got.Messages)

	assert.Equal(t, FactorResult{}, ScorePorting("AT&T", "AT&T"))
	assert.Equal(t, FactorResult{}, ScorePorting("", "T-Mobile"))
	assert.Equal(t, FactorResult{}, ScorePorting("AT&T", ""))
	assert.Equal(t, FactorResult{}, ScorePorting("AT&T", "unknown"))
}

func TestScoreAllIsPure(t *testing.T) {
	trace := models.TraceData{SpamReports: 3, LineType: "VoIP", CountryCode: "RU", Carrier: "Unknown"}
	reports := []models.Report{{Type: "scam", Description: "asked for gift card"}}

	first := ScoreAll(trace, reports)
	second := ScoreAll(trace, reports)
	assert.Equal(t, first, second)
	assert.Len(t, first, 7)
}
