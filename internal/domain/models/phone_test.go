package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceDataDefaults(t *testing.T) {
	var empty TraceData
	assert.True(t, empty.IsValid())
	assert.True(t, empty.IsPossible())
	assert.Equal(t, UnknownValue, empty.DisplayNumber())
	assert.Equal(t, UnknownValue, empty.DisplayCountry())
	assert.Equal(t, UnknownValue, empty.DisplayCarrier())
	assert.Equal(t, UnknownValue, empty.DisplayLineType())
	assert.False(t, empty.HasKnownCarrier())

	trace := TraceData{
		Number:      "14158586273",
		Valid:       BoolPtr(false),
		CountryCode: "US",
		Carrier:     "unknown",
	}
	assert.False(t, trace.IsValid())
	assert.Equal(t, "14158586273", trace.DisplayNumber())
	assert.Equal(t, "US", trace.RegionLabel())
	assert.False(t, trace.HasKnownCarrier())

	trace.FormattedInternational = "+1 415-858-6273"
	trace.CountryName = "United States"
	assert.Equal(t, "+1 415-858-6273", trace.DisplayNumber())
	assert.Equal(t, "United States", trace.RegionLabel())
}

func TestTraceDataPartialJSON(t *testing.T) {
	var trace TraceData
	require.NoError(t, json.Unmarshal([]byte(`{"e164":"+447911123456","spam_reports":3}`), &trace))
	assert.Nil(t, trace.Valid)
	assert.True(t, trace.IsValid())
	assert.Equal(t, 3, trace.SpamReports)
}

func TestTraceDataLenientJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, trace TraceData)
	}{
		{"spam_reports as string", `{"spam_reports":"3"}`, func(t *testing.T, trace TraceData) {
			assert.Equal(t, 3, trace.SpamReports)
		}},
		{"spam_reports as whole float", `{"spam_reports":4.0}`, func(t *testing.T, trace TraceData) {
			assert.Equal(t, 4, trace.SpamReports)
		}},
		{"spam_reports fractional", `{"spam_reports":2.5}`, func(t *testing.T, trace TraceData) {
			assert.Zero(t, trace.SpamReports)
		}},
		{"spam_reports negative", `{"spam_reports":-1}`, func(t *testing.T, trace TraceData) {
			assert.Zero(t, trace.SpamReports)
		}},
		{"spam_reports object", `{"spam_reports":{"n":1},"carrier":"BT"}`, func(t *testing.T, trace TraceData) {
			assert.Zero(t, trace.SpamReports)
			assert.Equal(t, "BT", trace.Carrier)
		}},
		{"valid as string", `{"valid":"false"}`, func(t *testing.T, trace TraceData) {
			require.NotNil(t, trace.Valid)
			assert.False(t, trace.IsValid())
		}},
		{"valid unparseable", `{"valid":"yes"}`, func(t *testing.T, trace TraceData) {
			assert.Nil(t, trace.Valid)
			assert.True(t, trace.IsValid())
		}},
		{"valid null", `{"valid":null}`, func(t *testing.T, trace TraceData) {
			assert.Nil(t, trace.Valid)
		}},
		{"possible as number", `{"possible":1}`, func(t *testing.T, trace TraceData) {
			assert.Nil(t, trace.Possible)
		}},
		{"timezones as string", `{"timezones":"Europe/London"}`, func(t *testing.T, trace TraceData) {
			assert.Equal(t, []string{"Europe/London"}, trace.Timezones)
		}},
		{"timezones mixed", `{"timezones":["America/New_York",7,null]}`, func(t *testing.T, trace TraceData) {
			assert.Equal(t, []string{"America/New_York"}, trace.Timezones)
		}},
		{"country_code as number", `{"country_code":44}`, func(t *testing.T, trace TraceData) {
			assert.Equal(t, "44", trace.CountryCode)
		}},
		{"reports with a bad entry", `{"reports":[{"type":"scam"},{"timestamp":"yesterday"},"x"]}`, func(t *testing.T, trace TraceData) {
			require.Len(t, trace.Reports, 1)
			assert.Equal(t, "scam", trace.Reports[0].Type)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trace TraceData
			require.NoError(t, json.Unmarshal([]byte(tt.body), &trace))
			tt.check(t, trace)
		})
	}
}

func TestTraceDataRejectsNonObject(t *testing.T) {
	var trace TraceData
	assert.Error(t, json.Unmarshal([]byte(`"+14158586273"`), &trace))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &trace))

	var ptr *TraceData
	require.NoError(t, json.Unmarshal([]byte(`null`), &ptr))
	assert.Nil(t, ptr)
}

func TestTraceDataJSONRoundTrip(t *testing.T) {
	in := TraceData{
		E164:        "+442071838750",
		Valid:       BoolPtr(true),
		CountryCode: "GB",
		Carrier:     "BT",
		Timezones:   []string{"Europe/London"},
		SpamReports: 2,
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out TraceData
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestReportNormalizedType(t *testing.T) {
	assert.Equal(t, "scam", Report{Type: " SCAM "}.NormalizedType())
	assert.Equal(t, "other", Report{}.NormalizedType())
}

func TestNewHistoryEntry(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	entry := NewHistoryEntry(&TraceData{
		E164:                   "+14158586273",
		FormattedInternational: "+1 415-858-6273",
		CountryName:            "United States",
		Flag:                   "🇺🇸",
		Carrier:                "AT&T",
		LineType:               "Mobile",
		Location:               "San Francisco, CA",
		Valid:                  BoolPtr(true),
	}, at)

	assert.Equal(t, "+14158586273", entry.Number)
	assert.Equal(t, "United States", entry.Country)
	assert.True(t, entry.Valid)
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
	assert.True(t, entry.Timestamp.Equal(at))
}
