package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON decodes a trace document field by field. Trace documents
// come back from clients that may have rewritten them, so a field with the
// wrong JSON type keeps its zero value instead of failing the whole
// document. Only a body that is not a JSON object is an error.
func (t *TraceData) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = TraceData{
		Number:                 looseString(fields["number"]),
		FormattedInternational: looseString(fields["formatted_international"]),
		FormattedNational:      looseString(fields["formatted_national"]),
		E164:                   looseString(fields["e164"]),
		Valid:                  looseBool(fields["valid"]),
		Possible:               looseBool(fields["possible"]),
		CountryCode:            looseString(fields["country_code"]),
		CountryName:            looseString(fields["country_name"]),
		Flag:                   looseString(fields["flag"]),
		Location:               looseString(fields["location"]),
		Carrier:                looseString(fields["carrier"]),
		OriginalCarrier:        looseString(fields["original_carrier"]),
		CarrierSource:          looseString(fields["carrier_source"]),
		LineType:               looseString(fields["line_type"]),
		Timezones:              looseStrings(fields["timezones"]),
		SpamReports:            looseCount(fields["spam_reports"]),
		Reports:                looseReports(fields["reports"]),
	}
	return nil
}

// looseString accepts a JSON string, or a number or bool rendered as text
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// looseBool accepts a JSON bool or a string strconv.ParseBool understands.
// Anything else is treated as absent.
func looseBool(raw json.RawMessage) *bool {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return &b
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return &parsed
		}
	}
	return nil
}

// looseCount accepts a non-negative whole number given as a JSON number or
// a numeric string
func looseCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// looseStrings accepts an array of strings, skipping non-string items, or a
// single string
func looseStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		if s := looseString(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// looseReports keeps the reports that decode and drops the rest
func looseReports(raw json.RawMessage) []Report {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []Report
	for _, item := range items {
		var r Report
		if json.Unmarshal(item, &r) == nil {
			out = append(out, r)
		}
	}
	return out
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
