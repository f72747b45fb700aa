package ai

import (
	"fmt"
	"strings"

	"phonetracer/internal/domain/models"
)

// FactorResult is the contribution of a single scoring rule.
// Points may be negative; messages are already human readable.
type FactorResult struct {
	Points   int
	Messages []string
}

func factor(points int, messages ...string) FactorResult {
	return FactorResult{Points: points, Messages: messages}
}

// ScoreSpamVolume scores the number of community reports filed against the number
func ScoreSpamVolume(count int) FactorResult {
	for _, tier := range spamTiers {
		if count < tier.min {
			continue
		}
		if strings.Contains(tier.format, "%d") {
			return factor(tier.points, fmt.Sprintf(tier.format, count))
		}
		return factor(tier.points, tier.format)
	}
	return FactorResult{}
}

// ScoreReportContent weighs the report categories (capped) and scans each
// description for severe or moderate keywords.
func ScoreReportContent(reports []models.Report) FactorResult {
	var result FactorResult

	typeTotal := 0
	for _, r := range reports {
		typeTotal += severityOf(r.NormalizedType())
	}
	if typeTotal > reportTypeCap {
		typeTotal = reportTypeCap
	}
	result.Points += typeTotal

	for _, r := range reports {
		desc := strings.ToLower(r.Description)
		if kw, ok := firstKeyword(desc, severeKeywords); ok {
			result.Points += severeKeywordPoints
			result.Messages = append(result.Messages, fmt.Sprintf("Severe keyword detected: '%s' in report", kw))
			continue
		}
		if _, ok := firstKeyword(desc, moderateKeywords); ok {
			result.Points += moderateKeywordPoints
		}
	}

	return result
}

func severityOf(reportType string) int {
	if s, ok := reportSeverity[reportType]; ok {
		return s
	}
	return defaultReportSeverity
}

func firstKeyword(text string, keywords []string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// ScoreValidity penalises numbers that are invalid or impossible for their region
func ScoreValidity(trace models.TraceData) FactorResult {
	switch {
	case !trace.IsValid():
		return factor(invalidPoints, invalidMessage)
	case !trace.IsPossible():
		return factor(impossiblePoints, impossibleMsg)
	default:
		return FactorResult{}
	}
}

// ScoreLineType scores the line type label. Landlines get a small discount.
func ScoreLineType(lineType string) FactorResult {
	lt := strings.ToLower(strings.TrimSpace(lineType))
	for _, rule := range lineTypeRules {
		if lt == rule.label {
			return factor(rule.points, rule.message)
		}
	}
	if strings.Contains(lt, landlineMarker) {
		return factor(landlinePoints, landlineMessage)
	}
	return FactorResult{}
}

// ScoreCountry scores the origin region. It always emits exactly one message.
func ScoreCountry(trace models.TraceData) FactorResult {
	code := strings.ToUpper(strings.TrimSpace(trace.CountryCode))
	switch {
	case highRiskCountries[code]:
		return factor(highRiskCountryPoints,
			fmt.Sprintf("Originates from high-risk telecom fraud region (%s)", trace.RegionLabel()))
	case mediumRiskCountries[code]:
		return factor(mediumRiskCountryPoints,
			fmt.Sprintf("Originates from medium-risk region (%s)", trace.RegionLabel()))
	default:
		return factor(0, fmt.Sprintf("Country risk: normal (%s)", trace.DisplayCountry()))
	}
}

// ScoreCarrier flags unknown and virtual carriers
func ScoreCarrier(carrier string) FactorResult {
	c := strings.TrimSpace(carrier)
	if c == "" || strings.EqualFold(c, models.UnknownValue) {
		return factor(unknownCarrierPoints, unknownCarrierMessage)
	}
	lc := strings.ToLower(c)
	for _, marker := range virtualCarrierMarkers {
		if strings.Contains(lc, marker) {
			return factor(virtualCarrierPoints, fmt.Sprintf("Virtual/internet-based carrier detected: %s", carrier))
		}
	}
	return FactorResult{}
}

// ScorePorting flags numbers whose current carrier differs from the original one
func ScorePorting(original, current string) FactorResult {
	if original == "" || current == "" || original == current {
		return FactorResult{}
	}
	if strings.EqualFold(current, models.UnknownValue) {
		return FactorResult{}
	}
	return factor(portedPoints, fmt.Sprintf("Number was ported from %s to %s", original, current))
}

// ScoreAll runs every scorer in the fixed order. Message order follows
// scorer order, which decides what survives factor truncation.
func ScoreAll(trace models.TraceData, reports []models.Report) []FactorResult {
	return []FactorResult{
		ScoreSpamVolume(trace.SpamReports),
		ScoreReportContent(reports),
		ScoreValidity(trace),
		ScoreLineType(trace.LineType),
		ScoreCountry(trace),
		ScoreCarrier(trace.Carrier),
		ScorePorting(trace.OriginalCarrier, trace.Carrier),
	}
}
