package ai

import (
	"strings"

	"phonetracer/internal/domain/models"
)

// Aggregate is the combined outcome of all factor scorers
type Aggregate struct {
	RawScore   int // before clamping
	Score      int
	Level      models.RiskLevel
	ThreatType models.ThreatType
	Factors    []string // every message, in scorer order
}

// AggregateFactors sums the factor results and classifies the score
func AggregateFactors(results []FactorResult, trace models.TraceData, reports []models.Report) Aggregate {
	agg := Aggregate{}
	for _, r := range results {
		agg.RawScore += r.Points
		agg.Factors = append(agg.Factors, r.Messages...)
	}
	agg.Score = ClampScore(agg.RawScore)
	agg.Level = RiskLevelFor(agg.Score)
	agg.ThreatType = ThreatTypeFor(reports, trace.LineType, agg.Score)
	return agg
}

// ClampScore bounds a raw score to [0, 100]
func ClampScore(score int) int {
	return max(0, min(100, score))
}

// RiskLevelFor maps a clamped score to its level
func RiskLevelFor(score int) models.RiskLevel {
	for _, t := range riskLadder {
		if score >= t.min {
			return t.level
		}
	}
	return models.RiskLevelLow
}

// ThreatTypeFor derives the threat label. Report categories take precedence
// over trace heuristics.
func ThreatTypeFor(reports []models.Report, lineType string, score int) models.ThreatType {
	present := make(map[string]bool, len(reports))
	for _, r := range reports {
		present[r.NormalizedType()] = true
	}

	for _, rule := range threatRules {
		for _, t := range rule.types {
			if present[t] {
				return rule.label
			}
		}
	}

	lt := strings.ToLower(strings.TrimSpace(lineType))
	switch {
	case lt == "voip" && score >= suspiciousVoIPMinScore:
		return models.ThreatSuspiciousVoIP
	case lt == "premium rate":
		return models.ThreatPremiumRate
	case score >= suspiciousMinScore:
		return models.ThreatSuspicious
	case score >= unwantedMinScore:
		return models.ThreatPotentiallyUnwanted
	default:
		return models.ThreatClean
	}
}
