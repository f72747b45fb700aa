package ai

import (
	"fmt"
	"strings"

	"phonetracer/internal/domain/models"
)

// BuildAnalysis writes the rule-based analysis paragraph
func BuildAnalysis(trace models.TraceData, level models.RiskLevel, factors []string) string {
	opener, ok := analysisOpeners[level]
	if !ok {
		opener = analysisOpeners[models.RiskLevelLow]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(opener, trace.DisplayNumber()))
	sb.WriteString(fmt.Sprintf(" It is a %s number from %s", trace.DisplayLineType(), trace.DisplayCountry()))
	if trace.HasKnownCarrier() {
		sb.WriteString(", operated by ")
		sb.WriteString(trace.Carrier)
	}
	sb.WriteString(".")

	if len(factors) == 0 {
		sb.WriteString(noFactorsSentence)
		return sb.String()
	}

	top := factors
	if len(top) > narrativeFactors {
		top = top[:narrativeFactors]
	}
	sb.WriteString(" Key findings: ")
	sb.WriteString(strings.Join(top, "; "))
	sb.WriteString(".")
	return sb.String()
}

// BuildRecommendation returns the canned advice for a risk level
func BuildRecommendation(level models.RiskLevel) string {
	if rec, ok := recommendations[level]; ok {
		return rec
	}
	return recommendations[models.RiskLevelLow]
}
