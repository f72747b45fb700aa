package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

// MinGeneratedLength is the length generated text must exceed to be used
const MinGeneratedLength = 20

const (
	analysisMaxTokens = 200

	analystSystemPrompt = "You are a phone security analyst. Analyze the phone number data and provide " +
		"a brief, actionable security assessment. Be direct and helpful. " +
		"Write in plain language, not technical jargon."

	analystInstruction = "Write a 2-3 sentence security analysis of this phone number, " +
		"followed by a specific safety recommendation. Be concise."
)

// Analyzer computes the risk assessment of a traced phone number.
// Scoring is deterministic; the generator only contributes prose.
type Analyzer struct {
	generator TextGenerator
	logger    *logger.Logger
	now       func() time.Time
}

// NewAnalyzer creates an analyzer. gen may be nil.
func NewAnalyzer(gen TextGenerator, log *logger.Logger) *Analyzer {
	return &Analyzer{
		generator: gen,
		logger:    log.WithComponent("risk-analyzer"),
		now:       time.Now,
	}
}

// Analyze scores trace data against the reports filed for the number
func (a *Analyzer) Analyze(ctx context.Context, trace models.TraceData, reports []models.Report) models.AnalysisResult {
	agg := AggregateFactors(ScoreAll(trace, reports), trace, reports)

	result := models.AnalysisResult{
		RiskScore:  agg.Score,
		RiskLevel:  agg.Level,
		ThreatType: agg.ThreatType,
		Factors:    truncate(agg.Factors, maxFactors),
		AISource:   models.AISourceRuleBased,
		AnalyzedAt: a.now().UTC(),
	}

	text, ok := generateText(ctx, a.generator, GenerationRequest{
		System:    analystSystemPrompt,
		Prompt:    buildAnalysisPrompt(trace, agg),
		MaxTokens: analysisMaxTokens,
	}, a.logger)
	if ok {
		analysis, recommendation, _ := strings.Cut(text, "\n\n")
		result.Analysis = strings.TrimSpace(analysis)
		result.Recommendation = strings.TrimSpace(recommendation)
	}

	if result.Analysis != "" {
		result.AISource = models.AISourceLLM
		result.Model = a.generator.ModelName()
	} else {
		result.Analysis = BuildAnalysis(trace, agg.Level, agg.Factors)
	}
	if result.Recommendation == "" {
		result.Recommendation = BuildRecommendation(agg.Level)
	}

	metrics.RecordAnalysis(string(result.RiskLevel), string(result.AISource))
	a.logger.WithNumber(trace.E164).Debug().
		Int("raw_score", agg.RawScore).
		Int("score", result.RiskScore).
		Str("level", string(result.RiskLevel)).
		Str("source", string(result.AISource)).
		Msg("number analyzed")

	return result
}

func buildAnalysisPrompt(trace models.TraceData, agg Aggregate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Phone number: %s\n", orUnknown(trace.FormattedInternational))
	fmt.Fprintf(&sb, "Country: %s\n", trace.DisplayCountry())
	fmt.Fprintf(&sb, "Carrier: %s\n", trace.DisplayCarrier())
	fmt.Fprintf(&sb, "Line type: %s\n", trace.DisplayLineType())
	fmt.Fprintf(&sb, "Valid: %t\n", trace.IsValid())
	fmt.Fprintf(&sb, "Risk score: %d/100 (%s)\n", agg.Score, agg.Level)
	fmt.Fprintf(&sb, "Threat type: %s\n", agg.ThreatType)
	fmt.Fprintf(&sb, "Spam reports: %d\n", trace.SpamReports)
	fmt.Fprintf(&sb, "Risk factors: %s\n\n", strings.Join(truncate(agg.Factors, promptFactors), "; "))
	sb.WriteString(analystInstruction)
	return sb.String()
}

// generateText asks the generator for text and reports whether it is usable.
// Failures are logged and swallowed.
func generateText(ctx context.Context, gen TextGenerator, req GenerationRequest, log *logger.Logger) (string, bool) {
	if gen == nil {
		return "", false
	}

	text, err := gen.Generate(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrGeneratorDisabled):
			// normal when no provider is configured
		case errors.Is(err, ErrGeneratorUnavailable):
			metrics.RecordGenerationFailure("unavailable")
			log.Debug().Err(err).Msg("text generator unavailable")
		case errors.Is(err, ErrRateLimited):
			metrics.RecordGenerationFailure("rate_limited")
			log.Debug().Msg("text generator rate limited")
		case errors.Is(err, ErrEmptyCompletion):
			metrics.RecordGenerationFailure("empty")
		default:
			metrics.RecordGenerationFailure("error")
			log.Warn().Err(err).Msg("text generation failed")
		}
		return "", false
	}

	text = strings.TrimSpace(text)
	if len(text) <= MinGeneratedLength {
		metrics.RecordGenerationFailure("too_short")
		return "", false
	}
	return text, true
}

func truncate(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownValue
	}
	return s
}
