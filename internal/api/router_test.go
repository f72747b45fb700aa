package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonetracer/internal/api/handlers"
	"phonetracer/internal/config"
	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/internal/infrastructure/filestore"
	"phonetracer/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		},
	}
}

func newTestRouter(t *testing.T, cfg config.Config, checks map[string]handlers.Pinger) http.Handler {
	t.Helper()
	log := logger.NewNop()
	dir := t.TempDir()

	reportStore := filestore.NewReportStore(dir, "reports.json")
	historyStore := filestore.NewHistoryStore(dir, "history.json", 50)
	resolver := services.NewPhoneResolver(nil, log)
	provider := ai.NewLLMProvider(config.LLMConfig{}, log)

	traceSvc := services.NewTraceService(resolver, reportStore, historyStore, cache.NewMemoryCache(time.Hour, time.Minute), time.Hour, nil, log)
	reportSvc := services.NewReportService(resolver, reportStore, nil, log)
	analysisSvc := services.NewAnalysisService(ai.NewAnalyzer(provider, log), reportSvc, nil, log)

	if checks == nil {
		checks = map[string]handlers.Pinger{"reports": reportStore}
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Trace:     traceSvc,
		Reports:   reportSvc,
		Analysis:  analysisSvc,
		Assistant: ai.NewAssistant(provider, log),
		LLM:       provider,
		Checks:    checks,
		Version:   "test",
		Logger:    log,
	})
	return NewRouter(cfg, h, cache.NewMemoryRateLimiter(), nil, log).Setup()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAPIHealth(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[handlers.HealthResponse](t, rec).Status)

	rec = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Checks["reports"])

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := newTestRouter(t, testConfig(), map[string]handlers.Pinger{
		"postgres": stubPinger{err: errors.New("connection refused")},
		"redis":    nil,
	})

	rec := do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "not ready", resp.Status)
	assert.Contains(t, resp.Checks["postgres"], "connection refused")
	assert.Equal(t, "not configured", resp.Checks["redis"])
}

func TestTraceEndpoint(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodGet, "/api/trace", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/trace?number=hello", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid phone number format")

	rec = do(t, h, http.MethodGet, "/api/trace?number=%2B14158586273", "")
	require.Equal(t, http.StatusOK, rec.Code)
	trace := decode[models.TraceData](t, rec)
	assert.Equal(t, "+14158586273", trace.E164)
	assert.Equal(t, "US", trace.CountryCode)
	assert.Equal(t, 0, trace.SpamReports)
}

func TestReportThenTrace(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodPost, "/api/report", `{"number":"14158586273","type":"scam","description":"gift card request"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handlers.ReportResponse](t, rec)
	assert.Equal(t, "Report submitted successfully", resp.Message)
	assert.Equal(t, 1, resp.TotalReportsForNumber)

	rec = do(t, h, http.MethodPost, "/api/report", `{"number":"+14158586273","type":"robocall"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[handlers.ReportResponse](t, rec).TotalReportsForNumber)

	rec = do(t, h, http.MethodGet, "/api/trace?number=14158586273", "")
	require.Equal(t, http.StatusOK, rec.Code)
	trace := decode[models.TraceData](t, rec)
	assert.Equal(t, 2, trace.SpamReports)
	require.Len(t, trace.Reports, 2)
	assert.Equal(t, "gift card request", trace.Reports[0].Description)

	rec = do(t, h, http.MethodGet, "/api/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]models.HistoryEntry](t, rec)
	require.Len(t, recent, 1)
	assert.Equal(t, "+14158586273", recent[0].Number)
}

func TestReportValidation(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"number":`},
		{"empty body", ``},
		{"invalid number", `{"number":"abc","type":"spam"}`},
		{"missing type", `{"number":"+14158586273"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRecentEmpty(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodGet, "/api/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/report", `{"number":"+14158586273","type":"fraud","description":"asked for my bank password"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	body := `{"trace_data":{"e164":"+14158586273","formatted_international":"+1 415-858-6273","country_code":"US","country_name":"United States","carrier":"AT&T","line_type":"Mobile","valid":true,"spam_reports":2}}`
	rec := do(t, h, http.MethodPost, "/api/ai/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode[models.AnalysisResult](t, rec)
	// 15 for two reports, 20 capped fraud weight, 5+5 for "bank" keywords
	assert.Equal(t, 45, result.RiskScore)
	assert.Equal(t, models.RiskLevelHigh, result.RiskLevel)
	assert.Equal(t, models.ThreatFraudPhishing, result.ThreatType)
	assert.Equal(t, models.AISourceRuleBased, result.AISource)
	assert.NotEmpty(t, result.Analysis)
	assert.NotEmpty(t, result.Recommendation)

	rec = do(t, h, http.MethodPost, "/api/ai/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEmptyTraceData(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodPost, "/api/ai/analyze", `{"trace_data":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode[models.AnalysisResult](t, rec)
	// unknown carrier only
	assert.Equal(t, 10, result.RiskScore)
	assert.Equal(t, models.RiskLevelLow, result.RiskLevel)
	assert.Equal(t, models.ThreatClean, result.ThreatType)
}

func TestAnalyzeToleratesMalformedOptionalFields(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	tests := []struct {
		name  string
		trace string
		score int
		level models.RiskLevel
	}{
		{"spam_reports as string", `{"spam_reports":"3"}`, 25, models.RiskLevelMedium},
		{"spam_reports as float", `{"spam_reports":3.0}`, 25, models.RiskLevelMedium},
		{"spam_reports as object", `{"spam_reports":{"count":3}}`, 10, models.RiskLevelLow},
		{"valid as unparseable string", `{"valid":"yes"}`, 10, models.RiskLevelLow},
		{"timezones as string", `{"timezones":"UTC"}`, 10, models.RiskLevelLow},
		{"reports as string", `{"reports":"none"}`, 10, models.RiskLevelLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/ai/analyze", `{"trace_data":`+tt.trace+`}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			result := decode[models.AnalysisResult](t, rec)
			assert.Equal(t, tt.score, result.RiskScore)
			assert.Equal(t, tt.level, result.RiskLevel)
		})
	}

	rec := do(t, h, http.MethodPost, "/api/ai/analyze", `{"trace_data":"+14158586273"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodPost, "/api/ai/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/ai/chat", `{"message":"What is a wangiri callback scam?","history":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[models.ChatResult](t, rec)
	assert.Equal(t, models.AISourceRuleBased, result.AISource)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, result.Response, "Wangiri")
}

func TestAIStatusEndpoint(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(t, h, http.MethodGet, "/api/ai/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LLMStateDisabled, decode[models.LLMStatus](t, rec).State)
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	h := newTestRouter(t, cfg, nil)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health endpoints are not rate limited
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
