package cli

import (
	"context"

	"phonetracer/internal/config"
	"phonetracer/internal/domain/services"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/internal/infrastructure/database"
	"phonetracer/internal/infrastructure/database/repository"
	"phonetracer/internal/infrastructure/filestore"
	"phonetracer/pkg/logger"
)

// app is the service graph a single command runs against. Events are not
// published from the CLI.
type app struct {
	db       *database.PostgresDB
	llm      *ai.LLMProvider
	resolver *services.PhoneResolver
	trace    *services.TraceService
	reports  *services.ReportService
	analysis *services.AnalysisService
	chat     *ai.Assistant
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) *app {
	a := &app{}

	var (
		reportStore  services.ReportStore
		historyStore services.HistoryStore
	)
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, using file storage")
		} else {
			a.db = db
		}
	}
	if a.db != nil {
		reportStore = repository.NewReportRepository(a.db)
		historyStore = repository.NewHistoryRepository(a.db, cfg.Storage.HistoryLimit)
	} else {
		reportStore = filestore.NewReportStore(cfg.Storage.DataDir, cfg.Storage.ReportsFile)
		historyStore = filestore.NewHistoryStore(cfg.Storage.DataDir, cfg.Storage.HistoryFile, cfg.Storage.HistoryLimit)
	}

	var live services.CarrierLookup
	if cfg.NumVerify.Enabled {
		live = services.NewNumVerifyClient(cfg.NumVerify, log)
	}

	a.llm = ai.NewLLMProvider(cfg.LLM, log)
	a.resolver = services.NewPhoneResolver(live, log)
	a.trace = services.NewTraceService(a.resolver, reportStore, historyStore,
		cache.NewMemoryCache(cfg.Cache.TraceTTL, cfg.Cache.CleanupInterval), cfg.Cache.TraceTTL, nil, log)
	a.reports = services.NewReportService(a.resolver, reportStore, nil, log)
	a.analysis = services.NewAnalysisService(ai.NewAnalyzer(a.llm, log), a.reports, nil, log)
	a.chat = ai.NewAssistant(a.llm, log)
	return a
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
