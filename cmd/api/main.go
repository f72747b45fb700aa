package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"google.golang.org/grpc"

	"phonetracer/internal/api"
	"phonetracer/internal/api/handlers"
	"phonetracer/internal/config"
	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services"
	"phonetracer/internal/domain/services/ai"
	grpchealth "phonetracer/internal/grpc/health"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/internal/infrastructure/database"
	"phonetracer/internal/infrastructure/database/repository"
	"phonetracer/internal/infrastructure/filestore"
	"phonetracer/internal/streaming"
	"phonetracer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.New(logger.Config{
			Level:      cfg.Logger.Level,
			Format:     cfg.Logger.Format,
			TimeFormat: cfg.Logger.TimeFormat,
		})
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting phone tracer")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	checks := map[string]handlers.Pinger{}
	grpcDeps := map[string]grpchealth.Pinger{}

	// Report and history storage
	var (
		reportStore  services.ReportStore
		historyStore services.HistoryStore
	)
	if db != nil {
		reportStore = repository.NewReportRepository(db)
		historyStore = repository.NewHistoryRepository(db, cfg.Storage.HistoryLimit)
		checks["postgres"] = db
		grpcDeps["postgres"] = db
		log.Info().Msg("storage backed by PostgreSQL")
	} else {
		files := filestore.NewReportStore(cfg.Storage.DataDir, cfg.Storage.ReportsFile)
		reportStore = files
		historyStore = filestore.NewHistoryStore(cfg.Storage.DataDir, cfg.Storage.HistoryFile, cfg.Storage.HistoryLimit)
		checks["storage"] = files
		grpcDeps["storage"] = files
		log.Info().
			Str("reports", filepath.Join(cfg.Storage.DataDir, cfg.Storage.ReportsFile)).
			Msg("storage backed by JSON files")
	}

	// Cache and rate limiting
	var (
		traceCache cache.Cache
		limiter    cache.RateLimiter
	)
	if redisCache != nil {
		traceCache = redisCache
		limiter = redisCache
		checks["redis"] = redisCache
		grpcDeps["redis"] = redisCache
	} else {
		traceCache = cache.NewMemoryCache(cfg.Cache.TraceTTL, cfg.Cache.CleanupInterval)
		limiter = cache.NewMemoryRateLimiter()
	}

	// Initialize streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing with local events only")
			natsPublisher = nil
		} else {
			defer natsPublisher.Close()
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	wsHub := streaming.NewWebSocketHub(eventBus, log)
	go wsHub.Run(ctx)

	publisher := streaming.NewEventBusPublisher(eventBus)

	// Number metadata, with optional live carrier lookups
	var live services.CarrierLookup
	if cfg.NumVerify.Enabled {
		live = services.NewNumVerifyClient(cfg.NumVerify, log)
		log.Info().Msg("NumVerify live lookups enabled")
	}
	resolver := services.NewPhoneResolver(live, log)

	// Text generator
	llm := ai.NewLLMProvider(cfg.LLM, log)
	if cfg.LLM.VerifyOnLoad && llm.Status().State != models.LLMStateDisabled {
		go func() {
			if err := llm.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("text generator unavailable, using rule-based responses")
			}
		}()
	}

	// Initialize services
	traceService := services.NewTraceService(resolver, reportStore, historyStore, traceCache, cfg.Cache.TraceTTL, publisher, log)
	reportService := services.NewReportService(resolver, reportStore, publisher, log)
	analysisService := services.NewAnalysisService(ai.NewAnalyzer(llm, log), reportService, publisher, log)

	h := handlers.NewHandlers(handlers.Dependencies{
		Trace:     traceService,
		Reports:   reportService,
		Analysis:  analysisService,
		Assistant: ai.NewAssistant(llm, log),
		LLM:       llm,
		Checks:    checks,
		Version:   cfg.App.Version,
		Logger:    log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, limiter, http.HandlerFunc(wsHub.ServeWebSocket), log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	checker := grpchealth.NewChecker(grpcDeps, 0, log)
	checker.Register(grpcServer)
	go checker.Run(ctx)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to the optional database and cache. Either
// may come back nil, in which case the file store and in-memory cache are
// used instead.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		conn, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing with file storage")
		} else {
			db = conn
			if cfg.Database.AutoMigrate {
				if err := db.Migrate(ctx); err != nil {
					log.Fatal().Err(err).Msg("failed to migrate database")
				}
			}
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing with in-memory cache")
		} else {
			redisCache = rc
		}
	}

	return db, redisCache
}
