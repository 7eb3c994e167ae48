package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"checkcheck-api/internal/api"
	"checkcheck-api/internal/api/handlers"
	apimiddleware "checkcheck-api/internal/api/middleware"
	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/internal/grpc/healthcheck"
	"checkcheck-api/internal/infrastructure/cache"
	"checkcheck-api/internal/infrastructure/database"
	"checkcheck-api/internal/infrastructure/database/repository"
	"checkcheck-api/internal/streaming"
	"checkcheck-api/pkg/logger"
)

// diagnosisStore is the selected record backend plus its lifecycle hooks
type diagnosisStore struct {
	repo  services.DiagnosisRepository
	ping  func(ctx context.Context) error
	close func()
}

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load(os.Getenv("CHECKCHECK_CONFIG_FILE"))
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

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting CheckCheck API")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	store, err := openDiagnosisStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open diagnosis store")
	}
	defer store.close()

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache and rate limiting")
		} else {
			defer redisCache.Close()
		}
	}

	// Initialize streaming infrastructure
	var events *streaming.EventPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err := streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event publishing")
		} else {
			defer natsPublisher.Close()
			events = streaming.NewEventPublisher(natsPublisher, cfg.NATS.Subjects)
		}
	}

	// Initialize services
	bank, err := loadQuestionBank(cfg.Survey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load question bank")
	}
	scorer := services.NewSurveyScorer(cfg.Survey, log)
	advisor := services.NewPostureAdvisor(cfg.Posture)
	analysisClient := services.NewAnalysisClient(cfg.Analysis, log)

	smishingCfg := services.SmishingServiceConfig{
		CacheTTL:         cfg.Analysis.CacheTTL,
		HomeRegion:       cfg.Heuristics.HomeRegion,
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
	}
	if analysisClient != nil {
		smishingCfg.Remote = analysisClient
	}
	var limiter apimiddleware.RateLimitChecker
	readyChecks := []handlers.ReadyCheck{{Name: "database", Ping: store.ping}}
	healthDeps := []healthcheck.Dependency{{Name: "database", Ping: store.ping}}
	if redisCache != nil {
		smishingCfg.Cache = redisCache
		limiter = redisCache
		readyChecks = append(readyChecks, handlers.ReadyCheck{Name: "redis", Ping: redisCache.Ping})
		healthDeps = append(healthDeps, healthcheck.Dependency{Name: "redis", Ping: redisCache.Ping})
	}

	var diagnosisPublisher services.DiagnosisEventPublisher
	if events != nil {
		smishingCfg.Publisher = events
		diagnosisPublisher = events
	}

	smishing := services.NewSmishingService(
		services.NewHeuristicEvaluator(services.HeuristicRulesFromConfig(cfg.Heuristics)),
		smishingCfg,
		log,
	)
	diagnosis := services.NewDiagnosisService(store.repo, advisor, diagnosisPublisher, log)

	log.Info().
		Bool("remote_analysis", analysisClient != nil).
		Bool("cache", redisCache != nil).
		Bool("events", events != nil).
		Str("database", cfg.Database.Driver).
		Msg("services initialized")

	// Initialize HTTP handlers
	h := handlers.NewHandlers(handlers.Dependencies{
		Scorer:       scorer,
		QuestionBank: bank,
		Smishing:     smishing,
		Email:        analysisClient,
		Posture:      advisor,
		Diagnosis:    diagnosis,
		ReadyChecks:  readyChecks,
		Version:      cfg.App.Version,
		MaxBatchSize: cfg.Analysis.MaxBatchSize,
		Logger:       log,
	})

	router := api.NewRouter(*cfg, h, limiter, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	checker := healthcheck.NewChecker(healthDeps, log)
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

	// Cancel context to stop background checks
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

// openDiagnosisStore connects the configured record backend and applies its schema
func openDiagnosisStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*diagnosisStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &diagnosisStore{
			repo:  repository.NewPostgresDiagnosisRepository(db.Pool()),
			ping:  db.Ping,
			close: db.Close,
		}, nil

	default:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Database.SQLitePath).Msg("using SQLite diagnosis store")
		return &diagnosisStore{
			repo:  repository.NewSQLiteDiagnosisRepository(db),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}
}

// loadQuestionBank reads the configured bank, or the built-in one, and warns
// about score table keys that match no option
func loadQuestionBank(cfg config.SurveyConfig, log *logger.Logger) (*services.QuestionBank, error) {
	bank := services.DefaultQuestionBank()
	if cfg.QuestionBankFile != "" {
		loaded, err := services.LoadQuestionBank(cfg.QuestionBankFile)
		if err != nil {
			return nil, err
		}
		bank = loaded
	}

	for _, issue := range services.ValidateScoreTable(bank.Questions, bank.Table) {
		log.Warn().
			Str("key", issue.Key).
			Str("suggestion", issue.Suggestion).
			Msg("score table key matches no option")
	}

	log.Info().
		Int("questions", len(bank.Questions)).
		Int("max_score", services.MaxScore(bank.Questions, bank.Table)).
		Msg("question bank loaded")

	return bank, nil
}
