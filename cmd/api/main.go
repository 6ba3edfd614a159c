package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flow-ledger/config"
	httpHandler "flow-ledger/internal/adapter/http/handler"
	"flow-ledger/internal/adapter/notify"
	memStorage "flow-ledger/internal/adapter/storage/memory"
	pgStorage "flow-ledger/internal/adapter/storage/postgres"
	redisStorage "flow-ledger/internal/adapter/storage/redis"
	"flow-ledger/internal/core/ports"
	"flow-ledger/internal/service"
	"flow-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Flow Ledger")

	ctx := context.Background()

	// Initialize ledger/operator repositories per the configured driver.
	var (
		ledgerRepo   ports.LedgerRepository
		operatorRepo ports.OperatorRepository
		checkers     []ports.HealthChecker
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		ledgerRepo = pgStorage.NewLedgerRepo(pool)
		operatorRepo = pgStorage.NewOperatorRepo(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	default:
		ledgerRepo = memStorage.NewLedgerStore()
		operatorRepo = memStorage.NewOperatorStore()
		log.Info().Msg("Using in-memory storage")
	}

	// Initialize Redis client (KYC tags, nonces, rate limits)
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	kycRepo := redisStorage.NewKYCStore(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	checkers = append(checkers, redisStorage.NewHealthCheck(rdb))

	// Initialize event publisher
	var events ports.EventPublisher
	if cfg.NSQ.Enabled {
		pub, err := notify.NewNSQPublisher(cfg.NSQ.Addr(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NSQ")
		}
		defer pub.Stop()
		events = pub
		log.Info().Str("addr", cfg.NSQ.Addr()).Msg("NSQ publisher connected")
	} else {
		events = notify.NewLogPublisher(log)
	}

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authz := service.NewOperatorAuthorizer(operatorRepo, log)
	authSvc := service.NewAuthService(operatorRepo, hashSvc, encSvc, tokenSvc, cfg.Ledger.Writers)
	ledgerSvc := service.NewLedgerService(ledgerRepo, authz, events, log)
	kycSvc := service.NewKYCService(kycRepo, authz, events, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		KYCSvc:         kycSvc,
		OperatorRepo:   operatorRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: checkers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
