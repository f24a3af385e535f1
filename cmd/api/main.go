package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medchain/medchain-api/internal/config"
	consentHandler "github.com/medchain/medchain-api/internal/handler/consent"
	identityHandler "github.com/medchain/medchain-api/internal/handler/identity"
	ledgerHandler "github.com/medchain/medchain-api/internal/handler/ledger"
	recordHandler "github.com/medchain/medchain-api/internal/handler/record"
	"github.com/medchain/medchain-api/internal/middleware"
	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	"github.com/medchain/medchain-api/internal/router"
	consentService "github.com/medchain/medchain-api/internal/service/consent"
	identityService "github.com/medchain/medchain-api/internal/service/identity"
	ledgerService "github.com/medchain/medchain-api/internal/service/ledger"
	recordService "github.com/medchain/medchain-api/internal/service/record"
	"github.com/medchain/medchain-api/pkg/auth"
	"github.com/medchain/medchain-api/pkg/crypto"
	"github.com/medchain/medchain-api/pkg/logger"
	"github.com/medchain/medchain-api/pkg/metrics"
	"github.com/medchain/medchain-api/pkg/validator"
	"github.com/medchain/medchain-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if err := validator.RegisterCustomValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	store, err := leveldb.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	// Repositories
	userRepo := leveldb.NewUserRepository(store)
	consentRepo := leveldb.NewConsentRepository(store)
	recordRepo := leveldb.NewRecordRepository(store)
	ledgerRepo := leveldb.NewLedgerRepository(store)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Services
	ledgerSvc := ledgerService.NewService(
		ledgerRepo, worker.NewTimerScheduler(), cfg.Ledger.MineDelay, appLogger, appMetrics)
	consentSvc := consentService.NewService(consentRepo, ledgerSvc, appLogger)
	recordSvc := recordService.NewService(
		recordRepo, consentSvc, ledgerSvc, crypto.NewMockQuantumEncryptor(), appLogger)
	identitySvc := identityService.NewService(userRepo, appLogger)

	ctx := context.Background()
	if err := ledgerSvc.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap ledger")
	}
	if err := identitySvc.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap identity registry")
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	adminOnly := authMiddleware.RequireRole(model.RoleAdmin)

	r := router.NewRouter(
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORS: middleware.CORSConfig{
				AllowedOrigins: cfg.Security.AllowedOrigins,
			},
		},
		appMetrics,
		identityHandler.NewHandler(identitySvc, jwtSvc, adminOnly),
		consentHandler.NewHandler(consentSvc, adminOnly),
		recordHandler.NewHandler(recordSvc),
		ledgerHandler.NewHandler(ledgerSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
