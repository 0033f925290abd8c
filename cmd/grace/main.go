package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/grace-gov/grace-api/internal/app"
	"github.com/grace-gov/grace-api/internal/auth"
	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/committees"
	"github.com/grace-gov/grace-api/internal/meetings"
	"github.com/grace-gov/grace-api/internal/observability"
	"github.com/grace-gov/grace-api/internal/platform/cache"
	"github.com/grace-gov/grace-api/internal/platform/db"
	"github.com/grace-gov/grace-api/internal/shared"
	"github.com/grace-gov/grace-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	revocations := authn.NewRedisRevocations(redisClient)
	localTokens := authn.NewLocalTokens(cfg.TokenSecret, cfg.TokenTTL, revocations)

	strategies := []authn.Strategy{localTokens}
	if cfg.EntraTenantID != "" {
		entraCfg := authn.EntraConfig{TenantID: cfg.EntraTenantID, ClientID: cfg.EntraClientID}
		keys := authn.NewJWKSKeyProvider(authn.JWKSConfig{
			URL:      entraCfg.JWKSURL(),
			CacheTTL: cfg.JWKSCacheTTL,
		})
		strategies = append(strategies, authn.NewEntraVerifier(entraCfg, keys))
	}
	chain := authn.NewChain(logger, strategies...)

	identityRepo := authn.NewRepository(pool)
	resolver := authn.NewResolver(identityRepo)

	authzRepo := authz.NewRepository(pool)
	loader := authz.NewLoader(authzRepo)
	evaluator := authz.NewEvaluator(authzRepo)

	authnMW := authn.Middleware{Chain: chain, Resolver: resolver, Loader: loader, Logger: logger}
	authzMW := authz.Middleware{Evaluator: evaluator, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, localTokens, revocations, auditLogger)
	authHandler := auth.NewHandler(logger, authService)

	committeeRepo := committees.NewRepository(pool)
	committeeService := committees.NewService(committeeRepo, evaluator, auditLogger)
	committeeHandler := committees.NewHandler(logger, committeeService, authzMW)

	meetingRepo := meetings.NewRepository(pool)
	meetingService := meetings.NewService(meetingRepo, evaluator)
	meetingHandler := meetings.NewHandler(logger, meetingService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Authn:            authnMW,
		Authz:            authzMW,
		AuthHandler:      authHandler,
		CommitteeHandler: committeeHandler,
		MeetingHandler:   meetingHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
