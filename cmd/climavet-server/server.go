package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/climavet/climavet/internal/config"
	"github.com/climavet/climavet/internal/domain/catalog"
	"github.com/climavet/climavet/internal/domain/checklist"
	"github.com/climavet/climavet/internal/domain/clinic"
	"github.com/climavet/climavet/internal/domain/plan"
	"github.com/climavet/climavet/internal/platform/db"
	"github.com/climavet/climavet/internal/platform/middleware"
)

const version = "0.1.0"

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

type services struct {
	catalog    *catalog.Catalog
	clinics    *clinic.Service
	plans      *plan.Service
	checklists *checklist.Service
}

func newServices(pool *pgxpool.Pool, logger zerolog.Logger) (*services, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	clinicSvc := clinic.NewService(clinic.NewClinicRepoPG(pool), clinic.NewRiskAssessmentRepoPG(pool))
	planSvc := plan.NewService(plan.NewRepoPG(pool), clinicSvc, cat, logger)
	checklistSvc := checklist.NewService(
		checklist.NewRepoPG(pool),
		checklist.NewItemRepoPG(pool),
		db.NewTransactor(pool),
		clinicSvc,
		planSvc,
		cat,
		logger,
	)
	return &services{catalog: cat, clinics: clinicSvc, plans: planSvc, checklists: checklistSvc}, nil
}

// newRouter builds the echo instance with the global middleware chain and
// every API route. cache backs the catalog response cache.
func newRouter(cfg *config.Config, logger zerolog.Logger, svcs *services, cache middleware.CacheStore) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID", "If-None-Match"},
	}))
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	catalog.NewHandler(svcs.catalog).RegisterRoutes(apiV1,
		middleware.ETagMiddleware(cfg.CatalogCacheTTL),
		middleware.ResponseCacheMiddleware(cache, cfg.CatalogCacheTTL),
	)
	clinic.NewHandler(svcs.clinics).RegisterRoutes(apiV1)
	plan.NewHandler(svcs.plans).RegisterRoutes(apiV1)
	checklist.NewHandler(svcs.checklists).RegisterRoutes(apiV1)

	return e
}

func newCacheStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (middleware.CacheStore, func(), error) {
	if cfg.RedisURL == "" {
		store := middleware.NewInMemoryCacheStore()
		cleanupCtx, cancel := context.WithCancel(ctx)
		store.StartCleanup(cleanupCtx, time.Minute)
		return store, cancel, nil
	}
	client, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("using redis response cache")
	return middleware.NewRedisCacheStore(client, "climavet:cache:", logger), func() { client.Close() }, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		HealthCheckPeriod: time.Minute,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	svcs, err := newServices(pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalogs")
	}

	cache, closeCache, err := newCacheStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer closeCache()

	e := newRouter(cfg, logger, svcs, cache)
	e.GET("/health/db", db.HealthHandler(pool))

	if cfg.ReviewSweepCron != "" {
		sched, err := checklist.NewReviewScheduler(cfg.ReviewSweepCron, svcs.checklists, logger, cfg.RequestTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule review sweep")
		}
		sched.Start()
		defer sched.Stop()
		logger.Info().Str("schedule", cfg.ReviewSweepCron).Msg("review sweep scheduled")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
