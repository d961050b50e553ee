package app

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/api"
	"fxconvert/internal/config"
	"fxconvert/internal/metrics"
	"fxconvert/internal/platform/db"
	httpserver "fxconvert/internal/platform/http"
	redisclient "fxconvert/internal/platform/redis"
	"fxconvert/internal/rate"
	"fxconvert/internal/rate/handler"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run wires the application components, starts HTTP servers and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations, redis ping)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	if err = db.Migrate(startupCtx, pool); err != nil {
		logrus.WithError(err).Error("Error applying migrations")
		return err
	}
	logrus.Info("✅ Migrations applied")

	// Rate table cache
	rateCache, closeCache, err := newRateCache(startupCtx, appCfg)
	if err != nil {
		logrus.WithError(err).Error("Error creating rate cache")
		return err
	}
	defer closeCache()
	logrus.Infof("✅ Rate cache ready (%s)", appCfg.Cache.Backend)

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}
	rateProvider := httpclient.NewFixerClient(baseHTTPClient, appCfg.RatesProvider.BaseURL, appCfg.RatesProvider.AccessKey)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// Services
	rateRepo := postgres.NewRateRepository(pool)
	rateService := rate.NewService(rateCache, rateRepo, rateProvider, appMetrics, httpTimeout, appCfg.Conversion.Targets)

	loc, err := time.LoadLocation(appCfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", appCfg.Scheduler.Timezone, err)
	}
	scheduler := rate.NewScheduler(rateService, rate.DailyAt{
		Hour:     appCfg.Scheduler.Hour,
		Minute:   appCfg.Scheduler.Minute,
		Location: loc,
	}, 2*httpTimeout)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	if next, nextErr := scheduler.NextRun(); nextErr == nil {
		logrus.WithField("next_run", next.Format(time.RFC3339)).Info("✅ Scheduler activation successful")
	}

	// Handlers and routers
	rateHandler := handler.NewRateHandler(rate.NewValidator(), rateService)
	router := api.NewRouter(rateHandler, appMetrics)
	metricsRouter := api.NewMetricsRouter(registry)

	logrus.Info("Starting http servers")
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Start(gCtx, "API", appCfg.HTTPServer.Port, router)
	})
	g.Go(func() error {
		return httpserver.Start(gCtx, "Metrics", appCfg.HTTPServer.MetricsPort, metricsRouter)
	})
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := g.Wait(); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// newRateCache builds the configured cache backend and its release func.
func newRateCache(ctx context.Context, cfg *config.AppConfig) (adapters.RateCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		c, err := cache.NewMemoryRateCache(cfg.Cache.Key, cfg.Cache.MaxItems)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.CacheBackendRedis:
		client, err := redisclient.CreateClientAndPing(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		closeFn := func() {
			if closeErr := client.Close(); closeErr != nil {
				logrus.WithError(closeErr).Warn("Redis client close error")
			}
		}
		return cache.NewRedisRateCache(client, cfg.Cache.Key), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
