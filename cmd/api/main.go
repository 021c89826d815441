package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChefJodlak/prooptica-sub000/cmd/mainconfig"
	"github.com/ChefJodlak/prooptica-sub000/internal/api/router"
	"github.com/ChefJodlak/prooptica-sub000/internal/app/bootstrap"
	"github.com/ChefJodlak/prooptica-sub000/internal/bookingform"
	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/catalog"
	appconfig "github.com/ChefJodlak/prooptica-sub000/internal/config"
	httpmiddleware "github.com/ChefJodlak/prooptica-sub000/internal/http/middleware"
	"github.com/ChefJodlak/prooptica-sub000/internal/observability/metrics"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/internal/wizard"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting prooptica booking API",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Timezone,
	)

	ctx := context.Background()
	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// app bundles the HTTP handler with the resources it must release.
type app struct {
	Handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setupMetrics() (http.Handler, *metrics.CalendarMetrics, *metrics.WizardMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return handler, metrics.NewCalendarMetrics(reg), metrics.NewWizardMetrics(reg)
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	metricsHandler, calMetrics, wizMetrics := setupMetrics()

	dir := portal.DefaultDirectory()
	portalClient := portal.NewClient(dir,
		portal.WithTimeout(cfg.UpstreamTimeout),
		portal.WithCookieName(cfg.UpstreamSessionCookie),
		portal.WithUserAgent(cfg.UpstreamUserAgent),
		portal.WithLogger(logger),
		portal.WithObserver(calMetrics),
	)

	calOpts := []calendar.Option{
		calendar.WithLogger(logger),
		calendar.WithRecorder(calMetrics),
		calendar.WithLocation(cfg.Location()),
	}
	if snapshots := setupSnapshots(ctx, cfg, logger); snapshots != nil {
		calOpts = append(calOpts, calendar.WithSnapshotSink(snapshots))
	}
	calendarSvc := calendar.NewService(portalClient, dir, calOpts...)

	healthChecks := map[string]router.HealthCheck{}

	pool := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	var loader bootstrap.CatalogLoader
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
		healthChecks["postgres"] = pool.Ping
		loader = catalog.NewPostgresRepository(pool)
	}
	cat := bootstrap.BuildCatalog(ctx, loader, dir, logger)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	store := bootstrap.BuildWizardStore(redisClient, cfg, logger)

	machine := wizard.NewMachine(cat, wizard.WithSlotPolicy(func(specialistID, bookingURL string) error {
		return bookingform.CheckBookingURL(dir, specialistID, bookingURL)
	}))
	wizardSvc := wizard.NewService(machine, store,
		wizard.WithServiceLogger(logger),
		wizard.WithRecorder(wizMetrics),
		wizard.WithHostResolver(dir),
	)

	limiter := httpmiddleware.NewRateLimiter(cfg.CalendarRateLimit, cfg.CalendarRateBurst)
	a.closers = append(a.closers, limiter.Close)

	a.Handler = router.New(&router.Config{
		Logger:             logger,
		Calendar:           calendar.NewHandler(calendarSvc, logger),
		Catalog:            catalog.NewHandler(cat),
		Wizard:             wizard.NewHandler(wizardSvc, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		CalendarLimiter:    limiter,
		HealthChecks:       healthChecks,
	})
	return a, nil
}

func setupSnapshots(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) calendar.SnapshotSink {
	if cfg.SnapshotBucket == "" {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("snapshot archive disabled: aws config", "error", err)
		return nil
	}
	store := bootstrap.BuildSnapshotStore(bootstrap.NewS3Client(awsCfg, cfg), cfg, logger)
	if store == nil {
		return nil
	}
	return store
}
