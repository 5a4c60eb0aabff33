package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-reports/internal/auth"
	"github.com/nurpe/fleet-reports/internal/cache"
	"github.com/nurpe/fleet-reports/internal/config"
	"github.com/nurpe/fleet-reports/internal/db"
	"github.com/nurpe/fleet-reports/internal/excel"
	"github.com/nurpe/fleet-reports/internal/fleetapi"
	httphandler "github.com/nurpe/fleet-reports/internal/http"
	"github.com/nurpe/fleet-reports/internal/http/middleware"
	"github.com/nurpe/fleet-reports/internal/logger"
	"github.com/nurpe/fleet-reports/internal/notify"
	"github.com/nurpe/fleet-reports/internal/pdf"
	"github.com/nurpe/fleet-reports/internal/repository"
	"github.com/nurpe/fleet-reports/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("reports service stopped")
		os.Exit(1)
	}
}

// run returns instead of exiting so that deferred connection closes run.
func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	database, err := db.New(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	checks := map[string]httphandler.HealthCheck{
		"db": func(ctx context.Context) error { return db.Ping(ctx, database) },
	}

	var reportCache service.ReportCache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		rc := cache.NewReportCache(redisClient, cfg.Reports.CacheTTL)
		reportCache = rc
		checks["redis"] = rc.Ping
	} else {
		log.Info().Msg("redis not configured, report cache disabled")
	}

	var notifier service.ExportNotifier = notify.Noop{}
	if cfg.NATS.Enabled() {
		natsNotifier, conn, err := notify.Connect(cfg.NATS.URL, cfg.NATS.ExportsSubject, log)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer conn.Close()
		notifier = natsNotifier
		checks["nats"] = func(context.Context) error {
			if !conn.IsConnected() {
				return fmt.Errorf("nats status %s", conn.Status())
			}
			return nil
		}
	} else {
		log.Info().Msg("nats not configured, export notifications disabled")
	}

	pdfGenerator := pdf.NewGenerator()
	if cfg.Reports.PDFFont != "" {
		fontData, err := os.ReadFile(cfg.Reports.PDFFont)
		if err != nil {
			return fmt.Errorf("read pdf font: %w", err)
		}
		if pdfGenerator, err = pdf.NewUTF8Generator(fontData); err != nil {
			return fmt.Errorf("pdf font %s: %w", cfg.Reports.PDFFont, err)
		}
	}

	fleetClient := fleetapi.NewClient(cfg.FleetAPI.BaseURL, cfg.FleetAPI.Timeout)
	reportService := service.NewReportService(
		func(token string) service.FleetAPI { return fleetClient.WithToken(token) },
		reportCache,
		excel.NewGenerator(),
		pdfGenerator,
		service.ReportOptions{
			DefaultRange: cfg.Reports.DefaultRange,
			Location:     cfg.Reports.Location(),
		},
		log,
	)

	exportRepo := repository.NewExportRepository(database)
	exportService := service.NewExportService(exportRepo, notifier, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(reportService, exportService, checks, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("fleet_api", fleetClient.BaseURL()).Msg("starting reports service")

	return router.Run(addr)
}
