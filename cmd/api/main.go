package main

import (
	"flag"
	"fmt"
	"log"

	"product-extractor/api"
	"product-extractor/config"
	"product-extractor/extractor"
	"product-extractor/metrics"
	"product-extractor/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	configFlag := flag.String("config", "", "Config file (default: ./config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, false)
	logger.Infof("Environment: %s", cfg.Server.Environment)
	if cfg.Registry.URL != "" {
		logger.Infof("Selector registry: %s (refresh every %v)", cfg.Registry.URL, cfg.Registry.RefreshInterval)
	} else {
		logger.Warn("No selector registry configured, serving built-in selectors")
	}

	m := metrics.NewRegistry()
	fetcher := utils.NewPageFetcher(cfg, logger)
	service := extractor.NewService(cfg, logger, extractor.WithMetrics(m), extractor.WithFetcher(fetcher))
	defer service.Close()

	router := api.SetupRouter(cfg, api.NewHandler(service, cfg, logger), m)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Infof("Starting API server on %s", addr)
	logger.Info("Available endpoints:")
	logger.Info("  POST /api/v1/extract        - Extract one page")
	logger.Info("  POST /api/v1/extract/batch  - Extract several pages")
	logger.Info("  GET  /api/v1/selectors      - Active selector snapshot")
	logger.Info("  POST /api/v1/selectors/refresh - Refresh selectors from the registry")
	logger.Info("  GET  /health                - Health check")
	logger.Info("  GET  /metrics               - Prometheus metrics")

	if err := router.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
