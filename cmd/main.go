package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"product-extractor/config"
	"product-extractor/extractor"
	"product-extractor/importer"
	"product-extractor/internal/types"
	"product-extractor/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var (
		urlFlag        = flag.String("url", "", "Single product page to extract")
		urlsFlag       = flag.String("urls", "", "Comma-separated list of product pages")
		htmlFlag       = flag.String("html", "", "Local HTML file holding the page given by --url")
		collectionFlag = flag.String("collection", "", "Storefront collection page whose products are extracted")
		platformFlag   = flag.String("platform", "", "Force a platform instead of detecting it (with --html)")
		outputFlag     = flag.String("output", "", "Output file path (default: stdout)")
		configFlag     = flag.String("config", "", "Config file (default: ./config.yaml when present)")
		useBrowser     = flag.Bool("browser", false, "Use headless browser for JavaScript-heavy sites")
		httpOnly       = flag.Bool("http-only", false, "Use HTTP requests only (disable headless browser)")
		importFlag     = flag.Bool("import", false, "Send extracted products to the import API")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	urls := splitList(*urlsFlag)
	if *urlFlag != "" {
		urls = append([]string{strings.TrimSpace(*urlFlag)}, urls...)
	}
	if len(urls) == 0 && *collectionFlag == "" {
		log.Fatal("One of --url, --urls or --collection is required")
	}
	if *htmlFlag != "" && len(urls) != 1 {
		log.Fatal("--html needs exactly one --url")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *useBrowser {
		cfg.UseHeadlessBrowser = true
	}
	if *httpOnly {
		cfg.UseHeadlessBrowser = false
	}

	logger := utils.NewLogger(cfg.LogLevel, *verbose)

	fetcher := utils.NewPageFetcher(cfg, logger)
	service := extractor.NewService(cfg, logger, extractor.WithFetcher(fetcher))
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	startTime := time.Now()
	logger.Infof("Starting extraction at %v", startTime.Format("15:04:05.000"))

	var result *types.BatchResult
	switch {
	case *htmlFlag != "":
		result, err = extractLocal(ctx, service, urls[0], *htmlFlag, *platformFlag)
	default:
		if *collectionFlag != "" {
			discovered, derr := service.DiscoverProductURLs(ctx, *collectionFlag)
			if derr != nil {
				logger.Fatalf("Failed to discover products in %s: %v", *collectionFlag, derr)
			}
			urls = append(urls, discovered...)
		}
		result, err = service.ExtractURLs(ctx, urls)
	}
	if err != nil {
		logger.Fatalf("Extraction failed: %v", err)
	}
	logger.Infof("Extraction completed in %v", time.Since(startTime))

	if *importFlag {
		if cfg.Import.URL == "" {
			logger.Fatalf("--import needs import.url (set %s_IMPORT_URL)", config.EnvPrefix)
		}
		client := importer.NewClient(cfg.Import, logger, nil)
		client.ImportBatch(ctx, result)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Total pages processed: %d", len(result.Items))
	logger.Infof("Products extracted: %d", result.Succeeded)
	logger.Infof("Failed pages: %d", result.Failed)
}

// extractLocal extracts a page saved to disk, e.g. from the browser's
// "save page as"
func extractLocal(ctx context.Context, service *extractor.Service, pageURL, path, platformName string) (*types.BatchResult, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	page, err := types.NewPage(pageURL, string(html))
	if err != nil {
		return nil, err
	}

	if platformName == "" {
		return service.ExtractBatch(ctx, []*types.Page{page}), nil
	}

	platform, ok := types.ParsePlatform(platformName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedPlatform, platformName)
	}
	product, err := service.ExtractAs(ctx, platform, page)
	if err != nil {
		return nil, err
	}
	return &types.BatchResult{
		Items:     []types.BatchItem{{URL: pageURL, Platform: platform, Product: product}},
		Succeeded: 1,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
