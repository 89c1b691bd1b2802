package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/docuscope/backend/internal/analysis"
	"github.com/docuscope/backend/internal/api"
	"github.com/docuscope/backend/internal/batch"
	"github.com/docuscope/backend/internal/config"
	"github.com/docuscope/backend/internal/extract"
	"github.com/docuscope/backend/internal/llm"
	"github.com/docuscope/backend/internal/results"
	"github.com/docuscope/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Advanced.LogLevel)
	slog.SetDefault(logger)

	// Initialize upload storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir(), cfg.Storage.MaxUploadSize, logger)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize results store
	dbPath := filepath.Join(cfg.Storage.DataDirectory, "analyses.db")
	resultsStore, err := results.NewStore(dbPath, logger)
	if err != nil {
		fmt.Printf("Failed to initialize results store: %v\n", err)
		os.Exit(1)
	}
	defer resultsStore.Close()

	// Wire the analysis pipeline
	extractor := extract.NewService(extract.Options{}, logger)

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.Analysis.APIKey,
		BaseURL:     cfg.Analysis.BaseURL,
		Model:       cfg.Analysis.Model,
		Temperature: cfg.Analysis.Temperature,
	}, nil, logger)

	analyzer := analysis.NewAnalyzer(llmClient, analysis.Config{
		ChunkSize:     cfg.Analysis.ChunkSize,
		ChunkOverlap:  cfg.Analysis.ChunkOverlap,
		PreviewLength: cfg.Analysis.PreviewLength,
	}, logger)

	orchestrator := batch.NewOrchestrator(
		extractor,
		analyzer,
		fileStore,
		time.Duration(cfg.Analysis.ProgressDelayMs)*time.Millisecond,
		logger,
	)

	batchMgr := batch.NewManager(orchestrator, resultsStore, logger)

	tempMaxAge := time.Duration(cfg.Storage.TempFileMaxAgeMs) * time.Millisecond

	// Background sweep of stale temp files
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Storage.SweepIntervalMin) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			fileStore.Sweep(tempMaxAge)
		}
	}()

	// Background cleanup of finished batch jobs
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Analysis.JobMaxAgeMin) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			batchMgr.CleanupOldJobs(time.Duration(cfg.Analysis.JobMaxAgeMin) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Configure middleware
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/progress") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") ||
				strings.Contains(path, "/process") ||
				strings.Contains(path, "/analyze") ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
		ErrorMessage: "Request timeout - query took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Accept") == "text/event-stream"
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	handlers := api.NewHandlers(&api.Dependencies{
		Store:        fileStore,
		Orchestrator: orchestrator,
		BatchMgr:     batchMgr,
		Results:      resultsStore,
		Sink:         resultsStore,
		TempMaxAge:   tempMaxAge,
		Version:      Version,
		Logger:       logger,
	})
	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Document Analyzer Server                        ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Model:      %-45s║\n", cfg.Analysis.Model)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if cfg.Analysis.APIKey == "" {
		logger.Warn("server.start", "message", "OPENAI_API_KEY is not set, analysis requests will fail")
	}

	e.Logger.Fatal(e.StartServer(s))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
