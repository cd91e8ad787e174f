package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-fetcher/internal/database"
	"media-fetcher/internal/extractor"
	"media-fetcher/internal/formats"
	"media-fetcher/internal/handlers"
	"media-fetcher/internal/logging"
	"media-fetcher/internal/memory"
	"media-fetcher/internal/metrics"
	"media-fetcher/internal/middleware"
	"media-fetcher/internal/muxer"
	"media-fetcher/internal/pipeline"
	"media-fetcher/internal/runner"
	"media-fetcher/internal/startup"
	"media-fetcher/internal/streaming"
	"media-fetcher/internal/workspace"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load .env file if present; deployments usually set the environment directly
	_ = godotenv.Load()

	// Configure GOMEMLIMIT before allocations start piling up
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	// Initialize key database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize key database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Verify external tools before accepting any work
	if err := startup.LogToolsInit(config); err != nil {
		startup.LogFatal("Tool check failed: %v", err)
	}

	// Scratch workspace with orphan sweeping
	startup.LogPipelineInit(config.MaxConcurrentJobs, config.SweepInterval, config.SweepMaxAge)
	ws := workspace.New(config.ScratchDir)

	// Anything in the scratch root at startup is an orphan from a previous run
	removed, err := ws.Sweep(0)
	if err != nil {
		logging.Warn("Startup sweep failed: %v", err)
	}
	startup.LogSweeperStarted(removed)

	sweeper := workspace.NewSweeper(ws, config.SweepInterval, config.SweepMaxAge)
	sweeper.Start()

	// Tool runners and pipeline stages
	run := runner.New()
	ext := extractor.New(run, config.YtdlpPath)
	merger := muxer.New(run, config.FFmpegPath)
	catalog := formats.NewCatalog(ext, config.AudioBitrateKbps, config.SizeFactor)

	streamConfig := streaming.DefaultConfig()
	streamConfig.Observer = metrics.NewStreamObserver()

	pipe := pipeline.New(ws, ext, merger, run, pipeline.Config{
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		AudioCodec:        config.AudioCodec,
		Stream:            streamConfig,
	})

	// Initialize handlers
	h := handlers.New(db, catalog, pipe, ws, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware (innermost, sees final status codes)
	metricsHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply rate limiting middleware
	rateLimitConfig := middleware.RateLimitConfig{
		RequestsPerSecond: config.RateLimitRPS,
		Burst:             config.RateLimitBurst,
	}
	limitedHandler := middleware.RateLimit(rateLimitConfig)(metricsHandler)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(limitedHandler)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	// Metrics server on its own port
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

		collector = metrics.NewCollector(&serviceStats{db: db, ws: ws}, 15*time.Second)
		collector.Start()

		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+config.MetricsPort, metricsMux); err != nil {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Create server
	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Downloads stream for as long as they need; per-write deadlines
		// are enforced inside the pipeline instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	shutdownDone := make(chan struct{})
	go handleShutdown(srv, sweeper, pipe, collector, shutdownDone)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown closes the listeners;
	// wait for in-flight downloads to drain.
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes require a key
	api := r.PathPrefix("/v1").Subrouter()
	api.Use(h.RequireAPIKey)
	api.HandleFunc("/formats", h.ListFormats).Methods("POST")
	api.HandleFunc("/download", h.Download).Methods("POST")

	return r
}

// serviceStats feeds the periodic metrics collector.
type serviceStats struct {
	db *database.Database
	ws *workspace.Workspace
}

func (s *serviceStats) GetStats() metrics.Stats {
	keys, err := s.db.CountAPIKeys(context.Background())
	if err != nil {
		logging.Debug("Stats collection: %v", err)
	}

	return metrics.Stats{
		APIKeys:     keys,
		ScratchDirs: s.ws.Count(),
		OpenDBConns: s.db.OpenConnections(),
	}
}

func handleShutdown(srv *http.Server, sweeper *workspace.Sweeper, pipe *pipeline.Pipeline, collector *metrics.Collector, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping scratch sweeper")
	sweeper.Stop()
	startup.LogShutdownStepComplete("Sweeper stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	// Any tool process still alive after the drain deadline is killed
	startup.LogShutdownStep("Terminating tool processes")
	pipe.Shutdown()
	startup.LogShutdownStepComplete("Tool processes terminated")

	if collector != nil {
		collector.Stop()
	}

	startup.LogShutdownComplete()
}
