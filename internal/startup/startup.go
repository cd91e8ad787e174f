package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// ToolInfo describes an external tool the service depends on
type ToolInfo struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Config holds all application configuration
type Config struct {
	DataDir    string
	ScratchDir string
	Port       string

	MetricsPort    string
	MetricsEnabled bool

	YtdlpPath  string
	FFmpegPath string

	AudioBitrateKbps int
	AudioCodec       string
	SizeFactor       float64

	MaxConcurrentJobs int
	SweepInterval     time.Duration
	SweepMaxAge       time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	LogHealthChecks bool

	// Derived paths
	DatabasePath string

	// Tool details resolved by LogToolsInit
	Ytdlp  ToolInfo
	FFmpeg ToolInfo
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	dataDir := getEnv("DATA_DIR", "/data")
	scratchDir := getEnv("SCRATCH_DIR", "/scratch")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	ytdlpPath := getEnv("YTDLP_PATH", "yt-dlp")
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	audioBitrate := getEnvInt("AUDIO_BITRATE_KBPS", 30)
	audioCodec := getEnv("AUDIO_CODEC", "aac")
	sizeFactor := getEnvFloat("SIZE_FACTOR", 0.60)
	maxJobs := getEnvInt("MAX_CONCURRENT_JOBS", workers.ForIO(16))
	sweepIntervalStr := getEnv("SWEEP_INTERVAL", "1h")
	sweepMaxAgeStr := getEnv("SWEEP_MAX_AGE", "2h")
	rateLimitRPS := getEnvFloat("RATE_LIMIT_RPS", 10)
	rateLimitBurst := getEnvInt("RATE_LIMIT_BURST", 20)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	logging.Info("  DATA_DIR:            %s", dataDir)
	logging.Info("  SCRATCH_DIR:         %s", scratchDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  YTDLP_PATH:          %s", ytdlpPath)
	logging.Info("  FFMPEG_PATH:         %s", ffmpegPath)
	logging.Info("  AUDIO_BITRATE_KBPS:  %d", audioBitrate)
	logging.Info("  AUDIO_CODEC:         %s", audioCodec)
	logging.Info("  SIZE_FACTOR:         %.2f", sizeFactor)
	logging.Info("  MAX_CONCURRENT_JOBS: %d", maxJobs)
	logging.Info("  SWEEP_INTERVAL:      %s", sweepIntervalStr)
	logging.Info("  SWEEP_MAX_AGE:       %s", sweepMaxAgeStr)
	logging.Info("  RATE_LIMIT_RPS:      %.1f", rateLimitRPS)
	logging.Info("  RATE_LIMIT_BURST:    %d", rateLimitBurst)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	sweepInterval, err := time.ParseDuration(sweepIntervalStr)
	if err != nil {
		logging.Warn("  Invalid SWEEP_INTERVAL, using default: 1h")
		sweepInterval = time.Hour
	}

	sweepMaxAge, err := time.ParseDuration(sweepMaxAgeStr)
	if err != nil {
		logging.Warn("  Invalid SWEEP_MAX_AGE, using default: 2h")
		sweepMaxAge = 2 * time.Hour
	}

	if audioBitrate <= 0 {
		logging.Warn("  Invalid AUDIO_BITRATE_KBPS, using default: 30")
		audioBitrate = 30
	}

	if sizeFactor <= 0 || sizeFactor > 1 {
		logging.Warn("  Invalid SIZE_FACTOR, using default: 0.60")
		sizeFactor = 0.60
	}

	if maxJobs < 1 {
		logging.Warn("  Invalid MAX_CONCURRENT_JOBS, using default: %d", workers.ForIO(16))
		maxJobs = workers.ForIO(16)
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	logging.Info("  Data directory (absolute): %s", dataDir)

	scratchDir, err = filepath.Abs(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scratch directory path: %w", err)
	}
	logging.Info("  Scratch directory (absolute): %s", scratchDir)

	config := &Config{
		DataDir:           dataDir,
		ScratchDir:        scratchDir,
		Port:              port,
		MetricsPort:       metricsPort,
		MetricsEnabled:    metricsEnabled,
		YtdlpPath:         ytdlpPath,
		FFmpegPath:        ffmpegPath,
		AudioBitrateKbps:  audioBitrate,
		AudioCodec:        audioCodec,
		SizeFactor:        sizeFactor,
		MaxConcurrentJobs: maxJobs,
		SweepInterval:     sweepInterval,
		SweepMaxAge:       sweepMaxAge,
		RateLimitRPS:      rateLimitRPS,
		RateLimitBurst:    rateLimitBurst,
		LogHealthChecks:   logHealthChecks,
		DatabasePath:      filepath.Join(dataDir, "keys.db"),
	}

	// Data directory holds the key database (required)
	if err := ensureDirectory(dataDir, "data"); err != nil {
		return nil, fmt.Errorf("data directory error: %w", err)
	}

	logging.Debug("  Testing data directory write access...")
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable (required for key database): %w", err)
	}
	logging.Info("  [OK] Data directory is writable")

	// Scratch directory holds per-job working directories (required)
	if err := ensureDirectory(scratchDir, "scratch"); err != nil {
		return nil, fmt.Errorf("scratch directory error: %w", err)
	}

	logging.Debug("  Testing scratch directory write access...")
	if err := testWriteAccess(scratchDir); err != nil {
		return nil, fmt.Errorf("scratch directory is not writable (required for downloads): %w", err)
	}
	logging.Info("  [OK] Scratch directory is writable")

	return config, nil
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Key database initialized in %v", duration)
}

// LogToolsInit verifies that the external tools are present and logs their
// versions. Both yt-dlp and ffmpeg are required: without them no job can
// run, so a missing tool is a startup failure rather than a warning.
func LogToolsInit(config *Config) error {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTERNAL TOOLS")
	logging.Info("------------------------------------------------------------")

	ytdlp, err := checkTool(config.YtdlpPath, "--version")
	if err != nil {
		return fmt.Errorf("yt-dlp check failed: %w", err)
	}
	config.Ytdlp = ytdlp
	logging.Info("  [OK] yt-dlp %s (%s)", ytdlp.Version, ytdlp.Path)

	ffmpeg, err := checkTool(config.FFmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg check failed: %w", err)
	}
	config.FFmpeg = ffmpeg
	logging.Info("  [OK] ffmpeg %s (%s)", ffmpeg.Version, ffmpeg.Path)

	return nil
}

// LogPipelineInit logs job pipeline initialization
func LogPipelineInit(maxJobs int, sweepInterval, sweepMaxAge time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PIPELINE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Concurrent job slots: %d", maxJobs)
	logging.Info("  Orphan sweep interval: %v (max age %v)", sweepInterval, sweepMaxAge)
}

// LogSweeperStarted logs successful sweeper start
func LogSweeperStarted(removed int) {
	if removed > 0 {
		logging.Info("  [OK] Startup sweep removed %d orphaned scratch directories", removed)
	} else {
		logging.Info("  [OK] Startup sweep found no orphaned scratch directories")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., subrouter mounts)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for versioned API routes
	if first == "v1" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "v1/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    API:           http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   __  ___        ___        ____    __      __
  /  |/  /__ ____/ (_)__ _  / __/__ / /_____/ /  ___ ____
 / /|_/ / -_) _  / / _ '/  / _// -_) __/ __/ _ \/ -_) __/
/_/  /_/\__/\_,_/_/\_,_/  /_/  \__/\__/\__/_//_/\__/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if name == "scratch" && logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			leftover := 0
			for _, e := range entries {
				if e.IsDir() {
					leftover++
				}
			}
			if leftover > 0 {
				logging.Debug("    Contents: %d leftover job directories (sweep will reclaim them)", leftover)
			}
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func checkTool(path, versionArg string) (ToolInfo, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return ToolInfo{}, fmt.Errorf("%s not found in PATH", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, resolved, versionArg)
	output, err := cmd.Output()
	if err != nil {
		return ToolInfo{}, fmt.Errorf("failed to get %s version: %w", path, err)
	}

	version := ""
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ToolInfo{Path: resolved, Version: version}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid numeric value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
