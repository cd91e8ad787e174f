// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all service configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - DATA_DIR: Path to the key database directory (default: /data)
//   - SCRATCH_DIR: Root for per-job working directories (default: /scratch)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - YTDLP_PATH: yt-dlp binary name or path (default: yt-dlp)
//   - FFMPEG_PATH: ffmpeg binary name or path (default: ffmpeg)
//   - AUDIO_BITRATE_KBPS: Assumed audio bitrate for size estimates (default: 30)
//   - AUDIO_CODEC: Audio codec used when merging streams (default: aac)
//   - SIZE_FACTOR: Empirical output size correction factor (default: 0.60)
//   - MAX_CONCURRENT_JOBS: Concurrent download job slots (default: 2x CPUs, max 16)
//   - SWEEP_INTERVAL: Orphan scratch sweep period as Go duration (default: 1h)
//   - SWEEP_MAX_AGE: Age after which an orphan scratch dir is removed (default: 2h)
//   - RATE_LIMIT_RPS: Request rate limit per second, 0 disables (default: 10)
//   - RATE_LIMIT_BURST: Rate limiter burst size (default: 20)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The package validates and creates required directories:
//   - Data directory: Required, must be writable (holds keys.db)
//   - Scratch directory: Required, must be writable (holds per-job dirs)
//
// # External Tools
//
// [LogToolsInit] resolves yt-dlp and ffmpeg through PATH, runs their version
// commands, and records the results on the Config. Both tools are required;
// a missing tool fails startup.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Key database initialization timing
//   - [LogToolsInit]: External tool resolution and versions
//   - [LogPipelineInit]: Job slot and sweep configuration
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
