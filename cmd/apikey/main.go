package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"media-fetcher/internal/database"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default data directory path
	defaultDataDir = "/data"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	// Get data directory from env or default
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	dbPath := filepath.Join(dataDir, "keys.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open key database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATA_DIR is set correctly (current: %s)\n", dataDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	switch command {
	case "create":
		label := strings.TrimSpace(strings.Join(os.Args[2:], " "))
		if !createKey(ctx, db, label) {
			os.Exit(1)
		}
	case "list":
		if !listKeys(ctx, db) {
			os.Exit(1)
		}
	case "revoke":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: revoke requires a key id")
			printUsage()
			os.Exit(1)
		}
		if !revokeKey(ctx, db, os.Args[2]) {
			os.Exit(1)
		}
	case "status":
		if !showStatus(ctx, db) {
			os.Exit(1)
		}
	default:
		// Sanitize command input using allowlist to break taint chain
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand; only [a-zA-Z0-9_-] characters pass through
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Media Fetcher API Key Management")
	fmt.Println("")
	fmt.Println("Usage: apikey <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  create [label]  - Create a new API key, printing it once")
	fmt.Println("  list            - List issued keys (prefix and label only)")
	fmt.Println("  revoke <id>     - Revoke a key by id")
	fmt.Println("  status          - Show how many keys are issued")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATA_DIR - Path to data directory (default: %s)\n", defaultDataDir)
}

func createKey(ctx context.Context, db *database.Database, label string) bool {
	// Add timeout to context for database operations
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key, err := db.CreateAPIKey(ctx, label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create API key: %v\n", err)
		return false
	}

	fmt.Printf("Created API key %d", key.ID)
	if key.Label != "" {
		fmt.Printf(" (%s)", key.Label)
	}
	fmt.Println()
	fmt.Println("")
	fmt.Printf("  %s\n", key.Key)
	fmt.Println("")
	fmt.Println("Store this key now. Only its hash is kept; it cannot be shown again.")
	return true
}

func listKeys(ctx context.Context, db *database.Database) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	keys, err := db.ListAPIKeys(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list API keys: %v\n", err)
		return false
	}

	if len(keys) == 0 {
		fmt.Println("No API keys issued.")
		return true
	}

	fmt.Printf("%-6s %-10s %-20s %s\n", "ID", "PREFIX", "CREATED", "LABEL")
	for _, k := range keys {
		fmt.Printf("%-6d %-10s %-20s %s\n", k.ID, k.Prefix, k.CreatedAt.Format("2006-01-02 15:04:05"), k.Label)
	}
	return true
}

func revokeKey(ctx context.Context, db *database.Database, arg string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid key id %q (expected a number)\n", sanitizeCommand(arg))
		return false
	}

	if err := db.DeleteAPIKey(ctx, id); err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			fmt.Fprintf(os.Stderr, "Error: No API key with id %d\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "Error: Failed to revoke API key: %v\n", err)
		}
		return false
	}

	fmt.Printf("Revoked API key %d. Requests using it will now be rejected.\n", id)
	return true
}

func showStatus(ctx context.Context, db *database.Database) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	count, err := db.CountAPIKeys(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to query key database: %v\n", err)
		return false
	}

	switch count {
	case 0:
		fmt.Println("Status: No API keys issued (create one to allow access)")
	case 1:
		fmt.Println("Status: 1 API key issued")
	default:
		fmt.Printf("Status: %d API keys issued\n", count)
	}
	return true
}
