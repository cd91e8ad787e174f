package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"media-fetcher/internal/database"
)

// =============================================================================
// Unit Tests
// =============================================================================

func TestPrintUsage(t *testing.T) {
	// Should not panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage panicked: %v", r)
		}
	}()

	printUsage()
}

func TestDefaultTimeout(t *testing.T) {
	expected := 30 * time.Second
	if defaultTimeout != expected {
		t.Errorf("defaultTimeout = %v, want %v", defaultTimeout, expected)
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase letters", "create", "create"},
		{"mixed case and digits", "Revoke42", "Revoke42"},
		{"hyphens and underscores", "my-cmd_2", "my-cmd_2"},
		{"spaces replaced", "my command", "my_command"},
		{"shell injection attempt", "create; rm -rf /", "create__rm_-rf__"},
		{"command substitution attempt", "$(whoami)", "__whoami_"},
		{"newlines replaced", "cmd\nevil", "cmd_evil"},
		{"unicode replaced", "café", "caf_"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeCommand(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDataDirPathConstruction(t *testing.T) {
	t.Setenv("DATA_DIR", "")

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	dbPath := filepath.Join(dataDir, "keys.db")

	if dbPath != "/data/keys.db" {
		t.Errorf("dbPath = %q, want /data/keys.db", dbPath)
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

// setupTestDB creates a test database for integration tests
func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "keys.db")

	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	return db
}

func TestCreateKeyIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if !createKey(ctx, db, "deploy bot") {
		t.Fatal("createKey returned false")
	}

	keys, err := db.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("got %d keys, want 1", len(keys))
	}
	if keys[0].Label != "deploy bot" {
		t.Errorf("Label = %q, want deploy bot", keys[0].Label)
	}
	if keys[0].Key != "" {
		t.Error("listing must not carry raw key material")
	}
}

func TestCreateKeyWithoutLabelIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if !createKey(ctx, db, "") {
		t.Fatal("createKey returned false")
	}

	count, err := db.CountAPIKeys(ctx)
	if err != nil {
		t.Fatalf("failed to count keys: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestListKeysEmptyIntegration(t *testing.T) {
	db := setupTestDB(t)

	if !listKeys(context.Background(), db) {
		t.Error("listKeys returned false for empty store")
	}
}

func TestListKeysIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, label := range []string{"first", "second"} {
		if _, err := db.CreateAPIKey(ctx, label); err != nil {
			t.Fatalf("failed to create key: %v", err)
		}
	}

	if !listKeys(ctx, db) {
		t.Error("listKeys returned false")
	}
}

func TestRevokeKeyIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateAPIKey(ctx, "doomed")
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}

	if !revokeKey(ctx, db, strconv.FormatInt(created.ID, 10)) {
		t.Fatal("revokeKey returned false")
	}

	// The revoked key must no longer authenticate
	if _, err := db.LookupAPIKey(ctx, created.Key); !errors.Is(err, database.ErrKeyNotFound) {
		t.Errorf("lookup after revoke = %v, want ErrKeyNotFound", err)
	}

	count, err := db.CountAPIKeys(ctx)
	if err != nil {
		t.Fatalf("failed to count keys: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestRevokeKeyUnknownIntegration(t *testing.T) {
	db := setupTestDB(t)

	if revokeKey(context.Background(), db, "999") {
		t.Error("revokeKey succeeded for a key that does not exist")
	}
}

func TestRevokeKeyInvalidIDIntegration(t *testing.T) {
	db := setupTestDB(t)

	if revokeKey(context.Background(), db, "not-a-number") {
		t.Error("revokeKey succeeded for a non-numeric id")
	}
}

func TestShowStatusIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if !showStatus(ctx, db) {
		t.Error("showStatus returned false for empty store")
	}

	if _, err := db.CreateAPIKey(ctx, "one"); err != nil {
		t.Fatalf("failed to create key: %v", err)
	}

	if !showStatus(ctx, db) {
		t.Error("showStatus returned false with keys issued")
	}
}

func TestShowStatusClosedDatabaseIntegration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keys.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	db.Close()

	if showStatus(context.Background(), db) {
		t.Error("showStatus succeeded against a closed database")
	}
}
