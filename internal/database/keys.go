package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// APIKey represents an issued API key. Key holds the raw key material and is
// only populated by CreateAPIKey; the store keeps the SHA-256 hash.
type APIKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key,omitempty"`
	Prefix    string    `json:"prefix"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrKeyNotFound is returned when a presented key does not match any stored
// key. Callers use it to distinguish an unknown credential from a store
// failure.
var ErrKeyNotFound = errors.New("api key not found")

// prefixLen is the number of leading key characters kept in clear for
// identifying keys in listings.
const prefixLen = 8

// CreateAPIKey generates a new API key and stores its hash. The returned
// APIKey carries the raw key; it cannot be recovered afterwards.
func (d *Database) CreateAPIKey(ctx context.Context, label string) (*APIKey, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_api_key", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Generate random key material
	keyBytes := make([]byte, 32)
	if _, err = rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	// Hash the key for storage
	hash := sha256.Sum256(keyBytes)
	keyHash := hex.EncodeToString(hash[:])
	key := hex.EncodeToString(keyBytes)
	prefix := key[:prefixLen]

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO api_keys (key_hash, prefix, label) VALUES (?, ?, ?)",
		keyHash, prefix, label,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	id, _ := result.LastInsertId()

	return &APIKey{
		ID:        id,
		Key:       key, // Return unhashed key to caller
		Prefix:    prefix,
		Label:     label,
		CreatedAt: time.Now(),
	}, nil
}

// LookupAPIKey resolves a presented key to its stored record. A malformed or
// unknown key yields ErrKeyNotFound; any other error is a store failure.
func (d *Database) LookupAPIKey(ctx context.Context, key string) (*APIKey, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("lookup_api_key", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Hash the key for lookup. A key that doesn't decode can't be in the
	// store, so it is simply unknown rather than an error.
	keyBytes, decErr := hex.DecodeString(key)
	if decErr != nil {
		err = ErrKeyNotFound
		return nil, err
	}
	hash := sha256.Sum256(keyBytes)
	keyHash := hex.EncodeToString(hash[:])

	var apiKey APIKey
	var createdAt int64

	err = d.db.QueryRowContext(ctx,
		"SELECT id, prefix, label, created_at FROM api_keys WHERE key_hash = ?",
		keyHash,
	).Scan(&apiKey.ID, &apiKey.Prefix, &apiKey.Label, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		err = ErrKeyNotFound
		return nil, err
	}
	if err != nil {
		err = fmt.Errorf("failed to look up api key: %w", err)
		return nil, err
	}

	apiKey.CreatedAt = time.Unix(createdAt, 0)
	return &apiKey, nil
}

// ListAPIKeys returns all issued keys, newest first. Raw key material is
// never included.
func (d *Database) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_api_keys", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, prefix, label, created_at FROM api_keys ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var createdAt int64
		if err = rows.Scan(&k.ID, &k.Prefix, &k.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		k.CreatedAt = time.Unix(createdAt, 0)
		keys = append(keys, k)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}

	return keys, nil
}

// CountAPIKeys returns the number of issued keys.
func (d *Database) CountAPIKeys(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_api_keys", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_keys").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count api keys: %w", err)
	}
	return count, nil
}

// DeleteAPIKey revokes a key by id. Deleting a key that does not exist
// returns ErrKeyNotFound.
func (d *Database) DeleteAPIKey(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_api_key", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM api_keys WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		err = ErrKeyNotFound
		return err
	}

	return nil
}
