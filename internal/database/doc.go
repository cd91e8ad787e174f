// Package database provides the SQLite-backed API key store for the media
// fetcher service.
//
// Keys are random 32-byte values issued as hex strings. Only the SHA-256
// hash of the key material is stored, together with a short clear-text
// prefix for identification in listings, so a leaked database does not leak
// usable credentials.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
