// Command apikey provides a CLI utility for API key management in the
// media fetcher service.
//
// It supports the following operations:
//   - create: Issue a new API key, optionally with a label
//   - list: Show issued keys (id, prefix, creation time, label)
//   - revoke: Revoke a key by id
//   - status: Show how many keys are issued
//
// Usage:
//
//	apikey <command>
//
// Commands:
//
//	create [label]  Issue a new key. The raw key is printed exactly once;
//	                the store keeps only its SHA-256 hash, so a lost key
//	                must be revoked and reissued.
//
//	list            List issued keys. Only the first characters of each
//	                key (the prefix) are shown, never the key itself.
//
//	revoke <id>     Revoke a key. Requests presenting it are rejected
//	                immediately afterwards.
//
//	status          Display how many keys are currently issued.
//
// Environment:
//
//	DATA_DIR - Path to data directory (default: /data)
//
// Notes:
//
// The service has no key management endpoints; issuing and revoking keys
// happens only through this utility, against the same keys.db the server
// reads. Changes take effect without a server restart.
package main
