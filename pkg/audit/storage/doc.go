// Package storage provides audit trail storage backends.
//
// Two backends are available:
//
//   - MemoryStorage: map-backed, for tests and ephemeral deployments
//   - SQLiteStorage: durable single-file database with WAL mode
//
// Both implement audit.Storage. The stored mirror exists for offline
// audit across process restarts; the live per-session trail in the
// recorder package remains the ordering authority.
//
// # Schema Migration
//
// SQLiteStorage tracks its schema version in the schema_version table for
// future migrations.
package storage
