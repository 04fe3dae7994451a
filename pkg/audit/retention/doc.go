// Package retention enforces retention policy on stored audit entries.
//
// The Pruner deletes entries from the durable storage mirror once they
// age out of the configured retention window; the Scheduler runs it on a
// cron schedule. Retention only ever touches the storage mirror — the
// live in-memory trail of an active session is append-only and is never
// pruned.
package retention
