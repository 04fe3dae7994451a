// Package audit defines the append-only audit trail for governance
// decisions.
//
// # Overview
//
// Every exchange attempt, mode change, and budget top-up in a session
// produces exactly one Entry. Entries carry contiguous, gapless sequence
// numbers starting at 1, which makes the trail tamper-evident by ordering:
// a removed or reordered entry is visible as a gap.
//
// Each entry records the ledger balance before and after the event, so a
// third party can reconstruct the exact ledger state around every
// decision from the exported trail alone.
//
// # Audit Minimization
//
// Entries never store raw prompt content. The prompt appears only as a
// SHA-256 digest; see the recorder subpackage.
//
// # Subpackages
//
//   - recorder:  the per-session append-only log with async durable mirror
//   - storage:   storage backends (memory, SQLite)
//   - export:    field-labeled serializations (JSON, CSV, Markdown)
//   - retention: scheduled pruning of stored entries
package audit
