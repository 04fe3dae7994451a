// Package archive persists final snapshots of ended sessions.
//
// When a session ends, its complete export (audit trail plus final ledger
// state) is written here so the record outlives the in-memory session. The
// store is a CGO-free SQLite database (modernc.org/sqlite): the live audit
// mirror and the archive are deliberately separate stores with separate
// drivers, because the archive must be readable on hosts where the audit
// database's native driver is unavailable.
package archive
