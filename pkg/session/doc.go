// Package session manages the set of live governed sessions.
//
// Manager is the registry: it creates sessions from shared defaults (mode
// catalog, transport provider, consent signer), serves lookups, and ends
// sessions, archiving their final snapshot when an archive store is
// configured. Sessions are isolated from one another; the manager adds no
// cross-session coordination beyond the registry map itself.
//
// The manager is also the metrics seam: every operation that changes a
// session's ledger or produces a decision reports to the telemetry metrics
// when they are configured.
package session
