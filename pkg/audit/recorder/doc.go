// Package recorder implements the per-session append-only audit trail.
//
// # Overview
//
// A Recorder owns one session's ordered sequence of audit entries. Append
// assigns the next contiguous sequence number and is O(1); prior entries
// are never rewritten or deleted. Export returns an order-preserving copy
// of the full trail.
//
// # Durable Mirror
//
// When constructed with a storage backend, the recorder mirrors every
// entry to it asynchronously so appends never block on disk. The
// in-memory trail remains the ordering authority; a full mirror channel
// drops the durable copy (logged loudly) rather than stall the session.
package recorder
