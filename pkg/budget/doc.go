// Package budget provides the per-session risk budget ledger.
//
// # Overview
//
// A Ledger is the mutable account of one session's allocated and spent
// risk budget. Allocation is one-shot at session start; top-ups may only
// increase the allocation; spend only ever increases. The invariant
// spent <= allocated holds at all times.
//
// # Usage
//
//	ledger := budget.NewLedger()
//	if err := ledger.Allocate(100); err != nil { ... }
//
//	if ledger.CanAfford(cost) {
//	    _ = ledger.Charge(cost)
//	}
//
// # Programmer Invariants
//
// Charge returns *OverdraftAttempt when the charge exceeds the remaining
// balance, and Allocate returns *InvalidAllocation for non-positive amounts
// or re-allocation after spend. Both signal caller bugs: a well-formed
// caller checks CanAfford first and allocates exactly once. They are typed
// errors rather than panics so the orchestrator can surface them loudly
// without taking the whole process down.
//
// # Thread Safety
//
// All operations are safe for concurrent use via sync.RWMutex, though each
// session is expected to drive its ledger from a single goroutine at a time.
package budget
