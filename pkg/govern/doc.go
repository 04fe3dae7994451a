// Package govern implements the admission evaluator and the per-session
// governance orchestrator.
//
// # Evaluator
//
// Evaluate is a pure function over the mode catalog and a ledger snapshot.
// It returns one of three decisions:
//
//   - ADMIT: the ledger can afford the full escalated cost.
//   - ADMIT_WITH_WARNING: the ledger cannot afford the full cost but the
//     mode allows degraded continuation; the charge is capped at the
//     remaining balance, draining the ledger to exactly zero. Allowing
//     modes warn even at zero balance — warn, never block.
//   - DENY_INSUFFICIENT_BUDGET: the mode does not allow degraded
//     continuation and the cost exceeds the remaining balance. The denial
//     is economic, never content-based: no branch reads the prompt.
//
// # Session
//
// Session is the orchestrator: a state machine over {PENDING_CONSENT,
// ACTIVE, BUDGET_DEPLETED, ENDED}. A session is created with an allocation
// and an initial mode, becomes ACTIVE when the operator accepts the mode
// contract (which issues a signed consent ticket), and processes exchanges
// strictly sequentially under a per-session mutex.
//
// The charge for an admitted exchange is committed to the ledger BEFORE the
// model transport is invoked, and a transport failure does not roll it
// back: spend reflects attempt, not success. BUDGET_DEPLETED is not a
// lock — exchanges still reach the evaluator; only the surfaced notice
// changes.
package govern
