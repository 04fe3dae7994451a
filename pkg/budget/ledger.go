package budget

import "sync"

// Ledger is the per-session account of allocated and spent risk budget.
//
// The zero allocation state is valid: a fresh ledger has nothing allocated
// and nothing spent, and CanAfford reports false for any positive cost
// until Allocate is called.
type Ledger struct {
	allocated float64
	spent     float64

	mu sync.RWMutex
}

// NewLedger creates an empty ledger with no allocation.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Allocate sets the session's budget. Allocation is one-shot: it fails
// with *InvalidAllocation if amount <= 0, if the ledger was already
// allocated, or if any spend has occurred. Use TopUp to grow the budget
// of a live session.
func (l *Ledger) Allocate(amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return &InvalidAllocation{Amount: amount, Reason: "amount must be positive"}
	}
	if l.allocated > 0 {
		return &InvalidAllocation{Amount: amount, Reason: "ledger already allocated"}
	}
	if l.spent > 0 {
		return &InvalidAllocation{Amount: amount, Reason: "allocation after spend"}
	}

	l.allocated = amount
	return nil
}

// TopUp increases the allocation of an already-allocated ledger.
// It never touches spent. Fails with *InvalidAllocation if amount <= 0 or
// the ledger was never allocated.
func (l *Ledger) TopUp(amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return &InvalidAllocation{Amount: amount, Reason: "top-up must be positive"}
	}
	if l.allocated == 0 {
		return &InvalidAllocation{Amount: amount, Reason: "top-up before allocation"}
	}

	l.allocated += amount
	return nil
}

// CanAfford reports whether the remaining balance covers cost.
func (l *Ledger) CanAfford(cost float64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allocated-l.spent >= cost
}

// Charge increases spent by cost. It fails with *OverdraftAttempt if cost
// exceeds the remaining balance; callers must have checked CanAfford (or
// capped the charge) first. A zero cost charge is a no-op.
func (l *Ledger) Charge(cost float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cost < 0 {
		return &OverdraftAttempt{Cost: cost, Remaining: l.allocated - l.spent}
	}
	if cost > l.allocated-l.spent {
		return &OverdraftAttempt{Cost: cost, Remaining: l.allocated - l.spent}
	}

	l.spent += cost
	return nil
}

// Remaining returns allocated - spent. Never negative.
func (l *Ledger) Remaining() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allocated - l.spent
}

// Spent returns the total spend so far.
func (l *Ledger) Spent() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.spent
}

// Allocated returns the current allocation (initial plus top-ups).
func (l *Ledger) Allocated() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allocated
}

// Snapshot returns allocated and spent as one consistent read.
func (l *Ledger) Snapshot() (allocated, spent float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allocated, l.spent
}
