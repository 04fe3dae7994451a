package budget

import "fmt"

// InvalidAllocation reports a misuse of Allocate or TopUp: a non-positive
// amount, or re-allocation after spending has started. It signals a caller
// bug, not a recoverable runtime condition.
type InvalidAllocation struct {
	Amount float64 // Requested amount
	Reason string  // Why the allocation was rejected
}

// Error implements the error interface.
func (e *InvalidAllocation) Error() string {
	return fmt.Sprintf("invalid allocation [amount=%g]: %s", e.Amount, e.Reason)
}

// OverdraftAttempt reports a charge exceeding the remaining balance.
// Callers must check CanAfford before charging; seeing this error means
// the admission path is broken.
type OverdraftAttempt struct {
	Cost      float64 // Attempted charge
	Remaining float64 // Balance at the time of the attempt
}

// Error implements the error interface.
func (e *OverdraftAttempt) Error() string {
	return fmt.Sprintf("overdraft attempt [cost=%g, remaining=%g]", e.Cost, e.Remaining)
}
