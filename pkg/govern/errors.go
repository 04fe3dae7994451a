package govern

import "fmt"

// SessionStateError indicates an operation attempted in a state that does
// not permit it.
type SessionStateError struct {
	// SessionID is the session the operation targeted
	SessionID string

	// State is the session's current state
	State State

	// Op is the rejected operation
	Op string
}

// Error implements the error interface.
func (e *SessionStateError) Error() string {
	return fmt.Sprintf("session %s: cannot %s in state %s", e.SessionID, e.Op, e.State)
}

// NewSessionStateError creates a new SessionStateError.
func NewSessionStateError(sessionID string, state State, op string) *SessionStateError {
	return &SessionStateError{SessionID: sessionID, State: state, Op: op}
}

// ConsentError indicates a consent failure: a rejected contract phrase, or
// a missing, tampered, or expired ticket.
type ConsentError struct {
	// SessionID is the affected session
	SessionID string

	// Reason describes the consent failure
	Reason string

	// Cause is the underlying ticket error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ConsentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session %s: consent rejected: %s: %v", e.SessionID, e.Reason, e.Cause)
	}
	return fmt.Sprintf("session %s: consent rejected: %s", e.SessionID, e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConsentError) Unwrap() error {
	return e.Cause
}

// NewConsentError creates a new ConsentError.
func NewConsentError(sessionID, reason string, cause error) *ConsentError {
	return &ConsentError{SessionID: sessionID, Reason: reason, Cause: cause}
}
