package session

import "fmt"

// NotFoundError indicates a lookup for a session the manager does not hold.
type NotFoundError struct {
	// SessionID is the missing session
	SessionID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(sessionID string) *NotFoundError {
	return &NotFoundError{SessionID: sessionID}
}

// LimitError indicates the manager refused to create a session because the
// configured session limit is reached.
type LimitError struct {
	// Limit is the configured maximum
	Limit int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("session limit reached (%d active)", e.Limit)
}
