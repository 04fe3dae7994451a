package consent

import (
	"fmt"
	"time"
)

// InvalidTicketError indicates a ticket that failed structural or signature
// verification.
type InvalidTicketError struct {
	// Reason describes what failed (malformed, bad signature, claims)
	Reason string
}

// Error implements the error interface.
func (e *InvalidTicketError) Error() string {
	return fmt.Sprintf("invalid consent ticket: %s", e.Reason)
}

// NewInvalidTicketError creates a new InvalidTicketError.
func NewInvalidTicketError(reason string) *InvalidTicketError {
	return &InvalidTicketError{Reason: reason}
}

// ExpiredTicketError indicates a structurally valid ticket whose validity
// window has passed.
type ExpiredTicketError struct {
	// ExpiredAt is the ticket's expiry timestamp
	ExpiredAt time.Time
}

// Error implements the error interface.
func (e *ExpiredTicketError) Error() string {
	return fmt.Sprintf("consent ticket expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

// NewExpiredTicketError creates a new ExpiredTicketError.
func NewExpiredTicketError(expiredAt time.Time) *ExpiredTicketError {
	return &ExpiredTicketError{ExpiredAt: expiredAt}
}

// KeyError indicates a signer constructed with an unusable secret.
type KeyError struct {
	// Message describes the key problem
	Message string
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	return fmt.Sprintf("consent signing key error: %s", e.Message)
}
