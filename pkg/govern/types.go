package govern

import (
	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/modes"
)

// State is the session lifecycle state.
type State string

const (
	// StatePendingConsent means the session exists but the mode contract
	// has not been accepted; no exchange can proceed.
	StatePendingConsent State = "PENDING_CONSENT"

	// StateActive is the normal operating state.
	StateActive State = "ACTIVE"

	// StateBudgetDepleted means remaining() reached zero after a charge.
	// It is not a lock: exchanges still reach the evaluator, only the
	// surfaced notice changes.
	StateBudgetDepleted State = "BUDGET_DEPLETED"

	// StateEnded is terminal: explicit termination or close.
	StateEnded State = "ENDED"
)

// Evaluation is the outcome of evaluating one prospective exchange.
type Evaluation struct {
	// Decision is the admission verdict.
	Decision audit.Decision

	// EstimatedCost is the full escalated cost of the exchange.
	EstimatedCost float64

	// Charge is the amount that will actually be charged: the full cost
	// on ADMIT, capped at the remaining balance on ADMIT_WITH_WARNING,
	// zero on DENY.
	Charge float64

	// Message is the user-facing warning or denial text. Empty on a
	// plain ADMIT.
	Message string
}

// ExchangeResult is returned to the caller for every processed exchange,
// including denied ones.
type ExchangeResult struct {
	// Decision is the admission verdict for this exchange.
	Decision audit.Decision `json:"decision"`

	// Text is the model's reply. Empty when the exchange was denied or
	// the transport failed.
	Text string `json:"text,omitempty"`

	// Warning is the warning or denial message, when any.
	Warning string `json:"warning,omitempty"`

	// Notice is the persistent depletion notice, present whenever the
	// session is in BUDGET_DEPLETED.
	Notice string `json:"notice,omitempty"`

	// Mode is the mode the exchange was evaluated under.
	Mode modes.Mode `json:"mode"`

	// EstimatedCost and ChargedCost mirror the audit entry.
	EstimatedCost float64 `json:"estimated_cost"`
	ChargedCost   float64 `json:"charged_cost"`

	// Balance is the ledger state after the exchange.
	Balance audit.Balance `json:"balance"`

	// TransportError is set when the model call failed after the charge
	// was committed.
	TransportError string `json:"transport_error,omitempty"`
}

// Status is a point-in-time view of a session for control surfaces.
type Status struct {
	SessionID string        `json:"session_id"`
	State     State         `json:"state"`
	Mode      modes.Mode    `json:"mode"`
	Balance   audit.Balance `json:"balance"`
	Entries   int           `json:"entries"`
	Exchanges int           `json:"exchanges"`
}
