package audit

import (
	"context"
	"io"
	"time"

	"oecs-hq/lusaka/pkg/modes"
)

// EntryKind identifies the kind of audited event.
type EntryKind string

const (
	// KindExchange records one exchange attempt and its admission decision.
	KindExchange EntryKind = "exchange"

	// KindModeChange records an explicit mode switch. Mode changes are
	// never silent mutations; they occupy a slot in the same sequence as
	// exchanges.
	KindModeChange EntryKind = "mode_change"

	// KindTopUp records a budget renewal.
	KindTopUp EntryKind = "top_up"
)

// Decision is the admission verdict for one exchange. It is a closed set:
// every variant maps to a defined, non-refusing user message, and no
// variant is ever produced from prompt content.
type Decision string

const (
	// DecisionAdmit admits the exchange at full estimated cost.
	DecisionAdmit Decision = "ADMIT"

	// DecisionAdmitWithWarning admits the exchange in a mode that allows
	// degraded continuation; the charge is capped at the remaining
	// balance and the warning names the exact balance and cost.
	DecisionAdmitWithWarning Decision = "ADMIT_WITH_WARNING"

	// DecisionDenyInsufficientBudget denies the exchange because the
	// budget is exhausted and the mode does not allow continuation at
	// zero balance. Denial is never content-based.
	DecisionDenyInsufficientBudget Decision = "DENY_INSUFFICIENT_BUDGET"
)

// Admitted reports whether the decision lets the exchange proceed to the
// model transport.
func (d Decision) Admitted() bool {
	return d == DecisionAdmit || d == DecisionAdmitWithWarning
}

// Balance is a point-in-time ledger reading recorded on each entry.
type Balance struct {
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// ExchangeRecord is the immutable description of one exchange attempt.
type ExchangeRecord struct {
	// SequenceNo is the exchange ordinal within the session, starting at 1.
	SequenceNo int `json:"sequence_no"`

	// Mode is the mode at request time.
	Mode modes.Mode `json:"mode_at_request"`

	// EstimatedCost is the full escalated cost computed for the exchange,
	// before any cap in degraded continuation.
	EstimatedCost float64 `json:"estimated_cost"`

	// PromptDigest is the SHA-256 hex digest of the prompt. Raw content
	// is never stored.
	PromptDigest string `json:"prompt_digest"`
}

// Entry is one append-only audit record. Entries are immutable once
// appended.
type Entry struct {
	// ID is a UUID for durable storage. Ordering authority is Sequence,
	// not ID.
	ID string `json:"id"`

	// SessionID identifies the owning session.
	SessionID string `json:"session_id"`

	// Sequence is the entry's position in the session trail, starting at
	// 1 with no gaps.
	Sequence int `json:"sequence"`

	// Kind is the audited event kind.
	Kind EntryKind `json:"kind"`

	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`

	// Exchange is set for KindExchange entries.
	Exchange *ExchangeRecord `json:"exchange,omitempty"`

	// Decision is set for KindExchange entries.
	Decision Decision `json:"decision,omitempty"`

	// ChargedCost is the amount actually charged for this entry. Zero for
	// denied exchanges and non-exchange events; may be less than the
	// exchange's EstimatedCost under degraded continuation.
	ChargedCost float64 `json:"charged_cost"`

	// BudgetBefore and BudgetAfter bracket the ledger mutation.
	BudgetBefore Balance `json:"budget_before"`
	BudgetAfter  Balance `json:"budget_after"`

	// Mode records the resulting mode for KindModeChange entries.
	Mode modes.Mode `json:"mode,omitempty"`

	// Note carries the denial reason or warning text surfaced to the user.
	Note string `json:"note,omitempty"`

	// TransportError records a failed model call. The charge for the
	// exchange is not rolled back; spend reflects attempt, not success.
	TransportError string `json:"transport_error,omitempty"`
}

// Snapshot is a complete, order-preserving export of one session's trail
// plus its final ledger state. Exporting is a read operation; it does not
// end the session.
type Snapshot struct {
	SessionID  string     `json:"session_id"`
	Mode       modes.Mode `json:"mode"`
	State      string     `json:"state"`
	Balance    Balance    `json:"balance"`
	Entries    []Entry    `json:"entries"`
	ExportedAt time.Time  `json:"exported_at"`
}

// Query filters stored entries.
type Query struct {
	SessionID string     `json:"session_id,omitempty"`
	Kind      EntryKind  `json:"kind,omitempty"`
	Decision  Decision   `json:"decision,omitempty"`
	Before    *time.Time `json:"before,omitempty"` // Exclusive upper bound on Timestamp
	After     *time.Time `json:"after,omitempty"`  // Inclusive lower bound on Timestamp
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// Storage is a durable mirror of audit entries. Implementations must be
// safe for concurrent use. The in-memory per-session trail, not storage,
// is the ordering authority; storage exists for offline audit across
// process restarts.
type Storage interface {
	// Store persists one entry.
	Store(ctx context.Context, entry *Entry) error

	// Query retrieves entries matching the filters, ordered by session
	// and sequence.
	Query(ctx context.Context, query *Query) ([]*Entry, error)

	// Count returns the number of entries matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes entries matching the filters and returns how many
	// were removed. Used only by retention enforcement; the live trail
	// of an active session is never touched.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter serializes a session snapshot to a field-labeled format.
type Exporter interface {
	Export(ctx context.Context, snapshot *Snapshot, w io.Writer) error
}
