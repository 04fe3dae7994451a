package govern

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/audit/recorder"
	"oecs-hq/lusaka/pkg/budget"
	"oecs-hq/lusaka/pkg/consent"
	"oecs-hq/lusaka/pkg/modes"
	"oecs-hq/lusaka/pkg/providers"
)

// DeclinePhrase ends the contract handshake without consent.
const DeclinePhrase = "DECLINE"

var tracer = otel.Tracer("oecs-hq/lusaka/pkg/govern")

// SessionConfig configures a new session.
type SessionConfig struct {
	// SessionID identifies the session. Generated when empty.
	SessionID string

	// Allocation is the initial risk budget. Must be positive.
	Allocation float64

	// Mode is the initial operating mode.
	Mode modes.Mode

	// Model is the model identifier passed to the transport.
	Model string

	// TicketTTL bounds the consent ticket's validity window.
	// Zero means the ticket does not expire.
	TicketTTL time.Duration

	// Catalog is the mode catalog. Defaults to modes.DefaultCatalog().
	Catalog *modes.Catalog

	// Provider is the model transport.
	Provider providers.Provider

	// Signer issues and verifies consent tickets.
	Signer *consent.Signer

	// Storage optionally mirrors audit entries to durable storage.
	Storage audit.Storage

	// Recorder configures the audit recorder. Nil uses defaults.
	Recorder *recorder.Config

	// Clock supplies the current time. Defaults to time.Now. Tests
	// override it to pin ticket expiry.
	Clock func() time.Time
}

// Session is the per-session governance orchestrator. All operations are
// strictly sequential: a mutex serializes exchanges so that ledger reads
// and writes never interleave, and sequence numbers stay ordered even while
// a model call is in flight. Sessions are fully isolated from one another.
type Session struct {
	mu sync.Mutex

	id        string
	state     State
	mode      modes.Mode
	model     string
	ticketTTL time.Duration

	catalog   *modes.Catalog
	ledger    *budget.Ledger
	recorder  *recorder.Recorder
	provider  providers.Provider
	signer    *consent.Signer
	evaluator *Evaluator
	clock     func() time.Time
	log       *slog.Logger

	ticket      string
	exchangeSeq int
	admitted    map[modes.Mode]int
	history     []providers.Turn
}

// NewSession creates a session in PENDING_CONSENT with its budget already
// allocated. The session cannot process exchanges until AcceptContract.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = modes.DefaultCatalog()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Provider == nil {
		return nil, NewSessionStateError(cfg.SessionID, StatePendingConsent, "start without a transport provider")
	}
	if cfg.Signer == nil {
		return nil, NewSessionStateError(cfg.SessionID, StatePendingConsent, "start without a consent signer")
	}
	if !cfg.Catalog.Has(cfg.Mode) {
		return nil, NewConsentError(cfg.SessionID, "unknown mode "+string(cfg.Mode), nil)
	}

	ledger := budget.NewLedger()
	if err := ledger.Allocate(cfg.Allocation); err != nil {
		return nil, err
	}

	s := &Session{
		id:        cfg.SessionID,
		state:     StatePendingConsent,
		mode:      cfg.Mode,
		model:     cfg.Model,
		ticketTTL: cfg.TicketTTL,
		catalog:   cfg.Catalog,
		ledger:    ledger,
		recorder:  recorder.NewRecorder(cfg.SessionID, cfg.Storage, cfg.Recorder),
		provider:  cfg.Provider,
		signer:    cfg.Signer,
		evaluator: NewEvaluator(cfg.Catalog),
		clock:     cfg.Clock,
		admitted:  make(map[modes.Mode]int),
		log:       slog.Default().With("component", "govern", "session_id", cfg.SessionID),
	}

	s.log.Info("session created",
		"mode", cfg.Mode,
		"allocation", cfg.Allocation,
	)

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Contract returns the contract text for the session's current mode.
func (s *Session) Contract() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return modes.Contract(s.mode)
}

// AcceptContract processes the operator's reply to the mode contract.
//
// The exact acceptance phrase ("ACCEPT <MODE>") activates the session and
// returns the signed consent ticket. DeclinePhrase ends the session.
// Anything else is a ConsentError and leaves the session pending.
func (s *Session) AcceptContract(input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingConsent {
		return "", NewSessionStateError(s.id, s.state, "accept contract")
	}

	input = strings.TrimSpace(input)

	if strings.EqualFold(input, DeclinePhrase) {
		s.state = StateEnded
		s.log.Info("contract declined, session ended")
		return "", NewConsentError(s.id, "contract declined", nil)
	}

	if input != modes.AcceptPhrase(s.mode) {
		return "", NewConsentError(s.id, "acceptance phrase mismatch, expected "+modes.AcceptPhrase(s.mode), nil)
	}

	ticket, err := s.issueTicket(s.mode)
	if err != nil {
		return "", err
	}

	s.ticket = ticket
	s.state = StateActive
	s.log.Info("contract accepted, session active", "mode", s.mode)

	return ticket, nil
}

// SetMode switches the session's operating mode. Every switch requires the
// new mode's acceptance phrase: consent is per mode, not per session. The
// switch is an audited event in the same sequence as exchanges, and a fresh
// ticket is issued for the new mode.
func (s *Session) SetMode(to modes.Mode, acceptPhrase string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive && s.state != StateBudgetDepleted {
		return "", NewSessionStateError(s.id, s.state, "change mode")
	}
	if !s.catalog.Has(to) {
		return "", NewConsentError(s.id, "unknown mode "+string(to), nil)
	}
	if strings.TrimSpace(acceptPhrase) != modes.AcceptPhrase(to) {
		return "", NewConsentError(s.id, "acceptance phrase mismatch, expected "+modes.AcceptPhrase(to), nil)
	}

	from := s.mode
	ticket, err := s.issueTicket(to)
	if err != nil {
		return "", err
	}

	s.mode = to
	s.ticket = ticket

	bal := s.balance()
	s.recorder.Append(&audit.Entry{
		Kind:         audit.KindModeChange,
		Mode:         to,
		Note:         modeChangeNote(from, to),
		BudgetBefore: bal,
		BudgetAfter:  bal,
	})

	s.log.Info("mode changed", "from", from, "to", to)

	return ticket, nil
}

// TopUp increases the allocated budget (the original's RENEW). The top-up
// is an audited event; if the session was BUDGET_DEPLETED and balance is
// restored, it returns to ACTIVE.
func (s *Session) TopUp(amount float64) (audit.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive && s.state != StateBudgetDepleted {
		return audit.Balance{}, NewSessionStateError(s.id, s.state, "top up")
	}

	before := s.balance()
	if err := s.ledger.TopUp(amount); err != nil {
		return audit.Balance{}, err
	}
	after := s.balance()

	s.recorder.Append(&audit.Entry{
		Kind:         audit.KindTopUp,
		Mode:         s.mode,
		Note:         topUpNote(amount, after.Remaining),
		BudgetBefore: before,
		BudgetAfter:  after,
	})

	if s.state == StateBudgetDepleted && after.Remaining > 0 {
		s.state = StateActive
	}

	s.log.Info("budget topped up",
		"amount", amount,
		"remaining", after.Remaining,
	)

	return after, nil
}

// SubmitExchange processes one user exchange end to end: verify consent,
// evaluate, charge before calling the transport, call the transport, and
// record. Denied exchanges never reach the transport and are never charged.
// A transport failure after the charge is recorded with the failure noted
// and the charge is NOT rolled back: spend reflects attempt, not success.
func (s *Session) SubmitExchange(ctx context.Context, prompt string) (*ExchangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := tracer.Start(ctx, "govern.exchange",
		trace.WithAttributes(
			attribute.String("session.id", s.id),
			attribute.String("session.mode", string(s.mode)),
		))
	defer span.End()

	if s.state == StateEnded || s.state == StatePendingConsent {
		return nil, NewSessionStateError(s.id, s.state, "submit exchange")
	}

	if err := s.verifyTicket(); err != nil {
		return nil, err
	}

	// Evaluate. Pure: prompt content is deliberately not an input.
	_, evalSpan := tracer.Start(ctx, "govern.evaluate")
	eval := s.evaluator.Evaluate(s.mode, s.admitted[s.mode], s.ledger.Remaining())
	evalSpan.SetAttributes(
		attribute.String("decision", string(eval.Decision)),
		attribute.Float64("estimated_cost", eval.EstimatedCost),
	)
	evalSpan.End()

	s.exchangeSeq++
	exchange := &audit.ExchangeRecord{
		SequenceNo:    s.exchangeSeq,
		Mode:          s.mode,
		EstimatedCost: eval.EstimatedCost,
		PromptDigest:  recorder.PromptDigest(prompt),
	}

	before := s.balance()

	if eval.Decision == audit.DecisionDenyInsufficientBudget {
		// Zero-charge denial entry; the transport is never invoked.
		s.record(ctx, &audit.Entry{
			Kind:         audit.KindExchange,
			Exchange:     exchange,
			Decision:     eval.Decision,
			ChargedCost:  0,
			BudgetBefore: before,
			BudgetAfter:  before,
			Note:         eval.Message,
		})

		s.log.Info("exchange denied",
			"sequence_no", exchange.SequenceNo,
			"estimated_cost", eval.EstimatedCost,
			"remaining", before.Remaining,
		)

		return &ExchangeResult{
			Decision:      eval.Decision,
			Warning:       eval.Message,
			Notice:        s.notice(),
			Mode:          s.mode,
			EstimatedCost: eval.EstimatedCost,
			Balance:       before,
		}, nil
	}

	// Charge before the transport call. Budget accounting is therefore
	// independent of the call's latency or outcome.
	if eval.Charge > 0 {
		if err := s.ledger.Charge(eval.Charge); err != nil {
			// Evaluator guarantees affordability; this is a bug.
			return nil, err
		}
	}
	after := s.balance()
	s.admitted[s.mode]++

	if after.Remaining == 0 && s.state == StateActive {
		s.state = StateBudgetDepleted
		s.log.Info("budget depleted", "spent", after.Spent)
	}

	resp, transportErr := s.generate(ctx, prompt)

	entry := &audit.Entry{
		Kind:         audit.KindExchange,
		Exchange:     exchange,
		Decision:     eval.Decision,
		ChargedCost:  eval.Charge,
		BudgetBefore: before,
		BudgetAfter:  after,
		Note:         eval.Message,
	}

	result := &ExchangeResult{
		Decision:      eval.Decision,
		Warning:       eval.Message,
		Notice:        s.notice(),
		Mode:          s.mode,
		EstimatedCost: eval.EstimatedCost,
		ChargedCost:   eval.Charge,
		Balance:       after,
	}

	if transportErr != nil {
		// Recorded with the failure noted; the charge stands.
		entry.TransportError = transportErr.Error()
		s.record(ctx, entry)

		s.log.Warn("transport failed, charge not rolled back",
			"sequence_no", exchange.SequenceNo,
			"charged", eval.Charge,
			"error", transportErr,
		)

		result.TransportError = transportErr.Error()
		return result, transportErr
	}

	s.history = append(s.history,
		providers.Turn{Role: providers.RoleUser, Content: prompt},
		providers.Turn{Role: providers.RoleAssistant, Content: resp.Content},
	)

	s.record(ctx, entry)

	s.log.Info("exchange admitted",
		"sequence_no", exchange.SequenceNo,
		"decision", eval.Decision,
		"charged", eval.Charge,
		"remaining", after.Remaining,
	)

	result.Text = resp.Content
	return result, nil
}

// Export produces a complete, order-preserving snapshot of the session.
// It is a read operation: the session remains usable afterwards.
func (s *Session) Export() *audit.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &audit.Snapshot{
		SessionID:  s.id,
		Mode:       s.mode,
		State:      string(s.state),
		Balance:    s.balance(),
		Entries:    s.recorder.Export(),
		ExportedAt: s.clock().UTC(),
	}
}

// Status returns a point-in-time view of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		SessionID: s.id,
		State:     s.state,
		Mode:      s.mode,
		Balance:   s.balance(),
		Entries:   s.recorder.Len(),
		Exchanges: s.exchangeSeq,
	}
}

// End terminates the session and flushes the audit recorder. Ending an
// already ended session is a no-op.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEnded {
		return nil
	}

	s.state = StateEnded
	s.log.Info("session ended", "exchanges", s.exchangeSeq, "spent", s.ledger.Spent())

	return s.recorder.Close()
}

// generate invokes the model transport with the mode's system prompt and
// the conversation history. Safety filtering is always disabled: governance
// decisions belong to the engine, not the vendor filter.
func (s *Session) generate(ctx context.Context, prompt string) (*providers.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "govern.transport",
		trace.WithAttributes(attribute.String("model", s.model)))
	defer span.End()

	turns := make([]providers.Turn, 0, len(s.history)+1)
	turns = append(turns, s.history...)
	turns = append(turns, providers.Turn{Role: providers.RoleUser, Content: prompt})

	return s.provider.Generate(ctx, &providers.GenerateRequest{
		Model:               s.model,
		SystemPrompt:        modes.SystemPrompt(s.mode),
		Turns:               turns,
		DisableSafetyFilter: true,
	})
}

// record appends an audit entry under a tracing span.
func (s *Session) record(ctx context.Context, entry *audit.Entry) {
	_, span := tracer.Start(ctx, "govern.record")
	defer span.End()
	s.recorder.Append(entry)
}

// verifyTicket checks the consent ticket before every exchange. A missing,
// tampered, or expired ticket terminates the session.
func (s *Session) verifyTicket() error {
	if s.ticket == "" {
		s.state = StateEnded
		return NewConsentError(s.id, "no consent ticket, session terminated", nil)
	}
	if _, err := s.signer.Verify(s.ticket, s.clock()); err != nil {
		s.state = StateEnded
		return NewConsentError(s.id, "consent ticket rejected, session terminated", err)
	}
	return nil
}

// issueTicket signs a ticket binding this session to the given mode.
func (s *Session) issueTicket(mode modes.Mode) (string, error) {
	now := s.clock().UTC()
	claims := &consent.Claims{
		SessionID: s.id,
		Mode:      mode,
		Allocated: s.ledger.Allocated(),
		IssuedAt:  now,
	}
	if s.ticketTTL > 0 {
		claims.ExpiresAt = now.Add(s.ticketTTL)
	}

	ticket, err := s.signer.Issue(claims)
	if err != nil {
		return "", NewConsentError(s.id, "ticket issuance failed", err)
	}
	return ticket, nil
}

// notice returns the persistent depletion notice, if applicable.
func (s *Session) notice() string {
	if s.state != StateBudgetDepleted {
		return ""
	}
	return depletionNotice(s.mode, s.ledger.Spent())
}

// balance snapshots the ledger into an audit.Balance.
func (s *Session) balance() audit.Balance {
	allocated, spent := s.ledger.Snapshot()
	return audit.Balance{
		Allocated: allocated,
		Spent:     spent,
		Remaining: allocated - spent,
	}
}
