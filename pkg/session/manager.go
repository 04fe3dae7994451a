package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/audit/recorder"
	"oecs-hq/lusaka/pkg/consent"
	"oecs-hq/lusaka/pkg/govern"
	"oecs-hq/lusaka/pkg/modes"
	"oecs-hq/lusaka/pkg/providers"
	"oecs-hq/lusaka/pkg/session/archive"
	"oecs-hq/lusaka/pkg/telemetry/metrics"
)

// Config holds the shared defaults new sessions are created from.
type Config struct {
	// Catalog is the mode catalog. Defaults to modes.DefaultCatalog().
	Catalog *modes.Catalog

	// Provider is the model transport shared by all sessions.
	Provider providers.Provider

	// Signer issues and verifies consent tickets.
	Signer *consent.Signer

	// Model is the model identifier passed to the transport.
	Model string

	// TicketTTL bounds consent ticket validity. Zero means no expiry.
	TicketTTL time.Duration

	// AuditStorage optionally mirrors every session's audit entries to
	// durable storage.
	AuditStorage audit.Storage

	// Recorder configures per-session audit recorders. Nil uses defaults.
	Recorder *recorder.Config

	// Archive optionally persists final snapshots of ended sessions.
	Archive *archive.Store

	// Metrics optionally reports governance activity.
	Metrics *metrics.Metrics

	// MaxSessions caps concurrently live sessions. Zero means unlimited.
	MaxSessions int
}

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	sessions map[string]*govern.Session
	log      *slog.Logger
}

// NewManager creates a session manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("session manager requires a transport provider")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("session manager requires a consent signer")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = modes.DefaultCatalog()
	}

	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*govern.Session),
		log:      slog.Default().With("component", "session"),
	}, nil
}

// Create starts a new session in PENDING_CONSENT and returns it along with
// the contract text the operator must answer.
func (m *Manager) Create(allocation float64, mode modes.Mode) (*govern.Session, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, "", &LimitError{Limit: m.cfg.MaxSessions}
	}

	s, err := govern.NewSession(govern.SessionConfig{
		Allocation: allocation,
		Mode:       mode,
		Model:      m.cfg.Model,
		TicketTTL:  m.cfg.TicketTTL,
		Catalog:    m.cfg.Catalog,
		Provider:   m.cfg.Provider,
		Signer:     m.cfg.Signer,
		Storage:    m.cfg.AuditStorage,
		Recorder:   m.cfg.Recorder,
	})
	if err != nil {
		return nil, "", err
	}

	m.sessions[s.ID()] = s

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.SessionStarted()
		m.cfg.Metrics.UpdateBudget(s.ID(), allocation, 0)
	}

	m.log.Info("session registered", "session_id", s.ID(), "mode", mode, "allocation", allocation)

	return s, s.Contract(), nil
}

// Get returns a live session by ID.
func (m *Manager) Get(sessionID string) (*govern.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, NewNotFoundError(sessionID)
	}
	return s, nil
}

// List returns the status of every live session.
func (m *Manager) List() []govern.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]govern.Status, 0, len(m.sessions))
	for _, s := range m.sessions {
		statuses = append(statuses, s.Status())
	}
	return statuses
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Accept forwards the operator's contract reply to the session and reports
// consent failures to metrics.
func (m *Manager) Accept(sessionID, input string) (string, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return "", err
	}

	ticket, err := s.AcceptContract(input)
	if err != nil {
		m.recordConsentFailure(err)
		return "", err
	}
	return ticket, nil
}

// Submit processes one exchange on a session, reporting the decision,
// budget state, and transport latency to metrics.
func (m *Manager) Submit(ctx context.Context, sessionID, prompt string) (*govern.ExchangeResult, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.SubmitExchange(ctx, prompt)
	elapsed := time.Since(start)

	if m.cfg.Metrics != nil {
		if result != nil {
			m.cfg.Metrics.RecordDecision(string(result.Mode), string(result.Decision))
			m.cfg.Metrics.UpdateBudget(sessionID, result.Balance.Allocated, result.Balance.Spent)

			if result.Decision.Admitted() {
				outcome := "ok"
				if result.TransportError != "" {
					outcome = "error"
				}
				m.cfg.Metrics.RecordTransportDuration(m.cfg.Provider.Name(), outcome, elapsed.Seconds())
			}
		}
		if err != nil {
			m.recordConsentFailure(err)
		}
	}

	return result, err
}

// SetMode switches a session's mode under a fresh contract acceptance.
func (m *Manager) SetMode(sessionID string, mode modes.Mode, acceptPhrase string) (string, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return "", err
	}

	ticket, err := s.SetMode(mode, acceptPhrase)
	if err != nil {
		m.recordConsentFailure(err)
		return "", err
	}
	return ticket, nil
}

// TopUp increases a session's budget (the RENEW operation).
func (m *Manager) TopUp(sessionID string, amount float64) (audit.Balance, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return audit.Balance{}, err
	}

	balance, err := s.TopUp(amount)
	if err != nil {
		return audit.Balance{}, err
	}

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.RecordTopUp(sessionID)
		m.cfg.Metrics.UpdateBudget(sessionID, balance.Allocated, balance.Spent)
	}
	return balance, nil
}

// Export returns a session's full snapshot. Live sessions are exported
// directly; ended sessions fall back to the archive when configured.
func (m *Manager) Export(sessionID string) (*audit.Snapshot, error) {
	s, err := m.Get(sessionID)
	if err == nil {
		return s.Export(), nil
	}

	if m.cfg.Archive != nil {
		snapshot, archiveErr := m.cfg.Archive.Load(sessionID)
		if archiveErr == nil {
			return snapshot, nil
		}
	}
	return nil, err
}

// End terminates a session, archives its final snapshot, and removes it
// from the registry.
func (m *Manager) End(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return NewNotFoundError(sessionID)
	}

	// Snapshot before closing the recorder
	snapshot := s.Export()
	if err := s.End(); err != nil {
		return err
	}
	snapshot.State = string(govern.StateEnded)

	if m.cfg.Archive != nil {
		if err := m.cfg.Archive.Save(snapshot); err != nil {
			m.log.Error("failed to archive session", "session_id", sessionID, "error", err)
		}
	}

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.SessionEnded(sessionID)
	}

	m.log.Info("session ended", "session_id", sessionID, "entries", len(snapshot.Entries))

	return nil
}

// Close ends every live session. Used at shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.End(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) recordConsentFailure(err error) {
	if m.cfg.Metrics == nil {
		return
	}
	switch err.(type) {
	case *govern.ConsentError:
		m.cfg.Metrics.RecordConsentFailure("consent")
	case *govern.SessionStateError:
		m.cfg.Metrics.RecordConsentFailure("state")
	}
}
