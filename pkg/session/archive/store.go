package archive

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"oecs-hq/lusaka/pkg/audit"
)

// ErrNotArchived is returned when no archived snapshot exists for a session.
var ErrNotArchived = errors.New("session not archived")

// Summary is a one-row view of an archived session.
type Summary struct {
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	State      string    `json:"state"`
	Allocated  float64   `json:"allocated"`
	Spent      float64   `json:"spent"`
	EntryCount int       `json:"entry_count"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Store persists ended sessions' final snapshots.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once

	saveStmt *sql.Stmt
	loadStmt *sql.Stmt
	listStmt *sql.Stmt
}

// Config configures the archive store.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewStore opens (or creates) the archive database.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("archive path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare archive statements: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archived_sessions (
		session_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		state TEXT NOT NULL,
		allocated REAL NOT NULL,
		spent REAL NOT NULL,
		entry_count INTEGER NOT NULL,
		archived_at INTEGER NOT NULL,
		snapshot TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_archived_at ON archived_sessions(archived_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO archived_sessions (session_id, mode, state, allocated, spent, entry_count, archived_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			mode = excluded.mode,
			state = excluded.state,
			allocated = excluded.allocated,
			spent = excluded.spent,
			entry_count = excluded.entry_count,
			archived_at = excluded.archived_at,
			snapshot = excluded.snapshot
	`)
	if err != nil {
		return err
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT snapshot FROM archived_sessions WHERE session_id = ?
	`)
	if err != nil {
		return err
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT session_id, mode, state, allocated, spent, entry_count, archived_at
		FROM archived_sessions
		ORDER BY archived_at DESC
	`)
	return err
}

// Save archives a session's final snapshot. Saving the same session again
// overwrites the previous snapshot.
func (s *Store) Save(snapshot *audit.Snapshot) error {
	if snapshot == nil || snapshot.SessionID == "" {
		return fmt.Errorf("snapshot must have a session id")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.saveStmt.Exec(
		snapshot.SessionID,
		string(snapshot.Mode),
		snapshot.State,
		snapshot.Balance.Allocated,
		snapshot.Balance.Spent,
		len(snapshot.Entries),
		snapshot.ExportedAt.UTC().Unix(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to archive session %s: %w", snapshot.SessionID, err)
	}
	return nil
}

// Load returns the archived snapshot for a session.
func (s *Store) Load(sessionID string) (*audit.Snapshot, error) {
	var payload string
	err := s.loadStmt.QueryRow(sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotArchived
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archived session %s: %w", sessionID, err)
	}

	var snapshot audit.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archived session %s: %w", sessionID, err)
	}
	return &snapshot, nil
}

// List returns summaries of archived sessions, newest first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.listStmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list archived sessions: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var archivedAt int64
		if err := rows.Scan(&sum.SessionID, &sum.Mode, &sum.State,
			&sum.Allocated, &sum.Spent, &sum.EntryCount, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		sum.ArchivedAt = time.Unix(archivedAt, 0).UTC()
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Close closes the archive database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.listStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
