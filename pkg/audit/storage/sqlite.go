package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/modes"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "verify_schema_version",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists one audit entry.
func (s *SQLiteStorage) Store(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_entries (
			id, session_id, sequence, kind, timestamp,
			exchange_sequence, exchange_mode, estimated_cost, prompt_digest,
			decision, charged_cost,
			before_allocated, before_spent, before_remaining,
			after_allocated, after_spent, after_remaining,
			mode, note, transport_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var exchangeSeq, estimatedCost, exchangeMode, promptDigest interface{}
	if entry.Exchange != nil {
		exchangeSeq = entry.Exchange.SequenceNo
		exchangeMode = string(entry.Exchange.Mode)
		estimatedCost = entry.Exchange.EstimatedCost
		promptDigest = entry.Exchange.PromptDigest
	}

	var transportErr interface{}
	if entry.TransportError != "" {
		transportErr = entry.TransportError
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.SessionID, entry.Sequence, string(entry.Kind), entry.Timestamp,
		exchangeSeq, exchangeMode, estimatedCost, promptDigest,
		string(entry.Decision), entry.ChargedCost,
		entry.BudgetBefore.Allocated, entry.BudgetBefore.Spent, entry.BudgetBefore.Remaining,
		entry.BudgetAfter.Allocated, entry.BudgetAfter.Spent, entry.BudgetAfter.Remaining,
		string(entry.Mode), entry.Note, transportErr,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves entries matching the filters, ordered by session and sequence.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT
		id, session_id, sequence, kind, timestamp,
		exchange_sequence, exchange_mode, estimated_cost, prompt_digest,
		decision, charged_cost,
		before_allocated, before_spent, before_remaining,
		after_allocated, after_spent, after_remaining,
		mode, note, transport_error
	FROM audit_entries`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY session_id, sequence ASC"

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		if query.Limit <= 0 {
			sqlQuery += " LIMIT -1"
		}
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*audit.Entry{}
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of entries matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_entries"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes entries matching the filters and returns how many were removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM audit_entries"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause translates a Query into a WHERE clause and args.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if query.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, query.SessionID)
	}
	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(query.Kind))
	}
	if query.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, string(query.Decision))
	}
	if query.After != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *query.After)
	}
	if query.Before != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, *query.Before)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow reconstructs an entry from a result row.
func scanRow(rows *sql.Rows) (*audit.Entry, error) {
	var entry audit.Entry
	var exchangeSeq sql.NullInt64
	var exchangeMode, promptDigest, decision, mode, note, transportErr sql.NullString
	var estimatedCost sql.NullFloat64
	var kind string

	err := rows.Scan(
		&entry.ID, &entry.SessionID, &entry.Sequence, &kind, &entry.Timestamp,
		&exchangeSeq, &exchangeMode, &estimatedCost, &promptDigest,
		&decision, &entry.ChargedCost,
		&entry.BudgetBefore.Allocated, &entry.BudgetBefore.Spent, &entry.BudgetBefore.Remaining,
		&entry.BudgetAfter.Allocated, &entry.BudgetAfter.Spent, &entry.BudgetAfter.Remaining,
		&mode, &note, &transportErr,
	)
	if err != nil {
		return nil, err
	}

	entry.Kind = audit.EntryKind(kind)
	if exchangeSeq.Valid {
		entry.Exchange = &audit.ExchangeRecord{
			SequenceNo:    int(exchangeSeq.Int64),
			Mode:          modes.Mode(exchangeMode.String),
			EstimatedCost: estimatedCost.Float64,
			PromptDigest:  promptDigest.String,
		}
	}
	if decision.Valid {
		entry.Decision = audit.Decision(decision.String)
	}
	if mode.Valid {
		entry.Mode = modes.Mode(mode.String)
	}
	if note.Valid {
		entry.Note = note.String
	}
	if transportErr.Valid {
		entry.TransportError = transportErr.String
	}

	return &entry, nil
}
