package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit entries table
CREATE TABLE IF NOT EXISTS audit_entries (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    kind TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,

    -- Exchange (NULL for non-exchange entries)
    exchange_sequence INTEGER,
    exchange_mode TEXT,
    estimated_cost REAL,
    prompt_digest TEXT,

    -- Decision and ledger movement
    decision TEXT,
    charged_cost REAL NOT NULL,
    before_allocated REAL NOT NULL,
    before_spent REAL NOT NULL,
    before_remaining REAL NOT NULL,
    after_allocated REAL NOT NULL,
    after_spent REAL NOT NULL,
    after_remaining REAL NOT NULL,

    -- Event payload
    mode TEXT,
    note TEXT,
    transport_error TEXT,

    UNIQUE(session_id, sequence)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_entries(session_id, sequence);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_entries(kind);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON audit_entries(decision);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
