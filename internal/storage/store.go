// Package storage is the gateway's durable store: append-only
// observability tables (request_logs, audit_logs, ai_interactions) and
// tenant-partitioned business tables. Every query touching tenant data
// carries a tenant_id predicate; cross-tenant rows are invisible, not
// forbidden.
package storage

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row is absent or filtered out by the
// tenant predicate. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// Config holds database connection configuration.
type Config struct {
	Driver string // Driver name: sqlite
	DSN    string // Data source name / connection string
}

// Store is a SQL implementation over sqlx.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// New opens the database, applies pragmas and initializes the schema.
func New(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	if driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLite opens a SQLite store at the given path.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath})
}

// DB returns the underlying sqlx.DB for advanced operations.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS request_logs (
id INTEGER PRIMARY KEY AUTOINCREMENT,
trace_id TEXT NOT NULL,
method TEXT NOT NULL,
path TEXT NOT NULL,
status_code INTEGER NOT NULL,
duration_ms INTEGER NOT NULL,
tenant_id TEXT,
user_id TEXT,
ip TEXT,
user_agent TEXT,
created_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
id INTEGER PRIMARY KEY AUTOINCREMENT,
tenant_id TEXT NOT NULL,
user_id TEXT,
event_type TEXT NOT NULL,
entity_type TEXT,
entity_id TEXT,
trace_id TEXT NOT NULL,
payload TEXT,
created_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS ai_interactions (
id INTEGER PRIMARY KEY AUTOINCREMENT,
tenant_id TEXT NOT NULL,
user_id TEXT,
role TEXT NOT NULL,
prompt_name TEXT NOT NULL,
prompt_version TEXT NOT NULL,
locale TEXT NOT NULL,
input_excerpt TEXT,
output_excerpt TEXT,
tools_used TEXT,
success_flag INTEGER NOT NULL,
error_code TEXT,
latency_ms INTEGER NOT NULL,
tokens_in INTEGER NOT NULL DEFAULT 0,
tokens_out INTEGER NOT NULL DEFAULT 0,
trace_id TEXT NOT NULL,
created_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS tenants (
id TEXT PRIMARY KEY,
name TEXT NOT NULL,
plan TEXT NOT NULL DEFAULT 'Pro'
)`,
		`CREATE TABLE IF NOT EXISTS user_tenants (
user_id TEXT NOT NULL,
tenant_id TEXT NOT NULL,
role TEXT NOT NULL,
full_name TEXT,
PRIMARY KEY (user_id, tenant_id)
)`,
		`CREATE TABLE IF NOT EXISTS tasks (
id TEXT PRIMARY KEY,
tenant_id TEXT NOT NULL,
title TEXT NOT NULL,
status TEXT NOT NULL,
priority TEXT NOT NULL,
assignee TEXT,
due_date TIMESTAMP,
tags TEXT,
comments INTEGER NOT NULL DEFAULT 0,
acknowledged_at TIMESTAMP,
created_at TIMESTAMP NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS documents (
id TEXT PRIMARY KEY,
tenant_id TEXT NOT NULL,
title TEXT NOT NULL,
content TEXT NOT NULL,
metadata TEXT,
created_at TIMESTAMP NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS doc_chunks (
id INTEGER PRIMARY KEY AUTOINCREMENT,
tenant_id TEXT NOT NULL,
document_id TEXT NOT NULL,
section TEXT NOT NULL,
content TEXT NOT NULL,
FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS inbox_items (
id TEXT PRIMARY KEY,
tenant_id TEXT NOT NULL,
source TEXT NOT NULL,
sender TEXT,
subject TEXT NOT NULL,
preview TEXT,
timestamp TIMESTAMP NOT NULL,
is_read INTEGER NOT NULL DEFAULT 0,
category TEXT,
priority TEXT,
tags TEXT,
source_message_id TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS notifications (
id TEXT PRIMARY KEY,
tenant_id TEXT NOT NULL,
user_id TEXT NOT NULL,
type TEXT NOT NULL,
title TEXT NOT NULL,
message TEXT NOT NULL,
task_id TEXT,
read_at TIMESTAMP,
created_at TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_request_logs_trace ON request_logs(trace_id)`,
		`CREATE INDEX IF NOT EXISTS idx_request_logs_tenant ON request_logs(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_tenant ON audit_logs(tenant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_interactions_tenant ON ai_interactions(tenant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_user_tenants_user ON user_tenants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_tenant ON tasks(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_doc_chunks_doc ON doc_chunks(tenant_id, document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inbox_tenant ON inbox_items(tenant_id, timestamp)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inbox_source_msg ON inbox_items(tenant_id, source_message_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(tenant_id, user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
