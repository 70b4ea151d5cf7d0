package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Execution is one recorded query run.
type Execution struct {
	ID         int64
	QueryHash  string
	Text       string
	Latency    time.Duration
	TraceID    string
	RecordedAt time.Time
}

// HashStats aggregates executions sharing one digest.
type HashStats struct {
	QueryHash  string
	Text       string
	Count      int64
	AvgLatency time.Duration
	MaxLatency time.Duration
}

// Store provides durable storage for execution history.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies
// pragmas and schema. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent recording.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one execution row.
func (s *Store) Record(ctx context.Context, e Execution) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (query_hash, text, latency_us, trace_id, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.QueryHash, e.Text, e.Latency.Microseconds(), e.TraceID,
		e.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record execution: %w", err)
	}
	return nil
}

// Recent returns up to limit executions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_hash, text, latency_us, trace_id, recorded_at
		 FROM executions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent executions: %w", err)
	}
	defer rows.Close()
	return scanExecutions(rows)
}

// ByHash returns up to limit executions of one digest, newest first.
func (s *Store) ByHash(ctx context.Context, hash string, limit int) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_hash, text, latency_us, trace_id, recorded_at
		 FROM executions WHERE query_hash = ? ORDER BY id DESC LIMIT ?`, hash, limit)
	if err != nil {
		return nil, fmt.Errorf("query executions by hash: %w", err)
	}
	defer rows.Close()
	return scanExecutions(rows)
}

// Stats aggregates executions per digest, most executed first.
func (s *Store) Stats(ctx context.Context) ([]HashStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query_hash, MAX(text), COUNT(*), AVG(latency_us), MAX(latency_us)
		 FROM executions GROUP BY query_hash ORDER BY COUNT(*) DESC, query_hash ASC`)
	if err != nil {
		return nil, fmt.Errorf("query execution stats: %w", err)
	}
	defer rows.Close()

	var out []HashStats
	for rows.Next() {
		var st HashStats
		var avgUS float64
		var maxUS int64
		if err := rows.Scan(&st.QueryHash, &st.Text, &st.Count, &avgUS, &maxUS); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		st.AvgLatency = time.Duration(avgUS) * time.Microsecond
		st.MaxLatency = time.Duration(maxUS) * time.Microsecond
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanExecutions(rows *sql.Rows) ([]Execution, error) {
	var out []Execution
	for rows.Next() {
		var e Execution
		var latencyUS int64
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.QueryHash, &e.Text, &latencyUS, &e.TraceID, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		e.Latency = time.Duration(latencyUS) * time.Microsecond
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		e.RecordedAt = ts
		out = append(out, e)
	}
	return out, rows.Err()
}
