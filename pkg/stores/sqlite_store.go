// Package stores persists journey run state in SQLite. Contexts and
// summaries are stored as JSON documents with the filterable columns
// lifted out; module results and events are append-only rows.
package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/strategos-io/strategos/pkg/orchestrator"
	"github.com/strategos-io/strategos/pkg/quality"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// SQLiteStore implements orchestrator.Store on a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a store instance. Call Init before use.
// Zero pool settings fall back to defaults.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	return &SQLiteStore{cfg: cfg}, nil
}

// Init opens the database, enabling WAL mode and foreign keys.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate applies pending schema migrations from the embedded set.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SaveContext upserts the full context document.
func (s *SQLiteStore) SaveContext(ctx context.Context, sc *orchestrator.StrategicContext) error {
	document, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	query := `
		INSERT INTO strategic_contexts (
			session_id, journey_id, journey_type, status, version, document, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			version = excluded.version,
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		sc.SessionID,
		sc.JourneyID,
		string(sc.JourneyType),
		string(sc.Status),
		sc.Version,
		string(document),
		sc.CreatedAt.UTC(),
		sc.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	return nil
}

// LoadContext retrieves a context document by session id.
func (s *SQLiteStore) LoadContext(ctx context.Context, sessionID string) (*orchestrator.StrategicContext, error) {
	query := `SELECT document FROM strategic_contexts WHERE session_id = ?`

	var document string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	var sc orchestrator.StrategicContext
	if err := json.Unmarshal([]byte(document), &sc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	return &sc, nil
}

// ListSessions lists persisted sessions newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*SessionRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	query := `
		SELECT session_id, journey_id, journey_type, status, version, created_at, updated_at
		FROM strategic_contexts
		WHERE (? IS NULL OR journey_id = ?)
		  AND (? IS NULL OR status = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query,
		filter.JourneyID, filter.JourneyID,
		filter.Status, filter.Status,
		filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	records := []*SessionRecord{}
	for rows.Next() {
		rec := &SessionRecord{}
		err := rows.Scan(
			&rec.SessionID,
			&rec.JourneyID,
			&rec.JourneyType,
			&rec.Status,
			&rec.Version,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return records, nil
}

// SaveModuleResult appends a framework execution record.
func (s *SQLiteStore) SaveModuleResult(ctx context.Context, res *orchestrator.ModuleResult) error {
	query := `
		INSERT INTO module_results (
			session_id, framework_id, attempt, status, output,
			overall_score, recommendation, error, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var output *string
	if len(res.Output) > 0 {
		text := string(res.Output)
		output = &text
	}

	_, err := s.db.ExecContext(ctx, query,
		res.SessionID,
		res.FrameworkID,
		res.Attempt,
		res.Status,
		output,
		res.OverallScore,
		string(res.Recommendation),
		res.Error,
		res.StartedAt.UTC(),
		res.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save module result: %w", err)
	}

	return nil
}

// ModuleResults lists all execution attempts for a session in order.
func (s *SQLiteStore) ModuleResults(ctx context.Context, sessionID string) ([]*orchestrator.ModuleResult, error) {
	query := `
		SELECT session_id, framework_id, attempt, status, output,
			   overall_score, recommendation, error, started_at, completed_at
		FROM module_results
		WHERE session_id = ?
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list module results: %w", err)
	}
	defer rows.Close()

	results := []*orchestrator.ModuleResult{}
	for rows.Next() {
		res := &orchestrator.ModuleResult{}
		var output sql.NullString
		var recommendation string
		err := rows.Scan(
			&res.SessionID,
			&res.FrameworkID,
			&res.Attempt,
			&res.Status,
			&output,
			&res.OverallScore,
			&recommendation,
			&res.Error,
			&res.StartedAt,
			&res.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module result: %w", err)
		}
		if output.Valid {
			res.Output = json.RawMessage(output.String)
		}
		res.Recommendation = quality.Recommendation(recommendation)
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating module results: %w", err)
	}

	return results, nil
}

// SaveEvent appends a progress event.
func (s *SQLiteStore) SaveEvent(ctx context.Context, ev *orchestrator.Event) error {
	query := `
		INSERT INTO events (id, session_id, type, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ev.ID,
		ev.SessionID,
		ev.Type,
		ev.Message,
		ev.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

// Events lists a session's events oldest first.
func (s *SQLiteStore) Events(ctx context.Context, sessionID string) ([]*orchestrator.Event, error) {
	query := `
		SELECT id, session_id, type, message, created_at
		FROM events
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*orchestrator.Event{}
	for rows.Next() {
		ev := &orchestrator.Event{}
		err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Type, &ev.Message, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// SaveSummary upserts the journey summary for a session.
func (s *SQLiteStore) SaveSummary(ctx context.Context, summary *orchestrator.JourneySummary) error {
	document, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO summaries (session_id, journey_id, builder, version_number, document, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			version_number = excluded.version_number,
			document = excluded.document,
			completed_at = excluded.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		summary.SessionID,
		summary.JourneyID,
		summary.Builder,
		summary.VersionNumber,
		string(document),
		summary.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}

// GetSummary retrieves the summary for a session.
func (s *SQLiteStore) GetSummary(ctx context.Context, sessionID string) (*orchestrator.JourneySummary, error) {
	query := `SELECT document FROM summaries WHERE session_id = ?`

	var document string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary for session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary orchestrator.JourneySummary
	if err := json.Unmarshal([]byte(document), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
