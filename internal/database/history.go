package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/or1un/mosaic/internal/model"
)

// HistoryDB provides SQLite-based storage for collection runs and saved
// analyses. It manages connection pooling and provides methods for CRUD
// operations.
//
// Design decision: We use a single database file for all subjects rather
// than one file per subject. This keeps cross-subject queries (list
// subjects, compare runs) simple and makes backup a single-file copy.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "mosaic.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections don't help.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Collection runs store the full report plus a fingerprint summary
	CREATE TABLE IF NOT EXISTS collection_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		fingerprint_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_subject ON collection_runs(subject);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON collection_runs(timestamp);

	-- Per-platform records enable cross-run queries without JSON parsing
	CREATE TABLE IF NOT EXISTS platform_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES collection_runs(id),
		subject TEXT NOT NULL,
		platform TEXT NOT NULL,
		handle TEXT,
		followers INTEGER DEFAULT 0,
		items_collected INTEGER DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, platform)
	);

	CREATE INDEX IF NOT EXISTS idx_records_subject ON platform_records(subject);
	CREATE INDEX IF NOT EXISTS idx_records_platform ON platform_records(platform);

	-- Saved LLM analyses
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		prompt_name TEXT NOT NULL,
		backend TEXT NOT NULL,
		model TEXT NOT NULL,
		output TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_subject ON analyses(subject);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a collection run: the full report JSON, the fingerprint
// summary, and one platform record per collected profile.
// Returns the run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.ProfileReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var fingerprintJSON []byte
	if report.Fingerprint != nil {
		fingerprintJSON, err = json.Marshal(report.Fingerprint)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize fingerprint: %w", err)
		}
	}

	result, err := hdb.db.ExecContext(ctx,
		`INSERT INTO collection_runs (subject, report_json, fingerprint_json) VALUES (?, ?, ?)`,
		report.Subject,
		string(reportJSON),
		string(fingerprintJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save collection run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	recordQuery := `
	INSERT INTO platform_records (run_id, subject, platform, handle, followers, items_collected)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, platform) DO UPDATE SET
		handle = excluded.handle,
		followers = excluded.followers,
		items_collected = excluded.items_collected,
		timestamp = CURRENT_TIMESTAMP
	`
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		if _, err := hdb.db.ExecContext(ctx, recordQuery,
			runID,
			report.Subject,
			platform.String(),
			profile.Handle,
			profile.Followers,
			len(profile.Items),
		); err != nil {
			return runID, fmt.Errorf("failed to save platform record: %w", err)
		}
	}

	return runID, nil
}

// GetLatestRun retrieves the most recent run for a subject.
// Returns nil when the subject has no stored runs.
func (hdb *HistoryDB) GetLatestRun(ctx context.Context, subject string) (*model.ProfileReport, error) {
	query := `
	SELECT report_json FROM collection_runs
	WHERE subject = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, subject).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection run: %w", err)
	}

	var report model.ProfileReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetRunHistory retrieves all runs for a subject, newest first.
func (hdb *HistoryDB) GetRunHistory(ctx context.Context, subject string) ([]*model.ProfileReport, error) {
	query := `
	SELECT report_json FROM collection_runs
	WHERE subject = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ProfileReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ProfileReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying history without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Subject is the collected username.
	Subject string

	// Timestamp is when the run was stored.
	Timestamp time.Time

	// SeveritySummary contains counts of signals by severity level.
	SeveritySummary map[string]int

	// Platforms lists the platforms the run found a profile on.
	Platforms []string
}

// GetRunHistoryWithMetadata retrieves run metadata for a subject.
// This is more efficient than GetRunHistory when only metadata is needed.
func (hdb *HistoryDB) GetRunHistoryWithMetadata(ctx context.Context, subject string) ([]RunMetadata, error) {
	query := `
	SELECT id, subject, timestamp, fingerprint_json
	FROM collection_runs
	WHERE subject = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		var fingerprintJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Subject, &timestamp, &fingerprintJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.SeveritySummary = make(map[string]int)

		if fingerprintJSON.Valid && fingerprintJSON.String != "" {
			var fp model.Fingerprint
			if err := json.Unmarshal([]byte(fingerprintJSON.String), &fp); err == nil {
				meta.SeveritySummary["critical"] = fp.CriticalCount
				meta.SeveritySummary["high"] = fp.HighCount
				meta.SeveritySummary["medium"] = fp.MediumCount
				meta.SeveritySummary["low"] = fp.LowCount
				meta.SeveritySummary["info"] = fp.InfoCount
				meta.Platforms = fp.PlatformsFound
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRunByID retrieves a run by its database ID.
// Returns nil when no run has that ID.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.ProfileReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM collection_runs WHERE id = ?`, id,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection run: %w", err)
	}

	var report model.ProfileReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListSubjects returns all subjects with at least one stored run.
func (hdb *HistoryDB) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT DISTINCT subject FROM collection_runs ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	return subjects, rows.Err()
}

// AnalysisRecord represents a saved LLM analysis.
type AnalysisRecord struct {
	ID         int64
	Subject    string
	PromptName string
	Backend    string
	Model      string
	Output     string
	Timestamp  time.Time
}

// SaveAnalysis stores a completed analysis.
func (hdb *HistoryDB) SaveAnalysis(ctx context.Context, record *AnalysisRecord) error {
	_, err := hdb.db.ExecContext(ctx,
		`INSERT INTO analyses (subject, prompt_name, backend, model, output) VALUES (?, ?, ?, ?, ?)`,
		record.Subject,
		record.PromptName,
		record.Backend,
		record.Model,
		record.Output,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListAnalyses retrieves saved analyses for a subject, newest first.
func (hdb *HistoryDB) ListAnalyses(ctx context.Context, subject string) ([]AnalysisRecord, error) {
	query := `
	SELECT id, subject, prompt_name, backend, model, output, timestamp
	FROM analyses
	WHERE subject = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var record AnalysisRecord
		var timestamp string

		if err := rows.Scan(
			&record.ID,
			&record.Subject,
			&record.PromptName,
			&record.Backend,
			&record.Model,
			&record.Output,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		records = append(records, record)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
