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

	"github.com/nao1215/mrviz/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "mrviz.db"

var (
	// ErrReportNotFound is returned when no stored report matches a lookup.
	ErrReportNotFound = errors.New("report not found")

	// ErrEmptyName is returned when a report is saved without a name.
	ErrEmptyName = errors.New("report name must not be empty")
)

// ReportStore provides SQLite-based storage for model reports.
// It manages the connection and provides methods for CRUD operations.
type ReportStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportStore behavior.
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

// Open opens or creates a ReportStore in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportStore, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	dsn := dbPath + "?mode=rwc"
	if !opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &ReportStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Path returns the database file path.
func (s *ReportStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *ReportStore) createTables() error {
	schema := `
	-- Reports store complete model reports as canonical JSON
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		source TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		layer_count INTEGER NOT NULL,
		feature_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_name ON reports(name);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a report under name and returns its ID.
// source records where the report came from, typically its file path.
func (s *ReportStore) SaveReport(ctx context.Context, name, source string, report *model.Report) (int64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO reports (name, source, layer_count, feature_count, report_json)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		name,
		source,
		report.Len(),
		report.FeatureCount(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// GetReportByID retrieves a report by its database ID.
func (s *ReportStore) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	query := `SELECT report_json FROM reports WHERE id = ?`
	return s.queryReport(ctx, query, id)
}

// GetLatestReport retrieves the most recently saved report with the given name.
func (s *ReportStore) GetLatestReport(ctx context.Context, name string) (*model.Report, error) {
	query := `
	SELECT report_json FROM reports
	WHERE name = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return s.queryReport(ctx, query, name)
}

func (s *ReportStore) queryReport(ctx context.Context, query string, arg any) (*model.Report, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrReportNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report, err := model.Parse([]byte(reportJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return report, nil
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Name is the name the report was saved under.
	Name string

	// Source is where the report was imported from.
	Source string

	// Timestamp is when the report was saved.
	Timestamp time.Time

	// LayerCount is the number of layers in the report.
	LayerCount int

	// FeatureCount is the number of distinct feature names.
	FeatureCount int
}

// ListReports returns metadata for stored reports, newest first.
// A non-empty name restricts the list to reports saved under that name.
func (s *ReportStore) ListReports(ctx context.Context, name string) ([]ReportMetadata, error) {
	query := `
	SELECT id, name, source, timestamp, layer_count, feature_count
	FROM reports
	WHERE ? = '' OR name = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var source sql.NullString
		var timestamp string

		if err := rows.Scan(&meta.ID, &meta.Name, &source, &timestamp, &meta.LayerCount, &meta.FeatureCount); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Source = source.String
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// DeleteReport removes a stored report.
func (s *ReportStore) DeleteReport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrReportNotFound, id)
	}
	return nil
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
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
