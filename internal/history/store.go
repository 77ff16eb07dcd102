// internal/history/store.go
// SQLite-backed scan history

package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/portsweep/portsweep/internal/models"
)

// Store persists completed scan reports.
type Store struct {
	db *sql.DB
}

// Record is one row of scan history.
type Record struct {
	ScanID     string
	StartedAt  time.Time
	Network    string
	Ports      string
	Processes  int
	Workers    int
	Duration   float64
	OpenCount  int
	ErrorCount int
	Scanned    int
	Report     *models.Report
}

// Open opens (and if needed initializes) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// WAL keeps readers from blocking the writer during a scan.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		scan_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		network TEXT NOT NULL,
		ports TEXT NOT NULL,
		processes INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		duration_seconds REAL NOT NULL,
		open_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		scanned INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewScanID returns a fresh scan identifier.
func NewScanID() string {
	return uuid.NewString()
}

// Save records a completed scan.
func (s *Store) Save(report *models.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	open := 0
	for _, ports := range report.OpenPorts {
		open += len(ports)
	}

	_, err = s.db.Exec(
		`INSERT INTO scans
		 (scan_id, started_at, network, ports, processes, workers,
		  duration_seconds, open_count, error_count, scanned, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ScanID, report.StartedAt, report.Network, report.Ports,
		report.Processes, report.Workers, report.Duration,
		open, len(report.Errors), report.Scanned, string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("save scan %s: %w", report.ScanID, err)
	}
	return nil
}

// List returns the most recent scans, newest first. A limit below 1 means
// no limit.
func (s *Store) List(limit int) ([]*Record, error) {
	query := `SELECT scan_id, started_at, network, ports, processes, workers,
	                 duration_seconds, open_count, error_count, scanned
	          FROM scans ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(
			&rec.ScanID, &rec.StartedAt, &rec.Network, &rec.Ports,
			&rec.Processes, &rec.Workers, &rec.Duration,
			&rec.OpenCount, &rec.ErrorCount, &rec.Scanned,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get loads one scan's full report.
func (s *Store) Get(scanID string) (*Record, error) {
	rec := &Record{}
	var reportJSON string

	err := s.db.QueryRow(
		`SELECT scan_id, started_at, network, ports, processes, workers,
		        duration_seconds, open_count, error_count, scanned, report_json
		 FROM scans WHERE scan_id = ?`, scanID,
	).Scan(
		&rec.ScanID, &rec.StartedAt, &rec.Network, &rec.Ports,
		&rec.Processes, &rec.Workers, &rec.Duration,
		&rec.OpenCount, &rec.ErrorCount, &rec.Scanned, &reportJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan %s not found", scanID)
	}
	if err != nil {
		return nil, fmt.Errorf("load scan %s: %w", scanID, err)
	}

	report := &models.Report{}
	if err := json.Unmarshal([]byte(reportJSON), report); err != nil {
		return nil, fmt.Errorf("decode report for %s: %w", scanID, err)
	}
	rec.Report = report
	return rec, nil
}

// Delete removes one scan from the history.
func (s *Store) Delete(scanID string) error {
	res, err := s.db.Exec(`DELETE FROM scans WHERE scan_id = ?`, scanID)
	if err != nil {
		return fmt.Errorf("delete scan %s: %w", scanID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scan %s not found", scanID)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
