package records

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vodforge/internal/config"
	"vodforge/internal/manifest"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

const recordColumns = `id, bundle_name, title, category, description, content_type,
    rental_price, status, progress, hls_url, thumbnail_url, trailer_url,
    error_details, seasons_json, created_at, updated_at`

// Store manages content record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the records database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "records.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applySchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var count int
	row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_version WHERE version = ?", schemaVersion)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("scan schema version: %w", err)
	}
	if count == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			schemaVersion, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Create inserts a record for a validated bundle, or resets the existing
// record when the same bundle name is ingested again. The record starts in
// processing state with zero progress.
func (s *Store) Create(ctx context.Context, bundleName string, m *manifest.Manifest) (*Record, error) {
	if m == nil {
		return nil, errors.New("manifest is nil")
	}
	seasonsJSON, err := marshalSeasons(SeasonsFromManifest(m))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO content_records (
            bundle_name, title, category, description, content_type,
            rental_price, status, progress, seasons_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
        ON CONFLICT(bundle_name) DO UPDATE SET
            title = excluded.title,
            category = excluded.category,
            description = excluded.description,
            content_type = excluded.content_type,
            rental_price = excluded.rental_price,
            status = excluded.status,
            progress = 0,
            hls_url = NULL,
            thumbnail_url = NULL,
            trailer_url = NULL,
            error_details = NULL,
            seasons_json = excluded.seasons_json,
            updated_at = excluded.updated_at`,
		bundleName,
		m.Title,
		m.Category,
		m.Description,
		string(m.Type),
		m.RentalPrice,
		StatusProcessing,
		seasonsJSON,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return s.GetByBundle(ctx, bundleName)
}

// GetByID fetches a record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM content_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// GetByBundle fetches the record for a bundle name.
func (s *Store) GetByBundle(ctx context.Context, bundleName string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM content_records WHERE bundle_name = ?`, bundleName)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by bundle: %w", err)
	}
	return record, nil
}

// List returns records filtered by status set (or all records when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM content_records`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Stats returns the record count per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM content_records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if status, ok := ParseStatus(raw); ok {
			stats[status] = count
		}
	}
	return stats, rows.Err()
}

// MarkStaleProcessing marks records still in processing state as failed.
// Called at startup: a processing record with no live pipeline run belongs
// to a crashed previous process and its transcode cannot be trusted.
func (s *Store) MarkStaleProcessing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE content_records
         SET status = ?, error_details = ?, updated_at = ?
         WHERE status = ?`,
		StatusFailed,
		"interrupted by process restart",
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("mark stale processing: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) save(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	seasonsJSON, err := marshalSeasons(record.Seasons)
	if err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE content_records
         SET title = ?, category = ?, description = ?, content_type = ?,
             rental_price = ?, status = ?, progress = ?, hls_url = ?,
             thumbnail_url = ?, trailer_url = ?, error_details = ?,
             seasons_json = ?, updated_at = ?
         WHERE id = ?`,
		record.Title,
		record.Category,
		record.Description,
		string(record.Type),
		record.RentalPrice,
		record.Status,
		record.Progress,
		nullableString(record.HLSURL),
		nullableString(record.ThumbnailURL),
		nullableString(record.TrailerURL),
		nullableString(record.ErrorDetails),
		seasonsJSON,
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record       Record
		contentType  string
		status       string
		hlsURL       sql.NullString
		thumbnailURL sql.NullString
		trailerURL   sql.NullString
		errorDetails sql.NullString
		seasonsJSON  sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(
		&record.ID,
		&record.BundleName,
		&record.Title,
		&record.Category,
		&record.Description,
		&contentType,
		&record.RentalPrice,
		&status,
		&record.Progress,
		&hlsURL,
		&thumbnailURL,
		&trailerURL,
		&errorDetails,
		&seasonsJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Type = manifest.ContentType(contentType)
	if parsed, ok := ParseStatus(status); ok {
		record.Status = parsed
	} else {
		record.Status = StatusPending
	}
	record.HLSURL = hlsURL.String
	record.ThumbnailURL = thumbnailURL.String
	record.TrailerURL = trailerURL.String
	record.ErrorDetails = errorDetails.String
	if seasonsJSON.Valid && seasonsJSON.String != "" {
		if err := json.Unmarshal([]byte(seasonsJSON.String), &record.Seasons); err != nil {
			return nil, fmt.Errorf("unmarshal seasons: %w", err)
		}
	}
	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &record, nil
}

func marshalSeasons(seasons []SeasonRecord) (any, error) {
	if len(seasons) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(seasons)
	if err != nil {
		return nil, fmt.Errorf("marshal seasons: %w", err)
	}
	return string(data), nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts.UTC(), nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
