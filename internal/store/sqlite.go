package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/summons-enricher/internal/db"
	"github.com/sells-group/summons-enricher/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as RFC 3339 text and JSON columns as text.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn, table string) (*SQLiteStore, error) {
	if table == "" {
		table = DefaultTable
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn, table: table}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id                   TEXT PRIMARY KEY,
	summons_number       TEXT NOT NULL DEFAULT '',
	pdf_link             TEXT,
	video_link           TEXT,
	violation_date       TEXT,
	license_plate_ocr    TEXT,
	id_number            TEXT,
	vehicle_type_ocr     TEXT,
	prior_offense_status TEXT,
	violation_narrative  TEXT,
	idling_duration_ocr  TEXT,
	respondent_name_ocr  TEXT,
	critical_flags       TEXT,
	video_created_date   TEXT,
	lag_days             INTEGER,
	activity_log         TEXT NOT NULL DEFAULT '[]',
	created_at           TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')),
	updated_at           TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(summons_number);
`

// Migrate creates the summons table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(sqliteMigration, db.SanitizeTable(s.table), indexName(s.table)))
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSnapshot implements RecordStore.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, summonsID string) (*model.RecordSnapshot, error) {
	query := fmt.Sprintf(`SELECT id, COALESCE(violation_narrative, ''), COALESCE(id_number, ''), COALESCE(license_plate_ocr, ''), activity_log, updated_at FROM %s WHERE id = ?`,
		db.SanitizeTable(s.table))

	var (
		snap      model.RecordSnapshot
		logJSON   sql.NullString
		updatedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, summonsID).Scan(
		&snap.SummonsID,
		&snap.Narrative,
		&snap.IDNumber,
		&snap.LicensePlate,
		&logJSON,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", summonsID)
	}

	if snap.ActivityLog, err = decodeActivityLog([]byte(logJSON.String)); err != nil {
		return nil, err
	}
	if updatedAt.Valid && updatedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse updated_at %q", updatedAt.String)
		}
		snap.UpdatedAt = t.UTC()
	}
	return &snap, nil
}

// ApplyUpdate implements RecordStore.
func (s *SQLiteStore) ApplyUpdate(ctx context.Context, summonsID string, u *model.Update) error {
	cols, err := updateColumns(u)
	if err != nil {
		return err
	}
	query, err := db.UpdateSQL(db.UpdateConfig{
		Table:       s.table,
		KeyColumn:   "id",
		Columns:     columnNames(cols),
		Placeholder: db.Question,
	})
	if err != nil {
		return eris.Wrap(err, "sqlite: build update")
	}

	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		if t, ok := c.value.(time.Time); ok {
			args = append(args, t.UTC().Format(time.RFC3339Nano))
			continue
		}
		args = append(args, c.value)
	}
	args = append(args, summonsID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update %s", summonsID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Insert creates a bare record. It is used to seed local databases.
func (s *SQLiteStore) Insert(ctx context.Context, req model.EnrichmentRequest) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, summons_number, pdf_link, video_link, violation_date) VALUES (?, ?, ?, ?, ?)`,
		db.SanitizeTable(s.table))
	_, err := s.db.ExecContext(ctx, query, req.SummonsID, req.SummonsNumber,
		nullable(req.DocumentURL), nullable(req.PageURL), nullable(req.ViolationDate))
	return eris.Wrapf(err, "sqlite: insert %s", req.SummonsID)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
