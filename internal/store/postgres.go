package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/summons-enricher/internal/db"
	"github.com/sells-group/summons-enricher/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	table   string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString, table string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresWithPool(pool, table), nil
}

func newPostgresWithPool(pool db.Pool, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{pool: pool, table: table, closeFn: pool.Close}
}

const postgresMigration = `
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
	critical_flags       JSONB,
	video_created_date   TEXT,
	lag_days             INTEGER,
	activity_log         JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(summons_number);
`

// Migrate creates the summons table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(postgresMigration, db.SanitizeTable(s.table), indexName(s.table)))
	return eris.Wrap(err, "postgres: migrate")
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// GetSnapshot implements RecordStore.
func (s *PostgresStore) GetSnapshot(ctx context.Context, summonsID string) (*model.RecordSnapshot, error) {
	query := fmt.Sprintf(`SELECT id, COALESCE(violation_narrative, ''), COALESCE(id_number, ''), COALESCE(license_plate_ocr, ''), activity_log, updated_at FROM %s WHERE id = $1`,
		db.SanitizeTable(s.table))

	var (
		snap    model.RecordSnapshot
		logJSON []byte
	)
	err := s.pool.QueryRow(ctx, query, summonsID).Scan(
		&snap.SummonsID,
		&snap.Narrative,
		&snap.IDNumber,
		&snap.LicensePlate,
		&logJSON,
		&snap.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", summonsID)
	}

	snap.ActivityLog, err = decodeActivityLog(logJSON)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ApplyUpdate implements RecordStore.
func (s *PostgresStore) ApplyUpdate(ctx context.Context, summonsID string, u *model.Update) error {
	cols, err := updateColumns(u)
	if err != nil {
		return err
	}
	query, err := db.UpdateSQL(db.UpdateConfig{
		Table:       s.table,
		KeyColumn:   "id",
		Columns:     columnNames(cols),
		Placeholder: db.Dollar,
	})
	if err != nil {
		return eris.Wrap(err, "postgres: build update")
	}

	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		args = append(args, c.value)
	}
	args = append(args, summonsID)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update %s", summonsID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
