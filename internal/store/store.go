// Package store reads record snapshots and applies partial updates to the
// summons table.
package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/internal/model"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = eris.New("store: record not found")

// DefaultTable is the summons table name.
const DefaultTable = "summons"

// RecordStore is the record-by-id read and partial-update contract the
// enrichment worker depends on.
type RecordStore interface {
	// GetSnapshot returns the stored record, or ErrNotFound.
	GetSnapshot(ctx context.Context, summonsID string) (*model.RecordSnapshot, error)
	// ApplyUpdate writes the update's fields, activity log, and timestamp
	// in one statement. It returns ErrNotFound if the record is gone.
	ApplyUpdate(ctx context.Context, summonsID string, u *model.Update) error
}

// Store is a RecordStore with lifecycle operations.
type Store interface {
	RecordStore
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DatabaseURL, cfg.Table, nil)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL, cfg.Table)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// column is one SET target and its bind value.
type column struct {
	name  string
	value any
}

// updateColumns validates u and encodes its values in canonical order,
// followed by activity_log and updated_at. JSON columns are encoded as
// strings.
func updateColumns(u *model.Update) ([]column, error) {
	if u == nil {
		return nil, eris.New("store: nil update")
	}
	for name := range u.Fields {
		if !model.IsMergeable(name) {
			return nil, eris.Errorf("store: field %q is not writable", name)
		}
	}

	names := u.FieldNames()
	cols := make([]column, 0, len(names)+2)
	for _, name := range names {
		v := u.Fields[name]
		switch name {
		case model.FieldCriticalFlags:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, eris.Wrap(err, "store: marshal critical_flags")
			}
			v = string(b)
		case model.FieldLagDays:
			switch n := v.(type) {
			case int:
			case *int:
				if n == nil {
					return nil, eris.New("store: nil lag_days")
				}
				v = *n
			default:
				return nil, eris.Errorf("store: lag_days has type %T", v)
			}
		}
		cols = append(cols, column{name: name, value: v})
	}

	entries := u.ActivityLog
	if entries == nil {
		entries = []model.ActivityLogEntry{}
	}
	logJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal activity_log")
	}
	cols = append(cols,
		column{name: model.FieldActivityLog, value: string(logJSON)},
		column{name: model.FieldUpdatedAt, value: u.UpdatedAt.UTC()},
	)
	return cols, nil
}

func columnNames(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// indexName derives the summons_number index name from the table name.
func indexName(table string) string {
	return pgx.Identifier{"idx_" + strings.ReplaceAll(table, ".", "_") + "_summons_number"}.Sanitize()
}

func decodeActivityLog(raw []byte) ([]model.ActivityLogEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []model.ActivityLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, eris.Wrap(err, "store: decode activity_log")
	}
	return entries, nil
}
