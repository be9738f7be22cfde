package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Dollar renders Postgres-style placeholders ($1, $2, ...).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question renders SQLite-style positional placeholders.
func Question(int) string { return "?" }

// UpdateConfig defines a single-row partial update.
type UpdateConfig struct {
	Table       string   // target table (e.g., "summons" or "public.summons")
	KeyColumn   string   // column identifying the row
	Columns     []string // columns to set, in bind order
	Placeholder Placeholder
}

// UpdateSQL builds an UPDATE statement setting each column in order. The
// key is bound last, after the column values.
func UpdateSQL(cfg UpdateConfig) (string, error) {
	if cfg.Table == "" {
		return "", eris.New("db: update: no table specified")
	}
	if cfg.KeyColumn == "" {
		return "", eris.New("db: update: no key column specified")
	}
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: update: no columns specified")
	}
	ph := cfg.Placeholder
	if ph == nil {
		ph = Dollar
	}

	setClauses := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		setClauses[i] = fmt.Sprintf("%s = %s", pgx.Identifier{col}.Sanitize(), ph(i+1))
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		SanitizeTable(cfg.Table),
		strings.Join(setClauses, ", "),
		pgx.Identifier{cfg.KeyColumn}.Sanitize(),
		ph(len(cfg.Columns)+1),
	), nil
}

// SanitizeTable handles schema-qualified table names like "public.summons".
func SanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}
