package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/internal/model"
)

func TestUpdateColumns_Order(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))
	lag := 3
	cols, err := updateColumns(&model.Update{
		Fields: map[string]any{
			model.FieldRespondentName: "ACME",
			model.FieldLagDays:        &lag,
			model.FieldIDNumber:       "2024-012345",
		},
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		model.FieldLagDays, model.FieldIDNumber, model.FieldRespondentName,
		model.FieldActivityLog, model.FieldUpdatedAt,
	}, columnNames(cols))
	assert.Equal(t, 3, cols[0].value)
	assert.Equal(t, "[]", cols[3].value)
	assert.Equal(t, time.UTC, cols[4].value.(time.Time).Location())
}

func TestUpdateColumns_Invalid(t *testing.T) {
	_, err := updateColumns(nil)
	require.Error(t, err)

	_, err = updateColumns(&model.Update{Fields: map[string]any{model.FieldLagDays: "nine"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lag_days has type string")

	var nilLag *int
	_, err = updateColumns(&model.Update{Fields: map[string]any{model.FieldLagDays: nilLag}})
	require.Error(t, err)

	_, err = updateColumns(&model.Update{Fields: map[string]any{model.FieldUpdatedAt: time.Now()}})
	require.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "dynamodb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "dynamodb"`)
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, `"idx_summons_summons_number"`, indexName("summons"))
	assert.Equal(t, `"idx_enforcement_summons_summons_number"`, indexName("enforcement.summons"))
}
