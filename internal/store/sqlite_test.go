package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/summons-enricher/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath, "")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seed(t *testing.T, st *SQLiteStore, id string) {
	t.Helper()
	require.NoError(t, st.Insert(context.Background(), model.EnrichmentRequest{
		SummonsID:     id,
		SummonsNumber: "000123456789K",
		DocumentURL:   "https://docs.example/" + id + ".pdf",
	}))
}

func TestSQLite_GetSnapshot_Fresh(t *testing.T) {
	st := newTestSQLiteStore(t)
	seed(t, st, "rec-1")

	snap, err := st.GetSnapshot(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", snap.SummonsID)
	assert.False(t, snap.HasNarrative())
	assert.Empty(t, snap.ActivityLog)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestSQLite_GetSnapshot_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetSnapshot(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ApplyUpdate_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	seed(t, st, "rec-1")

	now := time.Date(2025, 1, 21, 8, 30, 0, 123000000, time.UTC)
	entry := model.ActivityLogEntry{
		ID:          "e1",
		Date:        now,
		Type:        model.ActivityOCRComplete,
		Description: "OCR complete",
	}
	u := &model.Update{
		Fields: map[string]any{
			model.FieldNarrative:     "Bus idled for 12 minutes at the curb.",
			model.FieldIDNumber:      "2024-012345",
			model.FieldLagDays:       -5,
			model.FieldCriticalFlags: []string{"a", "a"},
		},
		ActivityLog: []model.ActivityLogEntry{entry},
		UpdatedAt:   now,
	}
	require.NoError(t, st.ApplyUpdate(ctx, "rec-1", u))

	snap, err := st.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Bus idled for 12 minutes at the curb.", snap.Narrative)
	assert.Equal(t, "2024-012345", snap.IDNumber)
	assert.False(t, snap.HasLicensePlate())
	require.Len(t, snap.ActivityLog, 1)
	assert.Equal(t, "e1", snap.ActivityLog[0].ID)
	assert.True(t, now.Equal(snap.UpdatedAt))

	var lag int
	var flags string
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT lag_days, critical_flags FROM summons WHERE id = ?`, "rec-1").Scan(&lag, &flags))
	assert.Equal(t, -5, lag)
	assert.JSONEq(t, `["a","a"]`, flags)
}

func TestSQLite_ApplyUpdate_OnlyTouchesGivenFields(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	seed(t, st, "rec-1")

	require.NoError(t, st.ApplyUpdate(ctx, "rec-1", &model.Update{
		Fields:    map[string]any{model.FieldLicensePlate: "ABC1234"},
		UpdatedAt: time.Now(),
	}))
	require.NoError(t, st.ApplyUpdate(ctx, "rec-1", &model.Update{
		Fields:    map[string]any{model.FieldIDNumber: "2024-000001"},
		UpdatedAt: time.Now(),
	}))

	snap, err := st.GetSnapshot(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC1234", snap.LicensePlate)
	assert.Equal(t, "2024-000001", snap.IDNumber)

	var pdf string
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT pdf_link FROM summons WHERE id = ?`, "rec-1").Scan(&pdf))
	assert.Equal(t, "https://docs.example/rec-1.pdf", pdf)
}

func TestSQLite_ApplyUpdate_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.ApplyUpdate(context.Background(), "missing", &model.Update{
		Fields:    map[string]any{model.FieldIDNumber: "2024-000001"},
		UpdatedAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
