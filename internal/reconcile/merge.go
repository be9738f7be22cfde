package reconcile

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sells-group/summons-enricher/internal/model"
	"github.com/sells-group/summons-enricher/internal/pagedate"
)

const defaultPreviewChars = 100

// Results holds whatever the extraction stages produced. A nil field means
// the stage was not run or failed.
type Results struct {
	PageDate *string
	Document *model.DocumentFields
}

// Reconciler builds merged updates.
type Reconciler struct {
	previewChars int
	now          func() time.Time
	newID        func() string
}

// New creates a Reconciler. previewChars bounds the narrative preview in
// the activity log; zero uses 100.
func New(previewChars int) *Reconciler {
	if previewChars <= 0 {
		previewChars = defaultPreviewChars
	}
	return &Reconciler{
		previewChars: previewChars,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// Merge builds the update for req from res. It returns nil when nothing
// was extracted, in which case no write should happen.
func (r *Reconciler) Merge(req model.EnrichmentRequest, snap *model.RecordSnapshot, res Results) *model.Update {
	fields := make(map[string]any)

	if res.PageDate != nil && *res.PageDate != "" {
		fields[model.FieldVideoCreatedDate] = *res.PageDate
		if req.ViolationDate != "" {
			if lag := pagedate.LagDays(req.ViolationDate, *res.PageDate); lag != nil {
				fields[model.FieldLagDays] = *lag
			}
		}
	}

	if doc := res.Document; doc != nil && (doc.HasData() || len(doc.CriticalFlags) > 0) {
		for name, v := range doc.StoredValues() {
			fields[name] = v
		}
	}

	if len(fields) == 0 {
		return nil
	}

	u := &model.Update{Fields: fields}
	now := r.now().UTC()
	u.UpdatedAt = MonotonicTime(now, snap)

	var prior []model.ActivityLogEntry
	if snap != nil {
		prior = snap.ActivityLog
	}
	u.ActivityLog = make([]model.ActivityLogEntry, 0, len(prior)+1)
	u.ActivityLog = append(u.ActivityLog, prior...)
	u.ActivityLog = append(u.ActivityLog, r.entry(u, snap, now))
	return u
}

func (r *Reconciler) entry(u *model.Update, snap *model.RecordSnapshot, now time.Time) model.ActivityLogEntry {
	e := model.ActivityLogEntry{
		ID:          r.newID(),
		Date:        now,
		Type:        model.ActivityOCRComplete,
		Description: "OCR complete: merged " + strings.Join(u.FieldNames(), ", "),
	}
	if n, ok := u.Fields[model.FieldNarrative].(string); ok {
		preview := Preview(n, r.previewChars)
		e.Description += fmt.Sprintf(". Narrative: %q", preview)
		e.NewValue = &preview
	}
	if snap.HasNarrative() {
		old := Preview(snap.Narrative, r.previewChars)
		e.OldValue = &old
	}
	return e
}

// MonotonicTime returns now, or one millisecond past the stored timestamp
// if the clock is behind it.
func MonotonicTime(now time.Time, snap *model.RecordSnapshot) time.Time {
	if snap == nil || snap.UpdatedAt.IsZero() {
		return now
	}
	if floor := snap.UpdatedAt.UTC().Add(time.Millisecond); now.Before(floor) {
		return floor
	}
	return now
}

// Preview truncates s to at most n runes, marking truncation with "...".
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
