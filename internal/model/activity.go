package model

import "time"

// ActivityKind enumerates activity log entry types.
type ActivityKind string

const (
	// ActivityOCRComplete marks a completed enrichment run.
	ActivityOCRComplete ActivityKind = "OCR_COMPLETE"
)

// Valid reports whether k is a known kind.
func (k ActivityKind) Valid() bool {
	return k == ActivityOCRComplete
}

// ActivityLogEntry is one append-only audit record on a summons.
// OldValue and NewValue are narrative slots, not strict diffs.
type ActivityLogEntry struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"`
	Type        ActivityKind `json:"type"`
	Description string       `json:"description"`
	OldValue    *string      `json:"old_value"`
	NewValue    *string      `json:"new_value"`
}
