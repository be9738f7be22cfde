// Package reconcile decides whether a record may be enriched and merges
// extraction results into a single partial update.
package reconcile

import (
	"strings"

	"github.com/sells-group/summons-enricher/internal/model"
)

// Action is the eligibility verdict for one record.
type Action string

const (
	ActionProcess Action = "process"
	ActionHeal    Action = "heal"
	ActionSkip    Action = "skip"
)

// Skip reasons reported in the outcome body.
const (
	ReasonAlreadyEnriched = "record already has OCR data"
	ReasonNothingToHeal   = "healing not needed: id number and license plate present"
)

// Decision is the result of the eligibility check.
type Decision struct {
	Action  Action
	Reason  string
	Missing []string // healable fields absent from the record, for ActionHeal
}

// Proceed reports whether extraction should run.
func (d Decision) Proceed() bool { return d.Action != ActionSkip }

// Decide applies the immutability rule: a record with a narrative is only
// re-enriched in healing mode, and only while it lacks an id number or a
// license plate.
func Decide(req model.EnrichmentRequest, snap *model.RecordSnapshot) Decision {
	if !snap.HasNarrative() {
		return Decision{Action: ActionProcess, Reason: "no existing narrative"}
	}
	if !req.Healing {
		return Decision{Action: ActionSkip, Reason: ReasonAlreadyEnriched}
	}
	missing := snap.MissingFields()
	if len(missing) == 0 {
		return Decision{Action: ActionSkip, Reason: ReasonNothingToHeal}
	}
	return Decision{
		Action:  ActionHeal,
		Reason:  "healing: record missing " + strings.Join(missing, ", "),
		Missing: missing,
	}
}
