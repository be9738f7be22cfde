package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/summons-enricher/internal/model"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		healing bool
		snap    *model.RecordSnapshot
		want    Action
		missing []string
	}{
		{"no narrative", false, &model.RecordSnapshot{}, ActionProcess, nil},
		{"no narrative healing", true, &model.RecordSnapshot{IDNumber: "2024-012345"}, ActionProcess, nil},
		{"nil snapshot", false, nil, ActionProcess, nil},
		{"narrative no healing", false, &model.RecordSnapshot{Narrative: "idled"}, ActionSkip, nil},
		{"narrative no healing incomplete", false, &model.RecordSnapshot{Narrative: "idled", IDNumber: ""}, ActionSkip, nil},
		{"heal missing id", true, &model.RecordSnapshot{Narrative: "idled", LicensePlate: "ABC"}, ActionHeal, []string{model.FieldIDNumber}},
		{"heal missing plate", true, &model.RecordSnapshot{Narrative: "idled", IDNumber: "2024-012345"}, ActionHeal, []string{model.FieldLicensePlate}},
		{"heal missing both", true, &model.RecordSnapshot{Narrative: "idled"}, ActionHeal, []string{model.FieldIDNumber, model.FieldLicensePlate}},
		{"heal complete", true, &model.RecordSnapshot{Narrative: "idled", IDNumber: "2024-012345", LicensePlate: "ABC"}, ActionSkip, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(model.EnrichmentRequest{SummonsID: "rec-1", Healing: tt.healing}, tt.snap)
			assert.Equal(t, tt.want, d.Action)
			assert.Equal(t, tt.missing, d.Missing)
			assert.Equal(t, tt.want != ActionSkip, d.Proceed())
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestDecide_SkipReasons(t *testing.T) {
	d := Decide(model.EnrichmentRequest{}, &model.RecordSnapshot{Narrative: "x"})
	assert.Equal(t, ReasonAlreadyEnriched, d.Reason)

	d = Decide(model.EnrichmentRequest{Healing: true}, &model.RecordSnapshot{Narrative: "x", IDNumber: "2024-012345", LicensePlate: "P"})
	assert.Equal(t, ReasonNothingToHeal, d.Reason)

	d = Decide(model.EnrichmentRequest{Healing: true}, &model.RecordSnapshot{Narrative: "x"})
	assert.Equal(t, "healing: record missing id_number, license_plate_ocr", d.Reason)
}
