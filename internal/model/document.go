package model

// DocumentFields holds the fields the vision model extracted from a summons
// document. A nil pointer means the model could not determine the value.
// CriticalFlags is never nil after extraction: no flags is a fact.
type DocumentFields struct {
	LicensePlate   *string  `json:"license_plate,omitempty"`
	IDNumber       *string  `json:"id_number,omitempty"`
	VehicleType    *string  `json:"vehicle_type,omitempty"`
	PriorOffense   *string  `json:"prior_offense_status,omitempty"`
	Narrative      *string  `json:"violation_narrative,omitempty"`
	IdlingDuration *string  `json:"idling_duration,omitempty"`
	RespondentName *string  `json:"respondent_name,omitempty"`
	CriticalFlags  []string `json:"critical_flags"`
}

// HasData reports whether at least one scalar field was extracted.
func (d *DocumentFields) HasData() bool {
	if d == nil {
		return false
	}
	for _, v := range d.scalars() {
		if v.value != nil {
			return true
		}
	}
	return false
}

type scalarField struct {
	name  string
	value *string
}

func (d *DocumentFields) scalars() []scalarField {
	return []scalarField{
		{FieldLicensePlate, d.LicensePlate},
		{FieldIDNumber, d.IDNumber},
		{FieldVehicleType, d.VehicleType},
		{FieldPriorOffense, d.PriorOffense},
		{FieldNarrative, d.Narrative},
		{FieldIdlingDuration, d.IdlingDuration},
		{FieldRespondentName, d.RespondentName},
	}
}

// StoredValues maps the present fields to their stored column names.
// The flag list is included whenever d is non-nil.
func (d *DocumentFields) StoredValues() map[string]any {
	out := make(map[string]any)
	if d == nil {
		return out
	}
	for _, v := range d.scalars() {
		if v.value != nil {
			out[v.name] = *v.value
		}
	}
	flags := d.CriticalFlags
	if flags == nil {
		flags = []string{}
	}
	out[FieldCriticalFlags] = flags
	return out
}
