package model

import "time"

// Stored field names touched by the enrichment worker.
const (
	FieldLicensePlate     = "license_plate_ocr"
	FieldIDNumber         = "id_number"
	FieldVehicleType      = "vehicle_type_ocr"
	FieldPriorOffense     = "prior_offense_status"
	FieldNarrative        = "violation_narrative"
	FieldIdlingDuration   = "idling_duration_ocr"
	FieldRespondentName   = "respondent_name_ocr"
	FieldCriticalFlags    = "critical_flags"
	FieldVideoCreatedDate = "video_created_date"
	FieldLagDays          = "lag_days"
	FieldActivityLog      = "activity_log"
	FieldUpdatedAt        = "updated_at"
)

// MergeableFields lists, in their canonical order, the fields an enrichment
// run may write. Update.FieldNames follows this order.
func MergeableFields() []string {
	return []string{
		FieldVideoCreatedDate,
		FieldLagDays,
		FieldLicensePlate,
		FieldIDNumber,
		FieldVehicleType,
		FieldPriorOffense,
		FieldNarrative,
		FieldIdlingDuration,
		FieldRespondentName,
		FieldCriticalFlags,
	}
}

// IsMergeable reports whether name is a field enrichment may write.
func IsMergeable(name string) bool {
	for _, f := range MergeableFields() {
		if f == name {
			return true
		}
	}
	return false
}

// RecordSnapshot is a read-only view of the stored record at the moment
// processing begins.
type RecordSnapshot struct {
	SummonsID    string
	Narrative    string
	IDNumber     string
	LicensePlate string
	ActivityLog  []ActivityLogEntry
	UpdatedAt    time.Time
}

// HasNarrative reports whether a non-empty narrative is already stored.
func (s *RecordSnapshot) HasNarrative() bool { return s != nil && s.Narrative != "" }

// HasIDNumber reports whether a validated ID number is already stored.
func (s *RecordSnapshot) HasIDNumber() bool { return s != nil && s.IDNumber != "" }

// HasLicensePlate reports whether a license plate is already stored.
func (s *RecordSnapshot) HasLicensePlate() bool { return s != nil && s.LicensePlate != "" }

// MissingFields returns the healable fields that are absent from the record.
func (s *RecordSnapshot) MissingFields() []string {
	var missing []string
	if !s.HasIDNumber() {
		missing = append(missing, FieldIDNumber)
	}
	if !s.HasLicensePlate() {
		missing = append(missing, FieldLicensePlate)
	}
	return missing
}

// Update is a partial record update. Fields holds only values that were
// (re-)extracted in this run; ActivityLog is the complete new log.
type Update struct {
	Fields      map[string]any     `json:"fields"`
	ActivityLog []ActivityLogEntry `json:"activity_log"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// FieldNames returns the merged field names in canonical order.
func (u *Update) FieldNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.Fields))
	for _, f := range MergeableFields() {
		if _, ok := u.Fields[f]; ok {
			names = append(names, f)
		}
	}
	return names
}
