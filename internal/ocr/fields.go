package ocr

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/model"
)

// Response keys requested by Prompt.
const (
	KeyLicensePlate   = "license_plate"
	KeyIDNumber       = "id_number"
	KeyIDNumberLegacy = "dep_id"
	KeyVehicleType    = "vehicle_type"
	KeyPriorOffense   = "prior_offense_status"
	KeyNarrative      = "violation_narrative"
	KeyIdlingDuration = "idling_duration"
	KeyRespondentName = "respondent_name"
	KeyCriticalFlags  = "critical_flags"
)

// ErrNoJSON is returned when the model response contains no JSON object.
var ErrNoJSON = eris.New("ocr: no json object in model response")

// ParseResponse takes the span from the first '{' to the last '}' of text
// and decodes it as a JSON object.
func ParseResponse(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, eris.Wrap(err, "ocr: decode model json")
	}
	return out, nil
}

// IDVerdict classifies a raw identifier returned by the model.
type IDVerdict string

const (
	IDMissing      IDVerdict = "missing"
	IDValid        IDVerdict = "valid"
	IDRejected     IDVerdict = "rejected"
	IDUnrecognized IDVerdict = "unrecognized"
)

var (
	validIDPattern   = regexp.MustCompile(`^\d{4}-\d{5,6}$`)
	summonsIDPattern = regexp.MustCompile(`^\d{9,}[A-Za-z]?$`)
)

// ClassifyID sorts a raw identifier into valid, rejected (it looks like the
// long summons number), unrecognized, or missing.
func ClassifyID(raw string) IDVerdict {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return IDMissing
	case validIDPattern.MatchString(raw):
		return IDValid
	case summonsIDPattern.MatchString(raw):
		return IDRejected
	default:
		return IDUnrecognized
	}
}

// DisambiguateID reads the identifier from the canonical key, falling back
// to the legacy alias, and returns it only when it has the complaint
// identifier format.
func DisambiguateID(fields map[string]any) *string {
	raw, key := scalar(fields[KeyIDNumber]), KeyIDNumber
	if raw == nil {
		raw, key = scalar(fields[KeyIDNumberLegacy]), KeyIDNumberLegacy
	}
	if raw == nil {
		return nil
	}

	v := strings.TrimSpace(*raw)
	switch ClassifyID(v) {
	case IDValid:
		return &v
	case IDRejected:
		zap.L().Warn("ocr: id number rejected, matches summons number format",
			zap.String("key", key),
			zap.String("raw", v),
		)
	default:
		zap.L().Warn("ocr: id number has unrecognized format",
			zap.String("key", key),
			zap.String("raw", v),
		)
	}
	return nil
}

// FieldsFromMap converts a decoded model response into DocumentFields.
// Null, empty, and non-scalar values are treated as absent.
func FieldsFromMap(m map[string]any) *model.DocumentFields {
	return &model.DocumentFields{
		LicensePlate:   scalar(m[KeyLicensePlate]),
		IDNumber:       DisambiguateID(m),
		VehicleType:    scalar(m[KeyVehicleType]),
		PriorOffense:   scalar(m[KeyPriorOffense]),
		Narrative:      scalar(m[KeyNarrative]),
		IdlingDuration: scalar(m[KeyIdlingDuration]),
		RespondentName: scalar(m[KeyRespondentName]),
		CriticalFlags:  flags(m[KeyCriticalFlags]),
	}
}

// scalar renders strings, numbers, and booleans as a trimmed string.
func scalar(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// flags keeps the model's order and duplicates, dropping empty entries.
func flags(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := scalar(item); s != nil {
				out = append(out, *s)
			}
		}
	case string:
		if s := scalar(t); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
