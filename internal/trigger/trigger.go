// Package trigger normalizes invocation payloads into an EnrichmentRequest.
//
// Two shapes are accepted: a direct object with the fields at top level,
// and a change-stream event whose records carry a typed "new image".
package trigger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summons-enricher/internal/model"
)

// ErrMissingField is returned when a required identifying field is absent.
var ErrMissingField = errors.New("missing required field")

// Shape names the payload variant that was parsed.
type Shape string

const (
	ShapeDirect Shape = "direct"
	ShapeStream Shape = "stream"
)

// Stream attribute keys of the new image.
const (
	attrID            = "id"
	attrSummonsNumber = "summons_number"
	attrPDFLink       = "pdf_link"
	attrVideoLink     = "video_link"
	attrViolationDate = "violation_date"
	attrHealing       = "is_healing"
)

type direct struct {
	SummonsID     any     `json:"summons_id"`
	SummonsNumber any     `json:"summons_number"`
	PDFLink       *string `json:"pdf_link"`
	VideoLink     *string `json:"video_link"`
	ViolationDate *string `json:"violation_date"`
	Healing       any     `json:"is_healing"`
}

type streamEvent struct {
	Records []streamRecord `json:"Records"`
}

type streamRecord struct {
	EventName string `json:"eventName"`
	DynamoDB  struct {
		NewImage map[string]Attribute `json:"NewImage"`
	} `json:"dynamodb"`
}

// Attribute is one typed value in a stream image.
type Attribute struct {
	S    *string `json:"S,omitempty"`
	N    *string `json:"N,omitempty"`
	BOOL *bool   `json:"BOOL,omitempty"`
	NULL *bool   `json:"NULL,omitempty"`
}

// String returns the attribute as text. NULL and missing values are empty.
func (a Attribute) String() string {
	switch {
	case a.NULL != nil && *a.NULL:
		return ""
	case a.S != nil:
		return *a.S
	case a.N != nil:
		return *a.N
	case a.BOOL != nil:
		return strconv.FormatBool(*a.BOOL)
	}
	return ""
}

// Bool returns the attribute as a boolean. Strings and numbers are parsed
// permissively; anything unparseable is false.
func (a Attribute) Bool() bool {
	switch {
	case a.NULL != nil && *a.NULL:
		return false
	case a.BOOL != nil:
		return *a.BOOL
	}
	return parseBool(a.String())
}

// Detect reports the payload shape without fully decoding it.
func Detect(payload []byte) (Shape, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return "", eris.Wrap(err, "trigger: decode payload")
	}
	if _, ok := top["Records"]; ok {
		return ShapeStream, nil
	}
	return ShapeDirect, nil
}

// Normalize parses payload in either accepted shape. Missing identifying
// fields wrap ErrMissingField.
func Normalize(payload []byte) (model.EnrichmentRequest, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return model.EnrichmentRequest{}, eris.Wrap(ErrMissingField, "trigger: empty payload")
	}

	shape, err := Detect(payload)
	if err != nil {
		return model.EnrichmentRequest{}, err
	}

	var req model.EnrichmentRequest
	switch shape {
	case ShapeStream:
		req, err = fromStream(payload)
	default:
		req, err = fromDirect(payload)
	}
	if err != nil {
		return model.EnrichmentRequest{}, err
	}
	return req, Validate(req)
}

// Validate checks that the identifying fields are present.
func Validate(req model.EnrichmentRequest) error {
	var missing []string
	if req.SummonsID == "" {
		missing = append(missing, "summons_id")
	}
	if req.SummonsNumber == "" {
		missing = append(missing, "summons_number")
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingField, "trigger: %s", strings.Join(missing, ", "))
	}
	return nil
}

func fromDirect(payload []byte) (model.EnrichmentRequest, error) {
	var d direct
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return model.EnrichmentRequest{}, eris.Wrap(err, "trigger: decode direct payload")
	}
	return model.EnrichmentRequest{
		SummonsID:     text(d.SummonsID),
		SummonsNumber: text(d.SummonsNumber),
		DocumentURL:   deref(d.PDFLink),
		PageURL:       deref(d.VideoLink),
		ViolationDate: deref(d.ViolationDate),
		Healing:       truthy(d.Healing),
	}, nil
}

func fromStream(payload []byte) (model.EnrichmentRequest, error) {
	var ev streamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return model.EnrichmentRequest{}, eris.Wrap(err, "trigger: decode stream event")
	}
	for _, rec := range ev.Records {
		if rec.EventName == "REMOVE" || len(rec.DynamoDB.NewImage) == 0 {
			continue
		}
		img := rec.DynamoDB.NewImage
		return model.EnrichmentRequest{
			SummonsID:     strings.TrimSpace(img[attrID].String()),
			SummonsNumber: strings.TrimSpace(img[attrSummonsNumber].String()),
			DocumentURL:   strings.TrimSpace(img[attrPDFLink].String()),
			PageURL:       strings.TrimSpace(img[attrVideoLink].String()),
			ViolationDate: strings.TrimSpace(img[attrViolationDate].String()),
			Healing:       img[attrHealing].Bool(),
		}, nil
	}
	return model.EnrichmentRequest{}, eris.Wrap(ErrMissingField, "trigger: stream event has no new image")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// text accepts an identifier as a JSON string or number.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

// truthy accepts the healing flag as a JSON bool, a string, or a number.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return parseBool(t)
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	return false
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}
