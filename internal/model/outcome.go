package model

import (
	"encoding/json"
	"net/http"
)

// ErrorCategory classifies a failed invocation.
type ErrorCategory string

const (
	ErrorInput       ErrorCategory = "InputError"
	ErrorPersistence ErrorCategory = "PersistenceError"
)

// Outcome is the structured result of one invocation.
type Outcome struct {
	StatusCode int         `json:"statusCode"`
	Body       OutcomeBody `json:"body"`
}

// OutcomeBody carries either the success fields or the failure fields.
type OutcomeBody struct {
	SummonsID     string        `json:"summons_id,omitempty"`
	UpdatedFields []string      `json:"updated_fields,omitempty"`
	Skipped       bool          `json:"skipped,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	HasOCRData    *bool         `json:"has_ocr_data,omitempty"`
	Error         ErrorCategory `json:"error,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// MarshalJSON emits the failure shape when Error is set and the success
// shape otherwise. updated_fields is always present on success.
func (b OutcomeBody) MarshalJSON() ([]byte, error) {
	if b.Error != "" {
		return json.Marshal(struct {
			Error   ErrorCategory `json:"error"`
			Message string        `json:"message"`
		}{b.Error, b.Message})
	}
	fields := b.UpdatedFields
	if fields == nil {
		fields = []string{}
	}
	return json.Marshal(struct {
		SummonsID     string   `json:"summons_id"`
		UpdatedFields []string `json:"updated_fields"`
		Skipped       bool     `json:"skipped,omitempty"`
		Reason        string   `json:"reason,omitempty"`
		HasOCRData    *bool    `json:"has_ocr_data,omitempty"`
	}{b.SummonsID, fields, b.Skipped, b.Reason, b.HasOCRData})
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool { return o.StatusCode == http.StatusOK }

// Success builds a success outcome. fields is normalized to a non-nil slice.
func Success(summonsID string, fields []string, hasOCRData bool) Outcome {
	if fields == nil {
		fields = []string{}
	}
	return Outcome{
		StatusCode: http.StatusOK,
		Body: OutcomeBody{
			SummonsID:     summonsID,
			UpdatedFields: fields,
			HasOCRData:    &hasOCRData,
		},
	}
}

// Skipped builds the success outcome for a record that already holds OCR data.
func Skipped(summonsID, reason string) Outcome {
	o := Success(summonsID, nil, true)
	o.Body.Skipped = true
	o.Body.Reason = reason
	return o
}

// Failure builds a failure outcome.
func Failure(category ErrorCategory, message string) Outcome {
	code := http.StatusInternalServerError
	if category == ErrorInput {
		code = http.StatusBadRequest
	}
	return Outcome{
		StatusCode: code,
		Body:       OutcomeBody{Error: category, Message: message},
	}
}
