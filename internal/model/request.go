package model

// EnrichmentRequest identifies one summons record to enrich. It is built
// once per invocation by the trigger normalizer and never modified.
type EnrichmentRequest struct {
	SummonsID     string `json:"summons_id"`
	SummonsNumber string `json:"summons_number"`
	DocumentURL   string `json:"pdf_link,omitempty"`
	PageURL       string `json:"video_link,omitempty"`
	ViolationDate string `json:"violation_date,omitempty"`
	Healing       bool   `json:"is_healing"`
}

// HasDocument reports whether a document link is present.
func (r EnrichmentRequest) HasDocument() bool { return r.DocumentURL != "" }

// HasPage reports whether a page link is present.
func (r EnrichmentRequest) HasPage() bool { return r.PageURL != "" }
