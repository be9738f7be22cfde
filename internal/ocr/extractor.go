package ocr

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/fetcher"
	"github.com/sells-group/summons-enricher/internal/model"
)

// ErrUnsupportedDocument is returned for payloads that are neither a PDF
// nor a JPEG or PNG image.
var ErrUnsupportedDocument = eris.New("ocr: unsupported document type")

const defaultMaxDocumentBytes = 20 << 20

var supportedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// FieldExtractor downloads a summons document and extracts its fields.
type FieldExtractor struct {
	fetcher  fetcher.Fetcher
	model    Model
	maxBytes int64
}

// NewFieldExtractor creates a FieldExtractor. maxBytes bounds the download;
// zero uses a 20 MiB limit.
func NewFieldExtractor(f fetcher.Fetcher, m Model, maxBytes int64) *FieldExtractor {
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	return &FieldExtractor{fetcher: f, model: m, maxBytes: maxBytes}
}

// Extract downloads documentURL and runs the model over it.
func (e *FieldExtractor) Extract(ctx context.Context, documentURL string) (*model.DocumentFields, error) {
	resp, err := e.fetcher.Get(ctx, documentURL,
		fetcher.WithAccept("application/pdf,image/jpeg,image/png"),
		fetcher.WithMaxBytes(e.maxBytes),
	)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: download document")
	}

	mimeType, err := DetectMIME(resp.ContentType, resp.Body)
	if err != nil {
		return nil, err
	}
	return e.ExtractBytes(ctx, resp.Body, mimeType)
}

// ExtractBytes runs the model over an in-memory document.
func (e *FieldExtractor) ExtractBytes(ctx context.Context, document []byte, mimeType string) (*model.DocumentFields, error) {
	if len(document) == 0 {
		return nil, eris.New("ocr: empty document")
	}

	text, err := e.model.Generate(ctx, Prompt, document, mimeType)
	if err != nil {
		return nil, err
	}

	raw, err := ParseResponse(text)
	if err != nil {
		zap.L().Warn("ocr: unparseable model response",
			zap.Int("response_len", len(text)),
			zap.Error(err),
		)
		return nil, err
	}

	fields := FieldsFromMap(raw)
	zap.L().Debug("ocr: fields extracted",
		zap.Bool("has_data", fields.HasData()),
		zap.Int("flags", len(fields.CriticalFlags)),
	)
	return fields, nil
}

// DetectMIME picks the document type from the Content-Type header, falling
// back to content sniffing for generic or missing headers.
func DetectMIME(contentType string, body []byte) (string, error) {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if !supportedTypes[mediaType] {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(body))
	}
	if !supportedTypes[mediaType] {
		return "", eris.Wrapf(ErrUnsupportedDocument, "content type %q", contentType)
	}
	return mediaType, nil
}
