package pagedate

import (
	"bytes"
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/summons-enricher/internal/fetcher"
)

// ErrNoDate is returned when no heuristic produced a valid date.
var ErrNoDate = eris.New("pagedate: no date found")

// Extractor fetches a page and recovers its creation timestamp.
type Extractor struct {
	fetcher    fetcher.Fetcher
	heuristics []Heuristic
}

// NewExtractor creates an Extractor using the default heuristics.
func NewExtractor(f fetcher.Fetcher) *Extractor {
	return &Extractor{fetcher: f, heuristics: DefaultHeuristics()}
}

// Extract fetches pageURL and returns its creation timestamp in RFC 3339
// UTC form. It returns ErrNoDate when the page has no recognizable date.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	resp, err := e.fetcher.Get(ctx, pageURL, fetcher.WithAccept("text/html,application/xhtml+xml"))
	if err != nil {
		return "", eris.Wrap(err, "pagedate: fetch page")
	}

	body, err := Decode(resp.Body, resp.ContentType)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "pagedate: parse html")
	}

	m, ok := FromDocument(doc, e.heuristics)
	if !ok {
		return "", ErrNoDate
	}
	zap.L().Debug("pagedate: date extracted",
		zap.String("url", pageURL),
		zap.String("heuristic", m.Heuristic),
		zap.String("raw", m.Raw),
		zap.String("timestamp", m.Timestamp),
	)
	return m.Timestamp, nil
}
