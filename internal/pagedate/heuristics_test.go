package pagedate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestFromMarkup_TableCaption(t *testing.T) {
	markup := `<html><body><table>
		<tr><th>File name</th><td>clip.mp4</td></tr>
		<tr><th>Date Created</th><td>January 15, 2025</td></tr>
	</table></body></html>`

	m, ok := FromMarkup(markup)
	require.True(t, ok)
	assert.Equal(t, "caption_sibling", m.Heuristic)
	assert.Equal(t, "2025-01-15T00:00:00Z", m.Timestamp)
}

func TestFromMarkup_InlineCaption(t *testing.T) {
	m, ok := FromMarkup(`<div><p>Uploaded: 01/20/2025 03:04 PM</p></div>`)
	require.True(t, ok)
	assert.Equal(t, "caption_sibling", m.Heuristic)
	assert.Equal(t, "2025-01-20T15:04:00Z", m.Timestamp)
}

func TestFromMarkup_BoldCaptionWithTextSibling(t *testing.T) {
	m, ok := FromMarkup(`<p><b>Recorded</b> 2025-01-09</p>`)
	require.True(t, ok)
	assert.Equal(t, "2025-01-09T00:00:00Z", m.Timestamp)
}

func TestFromMarkup_MarkerClass(t *testing.T) {
	m, ok := FromMarkup(`<div class="video-meta"><span class="created-date">2025-01-12T08:00:00Z</span></div>`)
	require.True(t, ok)
	assert.Equal(t, "date_marker", m.Heuristic)
	assert.Equal(t, "2025-01-12T08:00:00Z", m.Timestamp)
}

func TestFromMarkup_CaptionWinsOverMarker(t *testing.T) {
	markup := `<span id="timestamp">2024-12-01</span>
		<dl><dt>Created</dt><dd>2025-01-03</dd></dl>`
	m, ok := FromMarkup(markup)
	require.True(t, ok)
	assert.Equal(t, "caption_sibling", m.Heuristic)
	assert.Equal(t, "2025-01-03T00:00:00Z", m.Timestamp)
}

func TestFromMarkup_UnparseableCaptionFallsThrough(t *testing.T) {
	markup := `<table><tr><td>Created</td><td>unknown</td></tr></table>
		<time datetime="2025-01-05T00:00:00Z">Jan 5</time>`
	m, ok := FromMarkup(markup)
	require.True(t, ok)
	assert.Equal(t, "time_element", m.Heuristic)
	assert.Equal(t, "2025-01-05T00:00:00Z", m.Timestamp)
}

func TestFromMarkup_MetaTag(t *testing.T) {
	m, ok := FromMarkup(`<html><head><meta itemprop="uploadDate" content="2025-01-07T12:00:00Z"></head><body></body></html>`)
	require.True(t, ok)
	assert.Equal(t, "meta_tag", m.Heuristic)
	assert.Equal(t, "2025-01-07T12:00:00Z", m.Timestamp)
}

func TestFromMarkup_NoDate(t *testing.T) {
	_, ok := FromMarkup(`<html><body><h1>Video unavailable</h1><script>var created = "2025-01-01";</script></body></html>`)
	assert.False(t, ok)

	_, ok = FromMarkup("")
	assert.False(t, ok)
}

func TestCaptionCandidates_Pure(t *testing.T) {
	doc := parse(t, `<table><tr><td>Recording Date</td><td>02/01/2025</td></tr></table>`)
	assert.Equal(t, []string{"02/01/2025"}, captionCandidates(doc))
	assert.Equal(t, captionCandidates(doc), captionCandidates(doc))
}

func TestMetaCandidates_IgnoresUnrelated(t *testing.T) {
	doc := parse(t, `<meta name="description" content="2025-01-01"><meta property="article:published_time" content="2025-01-02">`)
	assert.Equal(t, []string{"2025-01-02"}, metaCandidates(doc))
}
