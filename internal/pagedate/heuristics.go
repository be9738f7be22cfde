// Package pagedate recovers a creation timestamp from a web page by
// applying an ordered list of structural HTML heuristics.
package pagedate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heuristic yields candidate date strings from a parsed document, in
// document order. Heuristics are pure.
type Heuristic struct {
	Name       string
	Candidates func(doc *html.Node) []string
}

// DefaultHeuristics returns the extraction heuristics in priority order.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		{Name: "caption_sibling", Candidates: captionCandidates},
		{Name: "date_marker", Candidates: markerCandidates},
		{Name: "time_element", Candidates: timeCandidates},
		{Name: "meta_tag", Candidates: metaCandidates},
	}
}

// Match is the first heuristic result that parsed as a date.
type Match struct {
	Heuristic string
	Raw       string
	Timestamp string
}

// FromDocument runs heuristics in order and returns the first candidate
// that parses. ok is false if no heuristic produced a valid date.
func FromDocument(doc *html.Node, heuristics []Heuristic) (Match, bool) {
	for _, h := range heuristics {
		for _, c := range h.Candidates(doc) {
			if ts, ok := Normalize(c); ok {
				return Match{Heuristic: h.Name, Raw: c, Timestamp: ts}, true
			}
		}
	}
	return Match{}, false
}

// FromMarkup parses markup and runs the default heuristics.
func FromMarkup(markup string) (Match, bool) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Match{}, false
	}
	return FromDocument(doc, DefaultHeuristics())
}

var (
	// captionOnly matches a label whose entire text is a date caption.
	captionOnly = regexp.MustCompile(`(?i)^(?:date\s+(?:created|recorded|uploaded|taken)|(?:created|recorded|uploaded|creation|upload|recording)(?:\s+(?:on|at|date|time))?)\s*:?$`)
	// captionInline matches a caption followed by its value in the same text.
	captionInline = regexp.MustCompile(`(?i)^(?:date\s+(?:created|recorded|uploaded|taken)|(?:created|recorded|uploaded|creation|upload|recording)(?:\s+(?:on|at|date|time))?)\s*:\s*(.+)$`)

	captionTags = map[atom.Atom]bool{
		atom.Th: true, atom.Td: true, atom.Dt: true, atom.Label: true,
		atom.Span: true, atom.Strong: true, atom.B: true, atom.Div: true,
		atom.P: true, atom.Li: true, atom.Em: true,
	}

	markerWords = []string{"created", "recorded", "upload-date", "upload_date", "uploaddate", "timestamp", "date"}

	metaKeys = map[string]bool{
		"datecreated":            true,
		"uploaddate":             true,
		"datepublished":          true,
		"article:published_time": true,
		"og:video:release_date":  true,
		"video:release_date":     true,
		"dc.date.created":        true,
		"dc.date":                true,
		"date":                   true,
	}
)

func captionCandidates(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !captionTags[n.DataAtom] {
			return
		}
		text := textOf(n)
		if m := captionInline.FindStringSubmatch(text); m != nil {
			out = append(out, m[1])
			return
		}
		if captionOnly.MatchString(text) {
			if v := siblingText(n); v != "" {
				out = append(out, v)
			}
		}
	})
	return out
}

func markerCandidates(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom == atom.Meta || n.DataAtom == atom.Time {
			return
		}
		marker := strings.ToLower(attr(n, "id") + " " + attr(n, "class"))
		if !containsAny(marker, markerWords) {
			return
		}
		if v := attr(n, "datetime"); v != "" {
			out = append(out, v)
		}
		if v := attr(n, "content"); v != "" {
			out = append(out, v)
		}
		if v := textOf(n); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func timeCandidates(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Time {
			return
		}
		if v := attr(n, "datetime"); v != "" {
			out = append(out, v)
		}
		if v := textOf(n); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func metaCandidates(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			return
		}
		for _, key := range []string{"property", "name", "itemprop"} {
			if metaKeys[strings.ToLower(attr(n, key))] {
				if v := attr(n, "content"); v != "" {
					out = append(out, v)
				}
				return
			}
		}
	})
	return out
}

// siblingText returns the text of the first non-empty node following n,
// either a bare text node or an element.
func siblingText(n *html.Node) string {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		switch s.Type {
		case html.TextNode:
			if v := collapse(s.Data); v != "" {
				return v
			}
		case html.ElementNode:
			if v := textOf(s); v != "" {
				return v
			}
		}
	}
	return ""
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			continue
		}
		walk(c, fn)
	}
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return collapse(sb.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
