package pagedate

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const msPerDay = 86_400_000

// datePatterns locate a date-looking substring inside free text. They are
// tried in order; the first substring that parses wins.
var datePatterns = []*regexp.Regexp{
	// ISO-8601: 2025-01-15, 2025-01-15T10:30:00Z, 2025-01-15 10:30:00-05:00
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?)?`),
	// January 15, 2025 / Jan 15 2025 10:30 AM
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}(?:,?\s+(?:at\s+)?\d{1,2}:\d{2}(?::\d{2})?\s*(?:[ap]\.?m\.?)?)?`),
	// 01/15/2025 / 1/5/2025 3:04 PM
	regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}/\d{4}(?:\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:[ap]m)?)?`),
	// 15 January 2025
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+\d{4}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?`),
}

var (
	ordinalSuffix  = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	atWord         = regexp.MustCompile(`(?i)\s+at\s+`)
	dottedMeridiem = strings.NewReplacer("a.m.", "AM", "p.m.", "PM", "A.M.", "AM", "P.M.", "PM")
)

// ParseDate permissively parses text into a UTC time. It accepts ISO-8601,
// YYYY-MM-DD, natural forms such as "January 15, 2025", and MM/DD/YYYY,
// optionally embedded in surrounding words. ok is false when nothing in
// text parses as a valid calendar date.
func ParseDate(text string) (t time.Time, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, re := range datePatterns {
		for _, m := range re.FindAllString(text, -1) {
			if t, err := dateparse.ParseIn(clean(m), time.UTC); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func clean(s string) string {
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = atWord.ReplaceAllString(s, " ")
	s = dottedMeridiem.Replace(s)
	return strings.TrimSpace(s)
}

// Normalize parses text and formats it as an RFC 3339 UTC timestamp.
func Normalize(text string) (string, bool) {
	t, ok := ParseDate(text)
	if !ok {
		return "", false
	}
	return t.Format(time.RFC3339), true
}

// LagDays returns the whole-day difference floor((later - earlier) / 1 day).
// Negative results are preserved. It returns nil if either input does not
// parse.
func LagDays(earlier, later string) *int {
	from, ok := ParseDate(earlier)
	if !ok {
		return nil
	}
	to, ok := ParseDate(later)
	if !ok {
		return nil
	}
	days := int(math.Floor(float64(to.Sub(from).Milliseconds()) / msPerDay))
	return &days
}
