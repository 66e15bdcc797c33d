package identifier

import "regexp"

// span marks a half-open [start, end) byte region of the input that matched an
// acceptable, non-identifying pattern.
type span struct {
	start int
	end   int
}

// Acceptable patterns: expressions that contain numbers but are deliberately
// not identifying. Decade phrasing ("40s", "40-talet"), explicit two-ended
// ranges, and ranges carrying an age unit.
var allowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|[^0-9])(\d0(?:'?s|[- ]?talet|[- ]?tal|[- ]?års\s?åldern))($|[^\p{L}])`),
	regexp.MustCompile(`(?i)(^|[^0-9])(\d{1,3}\s*(?:-|–|till|to)\s*\d{1,3}(?:\s*(?:år(?:s)?(?:\s*ålder)?|years?(?:\s+old)?|yrs?))?)($|[^0-9])`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(between\s+\d{1,3}\s+and\s+\d{1,3}|mellan\s+\d{1,3}\s+och\s+\d{1,3})($|[^0-9])`),
}

// acceptableSpans records the offsets of every acceptable-pattern match.
func acceptableSpans(text string) []span {
	var spans []span
	for _, re := range allowPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			// group 2 holds the payload between the boundary guards
			spans = append(spans, span{start: m[4], end: m[5]})
		}
	}
	return spans
}

// suppressed reports whether [start, end) lies fully inside some allowed span.
func suppressed(start, end int, spans []span) bool {
	for _, s := range spans {
		if s.start <= start && end <= s.end {
			return true
		}
	}
	return false
}
