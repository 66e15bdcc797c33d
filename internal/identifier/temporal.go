package identifier

import "regexp"

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|januari|februari|mars|maj|juni|juli|augusti|oktober`

// Date patterns, most specific first: ISO-like numeric, day-month-year,
// month-day-year, then a bare bilingual month-name mention. A month name on
// its own is enough to flag ("saw patient in May").
var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`(^|[^0-9])(\d{4}[-/.](?:0?[1-9]|1[0-2])[-/.](?:0?[1-9]|[12]\d|3[01]))($|[^0-9])`),
	regexp.MustCompile(`(^|[^0-9])((?:0?[1-9]|[12]\d|3[01])[-/.](?:0?[1-9]|1[0-2])[-/.]\d{2,4})($|[^0-9])`),
	regexp.MustCompile(`(^|[^0-9])((?:0?[1-9]|1[0-2])[-/.](?:0?[1-9]|[12]\d|3[01])[-/.]\d{2,4})($|[^0-9])`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(` + monthNames + `)($|[^\p{L}])`),
}

func findDate(text string) string {
	return firstOf(dateRes, text, 2)
}

// Temporal reference cascade. Deliberately broad: essentially all temporal
// language blocks, because a note anchored in time narrows down the patient.
// Bare clock times are the one exception; they only count with a "kl."/"at"
// prefix (and inside the ward-bed combination, see contact.go).
var temporalRes = []*regexp.Regexp{
	// prefixed clock time: "kl 14:30", "at 08.15"
	regexp.MustCompile(`(?i)(^|[^\p{L}])((?:kl\.?|at)\s*(?:[01]?\d|2[0-3])[:.][0-5]\d)($|[^0-9])`),
	// time-of-day phrases
	regexp.MustCompile(`(?i)(^|[^\p{L}])(this\s+morning|this\s+afternoon|this\s+evening|last\s+night|tonight|morning|afternoon|evening|night|noon|midnight|i\s?morse|i\s?kväll|i\s?natt|på\s+morgonen|på\s+kvällen|förmiddag(?:en)?|eftermiddag(?:en)?|morgonen|kvällen|natten)($|[^\p{L}])`),
	// relative day/month/year words
	regexp.MustCompile(`(?i)(^|[^\p{L}])(yesterday|today|tomorrow|last\s+(?:week|month|year)|next\s+(?:week|month|year)|this\s+(?:week|month|year)|i\s?går|igår|i\s?dag|idag|i\s?morgon|imorgon|i\s?förrgår|förra\s+(?:veckan|månaden|året)|nästa\s+(?:vecka|månad|år)|i\s?fjol)($|[^\p{L}])`),
	// weekday with qualifier
	regexp.MustCompile(`(?i)(^|[^\p{L}])((?:on|last|next|this|på|i|förra|nästa)\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|måndag(?:en)?|tisdag(?:en)?|onsdag(?:en)?|torsdag(?:en)?|fredag(?:en)?|lördag(?:en)?|söndag(?:en)?)s?)($|[^\p{L}])`),
	// bare weekday
	regexp.MustCompile(`(?i)(^|[^\p{L}])(monday|tuesday|wednesday|thursday|friday|saturday|sunday|måndag|tisdag|onsdag|torsdag|fredag|lördag|söndag)($|[^\p{L}])`),
	// ordinal day: "24th", "24:e"
	regexp.MustCompile(`(^|[^0-9])(\d{1,2}(?:st|nd|rd|th|:e))($|[^\p{L}])`),
	// numeric duration: "2 days ago", "för 2 dagar sedan"
	regexp.MustCompile(`(?i)(^|[^\p{L}0-9])(\d+\s+(?:day|days|week|weeks|month|months|year|years|hour|hours)\s+ago|för\s+\d+\s+(?:dag(?:ar)?|veck(?:a|or)|månad(?:er)?|år|timm(?:e|ar)?)\s+sedan)($|[^\p{L}])`),
	// ordinal + month compound: "24th of May", "24:e maj"
	regexp.MustCompile(`(?i)(^|[^0-9])(\d{1,2}(?:st|nd|rd|th|:e)?\s+(?:of\s+)?(?:` + monthNames + `))($|[^\p{L}])`),
}

func findTemporalReference(text string) string {
	return firstOf(temporalRes, text, 2)
}

// Precise age candidates. Each candidate match is dropped when it sits fully
// inside an acceptable span (decades, explicit ranges), or when the matched
// text itself carries a range token ("age 20-30"). The Swedish "N år" form is
// additionally skipped when followed by "sedan": that is a duration, not an
// age, and the temporal detector already covers it.
type ageCandidate struct {
	re           *regexp.Regexp
	skipDuration bool
}

var ageCandidates = []ageCandidate{
	// "47 years old", "47-year-old", "47 yo", "47 y/o"
	{re: regexp.MustCompile(`(?i)(^|[^0-9])(\d{1,3}(?:\s*|-)(?:years?[\s-]old|y/?o))($|[^\p{L}])`)},
	// "age 47", "aged 47", "age: 20-30"
	{re: regexp.MustCompile(`(?i)(^|[^\p{L}])((?:age|aged)\s*:?\s*\d{1,3}(?:\s*(?:-|–|to)\s*\d{1,3})?)($|[^0-9])`)},
	// "47 år", "47-årig", "47 års"
	{re: regexp.MustCompile(`(?i)(^|[^0-9])(\d{1,3}(?:\s*|-)år(?:ig|s)?)($|[^\p{L}])`), skipDuration: true},
	// "ålder 47", "ålder: 20-30"
	{re: regexp.MustCompile(`(?i)(^|[^\p{L}])(ålder\s*:?\s*\d{1,3}(?:\s*(?:-|–|till)\s*\d{1,3})?)($|[^0-9])`)},
	// sex shorthand: "47M", "47F"
	{re: regexp.MustCompile(`(^|[^0-9A-Za-z])(\d{1,3}[MF])($|[^A-Za-z0-9])`)},
}

var (
	rangeTokenRe    = regexp.MustCompile(`\d\s*(?:-|–|till|to)\s*\d`)
	durationTrailRe = regexp.MustCompile(`^\s*sedan`)
)

func findPreciseAge(text string) string {
	spans := acceptableSpans(text)

	for _, c := range ageCandidates {
		for _, m := range c.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[4], m[5]
			match := text[start:end]
			if rangeTokenRe.MatchString(match) {
				// the label itself names a range; non-identifying
				continue
			}
			if suppressed(start, end, spans) {
				continue
			}
			if c.skipDuration && durationTrailRe.MatchString(text[end:]) {
				continue
			}
			return match
		}
	}
	return ""
}
