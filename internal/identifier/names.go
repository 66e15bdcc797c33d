package identifier

import (
	"regexp"
	"strings"
	"unicode"
)

// Two consecutive capitalized tokens, each optionally a hyphenated compound
// ("Anna-Karin Svensson"). Unicode letter classes so Swedish names match.
var fullNameRe = regexp.MustCompile(`(^|[^\p{L}])(\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?\s+\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?)($|[^\p{L}])`)

func findFullName(text string) string {
	return firstGroup(fullNameRe, text, 2)
}

// Single uppercase initial, period, capitalized surname: "J. Smith".
var initialLastRe = regexp.MustCompile(`(^|[^\p{L}])(\p{Lu}\.\s*\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?)($|[^\p{L}])`)

func findInitialLastName(text string) string {
	return firstGroup(initialLastRe, text, 2)
}

// A label token followed by ':' or '-', then one or two alphabetic tokens.
// Groups: 2 = first token, 3 = optional second token.
var nameLabelRe = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:patientnamn|patientens\s+namn|name|namn|patient|pat)\s*[:\-][ \t]*(\p{L}+)(?:[ \t]+(\p{L}+))?($|[^\p{L}0-9])`)

// Label words themselves, so "Patient: namn okänt" style lines do not flag
// the label vocabulary reflexively.
var labelWords = map[string]bool{
	"name": true, "namn": true, "patient": true, "patientnamn": true,
	"pat": true, "unknown": true, "okänd": true, "okänt": true,
	"not": true, "ej": true,
}

func findNameLabel(text string) string {
	for _, m := range nameLabelRe.FindAllStringSubmatchIndex(text, -1) {
		first := sliceGroup(text, m, 2)
		second := sliceGroup(text, m, 3)

		if !nameLabelToken(first) {
			continue
		}
		if second != "" && nameLabelToken(second) {
			return text[m[4]:m[7]] // first token start .. second token end
		}
		return first
	}
	return ""
}

func nameLabelToken(tok string) bool {
	if tok == "" {
		return false
	}
	if labelWords[strings.ToLower(tok)] {
		return false
	}
	if isAllUpper(tok) && len([]rune(tok)) > 1 {
		return false
	}
	return true
}

// Name tag lines: a short alphabetic token (optionally two, optionally
// hyphenated) at line start, a colon, then content. "Eva: mår bättre" flags;
// "BP: 120/80" and section headers do not.
var nameTagRe = regexp.MustCompile(`(?m)^[ \t]*(\p{L}{2,20}(?:[- \t]\p{L}{2,20})?):[ \t]*\S`)

var nonNameTags = map[string]bool{
	"bp": true, "hr": true, "rr": true, "bt": true, "af": true, "pox": true,
	"sat": true, "spo": true, "temp": true, "news": true, "mews": true,
	"gcs": true, "rls": true, "crp": true, "hb": true, "lpk": true,
	"tpk": true, "inr": true, "ekg": true, "ecg": true, "vs": true,
	"plan": true, "status": true, "dx": true, "hx": true, "pmh": true,
	"meds": true, "medication": true, "medications": true, "läkemedel": true,
	"allergy": true, "allergies": true, "allergi": true, "allergier": true,
	"anamnes": true, "bedömning": true, "åtgärd": true, "åtgärder": true,
	"diagnos": true, "diagnoser": true, "diagnosis": true, "assessment": true,
	"subjective": true, "objective": true, "vitals": true,
	"vitalparametrar": true, "labs": true, "lab": true, "puls": true,
	"andning": true, "saturation": true, "blodtryck": true,
	"temperatur": true, "socialt": true, "aktuellt": true, "bakgrund": true,
	"note": true, "notes": true, "date": true, "datum": true, "tid": true,
	"time": true, "blood": true, "pressure": true, "heart": true,
	"rate": true, "resp": true, "oxygen": true, "patient": true, "pat": true,
	"name": true, "namn": true,
}

func findNameTag(text string) string {
	for _, m := range nameTagRe.FindAllStringSubmatchIndex(text, -1) {
		tag := text[m[2]:m[3]]
		if isAllUpper(tag) {
			continue
		}
		ok := true
		for _, tok := range strings.FieldsFunc(tag, func(r rune) bool {
			return r == '-' || r == ' ' || r == '\t'
		}) {
			if nonNameTags[strings.ToLower(tok)] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		// include the trailing colon so the user sees the tag shape
		return text[m[2] : m[3]+1]
	}
	return ""
}

// Name in prose: sentence-initial capitalized token(s) immediately followed by
// a clinical reporting verb ("Eva Lindqvist uppger huvudvärk").
var (
	sentenceSplitRe = regexp.MustCompile(`[.!?;\n]+`)
	proseNameRe     = regexp.MustCompile(`^\s*(\p{Lu}\p{Ll}+(?:[ \t]+\p{Lu}\p{Ll}+)?)[ \t]+(\p{Ll}+)`)
)

var reportingVerbs = map[string]bool{
	"reports": true, "denies": true, "presents": true, "states": true,
	"complains": true, "describes": true, "admits": true, "mentions": true,
	"arrives": true, "uppger": true, "söker": true, "förnekar": true,
	"nekar": true, "berättar": true, "beskriver": true, "klagar": true,
	"anger": true, "uppvisar": true, "inkommer": true, "medger": true,
}

var nonNameWords = map[string]bool{
	"patient": true, "patienten": true, "pat": true, "pt": true,
	"the": true, "he": true, "she": true, "they": true, "man": true,
	"woman": true, "mr": true, "mrs": true, "ms": true, "dr": true,
	"hon": true, "han": true, "vi": true, "jag": true, "den": true,
	"det": true, "mannen": true, "kvinnan": true, "status": true,
	"plan": true, "vitals": true,
}

func findNameInProse(text string) string {
	for _, chunk := range sentenceSplitRe.Split(text, -1) {
		m := proseNameRe.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		if !reportingVerbs[m[2]] {
			continue
		}
		nameOK := true
		for _, tok := range strings.Fields(m[1]) {
			if nonNameWords[strings.ToLower(tok)] {
				nameOK = false
				break
			}
		}
		if nameOK {
			return m[1]
		}
	}
	return ""
}

func sliceGroup(text string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
