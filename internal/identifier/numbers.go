package identifier

import (
	"regexp"
	"strings"
)

// Swedish personal/coordination number: 2- or 4-digit year, month, day,
// '-' or '+' separator, four digits. No checksum validation.
var (
	personalNumberRe = regexp.MustCompile(`(^|[^0-9])((?:\d{2})?\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])[-+]\d{4})($|[^0-9])`)

	// strict whole-token shape, used by the phone detector for exclusion
	personalNumberStrictRe = regexp.MustCompile(`^(?:\d{2})?\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])[-+]\d{4}$`)
)

func findPersonalNumber(text string) string {
	return firstGroup(personalNumberRe, text, 2)
}

// Patient/journal identifiers: a label token, optional ':' or '#', then an
// alphanumeric code of at least three characters.
var patientIDRe = regexp.MustCompile(`(?i)(^|[^\p{L}0-9])((?:patient[ _-]?id|journal[ _-]?(?:nr|nummer|id)|mrn|pid)\s*[:#]?\s*[A-Za-z0-9][A-Za-z0-9-]{2,})($|[^A-Za-z0-9-])`)

func findPatientID(text string) string {
	return firstGroup(patientIDRe, text, 2)
}

// Phone numbers: at least seven digits allowing separators and an optional
// country/trunk prefix. A candidate whose whole token has the strict personal
// number shape is never reported as a phone number; that category wins.
var phoneCandidateRe = regexp.MustCompile(`[+(]?\d[0-9 ().\-]{4,}\d`)

func findPhoneNumber(text string) string {
	for _, loc := range phoneCandidateRe.FindAllStringIndex(text, -1) {
		cand := text[loc[0]:loc[1]]
		if digitCount(cand) < 7 {
			continue
		}
		if personalNumberStrictRe.MatchString(strings.TrimSpace(cand)) {
			continue
		}
		return cand
	}
	return ""
}
