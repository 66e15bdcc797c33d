package identifier

import "regexp"

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

func findEmail(text string) string {
	return emailRe.FindString(text)
}

// Addresses: a street-suffix word with a house number (Swedish suffix-compound
// or English number-first form), or a P.O. box expression.
var addressRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|[^\p{L}])(\p{L}{2,}(?:gatan|gata|vägen|väg|gränd|allén|allé|torget|stigen|backen|platsen)\s+\d+[A-Za-z]?)($|[^0-9])`),
	regexp.MustCompile(`(^|[^0-9])(\d+\s+\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?\s+(?:[Ss]treet|[Rr]oad|[Aa]venue|[Ll]ane|[Dd]rive|[Bb]oulevard|St\.|Rd\.|Ave\.))($|[^\p{L}])`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])((?:p\.?\s*o\.?\s*box|postbox|box)\s+\d+)($|[^0-9])`),
}

func findAddress(text string) string {
	return firstOf(addressRes, text, 2)
}

// Ward/unit + number + bed/plats + number + a 24-hour clock time (optionally
// prefixed with "kl."/"at"). The combination is a locator even though bare
// clock times do not block on their own.
var wardBedRe = regexp.MustCompile(`(?i)(^|[^\p{L}])((?:ward|unit|avd(?:elning)?\.?)\s*\d+\s*,?\s*(?:bed|room|säng|sal|plats|rum)\s*\d+\s*,?\s*(?:kl\.?|at)?\s*(?:[01]?\d|2[0-3])[:.][0-5]\d)($|[^0-9])`)

func findWardBedTimestamp(text string) string {
	return firstGroup(wardBedRe, text, 2)
}
