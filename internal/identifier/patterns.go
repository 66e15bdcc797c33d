package identifier

import "regexp"

// firstGroup returns capture group n of the left-most match of re in text, as
// a literal slice of text, or "" when there is no match.
func firstGroup(re *regexp.Regexp, text string, n int) string {
	m := re.FindStringSubmatchIndex(text)
	if m == nil {
		return ""
	}
	s, e := m[2*n], m[2*n+1]
	if s < 0 {
		return ""
	}
	return text[s:e]
}

// firstOf tries the ordered sub-patterns and returns group n of the first one
// that matches. Most specific patterns go first.
func firstOf(res []*regexp.Regexp, text string, n int) string {
	for _, re := range res {
		if m := firstGroup(re, text, n); m != "" {
			return m
		}
	}
	return ""
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
