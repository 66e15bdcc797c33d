package redact

import (
	"fmt"
	"log"
	"regexp"
)

// Log output must never leak the identifiers the gate exists to catch.
// These patterns are deliberately broad; a redacted log line is cheaper
// than a leaked personal number.
var (
	personalNumberRe = regexp.MustCompile(`\d{6,8}[-+]\d{4}`)
	emailRe          = regexp.MustCompile(`(?i)[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe          = regexp.MustCompile(`[+(]?\d[0-9 ().\-]{5,}\d`)
	dateRe           = regexp.MustCompile(`\d{4}[-/.]\d{1,2}[-/.]\d{1,2}`)
	bearerRe         = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	apiKeyRe         = regexp.MustCompile(`(?i)(api[_-]?key(?:s)?\s*[:=]\s*)([A-Za-z0-9._\-+/=]+)`)
)

// String redacts identifier and credential patterns from free-form strings.
func String(s string) string {
	if s == "" {
		return s
	}

	out := s
	out = bearerRe.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyRe.ReplaceAllString(out, "${1}[REDACTED]")
	out = personalNumberRe.ReplaceAllString(out, "[REDACTED_PNR]")
	out = emailRe.ReplaceAllString(out, "[REDACTED_EMAIL]")
	out = dateRe.ReplaceAllString(out, "[REDACTED_DATE]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	return out
}

// Any formats the value with %+v and redacts it.
func Any(v any) string {
	return String(fmt.Sprintf("%+v", v))
}

// Sprintf formats like fmt.Sprintf and redacts the result.
func Sprintf(format string, args ...interface{}) string {
	return String(fmt.Sprintf(format, args...))
}

// Logf prints a redacted log line.
func Logf(format string, args ...interface{}) {
	log.Print(Sprintf(format, args...))
}

// Fatalf prints a redacted fatal log line.
func Fatalf(format string, args ...interface{}) {
	log.Fatal(Sprintf(format, args...))
}
