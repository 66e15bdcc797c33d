package identifier

import "testing"

func TestFindDate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"iso", "Born 2024-01-15 in town", "2024-01-15"},
		{"iso slashes", "datum 2024/01/15", "2024/01/15"},
		{"european", "inlagd 15/01/2024", "15/01/2024"},
		{"european dots", "15.01.24", "15.01.24"},
		{"us", "admitted 01-15-2024", "01-15-2024"},
		{"month name english", "saw patient in May", "May"},
		{"month name swedish", "besök i mars", "mars"},
		{"embedded digits no match", "kod 220240115223", ""},
		{"plain text", "no dates here", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findDate(tc.text); got != tc.want {
				t.Fatalf("findDate(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindTemporalReference(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"prefixed clock", "opererad kl 14:30", "kl 14:30"},
		{"prefixed clock english", "seen at 08:15 by staff", "at 08:15"},
		{"bare clock not flagged", "score 14:30 in the chart", ""},
		{"time of day", "patient came in yesterday evening", "evening"},
		{"swedish time of day", "mådde illa i natt", "i natt"},
		{"relative day", "kom in igår", "igår"},
		{"relative english", "seen yesterday", "yesterday"},
		{"relative week", "follow up next week", "next week"},
		{"qualified weekday", "återbesök på måndag", "på måndag"},
		{"bare weekday", "Friday clinic", "Friday"},
		{"ordinal day", "scheduled for the 24th", "24th"},
		{"swedish ordinal", "den 24:e maj", "24:e"},
		{"duration ago", "symptoms started 2 days ago", "2 days ago"},
		{"swedish duration", "opererad för 2 år sedan", "för 2 år sedan"},
		{"no temporal", "vitals stable", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findTemporalReference(tc.text); got != tc.want {
				t.Fatalf("findTemporalReference(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindPreciseAge(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"years old", "a 47 years old man", "47 years old"},
		{"year-old compound", "47-year-old woman", "47-year-old"},
		{"yo shorthand", "pt 32 yo", "32 yo"},
		{"age label", "age 47", "age 47"},
		{"aged label", "aged 83", "aged 83"},
		{"swedish years", "en 47-årig man", "47-årig"},
		{"swedish age word", "ålder 62", "ålder 62"},
		{"sex shorthand", "inkommer 45M med bröstsmärta", "45M"},
		{"decade", "patient in their 40s", ""},
		{"swedish decade", "man i 40-talet", ""},
		{"swedish decade age", "kvinna i 40-årsåldern", ""},
		{"labeled range", "age 20-30", ""},
		{"range with unit", "patienter 20-30 år", ""},
		{"between range", "between 20 and 30 years", ""},
		{"duration not age", "opererad för 2 år sedan", ""},
		{"no age", "blood pressure 120", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findPreciseAge(tc.text); got != tc.want {
				t.Fatalf("findPreciseAge(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
