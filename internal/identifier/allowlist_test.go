package identifier

import (
	"strings"
	"testing"
)

func TestAcceptableSpans(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"decade", "patient in their 40s", []string{"40s"}},
		{"swedish decade", "född på 40-talet", []string{"40-talet"}},
		{"swedish decade age", "man i 40-årsåldern", []string{"40-årsåldern"}},
		{"numeric range", "intervall 20-30 totalt", []string{"20-30"}},
		{"range with unit", "grupp 20-30 år", []string{"20-30 år"}},
		{"between range", "between 20 and 30", []string{"between 20 and 30"}},
		{"no spans", "age 47", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spans := acceptableSpans(tc.text)
			if len(spans) != len(tc.want) {
				t.Fatalf("got %d spans, want %d (%v)", len(spans), len(tc.want), spans)
			}
			for i, s := range spans {
				if got := tc.text[s.start:s.end]; got != tc.want[i] {
					t.Fatalf("span %d = %q, want %q", i, got, tc.want[i])
				}
			}
		})
	}
}

func TestSuppressed(t *testing.T) {
	text := "grupp 20-30 år i studien"
	spans := acceptableSpans(text)
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	inner := strings.Index(text, "30 år")
	if inner < 0 {
		t.Fatal("test text changed")
	}
	if !suppressed(inner, inner+len("30 år"), spans) {
		t.Error("candidate inside the range should be suppressed")
	}
	if suppressed(0, len(text), spans) {
		t.Error("candidate larger than every span must not be suppressed")
	}
	if suppressed(5, 6, nil) {
		t.Error("no spans means nothing is suppressed")
	}
}
