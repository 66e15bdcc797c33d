package identifier

import "testing"

func TestFindFullName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain", "remiss för Anna Svensson idag", "Anna Svensson"},
		{"hyphenated", "Anna-Karin Svensson-Berg", "Anna-Karin Svensson-Berg"},
		{"sentence case only first", "Patient reports pain", ""},
		{"acronym pair", "EKG QRS normal", ""},
		{"single name", "Anna kom in", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findFullName(tc.text); got != tc.want {
				t.Fatalf("findFullName(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindInitialLastName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"initial and surname", "sign J. Smith", "J. Smith"},
		{"no space", "J.Smith", "J.Smith"},
		{"bacteria shorthand", "E. coli in culture", ""},
		{"lowercase initial", "vs. Smith", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findInitialLastName(tc.text); got != tc.want {
				t.Fatalf("findInitialLastName(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindNameLabel(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"single token", "Namn: Eva", "Eva"},
		{"two tokens", "Name: John Smith reports fatigue", "John Smith"},
		{"dash separator", "Patient - Eva Lindqvist", "Eva Lindqvist"},
		{"acronym rejected", "Patient: ICU admission", ""},
		{"reflexive label rejected", "Patient: namn saknas", ""},
		{"digits rejected", "Name: x2y", ""},
		{"numeric value rejected", "Patient: 47", ""},
		{"no label", "ingen etikett här", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findNameLabel(tc.text); got != tc.want {
				t.Fatalf("findNameLabel(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindNameTag(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"first name tag", "Eva: mår bättre idag", "Eva:"},
		{"tag on later line", "Status: stabil\nEva: pigg och glad", "Eva:"},
		{"vital sign tag", "BP: 120/80", ""},
		{"news score", "NEWS: 3", ""},
		{"all caps line", "PLAN: HEM IDAG", ""},
		{"hyphenated name", "Eva-Lotta: förbättrad", "Eva-Lotta:"},
		{"mid line colon ignored", "ökad smärta vid Eva: nej", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findNameTag(tc.text); got != tc.want {
				t.Fatalf("findNameTag(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindNameInProse(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"swedish verb full name", "Eva Lindqvist uppger huvudvärk", "Eva Lindqvist"},
		{"swedish verb single name", "Eva söker för hosta", "Eva"},
		{"english verb", "Smith denies chest pain", "Smith"},
		{"patient word not a name", "Patient reports pain", ""},
		{"pronoun not a name", "She denies fever", ""},
		{"acronym start", "CRP rises quickly", ""},
		{"later sentence", "Vitals stable. Eva uppger yrsel.", "Eva"},
		{"verb missing", "Eva Lindqvist kände huvudvärk", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findNameInProse(tc.text); got != tc.want {
				t.Fatalf("findNameInProse(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
