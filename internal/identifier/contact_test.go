package identifier

import "testing"

func TestFindEmail(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain", "mejla eva.lindqvist@vgregion.se tack", "eva.lindqvist@vgregion.se"},
		{"uppercase", "Contact EVA@EXAMPLE.COM", "EVA@EXAMPLE.COM"},
		{"no tld", "anna@localhost", ""},
		{"plain text", "ingen adress", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findEmail(tc.text); got != tc.want {
				t.Fatalf("findEmail(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindAddress(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"swedish street", "bor på Storgatan 12", "Storgatan 12"},
		{"compound street", "hämtas vid Sjukhusvägen 3B", "Sjukhusvägen 3B"},
		{"english street", "lives at 123 Main Street", "123 Main Street"},
		{"po box", "P.O. Box 442", "P.O. Box 442"},
		{"swedish box", "Box 104", "Box 104"},
		{"street word alone", "stannade på vägen hem", ""},
		{"suffix without number", "Storgatan är lång", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findAddress(tc.text); got != tc.want {
				t.Fatalf("findAddress(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestFindWardBedTimestamp(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"swedish", "flyttad till avd 3, säng 2, kl 14:30", "avd 3, säng 2, kl 14:30"},
		{"english", "moved to Ward 5 bed 12 at 08:15", "Ward 5 bed 12 at 08:15"},
		{"no time", "avd 3, säng 2", ""},
		{"bed only", "säng 2 kl 14:30", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findWardBedTimestamp(tc.text); got != tc.want {
				t.Fatalf("findWardBedTimestamp(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
