package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "The Monster House", want: "the-monster-house"},
		{name: "punctuation runs", input: "The Not-So-Scary House!", want: "the-not-so-scary-house"},
		{name: "ampersand", input: "Sweet & Spooky Stop", want: "sweet-spooky-stop"},
		{name: "apostrophe", input: "Milo's Dudgeon of treats", want: "milo-s-dudgeon-of-treats"},
		{name: "accents", input: "The Rojo Villamañan Family", want: "the-rojo-villamanan-family"},
		{name: "leading and trailing", input: "  --Cabin in the Woods--  ", want: "cabin-in-the-woods"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	if got := NormalizeHeader(`Fun "Trick-or-Treat Name"`); got != "fun trick-or-treat name" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeHeader("  Address  "); got != "address" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		a, b string
	}{
		{"3825 SW 58th Court, Miami FL 33155", "3825 sw 58 ct"},
		{"3715 sw 58 ct Miami Fl 33155", "3715 SW 58th Ct"},
		{"3821 SW 60th Avenue, Miami, FL 33155", "3821 SW 60th Ave"},
		{"6212 South Waterway Drive", "6212 S Waterway Dr"},
	}
	for _, tc := range cases {
		if NormalizeAddress(tc.a) != NormalizeAddress(tc.b) {
			t.Fatalf("%q=%q vs %q=%q", tc.a, NormalizeAddress(tc.a), tc.b, NormalizeAddress(tc.b))
		}
	}
}

func TestWithLocality(t *testing.T) {
	if got := WithLocality("3736 SW 60th Ave", "Miami, FL 33155"); got != "3736 SW 60th Ave, Miami, FL 33155" {
		t.Fatalf("got %q", got)
	}
	if got := WithLocality("3611 sw 60th ct., Miami, Fl", "Miami, FL 33155"); got != "3611 sw 60th ct., Miami, Fl" {
		t.Fatalf("got %q", got)
	}
}

func TestDiceCoefficient(t *testing.T) {
	if DiceCoefficient("night", "night") != 1 {
		t.Fatal("identical strings should score 1")
	}
	if DiceCoefficient("", "x") != 0 {
		t.Fatal("empty string should score 0")
	}
	if got := DiceCoefficient("night", "nacht"); got <= 0 || got >= 1 {
		t.Fatalf("got %v", got)
	}
}
