package pipeline

import (
	"strings"
	"testing"
)

func TestResolveIconIsTotal(t *testing.T) {
	r := NewIconResolver("")
	for _, title := range []string{"", "   ", "Grape Family Haunted House", "zzz", "🎃"} {
		got := r.Resolve(title)
		if got == "" || !strings.HasPrefix(got, DefaultIconBase) {
			t.Fatalf("%q: got %q", title, got)
		}
	}
	if got := r.Resolve("Echeverri Haunt"); got != DefaultIconBase+"haunted-generic.png" {
		t.Fatalf("default icon: got %q", got)
	}
}

func TestResolveIconCaseAndPunctuation(t *testing.T) {
	r := NewIconResolver("assets/img/icons")
	want := "assets/img/icons/three-witch-house.png"
	for _, title := range []string{"The Three Witch House", "The Three-Witch House", "the three-witch house", "  THE THREE WITCH HOUSE "} {
		if got := r.Resolve(title); got != want {
			t.Fatalf("%q: got %q want %q", title, got, want)
		}
	}
	if r.Resolve("The Monster House") != r.Resolve("the monster house") {
		t.Fatal("resolver is case sensitive")
	}
	if got := ResolveIconFile("Sweet and Spooky Stop"); got != "sweet-spooky.png" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveIconFile("The Not So Scary House"); got != "not-so-scary.png" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveIconRules(t *testing.T) {
	cases := map[string]string{
		"Milo's Dudgeon of treats": "haunted-generic.png",
		"Cancela's Crypt":          "tombstone-graveyard.png",
		"Red Bird Cemetery":        "tombstone-graveyard.png",
		"The Webbed Manor":         "spiderweb-cottage.png",
		"Candyland Carnage":        "candy-critters.png",
		"Scary Cat":                "not-so-scary.png",
		"Pumpkin Patch":            "pumpkin.png",
		"Witchy Candy Shack":       "three-witch-house.png",
		"Candy & Spooky Corner":    "sweet-spooky.png",
	}
	for title, want := range cases {
		if got := ResolveIconFile(title); got != want {
			t.Fatalf("%q: got %q want %q", title, got, want)
		}
	}
}

func TestFallbackIcon(t *testing.T) {
	if got := NewIconResolver("/static/icons/").FallbackIcon(); got != "/static/icons/pumpkin.png" {
		t.Fatalf("got %q", got)
	}
	if got := (IconResolver{}).FallbackIcon(); got != DefaultIconBase+"pumpkin.png" {
		t.Fatalf("zero value: got %q", got)
	}
}

func TestMakeSubtitle(t *testing.T) {
	cases := map[string]string{
		"":                             DefaultSubtitle,
		"Merino House":                 DefaultSubtitle,
		"The Three-Witch House":        "Witchy trio casts spooky spells",
		"The haunted White House":      "Classic haunt with friendly ghosts",
		"The Spooky-Rizzlers":          "Spooky but sweet treats await",
		"Casa Sandsnake":               "Miami sandsnake guards candy",
		"Blues Boooooo House":          "Cool blue spirits and boo vibes",
		"Carballosa Candy Critters":    "Candy paradise with cute critters",
		"Cabin in the Woods":           "Mysterious cabin lights the way",
		"Red Bird Restless Graveyard":  "Fog and friendly frights await",
		"CANDY and SPOOKY treats here": "Sweet treats with spooky twists",
	}
	for title, want := range cases {
		if got := MakeSubtitle(title); got != want {
			t.Fatalf("%q: got %q want %q", title, got, want)
		}
		if MakeSubtitle(title) != MakeSubtitle(strings.ToUpper(title)) {
			t.Fatalf("%q: subtitle depends on case", title)
		}
	}
}
