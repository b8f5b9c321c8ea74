package pipeline

import (
	"strings"

	"redbird/internal/util"
)

const (
	DefaultIconBase = "assets/img/icons/"

	iconDefault  = "haunted-generic.png"
	iconFallback = "pumpkin.png"
)

// knownIcons is keyed by lowercased, trimmed title. Spelling variants seen in
// the sign-up sheet are listed explicitly; punctuation-only variants are also
// caught by knownIconsBySlug.
var knownIcons = map[string]string{
	"the three witch house":       "three-witch-house.png",
	"the three-witch house":       "three-witch-house.png",
	"the haunted white house":     "white-house.png",
	"the monster house":           "monster-house.png",
	"the spooky-rizzlers":         "spooky-rizzlers.png",
	"spiderweb cottage":           "spiderweb-cottage.png",
	"sweet & spooky stop":         "sweet-spooky.png",
	"sweet and spooky stop":       "sweet-spooky.png",
	"casa sandsnake":              "sandsnake.png",
	"blues boooooo house":         "blues-house.png",
	"blues booooo house":          "blues-house.png",
	"caballosa candy critters":    "candy-critters.png",
	"carballosa candy critters":   "candy-critters.png",
	"the not-so-scary house!":     "not-so-scary.png",
	"the not so scary house":      "not-so-scary.png",
	"cabin in the woods":          "cabin-woods.png",
	"red bird restless graveyard": "tombstone-graveyard.png",
	"haunted house":               "haunted-generic.png",
}

var knownIconsBySlug = func() map[string]string {
	out := make(map[string]string, len(knownIcons))
	for title, icon := range knownIcons {
		out[util.Slugify(title)] = icon
	}
	return out
}()

var iconRules = []Rule{
	rule(`witch`, "three-witch-house.png"),
	rule(`white house`, "white-house.png"),
	rule(`monster`, "monster-house.png"),
	rule(`rizzler`, "spooky-rizzlers.png"),
	rule(`spider|web`, "spiderweb-cottage.png"),
	rule(`sweet|spooky`, "sweet-spooky.png"),
	rule(`sandsnake|snake`, "sandsnake.png"),
	rule(`blues|boooo`, "blues-house.png"),
	rule(`candy|critter`, "candy-critters.png"),
	rule(`scary`, "not-so-scary.png"),
	rule(`cabin|woods`, "cabin-woods.png"),
	rule(`graveyard|tombstone|cemetery|crypt`, "tombstone-graveyard.png"),
	rule(`pumpkin`, "pumpkin.png"),
}

// IconResolver maps a free-text title to an icon path under Base. Resolve is
// total: unknown titles get the generic haunted house.
type IconResolver struct {
	Base string
}

func NewIconResolver(base string) IconResolver {
	if strings.TrimSpace(base) == "" {
		base = DefaultIconBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return IconResolver{Base: base}
}

func (r IconResolver) Resolve(title string) string {
	return r.base() + ResolveIconFile(title)
}

// FallbackIcon is what the page swaps in when an icon fails to load.
func (r IconResolver) FallbackIcon() string {
	return r.base() + iconFallback
}

func (r IconResolver) base() string {
	if r.Base == "" {
		return DefaultIconBase
	}
	return r.Base
}

// ResolveIconFile returns the icon file name without the base path.
func ResolveIconFile(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	if icon, ok := knownIcons[name]; ok {
		return icon
	}
	if icon, ok := knownIconsBySlug[util.Slugify(name)]; ok {
		return icon
	}
	return firstMatch(iconRules, name, iconDefault)
}
