package util

import (
	"regexp"
	"strings"
)

var ordinalPattern = regexp.MustCompile(`^(\d+)(st|nd|rd|th)$`)

var streetSuffixes = map[string]string{
	"avenue": "ave", "ave": "ave", "av": "ave",
	"street": "st", "st": "st", "str": "st",
	"court": "ct", "ct": "ct",
	"place": "pl", "pl": "pl",
	"drive": "dr", "dr": "dr",
	"terrace": "ter", "ter": "ter",
	"road": "rd", "rd": "rd",
	"lane": "ln", "ln": "ln",
	"boulevard": "blvd", "blvd": "blvd",
	"circle": "cir", "cir": "cir",
}

var directions = map[string]string{
	"southwest": "sw", "southeast": "se", "northwest": "nw", "northeast": "ne",
	"south": "s", "north": "n", "east": "e", "west": "w",
}

// NormalizeAddress reduces a free-text street address to "number direction
// street suffix" so that "3825 SW 58th Court, Miami FL 33155" and
// "3825 sw 58 ct" compare equal. Anything after the street suffix or the
// first comma (city, state, zip) is dropped.
func NormalizeAddress(input string) string {
	if i := strings.Index(input, ","); i >= 0 {
		input = input[:i]
	}
	tokens := strings.Fields(MatchKey(input))
	out := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if m := ordinalPattern.FindStringSubmatch(tok); m != nil && i > 0 {
			tok = m[1]
		}
		if d, ok := directions[tok]; ok {
			tok = d
		}
		if suffix, ok := streetSuffixes[tok]; ok && i > 1 {
			out = append(out, suffix)
			break
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// WithLocality appends locality unless the address already names its city.
func WithLocality(address, locality string) string {
	address = strings.TrimSpace(address)
	locality = strings.TrimSpace(locality)
	if locality == "" {
		return address
	}
	city := locality
	if i := strings.Index(city, ","); i >= 0 {
		city = city[:i]
	}
	if strings.Contains(strings.ToLower(address), strings.ToLower(strings.TrimSpace(city))) {
		return address
	}
	return address + ", " + locality
}
