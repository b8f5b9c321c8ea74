package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reQuotes   = regexp.MustCompile(`["'` + "`" + `«»“”‘’]`)
	reSpaces   = regexp.MustCompile(`\s+`)
	reNonSlug  = regexp.MustCompile(`[^a-z0-9]+`)
	reNonMatch = regexp.MustCompile(`[^a-z0-9\s]+`)
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader folds a column label so quoted and unquoted variants compare equal.
func NormalizeHeader(input string) string {
	s := strings.ToLower(norm.NFKC.String(input))
	s = reQuotes.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func NormalizeTitle(input string) string {
	s := norm.NFKC.String(input)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slugify lowercases, strips accents, collapses non-alphanumeric runs to "-"
// and trims leading and trailing separators.
func Slugify(input string) string {
	s, _, err := transform.String(stripAccents, strings.ToLower(input))
	if err != nil {
		s = strings.ToLower(input)
	}
	s = reNonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// MatchKey is the comparison form used when reconciling titles from
// different files: accents, punctuation and extra spaces are dropped.
func MatchKey(input string) string {
	s, _, err := transform.String(stripAccents, strings.ToLower(input))
	if err != nil {
		s = strings.ToLower(input)
	}
	s = reNonMatch.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func Tokenize(input string) []string {
	parts := strings.Split(MatchKey(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
