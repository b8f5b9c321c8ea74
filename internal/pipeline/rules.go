package pipeline

import "regexp"

// Rule maps a title pattern to a result. Rules are evaluated in slice order
// and the first match wins, so a title naming two themes always resolves
// the same way.
type Rule struct {
	Pattern *regexp.Regexp
	Result  string
}

func rule(pattern, result string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Result: result}
}

func firstMatch(rules []Rule, normalized, fallback string) string {
	for _, r := range rules {
		if r.Pattern.MatchString(normalized) {
			return r.Result
		}
	}
	return fallback
}
