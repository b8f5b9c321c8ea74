package geocode

import "strings"

type themeRule struct {
	keywords []string
	icon     string
}

var themeRules = []themeRule{
	{[]string{"haunt"}, "👻"},
	{[]string{"witch"}, "🧙"},
	{[]string{"spider"}, "🕷️"},
	{[]string{"bat"}, "🦇"},
	{[]string{"cat"}, "🐈‍⬛"},
	{[]string{"candy", "sweet"}, "🍬"},
	{[]string{"cardinal", "bird"}, "🐦"},
}

const defaultThemeIcon = "🎃"

// ThemeIcon picks the emoji shown on a map pin. First matching rule wins.
func ThemeIcon(name string) string {
	t := strings.ToLower(name)
	for _, r := range themeRules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.icon
			}
		}
	}
	return defaultThemeIcon
}
