package pipeline

import (
	"regexp"
	"strings"

	"redbird/internal"
	"redbird/internal/util"
)

const DefaultTitle = "Haunted House"

const (
	addressColumnFallback = 1
	nameColumnFallback    = 2
)

var sentinelPattern = regexp.MustCompile(`(?i)restless graveyard`)

// SentinelHouse is the closing stop of the trail. It is always listed.
var SentinelHouse = internal.House{
	Title:    "Red Bird Restless Graveyard",
	Subtitle: "Fog and friendly frights await",
	Address:  "3821 SW 60th Ave, Miami, FL 33155",
	Icon:     "tombstone-graveyard.png",
	Slug:     "red-bird-restless-graveyard",
}

type NormalizeStats struct {
	Rows           int
	MissingAddress int
	DefaultTitles  int
	SentinelAdded  bool
}

type Normalizer struct {
	Icons IconResolver
}

func NewNormalizer(icons IconResolver) Normalizer {
	return Normalizer{Icons: icons}
}

// Normalize maps raw rows to listing records in input order. Rows without an
// address are dropped and counted; the sentinel is appended last when no
// title matches it.
func (n Normalizer) Normalize(table internal.Table) ([]internal.House, NormalizeStats) {
	stats := NormalizeStats{Rows: len(table.Rows)}
	addrCol, nameCol := locateColumns(table.Header)

	houses := make([]internal.House, 0, len(table.Rows)+1)
	hasSentinel := false
	for _, row := range table.Rows {
		address := strings.TrimSpace(valueAt(row, addrCol))
		if address == "" {
			stats.MissingAddress++
			continue
		}
		title := util.NormalizeTitle(valueAt(row, nameCol))
		if title == "" {
			title = DefaultTitle
			stats.DefaultTitles++
		}
		if sentinelPattern.MatchString(title) {
			hasSentinel = true
		}
		houses = append(houses, n.house(title, address))
	}

	if !hasSentinel {
		sentinel := SentinelHouse
		sentinel.Icon = n.Icons.base() + SentinelHouse.Icon
		houses = append(houses, sentinel)
		stats.SentinelAdded = true
	}
	return houses, stats
}

func (n Normalizer) house(title, address string) internal.House {
	return internal.House{
		Title:    title,
		Subtitle: MakeSubtitle(title),
		Address:  address,
		Icon:     n.Icons.Resolve(title),
		Slug:     util.Slugify(title),
	}
}

// locateColumns finds the address and fun-name columns by header label,
// falling back to the form export's fixed positions.
func locateColumns(header internal.RawRow) (addr, name int) {
	addr, name = -1, -1
	for i, h := range header {
		key := util.NormalizeHeader(h)
		if key == "address" {
			addr = i
			break
		}
	}
	for i, h := range header {
		key := util.NormalizeHeader(h)
		if addr < 0 && strings.Contains(key, "address") {
			addr = i
		}
		if name < 0 && isNameHeader(key) {
			name = i
		}
	}
	if addr < 0 {
		addr = addressColumnFallback
	}
	if name < 0 {
		name = nameColumnFallback
	}
	return addr, name
}

func isNameHeader(key string) bool {
	return strings.Contains(key, "trick-or-treat name") || strings.HasPrefix(key, "fun") || key == "title"
}

func valueAt(row internal.RawRow, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
