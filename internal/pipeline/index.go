package pipeline

import (
	"redbird/internal"
	"redbird/internal/util"
)

// PinIndex holds the lookups used to reconcile houses with map pins.
type PinIndex struct {
	Pins          []internal.Pin
	ByTitle       map[string][]int
	ByAddress     map[string][]int
	TokenToPins   map[string]map[int]struct{}
	TitleKeyByPin map[int]string
}

func BuildPinIndex(pins []internal.Pin) *PinIndex {
	idx := &PinIndex{
		Pins:          pins,
		ByTitle:       map[string][]int{},
		ByAddress:     map[string][]int{},
		TokenToPins:   map[string]map[int]struct{}{},
		TitleKeyByPin: map[int]string{},
	}

	for i, p := range pins {
		key := util.MatchKey(p.HouseName)
		idx.TitleKeyByPin[i] = key
		if key != "" {
			idx.ByTitle[key] = append(idx.ByTitle[key], i)
		}
		if addr := util.NormalizeAddress(p.Address); addr != "" {
			idx.ByAddress[addr] = append(idx.ByAddress[addr], i)
		}
		for _, token := range util.Tokenize(p.HouseName) {
			if _, ok := idx.TokenToPins[token]; !ok {
				idx.TokenToPins[token] = map[int]struct{}{}
			}
			idx.TokenToPins[token][i] = struct{}{}
		}
	}

	return idx
}

// HouseIndex looks houses up by slug. Slugs are not unique; the first house
// listed under a slug wins.
type HouseIndex struct {
	bySlug map[string]internal.House
}

func BuildHouseIndex(houses []internal.House) HouseIndex {
	idx := HouseIndex{bySlug: make(map[string]internal.House, len(houses))}
	for _, h := range houses {
		if _, ok := idx.bySlug[h.Slug]; !ok {
			idx.bySlug[h.Slug] = h
		}
	}
	return idx
}

func (i HouseIndex) Lookup(slug string) (internal.House, bool) {
	h, ok := i.bySlug[slug]
	return h, ok
}
