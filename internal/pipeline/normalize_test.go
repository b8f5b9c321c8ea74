package pipeline

import (
	"testing"

	"redbird/internal"
)

const trailCSV = `Timestamp,Address,Fun "Trick-or-Treat Name"
t1,123 Main St,The Monster House
t2,,Skip Me
t3,456 Oak Ave,Spiderweb Cottage
`

func TestNormalizeEndToEnd(t *testing.T) {
	table, err := ParseTable(trailCSV, QuoteStrict)
	if err != nil {
		t.Fatal(err)
	}
	n := NewNormalizer(NewIconResolver(""))
	houses, stats := n.Normalize(table)

	if len(houses) != 3 {
		t.Fatalf("expected 3 houses, got %d: %+v", len(houses), houses)
	}
	if houses[0].Title != "The Monster House" || houses[0].Address != "123 Main St" || houses[0].Icon != DefaultIconBase+"monster-house.png" {
		t.Fatalf("unexpected first house: %+v", houses[0])
	}
	if houses[1].Title != "Spiderweb Cottage" || houses[1].Address != "456 Oak Ave" || houses[1].Icon != DefaultIconBase+"spiderweb-cottage.png" {
		t.Fatalf("unexpected second house: %+v", houses[1])
	}
	if houses[2].Title != SentinelHouse.Title || houses[2].Address != SentinelHouse.Address {
		t.Fatalf("sentinel not last: %+v", houses[2])
	}
	for _, h := range houses {
		if h.Title == "Skip Me" {
			t.Fatal("row without address was kept")
		}
	}
	if stats.MissingAddress != 1 || !stats.SentinelAdded {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if houses[0].Slug != "the-monster-house" || houses[0].Subtitle != "Cute monsters welcome all ages" {
		t.Fatalf("derived fields: %+v", houses[0])
	}
}

func TestNormalizeSentinelNotDuplicated(t *testing.T) {
	table := internal.Table{
		Header: internal.RawRow{"Timestamp", "Address", "Fun Trick-or-Treat Name"},
		Rows: []internal.RawRow{
			{"t1", "3821 SW 60th Ave", "Red Bird RESTLESS GRAVEYARD (closing stop)"},
			{"t2", "3736 SW 60th Ave", "Milo's Dudgeon of treats"},
		},
	}
	houses, stats := NewNormalizer(NewIconResolver("")).Normalize(table)
	if len(houses) != 2 || stats.SentinelAdded {
		t.Fatalf("sentinel duplicated: %+v", houses)
	}
	if houses[1].Title != "Milo's Dudgeon of treats" {
		t.Fatalf("order not preserved: %+v", houses)
	}
}

func TestNormalizeDefaultsTitleAndDropsAddress(t *testing.T) {
	table := internal.Table{
		Header: internal.RawRow{"Timestamp", "Address", "Fun Trick-or-Treat Name"},
		Rows: []internal.RawRow{
			{"t1", "3800 SW 58 Ave", ""},
			{"t2", "   ", ""},
		},
	}
	houses, stats := NewNormalizer(NewIconResolver("")).Normalize(table)
	if len(houses) != 2 {
		t.Fatalf("expected default-title row plus sentinel, got %+v", houses)
	}
	if houses[0].Title != DefaultTitle || houses[0].Slug != "haunted-house" {
		t.Fatalf("title not defaulted: %+v", houses[0])
	}
	if stats.DefaultTitles != 1 || stats.MissingAddress != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestNormalizeHeaderLookup(t *testing.T) {
	table := internal.Table{
		Header: internal.RawRow{"Fun name", "Notes", "Street address"},
		Rows:   []internal.RawRow{{"Casa Sandsnake", "bring a flashlight", "3930 SW 60th Avenue"}},
	}
	houses, _ := NewNormalizer(NewIconResolver("")).Normalize(table)
	if houses[0].Title != "Casa Sandsnake" || houses[0].Address != "3930 SW 60th Avenue" {
		t.Fatalf("header lookup failed: %+v", houses[0])
	}
}

func TestNormalizePositionalFallback(t *testing.T) {
	table := internal.Table{
		Header: internal.RawRow{"col1", "col2", "col3"},
		Rows:   []internal.RawRow{{"t1", "5965 SW 38 ST", "Halloween Corner"}},
	}
	houses, _ := NewNormalizer(NewIconResolver("")).Normalize(table)
	if houses[0].Title != "Halloween Corner" || houses[0].Address != "5965 SW 38 ST" {
		t.Fatalf("positional fallback failed: %+v", houses[0])
	}
}
