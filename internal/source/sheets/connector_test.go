package sheets

import (
	"errors"
	"testing"

	"redbird/internal/pipeline"
)

func TestTableFromValues(t *testing.T) {
	values := [][]interface{}{
		{"Timestamp", "Address", "Fun \"Trick-or-Treat Name\""},
		{},
		{"10/6/2025 19:26:14", " 3825 SW 58th Court, Miami FL 33155 ", "The Three-Witch House"},
		{"10/6/2025 19:30:02", "3703 SW 58th Ave"},
	}
	table, err := TableFromValues(values)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][1] != "3825 SW 58th Court, Miami FL 33155" {
		t.Fatalf("cell not trimmed: %q", table.Rows[0][1])
	}
	if len(table.Rows[1]) != 3 || table.Rows[1][2] != "" {
		t.Fatalf("short row not padded: %q", table.Rows[1])
	}
}

func TestTableFromValuesNoData(t *testing.T) {
	_, err := TableFromValues([][]interface{}{{"Timestamp", "Address"}})
	if !errors.Is(err, pipeline.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
