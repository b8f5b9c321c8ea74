package pipeline

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitRecordQuotedComma(t *testing.T) {
	got := SplitRecord(`t1,"3825 SW 58th Court, Miami FL 33155",The Three-Witch House`, QuoteToggle)
	want := []string{"t1", "3825 SW 58th Court, Miami FL 33155", "The Three-Witch House"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSplitRecordQuoteModes(t *testing.T) {
	line := `a,"say ""boo""",c`
	if got := SplitRecord(line, QuoteStrict); got[1] != `say "boo"` {
		t.Fatalf("strict: got %q", got[1])
	}
	if got := SplitRecord(line, QuoteToggle); got[1] != "say boo" {
		t.Fatalf("toggle: got %q", got[1])
	}
}

func TestFormatRecordRoundTrip(t *testing.T) {
	cases := [][]string{
		{"plain", "123 Main St", "The Monster House"},
		{"has, comma", `say "hi"`, ""},
		{"Sweet & Spooky Stop", "3710 SW 59th Ave", "x,y,z"},
	}
	for _, fields := range cases {
		line := FormatRecord(fields)
		got := SplitRecord(line, QuoteStrict)
		if !reflect.DeepEqual(got, fields) {
			t.Fatalf("round trip of %q via %q gave %q", fields, line, got)
		}
	}
}

func TestFormatRecordFlattensLineBreaks(t *testing.T) {
	if got := FormatRecord([]string{"a\nb", "c"}); got != "a b,c" {
		t.Fatalf("got %q", got)
	}
}

func TestParseTable(t *testing.T) {
	text := "\ufeffTimestamp,Address,Name\r\n\r\nt1,123 Main St\r\n   \nt2,\"456 Oak Ave, Miami\",Spiderweb Cottage\r\n"
	table, err := ParseTable(text, QuoteStrict)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Header) != 3 || table.Header[0] != "Timestamp" {
		t.Fatalf("unexpected header: %q", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if len(table.Rows[0]) != 3 || table.Rows[0][2] != "" {
		t.Fatalf("short row not padded: %q", table.Rows[0])
	}
	if table.Rows[1][1] != "456 Oak Ave, Miami" {
		t.Fatalf("quoted field split: %q", table.Rows[1])
	}
}

func TestParseTableQuoteStateStaysOnLine(t *testing.T) {
	table, err := ParseTable("a,b\n\"open,x\nc,d", QuoteStrict)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "d"}
	if !reflect.DeepEqual([]string(table.Rows[1]), want) {
		t.Fatalf("quote leaked into next line: %q", table.Rows[1])
	}
}

func TestParseTableNoData(t *testing.T) {
	for _, text := range []string{"", "Timestamp,Address\n", "\n\n   \n"} {
		if _, err := ParseTable(text, QuoteStrict); !errors.Is(err, ErrNoData) {
			t.Fatalf("%q: expected ErrNoData, got %v", text, err)
		}
	}
}

func TestParseQuoteMode(t *testing.T) {
	if m, err := ParseQuoteMode(""); err != nil || m != QuoteStrict {
		t.Fatalf("default: %v %v", m, err)
	}
	if m, err := ParseQuoteMode("Toggle"); err != nil || m != QuoteToggle {
		t.Fatalf("toggle: %v %v", m, err)
	}
	if _, err := ParseQuoteMode("rfc"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
