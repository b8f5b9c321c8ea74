package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"redbird/internal"
)

// ErrNoData means the tabular input had no data row after the header.
var ErrNoData = errors.New("tabular input has no data rows")

type QuoteMode int

const (
	// QuoteToggle treats every double quote as a toggle and drops it.
	QuoteToggle QuoteMode = iota
	// QuoteStrict additionally reads "" inside a quoted field as a literal quote.
	QuoteStrict
)

func ParseQuoteMode(value string) (QuoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "strict":
		return QuoteStrict, nil
	case "toggle":
		return QuoteToggle, nil
	default:
		return QuoteStrict, fmt.Errorf("unsupported quote mode: %s", value)
	}
}

// ParseTable splits delimited text into a header and data rows. Blank lines
// are skipped, quote state never crosses a line, and short rows are padded
// to the header width.
func ParseTable(text string, mode QuoteMode) (internal.Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := splitLines(text)
	if len(lines) < 2 {
		return internal.Table{}, ErrNoData
	}

	header := internal.RawRow(SplitRecord(lines[0], mode))
	rows := make([]internal.RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := SplitRecord(line, mode)
		for len(fields) < len(header) {
			fields = append(fields, "")
		}
		rows = append(rows, internal.RawRow(fields))
	}
	return internal.Table{Header: header, Rows: rows}, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitRecord splits one line on commas outside quotes. Fields are trimmed.
func SplitRecord(line string, mode QuoteMode) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if mode == QuoteStrict && inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// FormatRecord serializes fields so that SplitRecord in strict mode reads
// them back unchanged. Records are line-scoped, so embedded line breaks
// become spaces.
func FormatRecord(fields []string) string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(f)
		if strings.ContainsAny(f, `,"`) {
			f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		out = append(out, f)
	}
	return strings.Join(out, ",")
}
