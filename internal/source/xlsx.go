package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"redbird/internal"
	"redbird/internal/pipeline"
	"redbird/internal/util"
)

var headerKeywords = []string{"address", "trick-or-treat", "fun", "name", "timestamp"}

// XLSXSource reads a form-response workbook. The responses sheet is the one
// whose first row looks most like the sign-up header.
type XLSXSource struct {
	Path string
}

func (s *XLSXSource) Name() string { return "xlsx:" + filepath.Base(s.Path) }

func (s *XLSXSource) Load(ctx context.Context) (internal.Table, error) {
	if err := ctx.Err(); err != nil {
		return internal.Table{}, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return internal.Table{}, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	bestScore := -1
	var best [][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		rows = dropEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}
		if score := scoreHeader(rows[0]); score > bestScore {
			bestScore = score
			best = rows
		}
	}
	if len(best) < 2 {
		return internal.Table{}, pipeline.ErrNoData
	}

	header := trimCells(best[0])
	table := internal.Table{Header: header, Rows: make([]internal.RawRow, 0, len(best)-1)}
	for _, row := range best[1:] {
		cells := trimCells(row)
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func scoreHeader(cells []string) int {
	score := 0
	for _, c := range cells {
		key := util.NormalizeHeader(c)
		for _, kw := range headerKeywords {
			if strings.Contains(key, kw) {
				score++
			}
		}
	}
	return score
}

func dropEmptyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			out = append(out, row)
		}
	}
	return out
}

func trimCells(row []string) internal.RawRow {
	out := make(internal.RawRow, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
